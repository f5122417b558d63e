package subject

import (
	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/core/crud"
)

const Path = "/subjects"

var Messages = crud.Messages{
	LoadFailed:    "Failed to load subjects",
	Saved:         "Subject saved",
	SaveFailed:    "Failed to save subject",
	SaveError:     "An error occurred while saving the subject",
	ConfirmDelete: "Are you sure you want to delete this subject?",
	Deleted:       "Subject deleted",
	DeleteFailed:  "Failed to delete subject",
	DeleteError:   "An error occurred while deleting the subject",
}

func NewStore(api core.APIClient, presenter core.Presenter, logger core.Logger) (*crud.Store[Subject], error) {
	return crud.NewStore[Subject](crud.Options{
		Name:      "subject",
		Path:      Path,
		API:       api,
		Presenter: presenter,
		Logger:    logger,
		Messages:  Messages,
	})
}

func NewForm(store *crud.Store[Subject]) *crud.Form[Subject] {
	return crud.NewForm(store, nil)
}

// Find returns the subject `id` from `subjects`.
func Find(subjects []Subject, id int64) (Subject, bool) {
	for _, s := range subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}
