package student

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/core/crud"
)

const (
	Path             = "/students"
	majorOptionsPath = Path + "/major-options"
)

var Messages = crud.Messages{
	LoadFailed:    "Failed to load students",
	Saved:         "Student saved",
	SaveFailed:    "Failed to save student",
	SaveError:     "An error occurred while saving the student",
	ConfirmDelete: "Are you sure you want to delete this student?",
	Deleted:       "Student deleted",
	DeleteFailed:  "Failed to delete student",
	DeleteError:   "An error occurred while deleting the student",
}

// Store is the student list plus the major options used by the student form.
type Store struct {
	*crud.Store[Student]

	api    core.APIClient
	logger core.Logger

	mu           sync.RWMutex
	majorOptions []string
}

func NewStore(api core.APIClient, presenter core.Presenter, logger core.Logger) (*Store, error) {
	s, err := crud.NewStore[Student](crud.Options{
		Name:      "student",
		Path:      Path,
		API:       api,
		Presenter: presenter,
		Logger:    logger,
		Messages:  Messages,
	})
	if err != nil {
		return nil, err
	}
	return &Store{Store: s, api: api, logger: logger}, nil
}

func NewForm(store *Store) *crud.Form[Student] {
	return crud.NewForm(store.Store, nil)
}

type majorOptions struct {
	Options []string `json:"options"`
}

// LoadMajorOptions fetches the majors a student can be assigned to. Failures are logged only.
func (s *Store) LoadMajorOptions(ctx context.Context) error {
	var data majorOptions
	if err := s.api.Get(ctx, majorOptionsPath, &data); err != nil {
		err = errors.Wrap(err, "loading major options")
		s.logger.Error(err.Error(), err)
		return err
	}
	s.mu.Lock()
	s.majorOptions = data.Options
	s.mu.Unlock()
	return nil
}

func (s *Store) MajorOptions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.majorOptions...)
}
