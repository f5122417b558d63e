package class

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/core/crud"
	"github.com/trezcool/akademik/core/subject"
)

const Path = "/classes"

var Messages = crud.Messages{
	LoadFailed:    "Failed to load classes",
	Saved:         "Class saved",
	SaveFailed:    "Failed to save class",
	SaveError:     "An error occurred while saving the class",
	ConfirmDelete: "Are you sure you want to delete this class?",
	Deleted:       "Class deleted",
	DeleteFailed:  "Failed to delete class",
	DeleteError:   "An error occurred while deleting the class",
}

func NewStore(api core.APIClient, presenter core.Presenter, logger core.Logger) (*crud.Store[Class], error) {
	return crud.NewStore[Class](crud.Options{
		Name:      "class",
		Path:      Path,
		API:       api,
		Presenter: presenter,
		Logger:    logger,
		Messages:  Messages,
	})
}

// Form is the class form. It fills the subject name and the class name from the subject options before saving.
type Form struct {
	*crud.Form[Class]

	api    core.APIClient
	logger core.Logger

	mu       sync.RWMutex
	subjects []subject.Subject
}

func NewForm(store *crud.Store[Class], api core.APIClient, logger core.Logger) *Form {
	f := &Form{api: api, logger: logger}
	f.Form = crud.NewForm(store, f.fillNames)
	return f
}

// LoadSubjectOptions fetches the subjects a class can reference. Failures are logged only.
func (f *Form) LoadSubjectOptions(ctx context.Context) error {
	var subjects []subject.Subject
	if err := f.api.Get(ctx, subject.Path, &subjects); err != nil {
		err = errors.Wrap(err, "loading subject options")
		f.logger.Error(err.Error(), err)
		return err
	}
	f.SetSubjectOptions(subjects)
	return nil
}

func (f *Form) SetSubjectOptions(subjects []subject.Subject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append([]subject.Subject(nil), subjects...)
}

func (f *Form) SubjectOptions() []subject.Subject {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]subject.Subject(nil), f.subjects...)
}

func (f *Form) fillNames(cls *Class) {
	FillNames(cls, f.SubjectOptions())
}

// FillNames sets the empty SubjectName from the referenced subject, then,
// when subject, year and semester are all set, the empty Name to their DisplayName.
// A non-empty Name is never changed.
func FillNames(cls *Class, subjects []subject.Subject) {
	if cls.SubjectID == 0 {
		return
	}
	subjectName := cls.SubjectName
	if subj, ok := subject.Find(subjects, cls.SubjectID); ok {
		subjectName = subj.Name
		if cls.SubjectName == "" {
			cls.SubjectName = subj.Name
		}
	}
	if cls.Name != "" || subjectName == "" || !cls.Year.Valid || cls.Year.Int == 0 || cls.Semester == "" {
		return
	}
	cls.Name = DisplayName(subjectName, cls.Year.Int, cls.Semester)
}
