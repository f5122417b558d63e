package class

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/core/crud"
	"github.com/trezcool/akademik/core/student"
)

var ErrNoClass = errors.New("no class is being managed")

var EnrollmentMessages = struct {
	Added, AddFailed, ConfirmRemove, Removed, RemoveFailed, Error string
}{
	Added:         "Student added to the class",
	AddFailed:     "Failed to add the student",
	ConfirmRemove: "Are you sure you want to remove this student from the class?",
	Removed:       "Student removed from the class",
	RemoveFailed:  "Failed to remove the student",
	Error:         "An error occurred",
}

// Enrollment manages the students of one class at a time.
type Enrollment struct {
	api       core.APIClient
	presenter core.Presenter
	logger    core.Logger
	classes   *crud.Store[Class]

	mu        sync.RWMutex
	current   Class
	open      bool
	enrolled  []student.Student
	available []student.Student
}

func NewEnrollment(classes *crud.Store[Class], api core.APIClient, presenter core.Presenter, logger core.Logger) *Enrollment {
	return &Enrollment{
		api:       api,
		presenter: presenter,
		logger:    logger,
		classes:   classes,
	}
}

// Open makes `cls` the managed class and loads its enrolled students and the available students.
func (e *Enrollment) Open(ctx context.Context, cls Class) error {
	e.mu.Lock()
	e.current = cls.Clone()
	e.open = true
	e.enrolled = nil
	e.mu.Unlock()

	errEnrolled := e.LoadEnrolled(ctx)
	errAvailable := e.LoadAvailable(ctx)
	if errEnrolled != nil {
		return errEnrolled
	}
	return errAvailable
}

func (e *Enrollment) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = Class{}
	e.open = false
	e.enrolled = nil
	e.available = nil
}

// Class returns the managed class as last fetched.
func (e *Enrollment) Class() (Class, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current.Clone(), e.open
}

func (e *Enrollment) classID() (int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.open || e.current.ID == 0 {
		return 0, ErrNoClass
	}
	return e.current.ID, nil
}

// LoadEnrolled refreshes the managed class then resolves its student ids against the student list.
// Failures are logged only.
func (e *Enrollment) LoadEnrolled(ctx context.Context) error {
	id, err := e.classID()
	if err != nil {
		return err
	}

	var cls Class
	if err := e.api.Get(ctx, e.classes.ItemPath(id), &cls); err != nil {
		return e.logErr(errors.Wrapf(err, "loading class %d", id))
	}
	cls.ID = id

	enrolled := make([]student.Student, 0, len(cls.StudentIDs))
	if len(cls.StudentIDs) > 0 {
		var all []student.Student
		if err := e.api.Get(ctx, student.Path, &all); err != nil {
			return e.logErr(errors.Wrapf(err, "loading students of class %d", id))
		}
		for _, s := range all {
			if cls.HasStudent(s.ID) {
				enrolled = append(enrolled, s)
			}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open && e.current.ID == id { // the manager may have moved to another class meanwhile
		e.current = cls
		e.enrolled = enrolled
	}
	return nil
}

// LoadAvailable fetches every student. Failures are logged only.
func (e *Enrollment) LoadAvailable(ctx context.Context) error {
	var all []student.Student
	if err := e.api.Get(ctx, student.Path, &all); err != nil {
		return e.logErr(errors.Wrap(err, "loading available students"))
	}
	e.mu.Lock()
	e.available = all
	e.mu.Unlock()
	return nil
}

func (e *Enrollment) Enrolled() []student.Student {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]student.Student(nil), e.enrolled...)
}

func (e *Enrollment) Available() []student.Student {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]student.Student(nil), e.available...)
}

// Unenrolled returns the available students that are not enrolled in the managed class.
func (e *Enrollment) Unenrolled() []student.Student {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Difference(e.available, e.enrolled)
}

// Difference returns the students of `all` whose id is not in `excluded`, keeping the order of `all`.
func Difference(all, excluded []student.Student) []student.Student {
	ids := make(map[int64]struct{}, len(excluded))
	for _, s := range excluded {
		ids[s.ID] = struct{}{}
	}
	diff := make([]student.Student, 0, len(all))
	for _, s := range all {
		if _, ok := ids[s.ID]; !ok {
			diff = append(diff, s)
		}
	}
	return diff
}

func (e *Enrollment) memberPath(classID, studentID int64) string {
	return fmt.Sprintf("%s/%d/students/%d", Path, classID, studentID)
}

// Add enrolls `studentID` in the managed class.
func (e *Enrollment) Add(ctx context.Context, studentID int64) error {
	classID, err := e.classID()
	if err != nil {
		return err
	}
	if err := e.api.Post(ctx, e.memberPath(classID, studentID), nil, nil); err != nil {
		return e.fail(errors.Wrapf(err, "adding student %d to class %d", studentID, classID), EnrollmentMessages.AddFailed)
	}
	e.presenter.Notify(core.NoticeSuccess, EnrollmentMessages.Added)
	e.refresh(ctx)
	return nil
}

// Remove asks for confirmation then removes `studentID` from the managed class.
// It returns false when the user declined.
func (e *Enrollment) Remove(ctx context.Context, studentID int64) (bool, error) {
	classID, err := e.classID()
	if err != nil {
		return false, err
	}
	ok, err := e.presenter.Confirm(ctx, EnrollmentMessages.ConfirmRemove)
	if err != nil {
		return false, errors.Wrap(err, "confirming student removal")
	}
	if !ok {
		return false, nil
	}
	if err := e.api.Delete(ctx, e.memberPath(classID, studentID)); err != nil {
		return true, e.fail(errors.Wrapf(err, "removing student %d from class %d", studentID, classID), EnrollmentMessages.RemoveFailed)
	}
	e.presenter.Notify(core.NoticeSuccess, EnrollmentMessages.Removed)
	e.refresh(ctx)
	return true, nil
}

// refresh reloads the enrolled students and the class list, which carries the enrollment count.
func (e *Enrollment) refresh(ctx context.Context) {
	_ = e.LoadEnrolled(ctx)
	_ = e.classes.Reload(ctx)
}

func (e *Enrollment) logErr(err error) error {
	e.logger.Error(err.Error(), err)
	return err
}

func (e *Enrollment) fail(err error, failedMsg string) error {
	e.logger.Error(err.Error(), err)
	if core.IsTransport(err) {
		e.presenter.Notify(core.NoticeError, EnrollmentMessages.Error)
	} else {
		e.presenter.Notify(core.NoticeError, failedMsg)
	}
	return err
}
