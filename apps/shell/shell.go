package shell

import (
	"context"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/core/class"
	"github.com/trezcool/akademik/core/crud"
	"github.com/trezcool/akademik/core/dashboard"
	"github.com/trezcool/akademik/core/session"
	"github.com/trezcool/akademik/core/student"
	"github.com/trezcool/akademik/core/subject"
)

type Page string

const (
	PageDashboard   Page = "dashboard"
	PageStudents    Page = "students"
	PageSubjects    Page = "subjects"
	PageAddClass    Page = "add-class"
	PageViewClasses Page = "view-classes"
)

var Pages = []Page{PageDashboard, PageStudents, PageSubjects, PageAddClass, PageViewClasses}

var ErrUnknownPage = errors.New("unknown page")

type Options struct {
	API       core.APIClient
	Presenter core.Presenter
	Logger    core.Logger
}

// Shell owns every page state and routes navigation to their loaders.
type Shell struct {
	Session     *session.Session
	Dashboard   *dashboard.Aggregator
	Students    *student.Store
	StudentForm *crud.Form[student.Student]
	Subjects    *crud.Store[subject.Subject]
	SubjectForm *crud.Form[subject.Subject]
	Classes     *crud.Store[class.Class]
	ClassForm   *class.Form
	Enrollment  *class.Enrollment

	dispatch sync.Mutex // one handler at a time

	mu   sync.RWMutex
	page Page
}

func New(opts Options) (*Shell, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(opts.API, "API"),
		vala.IsNotNil(opts.Presenter, "Presenter"),
		vala.IsNotNil(opts.Logger, "Logger"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "shell.New")
	}

	students, err := student.NewStore(opts.API, opts.Presenter, opts.Logger)
	if err != nil {
		return nil, err
	}
	subjects, err := subject.NewStore(opts.API, opts.Presenter, opts.Logger)
	if err != nil {
		return nil, err
	}
	classes, err := class.NewStore(opts.API, opts.Presenter, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Shell{
		Session:     session.New(opts.API, opts.Logger),
		Dashboard:   dashboard.NewAggregator(opts.API, opts.Presenter, opts.Logger),
		Students:    students,
		StudentForm: student.NewForm(students),
		Subjects:    subjects,
		SubjectForm: subject.NewForm(subjects),
		Classes:     classes,
		ClassForm:   class.NewForm(classes, opts.API, opts.Logger),
		Enrollment:  class.NewEnrollment(classes, opts.API, opts.Presenter, opts.Logger),
		page:        PageDashboard,
	}, nil
}

// Start loads what every page needs: the signed in user, the major options and the statistics.
// Failures are reported by each loader and never stop the start.
func (s *Shell) Start(ctx context.Context) {
	s.Do(ctx, func(ctx context.Context) error {
		var wg sync.WaitGroup
		for _, load := range []func(context.Context) error{s.Session.Load, s.Students.LoadMajorOptions, s.Dashboard.Load} {
			wg.Add(1)
			go func(load func(context.Context) error) {
				defer wg.Done()
				_ = load(ctx)
			}(load)
		}
		wg.Wait()
		return nil
	})
}

func (s *Shell) ActivePage() Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// Navigate activates `page` then runs its loader. The loader error is returned.
func (s *Shell) Navigate(ctx context.Context, page Page) error {
	var load func(context.Context) error
	switch page {
	case PageDashboard:
		load = s.Dashboard.Load
	case PageStudents:
		load = s.Students.Load
	case PageSubjects:
		load = s.Subjects.Load
	case PageAddClass:
		load = func(ctx context.Context) error {
			s.ClassForm.OpenForCreate()
			return s.ClassForm.LoadSubjectOptions(ctx)
		}
	case PageViewClasses:
		load = s.Classes.Load
	default:
		return errors.Wrapf(ErrUnknownPage, "%q", page)
	}

	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	return s.Do(ctx, load)
}

// Do runs `fn` once no other handler is running.
func (s *Shell) Do(ctx context.Context, fn func(context.Context) error) error {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()
	return fn(ctx)
}
