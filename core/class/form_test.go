package class_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/akademik/core/class"
	"github.com/trezcool/akademik/core/crud"
	"github.com/trezcool/akademik/core/subject"
	"github.com/trezcool/akademik/services/presenter"
	"github.com/trezcool/akademik/tests"
)

type fixture struct {
	backend *testutil.Backend
	rec     *presentersvc.Recorder
	classes *crud.Store[class.Class]
	form    *class.Form
	enr     *class.Enrollment
}

func setup(t *testing.T) *fixture {
	t.Helper()
	b := testutil.NewBackend(t)
	api := testutil.Client(t, b)
	logger := testutil.Logger()
	rec := presentersvc.NewRecorder()
	classes, err := class.NewStore(api, rec, logger)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return &fixture{
		backend: b,
		rec:     rec,
		classes: classes,
		form:    class.NewForm(classes, api, logger),
		enr:     class.NewEnrollment(classes, api, rec, logger),
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Algorithms - 2024 - Odd", class.DisplayName("Algorithms", 2024, "Odd"))
}

func TestFillNames(t *testing.T) {
	subjects := []subject.Subject{{ID: 1, Name: "Algorithms"}, {ID: 2, Name: "Databases"}}

	tests := []struct {
		name string
		cls  class.Class
		want class.Class
	}{
		{
			name: "no subject",
			cls:  class.Class{Year: null.IntFrom(2024), Semester: "Odd"},
			want: class.Class{Year: null.IntFrom(2024), Semester: "Odd"},
		},
		{
			name: "derives both names",
			cls:  class.Class{SubjectID: 1, Year: null.IntFrom(2024), Semester: "Odd"},
			want: class.Class{SubjectID: 1, SubjectName: "Algorithms", Name: "Algorithms - 2024 - Odd", Year: null.IntFrom(2024), Semester: "Odd"},
		},
		{
			name: "keeps a given name",
			cls:  class.Class{SubjectID: 1, Name: "Algo A", Year: null.IntFrom(2024), Semester: "Odd"},
			want: class.Class{SubjectID: 1, SubjectName: "Algorithms", Name: "Algo A", Year: null.IntFrom(2024), Semester: "Odd"},
		},
		{
			name: "keeps a given subject name",
			cls:  class.Class{SubjectID: 2, SubjectName: "DB", Year: null.IntFrom(2023), Semester: "Even"},
			want: class.Class{SubjectID: 2, SubjectName: "DB", Name: "Databases - 2023 - Even", Year: null.IntFrom(2023), Semester: "Even"},
		},
		{
			name: "missing year",
			cls:  class.Class{SubjectID: 1, Semester: "Odd"},
			want: class.Class{SubjectID: 1, SubjectName: "Algorithms", Semester: "Odd"},
		},
		{
			name: "missing semester",
			cls:  class.Class{SubjectID: 1, Year: null.IntFrom(2024)},
			want: class.Class{SubjectID: 1, SubjectName: "Algorithms", Year: null.IntFrom(2024)},
		},
		{
			name: "unknown subject",
			cls:  class.Class{SubjectID: 9, Year: null.IntFrom(2024), Semester: "Odd"},
			want: class.Class{SubjectID: 9, Year: null.IntFrom(2024), Semester: "Odd"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := tt.cls
			class.FillNames(&cls, subjects)
			assert.Equal(t, tt.want, cls)
		})
	}
}

func TestForm_Submit_derivesName(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	algo := f.backend.AddSubject(subject.Subject{Code: "IF101", Name: "Algorithms"})

	require.NoError(t, f.form.LoadSubjectOptions(ctx))
	assert.Equal(t, []subject.Subject{algo}, f.form.SubjectOptions())

	f.form.OpenForCreate()
	require.NoError(t, f.form.Edit(func(c *class.Class) {
		c.Code = "A"
		c.SubjectID = algo.ID
		c.Year = null.IntFrom(2024)
		c.Semester = "Odd"
	}))
	require.NoError(t, f.form.Submit(ctx))

	list := f.classes.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Algorithms - 2024 - Odd", list[0].Name)
	assert.Equal(t, "Algorithms", list[0].SubjectName)
	assert.Equal(t, class.Messages.Saved, f.rec.Notice().Message)
}

func TestForm_Submit_editKeepsName(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	algo := f.backend.AddSubject(subject.Subject{Code: "IF101", Name: "Algorithms"})
	cls := f.backend.AddClass(class.Class{Code: "A", Name: "Morning group", SubjectID: algo.ID, SubjectName: algo.Name, Semester: "Odd", Year: null.IntFrom(2024)})
	require.NoError(t, f.classes.Load(ctx))
	require.NoError(t, f.form.LoadSubjectOptions(ctx))

	f.form.OpenForEdit(cls)
	require.NoError(t, f.form.Edit(func(c *class.Class) { c.Semester = "Even" }))
	require.NoError(t, f.form.Submit(ctx))

	assert.Equal(t, "/classes/2", f.backend.LastRequest(t, http.MethodPut).Path)
	got, ok := f.classes.Find(cls.ID)
	require.True(t, ok)
	assert.Equal(t, "Morning group", got.Name)
	assert.Equal(t, "Even", got.Semester)
}

func TestForm_LoadSubjectOptions_failure(t *testing.T) {
	f := setup(t)
	f.form.SetSubjectOptions([]subject.Subject{{ID: 1, Name: "Algorithms"}})
	f.backend.Fail(http.MethodGet, "/subjects", http.StatusInternalServerError)

	assert.Error(t, f.form.LoadSubjectOptions(context.Background()))
	assert.Len(t, f.form.SubjectOptions(), 1)
	assert.Empty(t, f.rec.Notices())
}
