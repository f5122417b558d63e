package class_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/core/class"
	"github.com/trezcool/akademik/core/student"
)

func TestDifference(t *testing.T) {
	a := student.Student{ID: 1, Name: "Ana"}
	b := student.Student{ID: 2, Name: "Budi"}
	c := student.Student{ID: 3, Name: "Citra"}

	tests := []struct {
		name     string
		all      []student.Student
		excluded []student.Student
		want     []student.Student
	}{
		{name: "nothing excluded", all: []student.Student{a, b, c}, want: []student.Student{a, b, c}},
		{name: "keeps order", all: []student.Student{c, a, b}, excluded: []student.Student{a}, want: []student.Student{c, b}},
		{name: "keyed by id", all: []student.Student{a, b}, excluded: []student.Student{{ID: 2, Name: "other"}}, want: []student.Student{a}},
		{name: "everything excluded", all: []student.Student{a}, excluded: []student.Student{a, b}, want: []student.Student{}},
		{name: "empty", want: []student.Student{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, class.Difference(tt.all, tt.excluded))
		})
	}
}

func TestEnrollment_noClass(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	assert.Equal(t, class.ErrNoClass, f.enr.LoadEnrolled(ctx))
	assert.Equal(t, class.ErrNoClass, f.enr.Add(ctx, 1))
	_, err := f.enr.Remove(ctx, 1)
	assert.Equal(t, class.ErrNoClass, err)
	assert.Empty(t, f.backend.Requests())
	assert.Empty(t, f.rec.Prompts())
}

func TestEnrollment_Open(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.backend.AddStudent(student.Student{NIM: "001", Name: "Ana"})
	budi := f.backend.AddStudent(student.Student{NIM: "002", Name: "Budi"})
	empty := f.backend.AddClass(class.Class{Code: "E", Name: "Empty"})
	full := f.backend.AddClass(class.Class{Code: "F", Name: "Full", StudentIDs: []int64{budi.ID}})

	require.NoError(t, f.enr.Open(ctx, empty))
	assert.Empty(t, f.enr.Enrolled())
	assert.Equal(t, []student.Student{ana, budi}, f.enr.Available())
	assert.Equal(t, []student.Student{ana, budi}, f.enr.Unenrolled())

	require.NoError(t, f.enr.Open(ctx, class.Class{ID: full.ID}))
	cls, ok := f.enr.Class()
	require.True(t, ok)
	assert.Equal(t, "Full", cls.Name) // refreshed from the backend
	assert.Equal(t, []student.Student{budi}, f.enr.Enrolled())
	assert.Equal(t, []student.Student{ana}, f.enr.Unenrolled())

	f.enr.Close()
	_, ok = f.enr.Class()
	assert.False(t, ok)
	assert.Empty(t, f.enr.Available())
}

func TestEnrollment_Add(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.backend.AddStudent(student.Student{NIM: "001", Name: "Ana"})
	cls := f.backend.AddClass(class.Class{Code: "A", Name: "Algo"})
	require.NoError(t, f.enr.Open(ctx, cls))
	f.backend.ResetRequests()

	require.NoError(t, f.enr.Add(ctx, ana.ID))
	assert.Equal(t, "/classes/2/students/1", f.backend.LastRequest(t, http.MethodPost).Path)
	assert.Equal(t, class.EnrollmentMessages.Added, f.rec.Notice().Message)
	assert.Equal(t, []student.Student{ana}, f.enr.Enrolled())
	assert.Empty(t, f.enr.Unenrolled())

	// the class list is reloaded too
	listed, ok := f.classes.Find(cls.ID)
	require.True(t, ok)
	assert.Equal(t, []int64{ana.ID}, listed.StudentIDs)
}

func TestEnrollment_Add_failure(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantNotice string
	}{
		{name: "rejected", code: http.StatusNotFound, wantNotice: class.EnrollmentMessages.AddFailed},
		{name: "server error", code: http.StatusInternalServerError, wantNotice: class.EnrollmentMessages.AddFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := setup(t)
			ana := f.backend.AddStudent(student.Student{NIM: "001", Name: "Ana"})
			cls := f.backend.AddClass(class.Class{Code: "A"})
			require.NoError(t, f.enr.Open(ctx, cls))
			f.backend.Fail(http.MethodPost, "/classes/:id/students/:sid", tt.code)

			err := f.enr.Add(ctx, ana.ID)
			require.Error(t, err)
			assert.Equal(t, tt.code, core.StatusCode(err))
			assert.Equal(t, core.Notice{Kind: core.NoticeError, Message: tt.wantNotice, Visible: true}, f.rec.Notice())
			assert.Empty(t, f.enr.Enrolled())
		})
	}
}

func TestEnrollment_Remove(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.backend.AddStudent(student.Student{NIM: "001", Name: "Ana"})
	cls := f.backend.AddClass(class.Class{Code: "A", StudentIDs: []int64{ana.ID}})
	require.NoError(t, f.enr.Open(ctx, cls))

	f.rec.Answer(false)
	removed, err := f.enr.Remove(ctx, ana.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, f.backend.Requests(http.MethodDelete))
	assert.Equal(t, []string{class.EnrollmentMessages.ConfirmRemove}, f.rec.Prompts())

	f.rec.Answer(true)
	removed, err = f.enr.Remove(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "/classes/2/students/1", f.backend.LastRequest(t, http.MethodDelete).Path)
	assert.Equal(t, class.EnrollmentMessages.Removed, f.rec.Notice().Message)
	assert.Empty(t, f.enr.Enrolled())
	assert.Equal(t, []student.Student{ana}, f.enr.Unenrolled())

	got, ok := f.backend.Class(cls.ID)
	require.True(t, ok)
	assert.Empty(t, got.StudentIDs)
}

func TestEnrollment_LoadEnrolled_failure(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.backend.AddStudent(student.Student{NIM: "001", Name: "Ana"})
	cls := f.backend.AddClass(class.Class{Code: "A", StudentIDs: []int64{ana.ID}})
	require.NoError(t, f.enr.Open(ctx, cls))

	f.backend.Fail(http.MethodGet, "/classes/:id", http.StatusInternalServerError)
	assert.Error(t, f.enr.LoadEnrolled(ctx))
	assert.Equal(t, []student.Student{ana}, f.enr.Enrolled())
	assert.Empty(t, f.rec.Notices()) // logged only
}
