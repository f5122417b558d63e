package subject_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/core/class"
	"github.com/trezcool/akademik/core/crud"
	"github.com/trezcool/akademik/core/subject"
	"github.com/trezcool/akademik/services/presenter"
	"github.com/trezcool/akademik/tests"
)

func setup(t *testing.T) (*crud.Store[subject.Subject], *testutil.Backend, *presentersvc.Recorder) {
	t.Helper()
	b := testutil.NewBackend(t)
	rec := presentersvc.NewRecorder()
	store, err := subject.NewStore(testutil.Client(t, b), rec, testutil.Logger())
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return store, b, rec
}

func TestFind(t *testing.T) {
	subjects := []subject.Subject{{ID: 1, Name: "Algorithms"}, {ID: 2, Name: "Databases"}}

	s, ok := subject.Find(subjects, 2)
	assert.True(t, ok)
	assert.Equal(t, "Databases", s.Name)

	_, ok = subject.Find(subjects, 3)
	assert.False(t, ok)
}

func TestForm_create(t *testing.T) {
	ctx := context.Background()
	store, b, _ := setup(t)
	form := subject.NewForm(store)

	form.OpenForCreate()
	require.NoError(t, form.Submit(ctx))

	// nullable fields of a fresh draft go out as null
	assert.JSONEq(t, `{"code":"","name":"","major":null,"sks":null}`, string(b.LastRequest(t, http.MethodPost).Body))

	form.OpenForCreate()
	require.NoError(t, form.Edit(func(s *subject.Subject) {
		s.Code = "IF101"
		s.Name = "Algorithms"
		s.Sks = null.IntFrom(3)
	}))
	require.NoError(t, form.Submit(ctx))

	var body subject.Subject
	require.NoError(t, json.Unmarshal(b.LastRequest(t, http.MethodPost).Body, &body))
	assert.Equal(t, subject.Subject{Code: "IF101", Name: "Algorithms", Sks: null.IntFrom(3)}, body)
	assert.Equal(t, 2, store.Len())
}

func TestForm_Remove_referencedSubject(t *testing.T) {
	ctx := context.Background()
	store, b, rec := setup(t)
	algo := b.AddSubject(subject.Subject{Code: "IF101", Name: "Algorithms"})
	b.AddClass(class.Class{Code: "A", SubjectID: algo.ID})
	require.NoError(t, store.Load(ctx))
	form := subject.NewForm(store)

	rec.Answer(true)
	removed, err := form.Remove(ctx, algo.ID)
	assert.True(t, removed)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, core.StatusCode(err))

	assert.Equal(t, core.Notice{Kind: core.NoticeError, Message: subject.Messages.DeleteFailed, Visible: true}, rec.Notice())
	assert.Equal(t, []subject.Subject{algo}, store.List())
	assert.Equal(t, []subject.Subject{algo}, b.Subjects())
}

func TestStore_Load_transportFailure(t *testing.T) {
	store, b, rec := setup(t)
	b.AddSubject(subject.Subject{Code: "IF101", Name: "Algorithms"})
	require.NoError(t, store.Load(context.Background()))
	b.Close()

	err := store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsTransport(err))
	assert.Equal(t, subject.Messages.LoadFailed, rec.Notice().Message)
	assert.Equal(t, 1, store.Len())
}
