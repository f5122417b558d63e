package crud

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/akademik/core"
)

var ErrFormClosed = errors.New("form is not open")

// Form owns the draft of one entity and submits it to the backend.
type Form[T Entity[T]] struct {
	store        *Store[T]
	beforeSubmit func(*T)

	mu    sync.Mutex
	draft Draft[T]
	open  bool
	gen   uint64 // bumped every time the draft is replaced
}

// NewForm returns a closed form. `beforeSubmit` runs on the draft fields right before every submit.
func NewForm[T Entity[T]](store *Store[T], beforeSubmit func(*T)) *Form[T] {
	return &Form[T]{store: store, beforeSubmit: beforeSubmit}
}

func (f *Form[T]) Store() *Store[T] { return f.store }

// OpenForCreate resets the draft to the zero value of T.
func (f *Form[T]) OpenForCreate() {
	var zero T
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = New(zero)
	f.open = true
	f.gen++
}

// OpenForEdit copies `rec` into the draft. Edits never reach `rec` itself.
func (f *Form[T]) OpenForEdit(rec T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = Existing(rec.GetID(), rec.Clone())
	f.open = true
	f.gen++
}

func (f *Form[T]) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Draft returns a copy of the current draft.
func (f *Form[T]) Draft() Draft[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.clone()
}

// Edit mutates the draft fields in place.
func (f *Form[T]) Edit(fn func(*T)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrFormClosed
	}
	fn(&f.draft.Fields)
	return nil
}

// Close discards the draft.
func (f *Form[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.close()
}

func (f *Form[T]) close() {
	var zero Draft[T]
	f.draft = zero
	f.open = false
	f.gen++
}

// Submit creates (New draft) or replaces (Existing draft) the record on the backend.
// On success the list is reloaded and the form closed, unless it was reopened during the round trip.
// On failure the form stays open with its draft and the error is returned; nothing is retried.
func (f *Form[T]) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrFormClosed
	}
	if f.beforeSubmit != nil {
		f.beforeSubmit(&f.draft.Fields)
	}
	draft := f.draft.clone()
	gen := f.gen
	f.mu.Unlock()

	s := f.store
	id, existing := draft.ID()
	unlock := s.locks.lock(id)
	var err error
	if existing {
		err = s.opts.API.Put(ctx, s.ItemPath(id), draft.Fields, nil)
	} else {
		err = s.opts.API.Post(ctx, s.opts.Path, draft.Fields, nil)
	}
	unlock()
	if err != nil {
		op := "creating " + s.opts.Name
		if existing {
			op = fmt.Sprintf("updating %s %d", s.opts.Name, id)
		}
		return s.fail(err, op, s.opts.Messages.SaveFailed, s.opts.Messages.SaveError)
	}

	s.opts.Presenter.Notify(core.NoticeSuccess, s.opts.Messages.Saved)
	f.mu.Lock()
	if f.gen == gen { // not reopened meanwhile
		f.close()
	}
	f.mu.Unlock()
	_ = s.Reload(ctx) // reported by Reload
	return nil
}

// Remove asks for confirmation then deletes the record `id`. It returns false when the user declined.
func (f *Form[T]) Remove(ctx context.Context, id int64) (bool, error) {
	return f.store.Delete(ctx, id)
}
