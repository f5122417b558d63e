package crud

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/akademik/core"
)

// Messages are the texts shown to the user for one entity.
type Messages struct {
	LoadFailed    string
	Saved         string
	SaveFailed    string // non-2xx response
	SaveError     string // no response
	ConfirmDelete string
	Deleted       string
	DeleteFailed  string
	DeleteError   string
}

type Options struct {
	Name      string // singular, used in logs: "student"
	Path      string // collection path: "/students"
	API       core.APIClient
	Presenter core.Presenter
	Logger    core.Logger
	Messages  Messages
}

// Store holds the last fetched collection of one entity.
type Store[T Entity[T]] struct {
	opts  Options
	locks *keyLocks
	group singleflight.Group

	mu      sync.RWMutex
	items   []T
	seq     uint64 // last fetch started
	applied uint64 // fetch the items come from
}

func NewStore[T Entity[T]](opts Options) (*Store[T], error) {
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(opts.Name, "Name"),
		vala.StringNotEmpty(opts.Path, "Path"),
		vala.IsNotNil(opts.API, "API"),
		vala.IsNotNil(opts.Presenter, "Presenter"),
		vala.IsNotNil(opts.Logger, "Logger"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "crud.NewStore")
	}
	return &Store[T]{opts: opts, locks: newKeyLocks()}, nil
}

func (s *Store[T]) Name() string       { return s.opts.Name }
func (s *Store[T]) Path() string       { return s.opts.Path }
func (s *Store[T]) Messages() Messages { return s.opts.Messages }

// ItemPath returns the path of the record `id`: "/students/1".
func (s *Store[T]) ItemPath(id int64) string {
	return s.opts.Path + "/" + strconv.FormatInt(id, 10)
}

// Load fetches the whole collection and replaces the stored list with it.
// On failure the list is left untouched; the error is shown, logged and returned.
// Concurrent calls share a single request.
func (s *Store[T]) Load(ctx context.Context) error {
	ch := s.group.DoChan(s.opts.Path, func() (interface{}, error) {
		return nil, s.fetch(ctx)
	})

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		err = res.Err
		if err != nil && errors.Is(err, context.Canceled) && ctx.Err() == nil {
			// the caller that started the shared request went away
			err = s.fetch(ctx)
		}
	}
	return s.report(err)
}

// Reload fetches the collection without joining a load already in flight,
// so the stored list reflects every write completed before the call.
func (s *Store[T]) Reload(ctx context.Context) error {
	s.group.Forget(s.opts.Path)
	return s.report(s.fetch(ctx))
}

// fetch stores the fetched list unless a fetch started later has already been stored.
func (s *Store[T]) fetch(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	var items []T
	if err := s.opts.API.Get(ctx, s.opts.Path, &items); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.applied {
		s.items = items
		s.applied = seq
	}
	return nil
}

func (s *Store[T]) report(err error) error {
	if err == nil {
		return nil
	}
	err = errors.Wrapf(err, "loading %s list", s.opts.Name)
	s.opts.Logger.Error(err.Error(), err)
	s.opts.Presenter.Notify(core.NoticeError, s.opts.Messages.LoadFailed)
	return err
}

// List returns a copy of the stored list.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]T, len(s.items))
	for i, item := range s.items {
		items[i] = item.Clone()
	}
	return items
}

// Find returns a copy of the stored record `id`.
func (s *Store[T]) Find(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.GetID() == id {
			return item.Clone(), true
		}
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Delete asks for confirmation then deletes the record `id` and reloads the list.
// It returns false when the user declined.
func (s *Store[T]) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.opts.Presenter.Confirm(ctx, s.opts.Messages.ConfirmDelete)
	if err != nil {
		return false, errors.Wrapf(err, "confirming %s delete", s.opts.Name)
	}
	if !ok {
		return false, nil
	}

	unlock := s.locks.lock(id)
	err = s.opts.API.Delete(ctx, s.ItemPath(id))
	unlock()
	if err != nil {
		return true, s.fail(err, fmt.Sprintf("deleting %s %d", s.opts.Name, id), s.opts.Messages.DeleteFailed, s.opts.Messages.DeleteError)
	}

	s.opts.Presenter.Notify(core.NoticeSuccess, s.opts.Messages.Deleted)
	_ = s.Reload(ctx) // reported by Reload
	return true, nil
}

// fail reports a failed mutation: `failedMsg` when the backend answered, `errorMsg` when it did not.
func (s *Store[T]) fail(err error, op, failedMsg, errorMsg string) error {
	err = errors.Wrap(err, op)
	s.opts.Logger.Error(err.Error(), err)
	if core.IsTransport(err) {
		s.opts.Presenter.Notify(core.NoticeError, errorMsg)
	} else {
		s.opts.Presenter.Notify(core.NoticeError, failedMsg)
	}
	return err
}
