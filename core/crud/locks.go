package crud

import "sync"

// keyLocks serializes work per record id.
type keyLocks struct {
	mu    sync.Mutex
	locks map[int64]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[int64]*keyLock)}
}

// lock blocks until `key` is free and returns its unlock func.
func (kl *keyLocks) lock(key int64) func() {
	kl.mu.Lock()
	l, ok := kl.locks[key]
	if !ok {
		l = &keyLock{}
		kl.locks[key] = l
	}
	l.refs++
	kl.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		kl.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(kl.locks, key)
		}
		kl.mu.Unlock()
	}
}
