// Package session keeps unfinished wizard runs between requests.
package session

import (
	"context"
	"errors"
	"sync"
)

const DefaultNamespace = "tripwizard:session"

var (
	ErrNoKey    = errors.New("session key not found in context")
	ErrNotFound = errors.New("session not found")
)

type sessionKeyContext struct{}

// WithSessionKey routes Store calls made with ctx to the given session.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

func SessionKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(sessionKeyContext{}).(string)
	return key, ok && key != ""
}

type Store[S any] struct {
	core      Cache[S]
	namespace string
	keyFn     func(ctx context.Context) (string, bool)
}

func NewStore[S any](core Cache[S], namespace string) Store[S] {
	return Store[S]{
		core:      core,
		namespace: namespace,
		keyFn:     SessionKeyFromContext,
	}
}

func (c Store[S]) key(ctx context.Context) (string, error) {
	key, exist := c.keyFn(ctx)
	if !exist {
		return "", ErrNoKey
	}
	return c.namespace + ":" + key, nil
}

func (c Store[S]) Set(ctx context.Context, val S) error {
	key, err := c.key(ctx)
	if err != nil {
		return err
	}
	return c.core.Set(ctx, key, val)
}

// Load returns ErrNotFound when nothing is stored for the session.
func (c Store[S]) Load(ctx context.Context) (S, error) {
	var zero S
	key, err := c.key(ctx)
	if err != nil {
		return zero, err
	}
	val, ok, err := c.core.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrNotFound
	}
	return val, nil
}

func (c Store[S]) Del(ctx context.Context) error {
	key, err := c.key(ctx)
	if err != nil {
		return err
	}
	return c.core.Del(ctx, key)
}

func (c Store[S]) Exists(ctx context.Context) (bool, error) {
	key, err := c.key(ctx)
	if err != nil {
		return false, err
	}
	return c.core.Exists(ctx, key)
}

// Locks hands out one mutex per session id so requests on the same wizard
// are applied one at a time.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocks() *Locks {
	return &Locks{locks: map[string]*lockEntry{}}
}

// Lock blocks until the session is free and returns its unlock func.
func (l *Locks) Lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &lockEntry{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// TryLock is Lock without waiting. ok is false while another request holds
// the session.
func (l *Locks) TryLock(id string) (unlock func(), ok bool) {
	l.mu.Lock()
	entry, exists := l.locks[id]
	if !exists {
		entry = &lockEntry{}
		l.locks[id] = entry
	}
	if !entry.mu.TryLock() {
		if !exists {
			delete(l.locks, id)
		}
		l.mu.Unlock()
		return nil, false
	}
	entry.refs++
	l.mu.Unlock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}, true
}

func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
