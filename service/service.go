/*
Package service runs the scheduling use cases against a schedule.TxStore.

PURPOSE:
  The engine is pure: it validates a candidate against data the caller
  supplies. This package is that caller. Every write follows the same shape:

    lock(user) ─▶ WithTx ─▶ fetch existing ─▶ engine.Validate ─▶ save ─▶ commit

CONSISTENCY:
  Two layers keep concurrent submissions for one user from both passing
  validation against the same snapshot:
    1. A per-user mutex serializes use cases inside this process.
    2. The fetch, the validation and the write share one transaction.
  The SQLite unique indexes catch whatever slips past both (ErrConflict).

SEE ALSO:
  - engine/engine.go: the rules
  - schedule/store.go: the storage contract
  - api/handlers.go: HTTP entry points
*/
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/engine"
	"github.com/warp/workforce-engine/schedule"
)

// ErrInvalidInput marks a request the engine never saw because it was
// malformed (missing user, unknown type tag).
var ErrInvalidInput = errors.New("invalid input")

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

type Service struct {
	store  schedule.TxStore
	engine *engine.Engine
	clock  schedule.Clock
	log    logrus.FieldLogger
	locks  *userLocks
}

type Option func(*Service)

func WithClock(c schedule.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

func New(store schedule.TxStore, eng *engine.Engine, opts ...Option) *Service {
	s := &Service{
		store:  store,
		engine: eng,
		clock:  schedule.SystemClock{},
		log:    logrus.StandardLogger(),
		locks:  newUserLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// forUser runs fn in a transaction while holding userID's lock.
func (s *Service) forUser(ctx context.Context, userID string, fn func(schedule.Store) error) error {
	unlock := s.locks.lock(userID)
	defer unlock()
	return s.store.WithTx(ctx, fn)
}

// =============================================================================
// PER-USER LOCKS
// =============================================================================

type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// lock blocks until userID is free and returns the matching unlock.
// Entries are dropped once nobody holds or waits on them.
func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
