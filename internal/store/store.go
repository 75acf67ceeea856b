// Package store defines the backend-agnostic contract for the per-user task collection.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"neolist/internal/todo"
)

var (
	// ErrUnavailable means the backing store was never configured.
	ErrUnavailable = errors.New("task store is not configured")

	// ErrNotFound means the target task does not exist under the user.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated means an operation was attempted without a user ID.
	ErrUnauthenticated = errors.New("not signed in")
)

// Snapshot is one push from a live subscription: either the full, sorted
// collection or the error that prevented producing it.
type Snapshot struct {
	Tasks []todo.Task
	Err   error
}

// Unsubscribe closes a subscription. It is safe to call more than once and
// no callback runs after it returns.
type Unsubscribe func()

// Store defines the interface for remote task storage.
// Every operation is scoped by a non-empty userID.
// Commands and the controller never import a backend SDK directly.
type Store interface {
	// Subscribe opens a live subscription to the user's tasks ordered by
	// updatedAt descending. onSnapshot receives the full collection on every change.
	Subscribe(ctx context.Context, userID string, onSnapshot func(Snapshot)) (Unsubscribe, error)

	// Create stores a new task with the given title, empty notes and checklist.
	// Both timestamps are set to the current time.
	Create(ctx context.Context, userID, title string) (todo.Task, error)

	// Remove permanently deletes a task. Removing a missing task returns ErrNotFound.
	Remove(ctx context.Context, userID, taskID string) error

	// Patch applies a partial update and always stamps updatedAt.
	Patch(ctx context.Context, userID, taskID string, fields todo.Fields) (todo.Task, error)
}

// CheckUser returns ErrUnauthenticated for an empty user ID.
func CheckUser(userID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// Clock is the single time source of an adapter. Now returns epoch
// milliseconds and never returns the same value twice, so an update issued
// in the same millisecond as a create still sorts after it.
type Clock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClock returns a Clock over now. A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Now returns the next timestamp in epoch milliseconds.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return ms
}
