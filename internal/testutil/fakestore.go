// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"neolist/internal/store"
	"neolist/internal/todo"
)

// FakeStore is an in-memory implementation of store.Store for testing.
// Subscriptions are real: every change pushes the full sorted collection
// to each subscriber of that user, in order, from a per-subscription goroutine.
type FakeStore struct {
	mu      sync.Mutex
	clock   *store.Clock
	users   map[string]map[string]todo.Task // userID -> taskID -> task
	subs    map[int]*fakeSub
	nextSub int
	nextID  int
	maxSubs int
	calls   []string

	// Unconfigured makes every operation fail with store.ErrUnavailable.
	Unconfigured bool

	// Error injection for testing
	SubscribeErr error
	CreateErr    error
	RemoveErr    error
	PatchErr     error
}

// NewFakeStore creates an empty FakeStore using the wall clock.
func NewFakeStore() *FakeStore {
	return NewFakeStoreWithClock(store.NewClock(nil))
}

// NewFakeStoreWithClock creates an empty FakeStore stamping times from clock.
func NewFakeStoreWithClock(clock *store.Clock) *FakeStore {
	return &FakeStore{
		clock: clock,
		users: make(map[string]map[string]todo.Task),
		subs:  make(map[int]*fakeSub),
	}
}

// Put stores a task as-is, bypassing timestamps, and notifies subscribers.
func (f *FakeStore) Put(userID string, task todo.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasksLocked(userID)[task.ID] = task.Clone()
	f.publishLocked(userID)
}

// Task returns a stored task.
func (f *FakeStore) Task(userID, taskID string) (todo.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.users[userID][taskID]
	return t.Clone(), ok
}

// Tasks returns the user's collection in store order.
func (f *FakeStore) Tasks(userID string) []todo.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedLocked(userID)
}

// Calls returns the recorded operations, e.g. "patch u1 t1 checklist".
func (f *FakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// ActiveSubscriptions returns the number of open subscriptions.
func (f *FakeStore) ActiveSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// MaxConcurrentSubscriptions returns the most subscriptions ever open at once.
func (f *FakeStore) MaxConcurrentSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxSubs
}

func (f *FakeStore) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *FakeStore) check(userID string) error {
	if f.Unconfigured {
		return store.ErrUnavailable
	}
	return store.CheckUser(userID)
}

// Subscribe implements store.Store.
func (f *FakeStore) Subscribe(ctx context.Context, userID string, onSnapshot func(store.Snapshot)) (store.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(userID); err != nil {
		return nil, err
	}
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	f.record("subscribe %s", userID)

	id := f.nextSub
	f.nextSub++
	sub := &fakeSub{
		userID: userID,
		fn:     onSnapshot,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	f.subs[id] = sub
	if len(f.subs) > f.maxSubs {
		f.maxSubs = len(f.subs)
	}
	go sub.run()
	sub.push(store.Snapshot{Tasks: f.sortedLocked(userID)})

	return func() {
		sub.close()
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}, nil
}

// Create implements store.Store.
func (f *FakeStore) Create(ctx context.Context, userID, title string) (todo.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(userID); err != nil {
		return todo.Task{}, err
	}
	if f.CreateErr != nil {
		return todo.Task{}, f.CreateErr
	}
	f.record("create %s %s", userID, title)

	f.nextID++
	now := f.clock.Now()
	task := todo.Task{
		ID:        fmt.Sprintf("task-%d", f.nextID),
		Title:     title,
		Checklist: []todo.ChecklistItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.tasksLocked(userID)[task.ID] = task
	f.publishLocked(userID)
	return task.Clone(), nil
}

// Remove implements store.Store.
func (f *FakeStore) Remove(ctx context.Context, userID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(userID); err != nil {
		return err
	}
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.record("remove %s %s", userID, taskID)

	tasks := f.tasksLocked(userID)
	if _, ok := tasks[taskID]; !ok {
		return store.ErrNotFound
	}
	delete(tasks, taskID)
	f.publishLocked(userID)
	return nil
}

// Patch implements store.Store.
func (f *FakeStore) Patch(ctx context.Context, userID, taskID string, fields todo.Fields) (todo.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(userID); err != nil {
		return todo.Task{}, err
	}
	if f.PatchErr != nil {
		return todo.Task{}, f.PatchErr
	}
	f.record("patch %s %s %s", userID, taskID, strings.Join(fields.Paths(), ","))

	tasks := f.tasksLocked(userID)
	task, ok := tasks[taskID]
	if !ok {
		return todo.Task{}, store.ErrNotFound
	}
	task = fields.Apply(task)
	task.UpdatedAt = f.clock.Now()
	tasks[taskID] = task
	f.publishLocked(userID)
	return task.Clone(), nil
}

func (f *FakeStore) tasksLocked(userID string) map[string]todo.Task {
	tasks, ok := f.users[userID]
	if !ok {
		tasks = make(map[string]todo.Task)
		f.users[userID] = tasks
	}
	return tasks
}

// sortedLocked returns the user's tasks by updatedAt descending.
func (f *FakeStore) sortedLocked(userID string) []todo.Task {
	out := make([]todo.Task, 0, len(f.users[userID]))
	for _, t := range f.users[userID] {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *FakeStore) publishLocked(userID string) {
	for _, sub := range f.subs {
		if sub.userID == userID {
			sub.push(store.Snapshot{Tasks: f.sortedLocked(userID)})
		}
	}
}

// fakeSub delivers queued snapshots in order on its own goroutine.
type fakeSub struct {
	userID string
	fn     func(store.Snapshot)

	mu      sync.Mutex
	pending []store.Snapshot

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func (s *fakeSub) push(snap store.Snapshot) {
	s.mu.Lock()
	s.pending = append(s.pending, snap)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *fakeSub) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if len(s.pending) == 0 {
				s.mu.Unlock()
				break
			}
			snap := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()

			select {
			case <-s.stop:
				return
			default:
			}
			s.fn(snap)
		}
	}
}

// close stops delivery and waits for an in-flight callback to return.
func (s *fakeSub) close() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
