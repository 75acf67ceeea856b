// Package syncer keeps the current user's task collection in step with the
// remote store and turns user intents into store calls.
//
// The controller never applies a mutation to its own snapshot. Every intent
// is exactly one store call, and the published collection only changes when
// the store's subscription pushes the authoritative state back.
package syncer

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"neolist/internal/auth"
	"neolist/internal/logging"
	"neolist/internal/store"
	"neolist/internal/suggest"
	"neolist/internal/todo"
)

var (
	// ErrUnauthenticated is returned for intents issued while signed out.
	// The store is never called in that case.
	ErrUnauthenticated = store.ErrUnauthenticated

	// ErrNoChange is returned when an intent leaves the task as it is,
	// e.g. adding an empty sub-task. No store call is made.
	ErrNoChange = errors.New("nothing to change")

	// ErrEmptyTitle is returned when a task title is blank.
	ErrEmptyTitle = errors.New("title required")
)

// eventBuffer is the depth of the controller's event queue.
const eventBuffer = 64

// Deps are the capabilities a controller works with. Built once at
// process start and passed in explicitly.
type Deps struct {
	Store     store.Store
	Identity  auth.Identity
	Suggester suggest.Suggester
	Logger    *log.Logger
}

// Snapshot is what the controller publishes to the presentation layer.
type Snapshot struct {
	// UserID is the identity the collection belongs to, "" when signed out.
	UserID string

	// Tasks is the collection ordered by updatedAt descending.
	Tasks []todo.Task

	// Ready is set once the store delivered a collection for UserID.
	Ready bool

	// Err is the last subscription failure for UserID, if any.
	Err error

	// Seq increases with every publish.
	Seq uint64
}

// Task returns the task with the given ID.
func (s Snapshot) Task(id string) (todo.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return todo.Task{}, false
}

func (s Snapshot) clone() Snapshot {
	if s.Tasks == nil {
		return s
	}
	tasks := make([]todo.Task, len(s.Tasks))
	for i, t := range s.Tasks {
		tasks[i] = t.Clone()
	}
	s.Tasks = tasks
	return s
}

type eventKind int

const (
	identityEvent eventKind = iota
	snapshotEvent
)

type event struct {
	kind   eventKind
	userID string
	gen    uint64
	snap   store.Snapshot
}

// subscription is the one live store subscription, owned by Run.
type subscription struct {
	gen    uint64
	userID string
	stop   chan struct{}
	cancel store.Unsubscribe
}

// Controller owns the subscription lifecycle and the published snapshot.
// Run is the only writer of both; every other method only reads them or
// enqueues events.
type Controller struct {
	store     store.Store
	identity  auth.Identity
	suggester suggest.Suggester
	logger    *log.Logger

	events chan event
	done   chan struct{}

	mu          sync.RWMutex
	want        string // identity requested by the latest SetUser
	snap        Snapshot
	changed     chan struct{} // closed on every publish
	watchers    map[int]chan Snapshot
	nextWatcher int

	// Owned by the Run goroutine.
	gen uint64
	sub *subscription
}

// New creates a signed-out controller. Call Run to start processing.
func New(deps Deps) *Controller {
	suggester := deps.Suggester
	if suggester == nil {
		suggester = suggest.NewDisabled(deps.Logger)
	}
	return &Controller{
		store:     deps.Store,
		identity:  deps.Identity,
		suggester: suggester,
		logger:    logging.OrDiscard(deps.Logger),
		events:    make(chan event, eventBuffer),
		done:      make(chan struct{}),
		changed:   make(chan struct{}),
		watchers:  make(map[int]chan Snapshot),
	}
}

// Run processes identity changes and store pushes until ctx is done, then
// closes the live subscription.
func (c *Controller) Run(ctx context.Context) {
	defer close(c.done)
	defer c.closeSubscription()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			switch ev.kind {
			case identityEvent:
				c.switchUser(ctx, ev.userID)
			case snapshotEvent:
				c.applySnapshot(ev.gen, ev.snap)
			}
		}
	}
}

// Done is closed when Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// SetUser moves the controller to the given identity; "" signs out.
func (c *Controller) SetUser(userID string) {
	c.mu.Lock()
	c.want = userID
	c.mu.Unlock()
	select {
	case c.events <- event{kind: identityEvent, userID: userID}:
	case <-c.done:
	}
}

// Resume adopts whatever identity the identity capability already holds.
func (c *Controller) Resume() string {
	userID := ""
	if c.identity != nil {
		userID = c.identity.UserID()
	}
	c.SetUser(userID)
	return userID
}

// SignIn runs the identity sign-in and switches to the new user.
func (c *Controller) SignIn(ctx context.Context) (string, error) {
	if c.identity == nil {
		return "", errors.New("no identity provider")
	}
	userID, err := c.identity.SignIn(ctx)
	if err != nil {
		return "", err
	}
	c.SetUser(userID)
	return userID, nil
}

// SignOut forgets the identity and drops the collection.
func (c *Controller) SignOut() {
	if c.identity != nil {
		c.identity.SignOut()
	}
	c.SetUser("")
}

// Identity returns the identity capability the controller was built with.
func (c *Controller) Identity() auth.Identity {
	return c.identity
}

// UserID returns the identity the controller is working for.
func (c *Controller) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.want
}

// switchUser closes the current subscription before opening the next, so
// two subscriptions never overlap.
func (c *Controller) switchUser(ctx context.Context, userID string) {
	if c.sub != nil && c.sub.userID == userID {
		return
	}
	c.closeSubscription()
	c.gen++

	if userID == "" {
		c.logger.Debug("signed out")
		c.publish(Snapshot{})
		return
	}

	c.publish(Snapshot{UserID: userID})

	gen := c.gen
	stop := make(chan struct{})
	cancel, err := c.store.Subscribe(ctx, userID, func(s store.Snapshot) {
		select {
		case c.events <- event{kind: snapshotEvent, gen: gen, snap: s}:
		case <-stop:
		}
	})
	if err != nil {
		close(stop)
		c.logger.Error("subscribe failed", "user", userID, "err", err)
		c.publish(Snapshot{UserID: userID, Err: err})
		return
	}
	c.sub = &subscription{gen: gen, userID: userID, stop: stop, cancel: cancel}
	c.logger.Debug("subscribed", "user", userID, "gen", gen)
}

func (c *Controller) closeSubscription() {
	if c.sub == nil {
		return
	}
	close(c.sub.stop)
	c.sub.cancel()
	c.logger.Debug("unsubscribed", "user", c.sub.userID, "gen", c.sub.gen)
	c.sub = nil
}

// applySnapshot publishes a store push unless it belongs to a subscription
// that is no longer current.
func (c *Controller) applySnapshot(gen uint64, s store.Snapshot) {
	if c.sub == nil || gen != c.sub.gen {
		c.logger.Debug("dropping stale snapshot", "gen", gen, "current", c.gen)
		return
	}
	c.mu.RLock()
	prev := c.snap
	c.mu.RUnlock()

	if s.Err == nil {
		s.Err = todo.ValidateAll(s.Tasks)
	}
	if s.Err != nil {
		c.logger.Error("subscription error", "user", c.sub.userID, "err", s.Err)
		c.publish(Snapshot{UserID: c.sub.userID, Tasks: prev.Tasks, Ready: prev.Ready, Err: s.Err})
		return
	}
	c.publish(Snapshot{UserID: c.sub.userID, Tasks: s.Tasks, Ready: true})
}

func (c *Controller) publish(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s = s.clone()
	s.Seq = c.snap.Seq + 1
	c.snap = s
	close(c.changed)
	c.changed = make(chan struct{})
	for _, ch := range c.watchers {
		offer(ch, s.clone())
	}
}

// offer replaces whatever is buffered in ch with s.
func offer(ch chan Snapshot, s Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// Snapshot returns the latest published snapshot.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.clone()
}

// Watch returns a channel holding the latest snapshot, starting with the
// current one. Slow readers skip intermediate snapshots. Call the returned
// func to stop watching.
func (c *Controller) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	c.mu.Lock()
	id := c.nextWatcher
	c.nextWatcher++
	c.watchers[id] = ch
	ch <- c.snap.clone()
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.watchers, id)
			c.mu.Unlock()
		})
	}
}

// WaitFor blocks until a published snapshot satisfies pred.
func (c *Controller) WaitFor(ctx context.Context, pred func(Snapshot) bool) (Snapshot, error) {
	for {
		c.mu.RLock()
		snap := c.snap.clone()
		changed := c.changed
		c.mu.RUnlock()

		if pred(snap) {
			return snap, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-c.done:
			return snap, errors.New("controller stopped")
		}
	}
}

// WaitReady waits for the first collection of the current identity.
func (c *Controller) WaitReady(ctx context.Context) (Snapshot, error) {
	want := c.UserID()
	if want == "" {
		return Snapshot{}, ErrUnauthenticated
	}
	snap, err := c.WaitFor(ctx, func(s Snapshot) bool {
		return s.UserID == want && (s.Ready || s.Err != nil)
	})
	if err != nil {
		return snap, err
	}
	return snap, snap.Err
}
