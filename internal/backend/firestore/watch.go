package firestore

import (
	"context"
	"sync"
	"time"

	"neolist/internal/store"
)

// watcher polls one user's collection and pushes a snapshot whenever the
// listed document versions change. Callbacks run on the watcher goroutine
// only, so they arrive in order.
type watcher struct {
	c        *Client
	userID   string
	fn       func(store.Snapshot)
	interval time.Duration

	nudge  chan struct{}
	cancel context.CancelFunc
	done   chan struct{}

	last   string
	failed bool
}

// Subscribe implements store.Store. The REST API has no push channel, so
// the collection is re-listed every poll interval and right after each
// write made through this client. The first list runs synchronously and its
// failure is returned.
func (c *Client) Subscribe(ctx context.Context, userID string, onSnapshot func(store.Snapshot)) (store.Unsubscribe, error) {
	if err := c.check(userID); err != nil {
		return nil, err
	}
	tasks, fp, err := c.list(ctx, userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{
		c:        c,
		userID:   userID,
		fn:       onSnapshot,
		interval: c.interval,
		nudge:    make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
		last:     fp,
	}

	c.mu.Lock()
	c.watchers[w] = struct{}{}
	c.mu.Unlock()

	go w.run(ctx, store.Snapshot{Tasks: tasks})
	c.logger.Debug("watching", "user", userID, "interval", w.interval)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.watchers, w)
			c.mu.Unlock()
			cancel()
			<-w.done
			c.logger.Debug("stopped watching", "user", userID)
		})
	}, nil
}

// nudge asks every watcher of userID to re-list now.
func (c *Client) nudge(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for w := range c.watchers {
		if w.userID != userID {
			continue
		}
		select {
		case w.nudge <- struct{}{}:
		default:
		}
	}
}

func (w *watcher) run(ctx context.Context, first store.Snapshot) {
	defer close(w.done)
	w.fn(first)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-w.nudge:
		}
		w.poll(ctx)
	}
}

func (w *watcher) poll(ctx context.Context) {
	tasks, fp, err := w.c.list(ctx, w.userID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		w.c.logger.Warn("list failed", "user", w.userID, "err", err)
		if !w.failed {
			w.failed = true
			w.fn(store.Snapshot{Err: err})
		}
		return
	}
	if !w.failed && fp == w.last {
		return
	}
	w.failed = false
	w.last = fp
	w.fn(store.Snapshot{Tasks: tasks})
}
