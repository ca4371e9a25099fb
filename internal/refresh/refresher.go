// Package refresh coalesces change events into summary recomputations.
// Bursts of writes for one user collapse into a single refresh per
// debounce window, and at most one refresh per user runs at a time.
package refresh

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"budgetd/internal/log"
)

// Func recomputes whatever derived state exists for a user.
type Func func(ctx context.Context, userID string) error

// Refresher debounces per-user change notifications and invokes the
// refresh function once per quiet window. A notification that arrives
// while a refresh is running schedules exactly one follow-up run.
type Refresher struct {
	fn       Func
	debounce time.Duration
	logger   *log.Logger

	group singleflight.Group

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a refresher. Start must be called before Notify.
func New(fn Func, debounce time.Duration, logger *log.Logger) *Refresher {
	return &Refresher{
		fn:       fn,
		debounce: debounce,
		logger:   logger.WithComponent(log.ComponentRefresh),
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]bool),
	}
}

// Start binds the refresher to a lifecycle context.
func (r *Refresher) Start(ctx context.Context) {
	r.ctx, r.cancel = context.WithCancel(ctx)
}

// Notify records that a user's data changed. The refresh fires after
// the debounce window elapses with no further notifications.
func (r *Refresher) Notify(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx == nil || r.ctx.Err() != nil {
		return
	}

	if timer, ok := r.timers[userID]; ok {
		timer.Reset(r.debounce)
		return
	}

	r.timers[userID] = time.AfterFunc(r.debounce, func() {
		r.fire(userID)
	})
}

func (r *Refresher) fire(userID string) {
	r.mu.Lock()
	delete(r.timers, userID)
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(userID)
	}()
}

func (r *Refresher) run(userID string) {
	_, err, shared := r.group.Do(userID, func() (any, error) {
		return nil, r.fn(r.ctx, userID)
	})

	if shared {
		// Another notification landed while a refresh was in flight.
		// Queue one follow-up so the final state is recomputed.
		r.mu.Lock()
		queued := r.pending[userID]
		r.pending[userID] = true
		r.mu.Unlock()
		if queued {
			return
		}
		defer func() {
			r.mu.Lock()
			delete(r.pending, userID)
			r.mu.Unlock()
		}()
		_, err, _ = r.group.Do(userID+"#followup", func() (any, error) {
			return nil, r.fn(r.ctx, userID)
		})
	}

	if err != nil && r.ctx.Err() == nil {
		r.logger.Error("refresh failed", log.FieldUserID, userID, log.FieldError, err)
		return
	}
	if err == nil {
		r.logger.Debug("refreshed", log.FieldUserID, userID)
	}
}

// Stop cancels pending timers and waits for in-flight refreshes.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	for user, timer := range r.timers {
		timer.Stop()
		delete(r.timers, user)
	}
	r.mu.Unlock()

	r.wg.Wait()
}
