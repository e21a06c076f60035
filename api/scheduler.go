/*
scheduler.go - Automated completion sweeper

PURPOSE:
  Periodically moves APPROVED_FINAL requests whose period has passed to
  COMPLETED, so history reflects reality without anyone clicking a button.
  The domain layer owns no timer; this is the external tick it expects.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each tick calls Workflow.ElapseDue with today's date
  - Concurrent transitions are skipped and retried on the next tick

USAGE:
  sweeper := NewCompletionSweeper(handler)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - handlers.go: RunElapse endpoint (manual sweep)
  - leave/workflow.go: ElapseDue
*/
package api

import (
	"context"
	"sync"
	"time"
)

// CompletionSweeper drives the elapse transition on a timer.
type CompletionSweeper struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCompletionSweeper creates a sweeper with a one hour interval.
func NewCompletionSweeper(h *Handler) *CompletionSweeper {
	return &CompletionSweeper{
		Handler:       h,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the sweeper.
func (cs *CompletionSweeper) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		cs.Handler.Log.Info("sweeper disabled, not starting")
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.wg.Add(1)

	go cs.run()

	cs.Handler.Log.WithField("interval", cs.CheckInterval).Info("sweeper started")
}

// Stop stops the sweeper and waits for an in-flight sweep to finish.
func (cs *CompletionSweeper) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		cs.Handler.Log.Info("sweeper stopped")
	}
}

func (cs *CompletionSweeper) run() {
	defer cs.wg.Done()

	// Run immediately on start
	cs.sweep()

	for {
		select {
		case <-cs.ticker.C:
			cs.sweep()
		case <-cs.stop:
			return
		}
	}
}

func (cs *CompletionSweeper) sweep() {
	ctx := context.Background()
	completed, err := cs.Handler.Workflow.ElapseDue(ctx, cs.Handler.today())
	if err != nil {
		cs.Handler.Log.WithError(err).Error("completion sweep failed")
		return
	}
	if len(completed) > 0 {
		cs.Handler.Metrics.SweepsCompleted.Add(float64(len(completed)))
		cs.Handler.Log.WithField("completed", len(completed)).Info("completion sweep done")
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (cs *CompletionSweeper) RunNow() {
	cs.sweep()
}
