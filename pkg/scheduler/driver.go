package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	velaerrors "github.com/vango-dev/vela/internal/errors"
)

// Driver runs scheduler ticks. Post must be safe to call from any goroutine
// and from inside a running callback; callbacks must run one at a time, in
// the order they were posted.
type Driver interface {
	Post(fn func())
}

// ManualDriver holds posted callbacks until the caller runs them. It is the
// driver used by tests, where each RunOne is exactly one scheduler tick.
type ManualDriver struct {
	mu      sync.Mutex
	pending []func()
}

// NewManualDriver creates an empty ManualDriver.
func NewManualDriver() *ManualDriver {
	return &ManualDriver{}
}

// Post implements Driver.
func (d *ManualDriver) Post(fn func()) {
	d.mu.Lock()
	d.pending = append(d.pending, fn)
	d.mu.Unlock()
}

// Pending returns the number of callbacks waiting to run.
func (d *ManualDriver) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// RunOne runs the oldest pending callback. It reports false if there was
// none.
func (d *ManualDriver) RunOne() bool {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return false
	}
	fn := d.pending[0]
	d.pending[0] = nil
	d.pending = d.pending[1:]
	d.mu.Unlock()

	fn()
	return true
}

// Drain runs callbacks until none are pending, including ones posted while
// draining. It returns how many ran.
func (d *ManualDriver) Drain() int {
	n := 0
	for d.RunOne() {
		n++
	}
	return n
}

// Loop runs posted callbacks on a single goroutine. The ingress queue is
// unbounded so Post never blocks and never drops a tick.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}

	running atomic.Bool
	logger  *slog.Logger
}

// NewLoop creates a Loop. Callbacks posted before Run are kept.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// Post implements Driver.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes callbacks until ctx is done. It returns ctx.Err() on
// cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return velaerrors.New("E002")
	}
	defer l.running.Store(false)

	l.logger.Debug("scheduler loop started")
	defer l.logger.Debug("scheduler loop stopped")

	var batch []func()
	for {
		l.mu.Lock()
		batch, l.pending = l.pending, batch[:0]
		l.mu.Unlock()

		for i, fn := range batch {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn()
			batch[i] = nil
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
