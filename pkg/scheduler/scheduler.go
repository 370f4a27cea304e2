package scheduler

import (
	"log/slog"
	"sync"
	"sync/atomic"

	velaerrors "github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/internal/metrics"
	"github.com/vango-dev/vela/pkg/task"
)

// DefaultMaxSteps is the shared step budget of one tick.
const DefaultMaxSteps = 10000

// Config configures a Scheduler.
type Config struct {
	// MaxSteps is the number of interpreter steps all processes share in
	// one tick. Default: DefaultMaxSteps.
	MaxSteps int

	// Driver runs ticks. Default: a new ManualDriver.
	Driver Driver

	// Logger receives process lifecycle events at debug level.
	// Default: slog.Default()
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Scheduler runs processes cooperatively on one logical thread. Ready
// processes wait in a FIFO queue; each tick steps them in order until the
// queue is empty or the tick's step budget is spent, in which case the
// process being stepped goes to the back of the queue and another tick is
// posted to the driver.
type Scheduler struct {
	maxSteps int
	driver   Driver
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	queue   []*Process
	working bool // a tick is posted or running
	nextID  ID

	steps atomic.Int64
	ticks atomic.Int64
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.Driver == nil {
		cfg.Driver = NewManualDriver()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scheduler{
		maxSteps: cfg.MaxSteps,
		driver:   cfg.Driver,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// Driver returns the driver running this scheduler's ticks.
func (s *Scheduler) Driver() Driver { return s.driver }

// MaxSteps returns the per-tick step budget.
func (s *Scheduler) MaxSteps() int { return s.maxSteps }

// Steps returns the total number of interpreter steps taken.
func (s *Scheduler) Steps() int64 { return s.steps.Load() }

// Ticks returns the number of completed ticks.
func (s *Scheduler) Ticks() int64 { return s.ticks.Load() }

// Spawn creates a process running t and queues it.
func (s *Scheduler) Spawn(t *task.Task) *Process {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	p := &Process{id: id, sched: s, root: t, state: StateRunning}
	s.metrics.ProcessSpawned()
	s.logger.Debug("process spawned", "pid", id)

	s.enqueue(p)
	return p
}

// Send appends msg to the mailbox of p and wakes it if it is waiting on
// Receive. Messages to a finished or killed process are dropped.
func (s *Scheduler) Send(p *Process, msg any) {
	p.mu.Lock()
	if p.state == StateDone || p.state == StateKilled {
		p.mu.Unlock()
		s.logger.Debug("message to dead process dropped", "pid", p.id)
		return
	}
	p.mailbox = append(p.mailbox, msg)
	wake := p.state == StateAwaitingMailbox
	if wake {
		p.state = StateRunning
	}
	p.mu.Unlock()

	s.metrics.MessageSent()
	if wake {
		s.enqueue(p)
	}
}

// Kill stops p. A pending binding is cancelled exactly once; a step already
// in progress is not interrupted, but the process is never stepped again.
func (s *Scheduler) Kill(p *Process) {
	p.mu.Lock()
	if p.state == StateDone || p.state == StateKilled {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.cancel = nil
	p.killedAt = p.gen
	p.gen++
	p.state = StateKilled
	p.mailbox = nil
	p.killed.Store(true)
	p.mu.Unlock()

	s.metrics.ProcessKilled()
	s.logger.Debug("process killed", "pid", p.id)
	if cancel != nil {
		cancel()
	}
}

// SpawnTask returns a task that spawns t and succeeds with its *Process.
func (s *Scheduler) SpawnTask(t *task.Task) *task.Task {
	return task.Binding(func(resume func(*task.Task)) func() {
		resume(task.Succeed(s.Spawn(t)))
		return nil
	})
}

// SendTask returns a task that sends msg to p and succeeds with nil.
func (s *Scheduler) SendTask(p *Process, msg any) *task.Task {
	return task.Binding(func(resume func(*task.Task)) func() {
		s.Send(p, msg)
		resume(task.Succeed(nil))
		return nil
	})
}

// KillTask returns a task that kills p and succeeds with nil.
func (s *Scheduler) KillTask(p *Process) *task.Task {
	return task.Binding(func(resume func(*task.Task)) func() {
		s.Kill(p)
		resume(task.Succeed(nil))
		return nil
	})
}

func (s *Scheduler) enqueue(p *Process) {
	s.mu.Lock()
	s.queue = append(s.queue, p)
	post := !s.working
	s.working = true
	s.mu.Unlock()

	if post {
		s.driver.Post(s.tick)
	}
}

func (s *Scheduler) dequeue() *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		s.working = false
		return nil
	}
	p := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return p
}

// tick steps queued processes until the queue is empty or the budget runs
// out.
func (s *Scheduler) tick() {
	budget := s.maxSteps
	used := 0
	exhausted := false

	for {
		if used >= budget {
			s.mu.Lock()
			more := len(s.queue) > 0
			if !more {
				s.working = false
			}
			s.mu.Unlock()
			if more {
				exhausted = true
				s.driver.Post(s.tick)
			}
			break
		}

		p := s.dequeue()
		if p == nil {
			break
		}

		n, runnable := s.step(p, budget-used)
		used += n
		if runnable {
			// Budget spent mid-run: back of the queue, next tick.
			exhausted = true
			s.mu.Lock()
			s.queue = append(s.queue, p)
			s.mu.Unlock()
			s.driver.Post(s.tick)
			break
		}
	}

	s.steps.Add(int64(used))
	s.ticks.Add(1)

	s.mu.Lock()
	queued := len(s.queue)
	s.mu.Unlock()
	s.metrics.TickCompleted(used, queued, exhausted)
	if exhausted {
		s.logger.Debug("step budget exhausted", "steps", used, "queued", queued)
	}
}

// step runs p until it suspends, finishes or has used budget steps. It
// returns the steps used and whether p is still runnable.
func (s *Scheduler) step(p *Process, budget int) (int, bool) {
	used := 0
	for {
		if p.killed.Load() {
			p.release()
			return used, false
		}
		if used >= budget {
			return used, true
		}
		used++

		root := p.root
		if root == nil {
			panic(velaerrors.New("E141").WithDetailf("process %d", p.id))
		}

		switch root.Kind {
		case task.KindSucceed, task.KindFail:
			next, ok := p.unwind(root)
			if !ok {
				if root.Kind == task.KindFail {
					s.logger.Debug("process failed without handler", "pid", p.id, "error", root.Err)
				}
				p.root = nil
				p.finish()
				return used, false
			}
			p.root = next

		case task.KindAndThen:
			p.stack = append(p.stack, frame{then: root.Then})
			p.root = root.Inner

		case task.KindOnError:
			p.stack = append(p.stack, frame{catch: root.Catch})
			p.root = root.Inner

		case task.KindBinding:
			s.suspend(p, root)
			return used, false

		case task.KindReceive:
			msg, ok := p.receive()
			if !ok {
				return used, false
			}
			p.root = root.Handler(msg)

		default:
			panic(velaerrors.New("E140").WithDetailf("process %d: task kind %d", p.id, root.Kind))
		}
	}
}

// suspend parks p on a binding and runs its callback. The callback may
// resume synchronously, in which case p is already queued again when it
// returns.
func (s *Scheduler) suspend(p *Process, b *task.Task) {
	p.mu.Lock()
	if p.state == StateKilled {
		p.mu.Unlock()
		return
	}
	p.gen++
	gen := p.gen
	p.state = StateAwaitingNative
	p.mu.Unlock()

	cancel := b.Callback(func(next *task.Task) {
		s.resume(p, gen, next)
	})
	if cancel == nil {
		return
	}

	p.mu.Lock()
	switch {
	case p.state == StateAwaitingNative && p.gen == gen:
		p.cancel = cancel
		cancel = nil
	case p.state == StateKilled && p.killedAt == gen:
		// Killed while the callback was running; cancel below.
	default:
		// Already resumed.
		cancel = nil
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// resume continues p with next if gen still names its current suspension.
// Stray or repeated calls are no-ops.
func (s *Scheduler) resume(p *Process, gen uint64, next *task.Task) {
	p.mu.Lock()
	if p.gen != gen || p.state != StateAwaitingNative {
		p.mu.Unlock()
		s.logger.Debug("stale resume ignored", "pid", p.id)
		return
	}
	p.state = StateRunning
	p.cancel = nil
	p.root = next
	p.mu.Unlock()

	s.enqueue(p)
}
