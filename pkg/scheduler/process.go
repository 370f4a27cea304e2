package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/vango-dev/vela/pkg/task"
)

// State is the lifecycle state of a process.
type State uint8

const (
	StateRunning         State = iota // Queued or being stepped
	StateAwaitingNative               // Suspended on a Binding callback
	StateAwaitingMailbox              // Suspended on Receive with an empty mailbox
	StateDone                         // Root task finished with an empty stack
	StateKilled                       // Killed before finishing
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateAwaitingNative:
		return "AwaitingNative"
	case StateAwaitingMailbox:
		return "AwaitingMailbox"
	case StateDone:
		return "Done"
	case StateKilled:
		return "Killed"
	default:
		return "Unknown"
	}
}

// ID identifies a process within its scheduler.
type ID uint64

// frame is one entry of the continuation stack. Exactly one of then and
// catch is set.
type frame struct {
	then  func(any) *task.Task
	catch func(error) *task.Task
}

// Process is a scheduler-managed unit of sequential task execution with its
// own mailbox.
//
// root and stack are only touched while the process is being stepped or
// while it is suspended on a binding. Everything else is guarded by mu.
type Process struct {
	id    ID
	sched *Scheduler

	root  *task.Task
	stack []frame

	mu      sync.Mutex
	state   State
	mailbox []any
	cancel  func()

	// gen changes on every binding suspension and on kill, so a resume
	// closure from an earlier suspension is recognisably stale.
	gen      uint64
	killedAt uint64

	killed atomic.Bool
}

// ID returns the process id.
func (p *Process) ID() ID { return p.id }

// State returns the current lifecycle state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pending returns the number of messages waiting in the mailbox.
func (p *Process) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.mailbox)
}

// unwind pops frames until one matches the outcome of t, and returns the
// task that frame produces. It reports false when the stack runs out.
func (p *Process) unwind(t *task.Task) (*task.Task, bool) {
	failed := t.Kind == task.KindFail
	for len(p.stack) > 0 {
		f := p.stack[len(p.stack)-1]
		p.stack[len(p.stack)-1] = frame{}
		p.stack = p.stack[:len(p.stack)-1]

		if failed && f.catch != nil {
			return f.catch(t.Err), true
		}
		if !failed && f.then != nil {
			return f.then(t.Value), true
		}
	}
	return nil, false
}

// receive pops the oldest message. With an empty mailbox it marks the
// process as waiting and reports false.
func (p *Process) receive() (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateKilled {
		return nil, false
	}
	if len(p.mailbox) == 0 {
		p.state = StateAwaitingMailbox
		return nil, false
	}
	msg := p.mailbox[0]
	p.mailbox[0] = nil
	p.mailbox = p.mailbox[1:]
	return msg, true
}

// finish marks a process whose root finished with nothing left to run.
func (p *Process) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRunning {
		p.state = StateDone
	}
	p.mailbox = nil
}

// release drops the task and stack of a killed process.
func (p *Process) release() {
	p.root = nil
	p.stack = nil
}
