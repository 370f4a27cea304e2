package effects

import (
	"sort"
	"sync"

	velaerrors "github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/pkg/scheduler"
	"github.com/vango-dev/vela/pkg/task"
)

// Kind says which bags a manager takes effects from.
type Kind uint8

const (
	KindCmd Kind = iota // Commands only
	KindSub             // Subscriptions only
	KindFx              // Both
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindCmd:
		return "cmd"
	case KindSub:
		return "sub"
	case KindFx:
		return "fx"
	default:
		return "unknown"
	}
}

func (k Kind) takesCmds() bool { return k == KindCmd || k == KindFx }
func (k Kind) takesSubs() bool { return k == KindSub || k == KindFx }

// Manager turns effect descriptions of one home into real side effects. It
// runs in its own process, threading a state value through its callbacks.
type Manager struct {
	Kind Kind

	// Init produces the initial state.
	Init *task.Task

	// OnEffects receives the commands and subscriptions of one update
	// cycle and produces the next state. It is called every cycle, with
	// empty slices when there is nothing for this manager.
	OnEffects func(r *Router, cmds, subs []any, state any) *task.Task

	// OnSelfMsg handles messages the manager sent itself through
	// Router.SendToSelf and produces the next state.
	OnSelfMsg func(r *Router, msg any, state any) *task.Task

	// CmdMap and SubMap apply a message transform to an effect value. A
	// nil map passes the value through unchanged.
	CmdMap func(fn func(any) any, cmd any) any
	SubMap func(fn func(any) any, sub any) any
}

// Router connects a manager to the application and to its own process.
type Router struct {
	sched     *scheduler.Scheduler
	sendToApp func(msg any)

	mu   sync.Mutex
	self *scheduler.Process
}

// selfMsg marks a message a manager sent to itself.
type selfMsg struct{ msg any }

// cycle is the message a manager receives once per update cycle.
type cycle struct {
	cmds []any
	subs []any
}

// SendToApp returns a task that delivers msg to the application.
func (r *Router) SendToApp(msg any) *task.Task {
	return task.Binding(func(resume func(*task.Task)) func() {
		r.sendToApp(msg)
		resume(task.Succeed(nil))
		return nil
	})
}

// SendToSelf returns a task that delivers msg to the manager's OnSelfMsg.
func (r *Router) SendToSelf(msg any) *task.Task {
	return task.Binding(func(resume func(*task.Task)) func() {
		r.sched.Send(r.process(), selfMsg{msg: msg})
		resume(task.Succeed(nil))
		return nil
	})
}

// Spawn returns a task that starts t in a new process and succeeds with the
// *scheduler.Process.
func (r *Router) Spawn(t *task.Task) *task.Task {
	return r.sched.SpawnTask(t)
}

// Kill returns a task that kills p.
func (r *Router) Kill(p *scheduler.Process) *task.Task {
	return r.sched.KillTask(p)
}

func (r *Router) process() *scheduler.Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.self
}

// Registry maps effect homes to managers. Build it once at startup and pass
// it to the program.
type Registry struct {
	managers map[string]*Manager
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{managers: make(map[string]*Manager)}
}

// Register adds m under home. Registering a home twice is a configuration
// error.
func (r *Registry) Register(home string, m *Manager) error {
	if _, exists := r.managers[home]; exists {
		return velaerrors.New("E100").WithDetailf("effect manager %q is already registered", home)
	}
	if m == nil || m.Init == nil || m.OnEffects == nil {
		return velaerrors.New("E104").WithDetailf("effect manager %q needs Init and OnEffects", home)
	}
	r.managers[home] = m
	return nil
}

// DefaultRegistry returns a registry with the task and time managers.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(TaskHome, TaskManager())
	reg.MustRegister(TimeHome, TimeManager())
	return reg
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(home string, m *Manager) {
	if err := r.Register(home, m); err != nil {
		panic(err)
	}
}

// Lookup returns the manager registered under home.
func (r *Registry) Lookup(home string) (*Manager, bool) {
	m, ok := r.managers[home]
	return m, ok
}

// Homes returns the registered homes in sorted order.
func (r *Registry) Homes() []string {
	homes := make([]string, 0, len(r.managers))
	for home := range r.managers {
		homes = append(homes, home)
	}
	sort.Strings(homes)
	return homes
}

// Len returns the number of registered managers.
func (r *Registry) Len() int { return len(r.managers) }
