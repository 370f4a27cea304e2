package effects

import (
	"log/slog"

	velaerrors "github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/internal/metrics"
	"github.com/vango-dev/vela/pkg/scheduler"
	"github.com/vango-dev/vela/pkg/task"
)

// Dispatcher owns one process per registered manager and feeds them the
// effects of every update cycle.
type Dispatcher struct {
	sched    *scheduler.Scheduler
	registry *Registry
	homes    []string
	procs    map[string]*scheduler.Process

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics sets the collectors recording dispatch cycles.
func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher spawns a process for every manager in reg. Messages the
// managers produce for the application go to sendToApp.
func NewDispatcher(sched *scheduler.Scheduler, reg *Registry, sendToApp func(msg any), opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sched:    sched,
		registry: reg,
		homes:    reg.Homes(),
		procs:    make(map[string]*scheduler.Process, reg.Len()),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, home := range d.homes {
		m := reg.managers[home]
		r := &Router{sched: sched, sendToApp: sendToApp}
		p := sched.Spawn(managerLoop(r, m))
		r.mu.Lock()
		r.self = p
		r.mu.Unlock()

		d.procs[home] = p
		d.logger.Debug("effect manager started", "home", home, "kind", m.Kind.String(), "pid", p.ID())
	}
	return d
}

// managerLoop runs Init and then handles one message at a time forever.
func managerLoop(r *Router, m *Manager) *task.Task {
	var loop func(state any) *task.Task
	loop = func(state any) *task.Task {
		return task.Receive(func(msg any) *task.Task {
			var next *task.Task
			switch msg := msg.(type) {
			case cycle:
				next = m.OnEffects(r, msg.cmds, msg.subs, state)
			case selfMsg:
				if m.OnSelfMsg == nil {
					next = task.Succeed(state)
				} else {
					next = m.OnSelfMsg(r, msg.msg, state)
				}
			default:
				next = task.Succeed(state)
			}
			return task.AndThen(loop, next)
		})
	}
	return task.AndThen(loop, m.Init)
}

// Dispatch gathers cmds and subs by home and sends every manager its share,
// including managers with nothing to do this cycle. A leaf whose home has no
// manager is a configuration error and panics.
func (d *Dispatcher) Dispatch(cmds, subs *Bag) {
	cycles := make(map[string]*cycle, len(d.homes))
	for _, home := range d.homes {
		cycles[home] = &cycle{cmds: []any{}, subs: []any{}}
	}

	collect := func(isCmd bool) func(home string, value any, chain taggers) {
		return func(home string, value any, chain taggers) {
			m, ok := d.registry.managers[home]
			if !ok {
				panic(velaerrors.New("E106").WithDetailf("no effect manager registered for %q", home))
			}
			if isCmd && !m.Kind.takesCmds() {
				panic(velaerrors.New("E106").WithDetailf("effect manager %q does not take commands", home))
			}
			if !isCmd && !m.Kind.takesSubs() {
				panic(velaerrors.New("E106").WithDetailf("effect manager %q does not take subscriptions", home))
			}
			mapFn := m.SubMap
			if isCmd {
				mapFn = m.CmdMap
			}
			if len(chain) > 0 && mapFn != nil {
				value = mapFn(chain.apply, value)
			}
			c := cycles[home]
			if isCmd {
				c.cmds = append(c.cmds, value)
			} else {
				c.subs = append(c.subs, value)
			}
		}
	}
	gather(cmds, nil, collect(true))
	gather(subs, nil, collect(false))

	for _, home := range d.homes {
		c := cycles[home]
		d.sched.Send(d.procs[home], *c)
	}
	d.metrics.EffectsDispatched()
}

// Process returns the manager process for home.
func (d *Dispatcher) Process(home string) (*scheduler.Process, bool) {
	p, ok := d.procs[home]
	return p, ok
}

// Stop kills every manager process.
func (d *Dispatcher) Stop() {
	for _, home := range d.homes {
		d.sched.Kill(d.procs[home])
	}
}
