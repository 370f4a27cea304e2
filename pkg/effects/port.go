package effects

import (
	"slices"
	"sync"

	velaerrors "github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/pkg/decode"
	"github.com/vango-dev/vela/pkg/task"
)

// OutgoingPort carries values from the application to host subscribers.
// Values travel as commands; each cycle the port hands every command value
// to every subscriber in order.
type OutgoingPort struct {
	name string

	mu     sync.Mutex
	nextID int
	subs   map[int]func(any)
	order  []int
}

// NewOutgoingPort creates an outgoing port. Register it before the program
// starts.
func NewOutgoingPort(name string) *OutgoingPort {
	return &OutgoingPort{name: name, subs: make(map[int]func(any))}
}

// Name returns the port name, which is also its effect home.
func (p *OutgoingPort) Name() string { return p.name }

// Register adds the port's manager to reg.
func (p *OutgoingPort) Register(reg *Registry) error {
	return reg.Register(p.name, &Manager{
		Kind: KindCmd,
		Init: task.Succeed(nil),
		OnEffects: func(_ *Router, cmds, _ []any, state any) *task.Task {
			if len(cmds) == 0 {
				return task.Succeed(state)
			}
			return task.Binding(func(resume func(*task.Task)) func() {
				subs := p.subscribers()
				for _, v := range cmds {
					for _, fn := range subs {
						fn(v)
					}
				}
				resume(task.Succeed(state))
				return nil
			})
		},
	})
}

// Send returns a command that delivers v to the port's subscribers.
func (p *OutgoingPort) Send(v any) *Bag {
	return Leaf(p.name, v)
}

// Subscribe registers fn for every value sent through the port. The
// returned function removes it.
func (p *OutgoingPort) Subscribe(fn func(any)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.subs[id] = fn
	p.order = append(p.order, id)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.subs[id]; !ok {
			return
		}
		delete(p.subs, id)
		if i := slices.Index(p.order, id); i >= 0 {
			p.order = slices.Delete(p.order, i, i+1)
		}
	}
}

func (p *OutgoingPort) subscribers() []func(any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]func(any), 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.subs[id])
	}
	return out
}

// IncomingPort carries host values into the application. Values are
// checked against the port decoder before any subscriber sees them.
type IncomingPort struct {
	name    string
	decoder *decode.Decoder

	mu        sync.Mutex
	subs      []func(any) any
	sendToApp func(any)
}

// NewIncomingPort creates an incoming port whose values must satisfy d.
func NewIncomingPort(name string, d *decode.Decoder) *IncomingPort {
	return &IncomingPort{name: name, decoder: d}
}

// Name returns the port name, which is also its effect home.
func (p *IncomingPort) Name() string { return p.name }

// Register adds the port's manager to reg.
func (p *IncomingPort) Register(reg *Registry) error {
	return reg.Register(p.name, &Manager{
		Kind: KindSub,
		Init: task.Succeed(nil),
		OnEffects: func(r *Router, _, subs []any, state any) *task.Task {
			toMsgs := make([]func(any) any, 0, len(subs))
			for _, s := range subs {
				toMsgs = append(toMsgs, s.(func(any) any))
			}
			p.mu.Lock()
			p.subs = toMsgs
			p.sendToApp = r.sendToApp
			p.mu.Unlock()
			return task.Succeed(state)
		},
		SubMap: func(fn func(any) any, sub any) any {
			toMsg := sub.(func(any) any)
			return func(v any) any { return fn(toMsg(v)) }
		},
	})
}

// Subscribe returns a subscription that sends toMsg of every accepted value
// to the application.
func (p *IncomingPort) Subscribe(toMsg func(any) any) *Bag {
	return Leaf(p.name, toMsg)
}

// Send decodes raw and delivers the result to the current subscribers. A
// value the decoder rejects is returned as an error and reaches nobody.
func (p *IncomingPort) Send(raw any) error {
	v, err := decode.Run(p.decoder, raw)
	if err != nil {
		return velaerrors.New("E160").WithDetailf("port %q", p.name).Wrap(err)
	}

	p.mu.Lock()
	subs := p.subs
	send := p.sendToApp
	p.mu.Unlock()

	for _, toMsg := range subs {
		send(toMsg(v))
	}
	return nil
}
