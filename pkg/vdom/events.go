package vdom

import (
	"github.com/vango-dev/vela/pkg/decode"
	"github.com/vango-dev/vela/pkg/host"
)

// EventNode mirrors one rendered Tagged node. Events fired below it walk
// the chain of EventNodes to the root, applying each node's taggers.
type EventNode struct {
	// Taggers are ordered outermost first and applied innermost first.
	Taggers []*Tagger
	Parent  *EventNode

	send func(msg any)
}

// NewRootEventNode returns the top of an event chain. Messages reaching it
// are passed to send.
func NewRootEventNode(send func(msg any)) *EventNode {
	return &EventNode{send: send}
}

// Deliver transforms msg through the chain and hands it to the root's send
// function. It reports false if the chain has no root.
func (n *EventNode) Deliver(msg any) bool {
	cur := n
	for cur != nil && cur.send == nil {
		for i := len(cur.Taggers) - 1; i >= 0; i-- {
			msg = cur.Taggers[i].Apply(msg)
		}
		cur = cur.Parent
	}
	if cur == nil {
		return false
	}
	cur.send(msg)
	return true
}

// listener is registered once per node and event name. A changed handler
// is swapped in place so the host's listener list is left alone.
type listener struct {
	engine  *Engine
	event   string
	handler *Handler
	node    *EventNode
}

// HandleEvent implements host.Listener.
func (l *listener) HandleEvent(ev *host.Event) {
	h := l.handler
	msg, err := decode.Run(h.Decoder, ev.Payload)
	if err != nil {
		l.engine.logger.Debug("event dropped", "event", l.event, "error", err)
		return
	}

	if h.Options.StopPropagation {
		ev.StopPropagation()
	}
	if h.Options.PreventDefault {
		ev.PreventDefault()
	}

	if !l.node.Deliver(msg) {
		l.engine.logger.Debug("event dropped: detached event node", "event", l.event)
	}
}

// applyEvents adds, updates and removes listeners on real. A nil handler
// removes the listener for that event.
func (e *Engine) applyEvents(real host.Node, ev *EventNode, events map[string]*Handler) {
	ls := e.listeners[real]

	for name, h := range events {
		if old := ls[name]; old != nil {
			if h != nil {
				old.handler = h
				continue
			}
			e.host.RemoveEventListener(real, name, old)
			delete(ls, name)
			continue
		}
		if h == nil {
			continue
		}

		if ls == nil {
			ls = make(map[string]*listener)
			e.listeners[real] = ls
		}
		l := &listener{engine: e, event: name, handler: h, node: ev}
		e.host.AddEventListener(real, name, l)
		ls[name] = l
	}

	if len(ls) == 0 {
		delete(e.listeners, real)
	}
}
