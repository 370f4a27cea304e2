package vdom

import (
	"log/slog"

	"github.com/vango-dev/vela/pkg/host"
)

// Engine renders virtual trees into a Host and applies patches to the
// retained tree. It keeps two side tables keyed by retained node: the event
// node of each rendered Tagged subtree, and the listeners installed by the
// engine. An Engine is not safe for concurrent use.
type Engine struct {
	host      host.Host
	refs      map[host.Node]*EventNode
	listeners map[host.Node]map[string]*listener

	logger   *slog.Logger
	observer func(*Patch)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for dropped events.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPatchObserver registers fn to be called for every patch right before
// it is applied, including nested ones.
func WithPatchObserver(fn func(*Patch)) EngineOption {
	return func(e *Engine) {
		e.observer = fn
	}
}

// NewEngine creates an engine rendering into h.
func NewEngine(h host.Host, opts ...EngineOption) *Engine {
	e := &Engine{
		host:      h,
		refs:      make(map[host.Node]*EventNode),
		listeners: make(map[host.Node]map[string]*listener),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Host returns the host the engine renders into.
func (e *Engine) Host() host.Host { return e.host }

// Render builds the retained subtree for v. Messages from its handlers are
// delivered through ev.
func (e *Engine) Render(v *VNode, ev *EventNode) host.Node {
	switch v.Kind {
	case KindTagged:
		taggers, sub := unwrapTagged(v)
		node := &EventNode{Taggers: taggers, Parent: ev}
		real := e.Render(sub, node)
		e.refs[real] = node
		return real

	case KindLazy:
		return e.Render(v.force(), ev)

	case KindText:
		return e.host.CreateText(v.Text)

	case KindCustom:
		real := v.Impl.Render(e.host, v.Model)
		e.applyFacts(real, ev, &v.Facts)
		return real
	}

	real := e.host.CreateElement(v.Tag, v.Namespace)
	e.applyFacts(real, ev, &v.Facts)
	for i, n := 0, v.NumChildren(); i < n; i++ {
		e.host.AppendChild(real, e.Render(v.Child(i), ev))
	}
	return real
}

func (e *Engine) applyFacts(real host.Node, ev *EventNode, f *Facts) {
	for k, v := range f.Props {
		e.applyProp(real, k, v)
	}
	for k, v := range f.Attrs {
		e.host.SetAttribute(real, k, v)
	}
	for k, v := range f.AttrsNS {
		e.host.SetAttributeNS(real, v.Namespace, k, v.Value)
	}
	for k, v := range f.Styles {
		e.host.SetStyle(real, k, v)
	}
	if len(f.Events) > 0 {
		e.applyEvents(real, ev, f.Events)
	}
}

func (e *Engine) applyFactsDiff(real host.Node, ev *EventNode, d *FactsDiff) {
	for k, v := range d.Props {
		e.applyProp(real, k, v)
	}
	for k, v := range d.Attrs {
		if v == nil {
			e.host.RemoveAttribute(real, k)
			continue
		}
		e.host.SetAttribute(real, k, *v)
	}
	for k, c := range d.AttrsNS {
		if c.Value == nil {
			e.host.RemoveAttributeNS(real, c.Namespace, k)
			continue
		}
		e.host.SetAttributeNS(real, c.Namespace, k, *c.Value)
	}
	for k, v := range d.Styles {
		e.host.SetStyle(real, k, v)
	}
	if d.Events != nil {
		e.applyEvents(real, ev, d.Events)
	}
}

// applyProp writes a property as an attribute. true becomes an empty
// attribute and false or nil removes it.
func (e *Engine) applyProp(real host.Node, key string, value any) {
	name := propertyAttr(key)
	switch v := value.(type) {
	case nil:
		e.host.RemoveAttribute(real, name)
	case bool:
		if v {
			e.host.SetAttribute(real, name, "")
		} else {
			e.host.RemoveAttribute(real, name)
		}
	default:
		e.host.SetAttribute(real, name, propToString(v))
	}
}

// forget drops side-table entries for n and everything below it.
func (e *Engine) forget(n host.Node) {
	delete(e.refs, n)
	delete(e.listeners, n)
	for i := 0; ; i++ {
		c := e.host.ChildAt(n, i)
		if c == nil {
			return
		}
		e.forget(c)
	}
}
