package vdom

import "github.com/vango-dev/vela/pkg/host"

// View owns one mounted virtual tree. The first Update renders into the
// mount node; later updates diff against the previous tree and patch the
// retained nodes in place.
type View struct {
	engine *Engine
	mount  host.Node
	root   *EventNode

	current *VNode
	real    host.Node
}

// NewView creates a view that mounts under mount and delivers messages to
// send.
func NewView(e *Engine, mount host.Node, send func(msg any)) *View {
	return &View{
		engine: e,
		mount:  mount,
		root:   NewRootEventNode(send),
	}
}

// Update brings the retained tree in line with next and returns the
// patches that were applied. The first call renders and returns nil.
func (v *View) Update(next *VNode) []*Patch {
	if v.current == nil {
		v.real = v.engine.Render(next, v.root)
		v.engine.host.AppendChild(v.mount, v.real)
		v.current = next
		return nil
	}

	patches := Diff(v.current, next)
	v.real = v.engine.Apply(v.real, v.mount, v.current, patches, v.root)
	v.current = next
	return patches
}

// Node returns the retained root node, or nil before the first Update.
func (v *View) Node() host.Node { return v.real }

// Current returns the last virtual tree passed to Update.
func (v *View) Current() *VNode { return v.current }
