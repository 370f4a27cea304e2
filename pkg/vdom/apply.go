package vdom

import "github.com/vango-dev/vela/pkg/host"

// Apply executes patches produced by Diff(old, next) against root, the
// retained node rendered from old. parent is root's parent and may be nil.
// It returns the node now standing in place of root.
func (e *Engine) Apply(root, parent host.Node, old *VNode, patches []*Patch, ev *EventNode) host.Node {
	if len(patches) == 0 {
		return root
	}
	e.address(root, parent, old, patches, 0, 0, old.Descendants, ev)
	return e.applyPatches(root, patches)
}

// address walks the old virtual tree alongside the retained tree and stamps
// each patch with its target, the target's parent and the event node in
// effect there. Subtrees holding no patch are skipped by their descendant
// count. It returns the index of the first patch outside [low, high].
func (e *Engine) address(real, parent host.Node, v *VNode, patches []*Patch, i, low, high int, ev *EventNode) int {
	p := patches[i]
	index := p.Index

	for index == low {
		p.target = real
		p.parent = parent
		p.eventNode = ev

		switch p.Kind {
		case PatchThunk:
			cached := v.force()
			e.address(real, parent, cached, p.Patches, 0, 0, cached.Descendants, ev)

		case PatchReorder:
			if len(p.Reorder.Patches) > 0 {
				e.address(real, parent, v, p.Reorder.Patches, 0, low, high, ev)
			}

		case PatchRemove:
			if p.Move != nil {
				p.Move.Entry.real = real
				if len(p.Move.Patches) > 0 {
					e.address(real, parent, v, p.Move.Patches, 0, low, high, ev)
				}
			}
		}

		i++
		if i >= len(patches) {
			return i
		}
		p = patches[i]
		index = p.Index
		if index > high {
			return i
		}
	}

	switch v.Kind {
	case KindTagged:
		_, sub := unwrapTagged(v)
		return e.address(real, parent, sub, patches, i, low+1, high, e.refs[real])

	case KindElement, KindKeyed:
		for j, n := 0, v.NumChildren(); j < n; j++ {
			low++
			child := v.Child(j)
			next := low + child.Descendants
			if low <= index && index <= next {
				i = e.address(e.host.ChildAt(real, j), real, child, patches, i, low, next, ev)
				if i >= len(patches) {
					return i
				}
				index = patches[i].Index
				if index > high {
					return i
				}
			}
			low = next
		}
	}

	return i
}

func (e *Engine) applyPatches(root host.Node, patches []*Patch) host.Node {
	for _, p := range patches {
		target := p.target
		real := e.applyPatch(p)
		if target == root {
			root = real
		}
	}
	return root
}

func (e *Engine) applyPatch(p *Patch) host.Node {
	if e.observer != nil {
		e.observer(p)
	}
	target := p.target

	switch p.Kind {
	case PatchRedraw:
		return e.redraw(p)

	case PatchFacts:
		e.applyFactsDiff(target, p.eventNode, p.Facts)
		return target

	case PatchText:
		e.host.ReplaceText(target, p.Text)
		return target

	case PatchThunk:
		return e.applyPatches(target, p.Patches)

	case PatchTagger:
		if node := e.refs[target]; node != nil {
			node.Taggers = p.Taggers
		} else {
			e.refs[target] = &EventNode{Taggers: p.Taggers, Parent: p.eventNode}
		}
		return target

	case PatchRemoveLast:
		for n := 0; n < p.Count; n++ {
			c := e.host.ChildAt(target, p.From)
			if c == nil {
				break
			}
			e.forget(c)
			e.host.RemoveChild(target, c)
		}
		return target

	case PatchAppend:
		ref := e.host.ChildAt(target, p.From)
		for _, kid := range p.Kids[p.From:] {
			e.host.InsertBefore(target, e.Render(kid, p.eventNode), ref)
		}
		return target

	case PatchRemove:
		if p.Move == nil {
			e.forget(target)
			e.host.RemoveChild(p.parent, target)
			return target
		}
		// The node is kept for re-insertion by the enclosing Reorder.
		real := e.applyPatches(target, p.Move.Patches)
		e.host.RemoveChild(p.parent, real)
		p.Move.Entry.real = real
		return real

	case PatchReorder:
		return e.applyReorder(target, p)

	case PatchCustom:
		real := p.Custom(e.host, target)
		if real != target {
			if p.parent != nil {
				e.host.ReplaceChild(p.parent, real, target)
			}
			e.forget(target)
		}
		return real
	}

	panic("vdom: unknown patch kind " + p.Kind.String())
}

func (e *Engine) redraw(p *Patch) host.Node {
	old := p.target
	real := e.Render(p.Node, p.eventNode)

	// A redrawn subtree of a Tagged node inherits its event node.
	if _, ok := e.refs[real]; !ok {
		if node, ok := e.refs[old]; ok {
			e.refs[real] = node
		}
	}

	if p.parent != nil {
		e.host.ReplaceChild(p.parent, real, old)
	}
	e.forget(old)
	return real
}

// applyReorder runs child patches and removals, then places inserted and
// moved children: positional inserts in ascending index order, end inserts
// last.
func (e *Engine) applyReorder(real host.Node, p *Patch) host.Node {
	r := p.Reorder
	real = e.applyPatches(real, r.Patches)

	for _, ins := range r.Inserts {
		node := e.entryNode(ins.Entry, p.eventNode)
		e.host.InsertBefore(real, node, e.host.ChildAt(real, ins.Index))
	}
	for _, ins := range r.EndInserts {
		e.host.AppendChild(real, e.entryNode(ins.Entry, p.eventNode))
	}
	return real
}

// entryNode returns the retained node of a moved entry, or renders a fresh
// one for an inserted entry.
func (e *Engine) entryNode(entry *Entry, ev *EventNode) host.Node {
	if entry.State == EntryMoved {
		return entry.real
	}
	return e.Render(entry.Node, ev)
}
