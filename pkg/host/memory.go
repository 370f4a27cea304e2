package host

import "fmt"

// MemNode is a node of the in-memory retained tree.
type MemNode struct {
	// ID is assigned in creation order and never reused.
	ID        int
	Tag       string
	Namespace string
	Text      string
	IsText    bool

	Attrs   map[string]string
	AttrsNS map[string]NSAttr
	Styles  map[string]string

	Children []*MemNode
	Parent   *MemNode

	// Marker is free for test harnesses to tag a node and check that it
	// survives a patch.
	Marker any

	listeners map[string][]Listener
}

// NSAttr is a namespaced attribute value.
type NSAttr struct {
	Namespace string
	Value     string
}

// Listeners returns the listeners registered for event.
func (n *MemNode) Listeners(event string) []Listener {
	return n.listeners[event]
}

// ListenerCount returns the number of registered listeners across events.
func (n *MemNode) ListenerCount() int {
	total := 0
	for _, ls := range n.listeners {
		total += len(ls)
	}
	return total
}

// Document is an in-memory Host. It is not safe for concurrent use; callers
// serialize access the same way the scheduler serializes processes.
type Document struct {
	body    *MemNode
	nextID  int
	created int
}

var _ Host = (*Document)(nil)

// NewDocument creates an empty document with a body element to mount into.
func NewDocument() *Document {
	d := &Document{}
	d.body = d.newNode()
	d.body.Tag = "body"
	d.created = 0
	return d
}

// Body returns the mount element.
func (d *Document) Body() *MemNode { return d.body }

// Created returns how many nodes were created after NewDocument.
func (d *Document) Created() int { return d.created }

func (d *Document) newNode() *MemNode {
	d.nextID++
	d.created++
	return &MemNode{
		ID:      d.nextID,
		Attrs:   make(map[string]string),
		AttrsNS: make(map[string]NSAttr),
		Styles:  make(map[string]string),
	}
}

func mem(n Node) *MemNode {
	m, ok := n.(*MemNode)
	if !ok {
		panic(fmt.Sprintf("host: foreign node %T passed to Document", n))
	}
	return m
}

// CreateElement implements Host.
func (d *Document) CreateElement(tag, namespace string) Node {
	n := d.newNode()
	n.Tag = tag
	n.Namespace = namespace
	return n
}

// CreateText implements Host.
func (d *Document) CreateText(text string) Node {
	n := d.newNode()
	n.IsText = true
	n.Text = text
	return n
}

// SetAttribute implements Host.
func (d *Document) SetAttribute(n Node, key, value string) { mem(n).Attrs[key] = value }

// RemoveAttribute implements Host.
func (d *Document) RemoveAttribute(n Node, key string) { delete(mem(n).Attrs, key) }

// SetAttributeNS implements Host.
func (d *Document) SetAttributeNS(n Node, namespace, key, value string) {
	mem(n).AttrsNS[key] = NSAttr{Namespace: namespace, Value: value}
}

// RemoveAttributeNS implements Host.
func (d *Document) RemoveAttributeNS(n Node, namespace, key string) {
	m := mem(n)
	if a, ok := m.AttrsNS[key]; ok && a.Namespace == namespace {
		delete(m.AttrsNS, key)
	}
}

// SetStyle implements Host.
func (d *Document) SetStyle(n Node, key, value string) {
	m := mem(n)
	if value == "" {
		delete(m.Styles, key)
		return
	}
	m.Styles[key] = value
}

// AddEventListener implements Host.
func (d *Document) AddEventListener(n Node, event string, l Listener) {
	m := mem(n)
	if m.listeners == nil {
		m.listeners = make(map[string][]Listener)
	}
	m.listeners[event] = append(m.listeners[event], l)
}

// RemoveEventListener implements Host.
func (d *Document) RemoveEventListener(n Node, event string, l Listener) {
	m := mem(n)
	ls := m.listeners[event]
	for i, existing := range ls {
		if existing == l {
			m.listeners[event] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(m.listeners[event]) == 0 {
		delete(m.listeners, event)
	}
}

// AppendChild implements Host.
func (d *Document) AppendChild(parent, child Node) {
	d.InsertBefore(parent, child, nil)
}

// InsertBefore implements Host.
func (d *Document) InsertBefore(parent, child, ref Node) {
	p, c := mem(parent), mem(child)
	detach(c)

	at := len(p.Children)
	if ref != nil {
		r := mem(ref)
		at = indexOf(p, r)
		if at < 0 {
			panic("host: InsertBefore reference is not a child of parent")
		}
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[at+1:], p.Children[at:])
	p.Children[at] = c
	c.Parent = p
}

// RemoveChild implements Host.
func (d *Document) RemoveChild(parent, child Node) {
	p, c := mem(parent), mem(child)
	if c.Parent != p {
		panic("host: RemoveChild on a node that is not a child of parent")
	}
	detach(c)
}

// ReplaceChild implements Host.
func (d *Document) ReplaceChild(parent, newChild, oldChild Node) {
	p, o, n := mem(parent), mem(oldChild), mem(newChild)
	if o.Parent != p {
		panic("host: ReplaceChild on a node that is not a child of parent")
	}
	detach(n)
	at := indexOf(p, o)
	p.Children[at] = n
	n.Parent = p
	o.Parent = nil
}

// ReplaceText implements Host.
func (d *Document) ReplaceText(n Node, text string) { mem(n).Text = text }

// ChildAt implements Host.
func (d *Document) ChildAt(parent Node, i int) Node {
	p := mem(parent)
	if i < 0 || i >= len(p.Children) {
		return nil
	}
	return p.Children[i]
}

// Find follows a path of child indexes from n. It returns nil when the path
// leaves the tree.
func (d *Document) Find(n *MemNode, path ...int) *MemNode {
	for _, i := range path {
		if n == nil || i < 0 || i >= len(n.Children) {
			return nil
		}
		n = n.Children[i]
	}
	return n
}

// Dispatch delivers an event to target and bubbles it to its ancestors
// until a listener stops propagation.
func (d *Document) Dispatch(target *MemNode, eventType string, payload any) *Event {
	ev := &Event{Type: eventType, Payload: payload, Target: target}
	for n := target; n != nil && !ev.stopped; n = n.Parent {
		// Snapshot so listeners may unregister while handling.
		ls := append([]Listener(nil), n.listeners[eventType]...)
		for _, l := range ls {
			l.HandleEvent(ev)
		}
	}
	return ev
}

// TextContent concatenates all text below n in document order.
func TextContent(n *MemNode) string {
	if n.IsText {
		return n.Text
	}
	var out []byte
	for _, c := range n.Children {
		out = append(out, TextContent(c)...)
	}
	return string(out)
}

func detach(c *MemNode) {
	p := c.Parent
	if p == nil {
		return
	}
	if at := indexOf(p, c); at >= 0 {
		p.Children = append(p.Children[:at], p.Children[at+1:]...)
	}
	c.Parent = nil
}

func indexOf(p, c *MemNode) int {
	for i, k := range p.Children {
		if k == c {
			return i
		}
	}
	return -1
}
