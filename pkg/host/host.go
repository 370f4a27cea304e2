package host

// Node is an opaque handle to a node of the retained tree. Implementations
// must use comparable handle types (typically pointers).
type Node any

// Listener receives events dispatched to a node.
type Listener interface {
	HandleEvent(ev *Event)
}

// Host is the set of retained-tree primitives.
type Host interface {
	CreateElement(tag, namespace string) Node
	CreateText(text string) Node

	SetAttribute(n Node, key, value string)
	RemoveAttribute(n Node, key string)
	SetAttributeNS(n Node, namespace, key, value string)
	RemoveAttributeNS(n Node, namespace, key string)

	// SetStyle sets an inline style property. An empty value clears it.
	SetStyle(n Node, key, value string)

	AddEventListener(n Node, event string, l Listener)
	RemoveEventListener(n Node, event string, l Listener)

	AppendChild(parent, child Node)
	// InsertBefore inserts child before ref. A nil ref appends. A child
	// that is already attached somewhere is moved.
	InsertBefore(parent, child, ref Node)
	RemoveChild(parent, child Node)
	ReplaceChild(parent, newChild, oldChild Node)
	ReplaceText(n Node, text string)

	// ChildAt returns the i-th child of parent, or nil when out of range.
	ChildAt(parent Node, i int) Node
}

// Event is delivered to listeners. Payload is the raw, JSON-shaped value
// that event decoders run against.
type Event struct {
	Type    string
	Payload any
	Target  Node

	stopped   bool
	prevented bool
}

// StopPropagation prevents the event from reaching ancestor listeners.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the default action as cancelled.
func (e *Event) PreventDefault() { e.prevented = true }

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool { return e.stopped }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.prevented }
