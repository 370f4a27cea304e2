package vdom

import "github.com/vango-dev/vela/pkg/host"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindText    VKind = iota // Plain text node
	KindElement              // <div>, <button>, etc.
	KindKeyed                // Element whose children carry reconciliation keys
	KindTagged               // Message mapper around a subtree
	KindLazy                 // Memoized view, evaluated on first render or diff
	KindCustom               // Node rendered and diffed by a CustomImpl
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindKeyed:
		return "Keyed"
	case KindTagged:
		return "Tagged"
	case KindLazy:
		return "Lazy"
	case KindCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// VNode is the virtual tree node. Nodes are immutable once built; the only
// field written later is the lazy cache, which is filled at most once.
type VNode struct {
	Kind      VKind
	Tag       string       // Element tag name (e.g., "div")
	Namespace string       // Element namespace, empty for HTML
	Facts     Facts        // Element and custom facts
	Children  []*VNode     // KindElement
	Keyed     []KeyedChild // KindKeyed
	Text      string       // KindText

	Tagger *Tagger // KindTagged
	Inner  *VNode  // KindTagged

	View *LazyView // KindLazy
	Args []any     // KindLazy

	Model any         // KindCustom
	Impl  *CustomImpl // KindCustom

	// Descendants is the number of traversal indexes below this node.
	Descendants int

	cached *VNode
}

// KeyedChild is a child of a keyed element.
type KeyedChild struct {
	Key  string
	Node *VNode
}

// Kid is shorthand for a KeyedChild literal.
func Kid(key string, node *VNode) KeyedChild {
	return KeyedChild{Key: key, Node: node}
}

// NumChildren returns the number of children of an element or keyed element.
func (v *VNode) NumChildren() int {
	switch v.Kind {
	case KindElement:
		return len(v.Children)
	case KindKeyed:
		return len(v.Keyed)
	default:
		return 0
	}
}

// Child returns the i-th child regardless of whether v is keyed.
func (v *VNode) Child(i int) *VNode {
	if v.Kind == KindKeyed {
		return v.Keyed[i].Node
	}
	return v.Children[i]
}

// force evaluates a lazy node once and returns the cached subtree.
func (v *VNode) force() *VNode {
	if v.cached == nil {
		v.cached = v.View.fn(v.Args...)
	}
	return v.cached
}

// Tagger transforms messages produced below a Tagged node. Taggers are
// compared by pointer, so build them once (for example as package-level
// variables) when the subtree should not report a tagger change on every
// render.
type Tagger struct {
	fn func(msg any) any
}

// NewTagger wraps fn in a Tagger.
func NewTagger(fn func(msg any) any) *Tagger {
	return &Tagger{fn: fn}
}

// TaggerOf builds a Tagger from a typed mapping function.
func TaggerOf[A, B any](fn func(A) B) *Tagger {
	return &Tagger{fn: func(msg any) any { return fn(msg.(A)) }}
}

// Apply runs the tagger on msg.
func (t *Tagger) Apply(msg any) any { return t.fn(msg) }

// LazyView is a memoizable view function. Like Tagger, identity is the
// pointer.
type LazyView struct {
	fn func(args ...any) *VNode
}

// NewLazyView wraps a view function taking untyped arguments.
func NewLazyView(fn func(args ...any) *VNode) *LazyView {
	return &LazyView{fn: fn}
}

// LazyView1 wraps a typed single-argument view.
func LazyView1[A any](fn func(A) *VNode) *LazyView {
	return &LazyView{fn: func(args ...any) *VNode { return fn(args[0].(A)) }}
}

// LazyView2 wraps a typed two-argument view.
func LazyView2[A, B any](fn func(A, B) *VNode) *LazyView {
	return &LazyView{fn: func(args ...any) *VNode { return fn(args[0].(A), args[1].(B)) }}
}

// CustomImpl renders and diffs KindCustom nodes. Impls are compared by
// pointer: two custom nodes with different impls are always redrawn.
type CustomImpl struct {
	Name string

	// Render creates the retained node for model.
	Render func(h host.Host, model any) host.Node

	// Diff returns nil when nothing changed between the two models.
	Diff func(oldModel, newModel any) CustomPatch
}

// CustomPatch mutates a retained node created by a CustomImpl and returns
// the node that now stands in its place.
type CustomPatch func(h host.Host, n host.Node) host.Node

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Element creates an element node.
func Element(tag string, facts []Fact, children []*VNode) *VNode {
	return ElementNS("", tag, facts, children)
}

// ElementNS creates an element node in namespace ns.
func ElementNS(ns, tag string, facts []Fact, children []*VNode) *VNode {
	descendants := 0
	for _, c := range children {
		descendants += 1 + c.Descendants
	}
	return &VNode{
		Kind:        KindElement,
		Tag:         tag,
		Namespace:   ns,
		Facts:       organizeFacts(facts),
		Children:    children,
		Descendants: descendants,
	}
}

// Keyed creates an element whose children are reconciled by key.
func Keyed(tag string, facts []Fact, children []KeyedChild) *VNode {
	return KeyedNS("", tag, facts, children)
}

// KeyedNS creates a keyed element in namespace ns.
func KeyedNS(ns, tag string, facts []Fact, children []KeyedChild) *VNode {
	descendants := 0
	for _, c := range children {
		descendants += 1 + c.Node.Descendants
	}
	return &VNode{
		Kind:        KindKeyed,
		Tag:         tag,
		Namespace:   ns,
		Facts:       organizeFacts(facts),
		Keyed:       children,
		Descendants: descendants,
	}
}

// Map wraps node so that messages it produces pass through t.
// Consecutive Map layers are kept as-is and collapsed when walked.
func Map(t *Tagger, node *VNode) *VNode {
	return &VNode{
		Kind:        KindTagged,
		Tagger:      t,
		Inner:       node,
		Descendants: 1 + node.Descendants,
	}
}

// MapFunc is Map with a fresh Tagger built from fn.
func MapFunc(fn func(msg any) any, node *VNode) *VNode {
	return Map(NewTagger(fn), node)
}

// Lazy defers calling view until the node is rendered or diffed. When the
// previous tree holds a lazy node with the same view and the same
// arguments (by reference), the view is not called at all.
func Lazy(view *LazyView, args ...any) *VNode {
	return &VNode{Kind: KindLazy, View: view, Args: args}
}

// Custom creates a node managed by impl.
func Custom(facts []Fact, model any, impl *CustomImpl) *VNode {
	return &VNode{
		Kind:  KindCustom,
		Facts: organizeFacts(facts),
		Model: model,
		Impl:  impl,
	}
}

// unwrapTagged collects the taggers of consecutive Tagged layers, outermost
// first, and returns the first non-tagged node below them.
func unwrapTagged(v *VNode) ([]*Tagger, *VNode) {
	taggers := []*Tagger{v.Tagger}
	sub := v.Inner
	for sub.Kind == KindTagged {
		taggers = append(taggers, sub.Tagger)
		sub = sub.Inner
	}
	return taggers, sub
}
