package vdom

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vela/pkg/host"
)

type harness struct {
	doc  *host.Document
	view *View
	msgs []any
}

func newHarness(opts ...EngineOption) *harness {
	h := &harness{doc: host.NewDocument()}
	e := NewEngine(h.doc, opts...)
	h.view = NewView(e, h.doc.Body(), func(msg any) { h.msgs = append(h.msgs, msg) })
	return h
}

func (h *harness) root() *host.MemNode {
	return h.view.Node().(*host.MemNode)
}

func (h *harness) html() string {
	return host.HTML(h.doc.Body())
}

// freshHTML renders v into a new document.
func freshHTML(v *VNode) string {
	h := newHarness()
	h.view.Update(v)
	return h.html()
}

func TestViewInitialRender(t *testing.T) {
	h := newHarness()
	patches := h.view.Update(Div(Class("card"), ID("main"), Style("color", "red"),
		Span("hi"),
		Input(Checked(true), Value("v")),
		Input(Checked(false)),
	))

	if patches != nil {
		t.Errorf("first Update returned %d patches, want nil", len(patches))
	}
	want := `<body><div class="card" id="main" style="color: red;"><span>hi</span><input checked="" value="v"><input></div></body>`
	if diff := cmp.Diff(want, h.html()); diff != "" {
		t.Errorf("HTML mismatch (-want +got):\n%s", diff)
	}
}

func TestViewClassMerge(t *testing.T) {
	h := newHarness()
	h.view.Update(Div(Class("a"), Class("b"), ID("x"), ID("y")))

	got := h.root().Attrs
	if got["class"] != "a b" {
		t.Errorf("class = %q, want %q", got["class"], "a b")
	}
	if got["id"] != "y" {
		t.Errorf("id = %q, want y", got["id"])
	}
}

func TestViewPatchMatchesFreshRender(t *testing.T) {
	t1 := NewTagger(func(m any) any { return m })
	t2 := NewTagger(func(m any) any { return m })
	view := LazyView1(func(n int) *VNode { return Span(Textf("n=%d", n)) })
	otherView := LazyView1(func(n int) *VNode { return P(Textf("p=%d", n)) })

	tests := []struct {
		name       string
		prev, next func() *VNode
	}{
		{
			name: "text change",
			prev: func() *VNode { return Div(Text("a")) },
			next: func() *VNode { return Div(Text("b")) },
		},
		{
			name: "append children",
			prev: func() *VNode { return Ul(Li("a")) },
			next: func() *VNode { return Ul(Li("a"), Li("b"), Li("c")) },
		},
		{
			name: "remove trailing children",
			prev: func() *VNode { return Ul(Li("a"), Li("b"), Li("c")) },
			next: func() *VNode { return Ul(Li("z")) },
		},
		{
			name: "facts",
			prev: func() *VNode { return Div(ID("x"), Style("color", "red"), Attribute("title", "t")) },
			next: func() *VNode { return Div(ID("y"), Style("margin", "0"), Attribute("role", "r")) },
		},
		{
			name: "checked toggles",
			prev: func() *VNode { return Input(Checked(true)) },
			next: func() *VNode { return Input(Checked(false)) },
		},
		{
			name: "namespaced attributes",
			prev: func() *VNode { return Svg([]Fact{AttributeNS("ns", "href", "#a")}, Circle(Attribute("r", "1"))) },
			next: func() *VNode { return Svg([]Fact{AttributeNS("ns", "href", "#b")}, Circle(Attribute("r", "2"))) },
		},
		{
			name: "root redraw",
			prev: func() *VNode { return Div(Text("a")) },
			next: func() *VNode { return Span(Text("a")) },
		},
		{
			name: "nested redraw",
			prev: func() *VNode { return Div(P("a"), Text("b"), P("c")) },
			next: func() *VNode { return Div(P("a"), Strong("b"), Code("c")) },
		},
		{
			name: "deep index after skipped subtree",
			prev: func() *VNode { return Div(Div(Span("a"), Span("b")), Div(Span("c"))) },
			next: func() *VNode { return Div(Div(Span("a"), Span("b")), Div(Span("d"), Span("e"))) },
		},
		{
			name: "tagged content",
			prev: func() *VNode { return Div(Map(t1, Span("a")), Text("b")) },
			next: func() *VNode { return Div(Map(t2, Span("c")), Text("d")) },
		},
		{
			name: "tagged depth change",
			prev: func() *VNode { return Div(Map(t1, Span("a"))) },
			next: func() *VNode { return Div(Map(t1, Map(t2, Span("a")))) },
		},
		{
			name: "lazy args change",
			prev: func() *VNode { return Div(Lazy(view, 1), Text("x")) },
			next: func() *VNode { return Div(Lazy(view, 2), Text("y")) },
		},
		{
			name: "lazy view change",
			prev: func() *VNode { return Div(Lazy(view, 1)) },
			next: func() *VNode { return Div(Lazy(otherView, 1)) },
		},
		{
			name: "keyed under element",
			prev: func() *VNode { return Main(H1("t"), list("a", "b", "c"), P("end")) },
			next: func() *VNode { return Main(H1("u"), list("c", "a"), P("fin")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.view.Update(tt.prev())
			h.view.Update(tt.next())

			if diff := cmp.Diff(freshHTML(tt.next()), h.html()); diff != "" {
				t.Errorf("patched tree differs from fresh render (-want +got):\n%s", diff)
			}
			if got := len(h.doc.Body().Children); got != 1 {
				t.Errorf("mount has %d children, want 1", got)
			}
		})
	}
}

func TestViewRootRedrawUpdatesNode(t *testing.T) {
	h := newHarness()
	h.view.Update(Div())
	first := h.view.Node()

	h.view.Update(Span())

	if h.view.Node() == first {
		t.Error("Node() should return the redrawn root")
	}
	if h.root().Tag != "span" {
		t.Errorf("root tag = %q, want span", h.root().Tag)
	}
}

func TestViewKeepsNodesOnTextPatch(t *testing.T) {
	h := newHarness()
	h.view.Update(Div(Span("0"), Button("+")))
	created := h.doc.Created()

	for i := 1; i <= 3; i++ {
		h.view.Update(Div(Span(strconv.Itoa(i)), Button("+")))
	}

	if got := h.doc.Created(); got != created {
		t.Errorf("created %d nodes during updates, want 0", got-created)
	}
	if got := host.TextContent(h.root()); got != "3+" {
		t.Errorf("text = %q, want 3+", got)
	}
}

func TestViewLazySkipsView(t *testing.T) {
	calls := 0
	view := LazyView1(func(n int) *VNode {
		calls++
		return Span(strconv.Itoa(n))
	})

	h := newHarness()
	h.view.Update(Div(Lazy(view, 1)))
	h.view.Update(Div(Lazy(view, 1)))
	h.view.Update(Div(Lazy(view, 1)))

	if calls != 1 {
		t.Errorf("view called %d times, want 1", calls)
	}

	h.view.Update(Div(Lazy(view, 5)))
	if calls != 2 {
		t.Errorf("view called %d times, want 2", calls)
	}
	if got := host.TextContent(h.root()); got != "5" {
		t.Errorf("text = %q, want 5", got)
	}
}

func TestViewCustomNode(t *testing.T) {
	impl := &CustomImpl{
		Name: "gauge",
		Render: func(h host.Host, model any) host.Node {
			n := h.CreateElement("canvas", "")
			h.SetAttribute(n, "data-level", strconv.Itoa(model.(int)))
			return n
		},
		Diff: func(a, b any) CustomPatch {
			if a == b {
				return nil
			}
			return func(h host.Host, n host.Node) host.Node {
				h.SetAttribute(n, "data-level", strconv.Itoa(b.(int)))
				return n
			}
		},
	}
	replace := &CustomImpl{
		Name: "swap",
		Render: func(h host.Host, model any) host.Node {
			return h.CreateText(model.(string))
		},
		Diff: func(a, b any) CustomPatch {
			return func(h host.Host, n host.Node) host.Node {
				return h.CreateText(b.(string))
			}
		},
	}

	h := newHarness()
	h.view.Update(Div(Custom([]Fact{Class("g")}, 1, impl), Custom(nil, "x", replace)))
	canvas := h.root().Children[0]

	h.view.Update(Div(Custom([]Fact{Class("g")}, 7, impl), Custom(nil, "y", replace)))

	if h.root().Children[0] != canvas {
		t.Error("custom patch should keep the canvas node")
	}
	want := `<div><canvas class="g" data-level="7"></canvas>y</div>`
	if diff := cmp.Diff(want, host.HTML(h.root())); diff != "" {
		t.Errorf("HTML mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchObserver(t *testing.T) {
	var seen []string
	h := newHarness(WithPatchObserver(func(p *Patch) {
		seen = append(seen, p.Kind.String())
	}))

	view := LazyView1(func(s string) *VNode { return Span(s) })
	h.view.Update(Div(Lazy(view, "a"), Ul(Li("x"))))
	h.view.Update(Div(Lazy(view, "b"), Ul(Li("x"), Li("y"))))

	want := []string{"Thunk", "Text", "Append"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("observed patches mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyWithoutParent(t *testing.T) {
	doc := host.NewDocument()
	e := NewEngine(doc)
	root := NewRootEventNode(func(any) {})

	old := Div(Text("a"))
	real := e.Render(old, root)

	next := Span(Text("a"))
	got := e.Apply(real, nil, old, Diff(old, next), root)

	if got == real {
		t.Fatal("Apply should return the redrawn root")
	}
	if tag := got.(*host.MemNode).Tag; tag != "span" {
		t.Errorf("tag = %q, want span", tag)
	}
}
