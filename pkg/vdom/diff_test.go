package vdom

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vela/pkg/decode"
	"github.com/vango-dev/vela/pkg/host"
)

func patchKinds(patches []*Patch) []string {
	kinds := make([]string, len(patches))
	for i, p := range patches {
		kinds[i] = p.Kind.String() + "@" + strconv.Itoa(p.Index)
	}
	return kinds
}

func TestDiffSameReference(t *testing.T) {
	v := Div(Class("a"), Text("x"))
	if patches := Diff(v, v); len(patches) != 0 {
		t.Errorf("Expected 0 patches, got %v", patchKinds(patches))
	}
}

func TestDiffEquivalentTrees(t *testing.T) {
	build := func() *VNode {
		return Div(Class("card"), Attribute("role", "note"), Style("color", "red"),
			Span("a"),
			Button(OnClick("go"), "b"),
		)
	}
	if patches := Diff(build(), build()); len(patches) != 0 {
		t.Errorf("Expected 0 patches, got %v", patchKinds(patches))
	}
}

func TestDiffTextChange(t *testing.T) {
	patches := Diff(Div(Text("a")), Div(Text("b")))

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Kind != PatchText {
		t.Errorf("Kind = %v, want Text", patches[0].Kind)
	}
	if patches[0].Index != 1 {
		t.Errorf("Index = %d, want 1", patches[0].Index)
	}
	if patches[0].Text != "b" {
		t.Errorf("Text = %q, want b", patches[0].Text)
	}
}

func TestDiffKindMismatch(t *testing.T) {
	next := Div()
	patches := Diff(Text("a"), next)

	if len(patches) != 1 || patches[0].Kind != PatchRedraw {
		t.Fatalf("patches = %v, want [Redraw@0]", patchKinds(patches))
	}
	if patches[0].Node != next {
		t.Error("Redraw should carry the new node")
	}
}

func TestDiffTagMismatch(t *testing.T) {
	patches := Diff(Div(Span("x")), Div(P("x")))
	if diff := cmp.Diff([]string{"Redraw@1"}, patchKinds(patches)); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffIndexSkipsDescendants(t *testing.T) {
	// div(0) > [div(1) > [a(2), b(3)], c(4)]
	prev := Div(Div(Text("a"), Text("b")), Text("c"))
	next := Div(Div(Text("a"), Text("b")), Text("d"))

	patches := Diff(prev, next)
	if diff := cmp.Diff([]string{"Text@4"}, patchKinds(patches)); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffAppend(t *testing.T) {
	next := Ul(Li("a"), Li("b"), Li("c"))
	patches := Diff(Ul(Li("a")), next)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %v", patchKinds(patches))
	}
	p := patches[0]
	if p.Kind != PatchAppend || p.Index != 0 {
		t.Fatalf("patch = %s@%d, want Append@0", p.Kind, p.Index)
	}
	if p.From != 1 {
		t.Errorf("From = %d, want 1", p.From)
	}
	if len(p.Kids) != 3 {
		t.Errorf("len(Kids) = %d, want 3", len(p.Kids))
	}
}

func TestDiffRemoveLastBeforeChildPatches(t *testing.T) {
	patches := Diff(Ul(Li("a"), Li("b"), Li("c")), Ul(Li("z")))

	if diff := cmp.Diff([]string{"RemoveLast@0", "Text@2"}, patchKinds(patches)); diff != "" {
		t.Fatalf("patches mismatch (-want +got):\n%s", diff)
	}
	if patches[0].From != 1 || patches[0].Count != 2 {
		t.Errorf("RemoveLast From=%d Count=%d, want 1 and 2", patches[0].From, patches[0].Count)
	}
}

func TestDiffFacts(t *testing.T) {
	prev := Div(ID("x"), Style("color", "red"), Attribute("title", "t"))
	next := Div(ID("y"), Attribute("role", "r"))

	patches := Diff(prev, next)
	if len(patches) != 1 || patches[0].Kind != PatchFacts {
		t.Fatalf("patches = %v, want [Facts@0]", patchKinds(patches))
	}
	d := patches[0].Facts

	if diff := cmp.Diff(map[string]any{"id": "y"}, d.Props); diff != "" {
		t.Errorf("Props mismatch (-want +got):\n%s", diff)
	}
	role := "r"
	if diff := cmp.Diff(map[string]*string{"title": nil, "role": &role}, d.Attrs); diff != "" {
		t.Errorf("Attrs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"color": ""}, d.Styles); diff != "" {
		t.Errorf("Styles mismatch (-want +got):\n%s", diff)
	}
	if d.Events != nil {
		t.Errorf("Events = %v, want nil", d.Events)
	}
}

func TestDiffNamespacedAttribute(t *testing.T) {
	const xlink = "http://www.w3.org/1999/xlink"
	prev := Svg([]Fact{AttributeNS(xlink, "href", "#a")})
	next := Svg(nil)

	patches := Diff(prev, next)
	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %v", patchKinds(patches))
	}
	c, ok := patches[0].Facts.AttrsNS["href"]
	if !ok {
		t.Fatal("Expected href change")
	}
	if c.Namespace != xlink || c.Value != nil {
		t.Errorf("change = %+v, want removal in xlink namespace", c)
	}
}

func TestDiffValueAlwaysReapplied(t *testing.T) {
	patches := Diff(Input(Value("a")), Input(Value("a")))

	if len(patches) != 1 || patches[0].Kind != PatchFacts {
		t.Fatalf("patches = %v, want [Facts@0]", patchKinds(patches))
	}
	if diff := cmp.Diff(map[string]any{"value": "a"}, patches[0].Facts.Props); diff != "" {
		t.Errorf("Props mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffEventHandlers(t *testing.T) {
	t.Run("equal decoders", func(t *testing.T) {
		if patches := Diff(Button(OnClick(1)), Button(OnClick(1))); len(patches) != 0 {
			t.Errorf("Expected 0 patches, got %v", patchKinds(patches))
		}
	})

	t.Run("changed message", func(t *testing.T) {
		next := Button(OnClick(2))
		patches := Diff(Button(OnClick(1)), next)
		if len(patches) != 1 {
			t.Fatalf("Expected 1 patch, got %v", patchKinds(patches))
		}
		if got := patches[0].Facts.Events["click"]; got != next.Facts.Events["click"] {
			t.Error("Expected the new click handler")
		}
	})

	t.Run("changed options", func(t *testing.T) {
		d := decode.Succeed(1)
		patches := Diff(Button(On("click", d)), Button(OnWith("click", Options{PreventDefault: true}, d)))
		if len(patches) != 1 {
			t.Errorf("Expected 1 patch, got %v", patchKinds(patches))
		}
	})

	t.Run("removed", func(t *testing.T) {
		patches := Diff(Button(OnClick(1)), Button())
		if len(patches) != 1 {
			t.Fatalf("Expected 1 patch, got %v", patchKinds(patches))
		}
		h, ok := patches[0].Facts.Events["click"]
		if !ok || h != nil {
			t.Errorf("Expected nil handler for click, got %v (present=%v)", h, ok)
		}
	})
}

func TestDiffTagged(t *testing.T) {
	t1 := NewTagger(func(m any) any { return m })
	t2 := NewTagger(func(m any) any { return m })

	t.Run("same tagger", func(t *testing.T) {
		patches := Diff(Map(t1, Text("a")), Map(t1, Text("b")))
		if diff := cmp.Diff([]string{"Text@1"}, patchKinds(patches)); diff != "" {
			t.Errorf("patches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("tagger change", func(t *testing.T) {
		patches := Diff(Map(t1, Div()), Map(t2, Div()))
		if diff := cmp.Diff([]string{"TaggerChange@0"}, patchKinds(patches)); diff != "" {
			t.Fatalf("patches mismatch (-want +got):\n%s", diff)
		}
		if len(patches[0].Taggers) != 1 || patches[0].Taggers[0] != t2 {
			t.Error("Expected the new tagger chain")
		}
	})

	t.Run("depth change", func(t *testing.T) {
		patches := Diff(Map(t1, Div()), Map(t1, Map(t2, Div())))
		if diff := cmp.Diff([]string{"Redraw@0"}, patchKinds(patches)); diff != "" {
			t.Errorf("patches mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDiffLazy(t *testing.T) {
	calls := 0
	view := LazyView1(func(n int) *VNode {
		calls++
		return Text(strconv.Itoa(n))
	})

	prev := Lazy(view, 1)
	same := Lazy(view, 1)
	if patches := Diff(prev, same); len(patches) != 0 {
		t.Fatalf("Expected 0 patches, got %v", patchKinds(patches))
	}
	if calls != 1 {
		t.Errorf("view called %d times, want 1", calls)
	}

	changed := Lazy(view, 2)
	patches := Diff(same, changed)
	if diff := cmp.Diff([]string{"Thunk@0"}, patchKinds(patches)); diff != "" {
		t.Fatalf("patches mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Text@0"}, patchKinds(patches[0].Patches)); diff != "" {
		t.Errorf("thunk patches mismatch (-want +got):\n%s", diff)
	}
	if calls != 2 {
		t.Errorf("view called %d times, want 2", calls)
	}
}

func TestDiffLazyDifferentView(t *testing.T) {
	a := LazyView1(func(s string) *VNode { return Text(s) })
	b := LazyView1(func(s string) *VNode { return Text(s) })

	// Equal output from a different view yields no patches.
	if patches := Diff(Lazy(a, "x"), Lazy(b, "x")); len(patches) != 0 {
		t.Errorf("Expected 0 patches, got %v", patchKinds(patches))
	}
}

func TestDiffCustom(t *testing.T) {
	render := func(h host.Host, model any) host.Node { return h.CreateElement("canvas", "") }
	diff := func(a, b any) CustomPatch {
		if a == b {
			return nil
		}
		return func(h host.Host, n host.Node) host.Node { return n }
	}
	implA := &CustomImpl{Name: "a", Render: render, Diff: diff}
	implB := &CustomImpl{Name: "b", Render: render, Diff: diff}

	if patches := Diff(Custom(nil, 1, implA), Custom(nil, 1, implA)); len(patches) != 0 {
		t.Errorf("Expected 0 patches, got %v", patchKinds(patches))
	}
	if got := patchKinds(Diff(Custom(nil, 1, implA), Custom(nil, 2, implA))); !cmp.Equal(got, []string{"Custom@0"}) {
		t.Errorf("patches = %v, want [Custom@0]", got)
	}
	if got := patchKinds(Diff(Custom(nil, 1, implA), Custom(nil, 1, implB))); !cmp.Equal(got, []string{"Redraw@0"}) {
		t.Errorf("patches = %v, want [Redraw@0]", got)
	}
}

func TestSameRef(t *testing.T) {
	m := map[string]int{}
	s := []int{1, 2}
	fn := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal strings", "a", "a", true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"same map", m, m, true},
		{"different maps", m, map[string]int{}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:1], false},
		{"funcs", fn, fn, false},
		{"nil", nil, nil, true},
		{"uncomparable struct", struct{ s []int }{s}, struct{ s []int }{s}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameRef(tt.a, tt.b); got != tt.want {
				t.Errorf("sameRef() = %v, want %v", got, tt.want)
			}
		})
	}
}
