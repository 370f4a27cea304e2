package host

import "testing"

type recorder struct {
	name string
	log  *[]string
	stop bool
}

func (r *recorder) HandleEvent(ev *Event) {
	*r.log = append(*r.log, r.name)
	if r.stop {
		ev.StopPropagation()
	}
}

func TestInsertBeforeMovesAttachedChild(t *testing.T) {
	d := NewDocument()
	a := d.CreateElement("a", "")
	b := d.CreateElement("b", "")
	c := d.CreateElement("c", "")
	for _, n := range []Node{a, b, c} {
		d.AppendChild(d.Body(), n)
	}

	d.InsertBefore(d.Body(), c, a)

	got := HTML(d.Body())
	want := "<body><c></c><a></a><b></b></body>"
	if got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
	if len(d.Body().Children) != 3 {
		t.Errorf("children = %d, want 3", len(d.Body().Children))
	}
}

func TestReplaceChild(t *testing.T) {
	d := NewDocument()
	old := d.CreateText("old")
	d.AppendChild(d.Body(), old)
	n := d.CreateElement("p", "")

	d.ReplaceChild(d.Body(), n, old)

	if d.ChildAt(d.Body(), 0) != n {
		t.Fatal("replacement not at index 0")
	}
	if old.(*MemNode).Parent != nil {
		t.Error("old node still has a parent")
	}
}

func TestDispatchBubblesUntilStopped(t *testing.T) {
	d := NewDocument()
	outer := d.CreateElement("div", "").(*MemNode)
	inner := d.CreateElement("button", "").(*MemNode)
	d.AppendChild(d.Body(), outer)
	d.AppendChild(outer, inner)

	var log []string
	d.AddEventListener(d.Body(), "click", &recorder{name: "body", log: &log})
	d.AddEventListener(outer, "click", &recorder{name: "outer", log: &log, stop: true})
	d.AddEventListener(inner, "click", &recorder{name: "inner", log: &log})

	ev := d.Dispatch(inner, "click", nil)

	if len(log) != 2 || log[0] != "inner" || log[1] != "outer" {
		t.Errorf("log = %v, want [inner outer]", log)
	}
	if !ev.Stopped() {
		t.Error("event should be stopped")
	}
}

func TestRemoveEventListener(t *testing.T) {
	d := NewDocument()
	n := d.CreateElement("div", "").(*MemNode)
	var log []string
	l := &recorder{name: "x", log: &log}
	d.AddEventListener(n, "click", l)
	d.RemoveEventListener(n, "click", l)

	d.Dispatch(n, "click", nil)

	if len(log) != 0 {
		t.Errorf("listener still called: %v", log)
	}
	if n.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", n.ListenerCount())
	}
}

func TestHTMLSortsAttributesAndStyles(t *testing.T) {
	d := NewDocument()
	n := d.CreateElement("div", "")
	d.SetAttribute(n, "id", "x")
	d.SetAttribute(n, "class", "a<b")
	d.SetStyle(n, "color", "red")
	d.SetStyle(n, "background", "blue")
	d.AppendChild(n, d.CreateText("1 < 2"))

	got := HTML(n.(*MemNode))
	want := `<div class="a&lt;b" id="x" style="background: blue; color: red;">1 &lt; 2</div>`
	if got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
}

func TestFindAndTextContent(t *testing.T) {
	d := NewDocument()
	ul := d.CreateElement("ul", "")
	d.AppendChild(d.Body(), ul)
	for _, s := range []string{"a", "b"} {
		li := d.CreateElement("li", "")
		d.AppendChild(li, d.CreateText(s))
		d.AppendChild(ul, li)
	}

	if got := d.Find(d.Body(), 0, 1, 0); got == nil || got.Text != "b" {
		t.Errorf("Find(0,1,0) = %v, want text b", got)
	}
	if got := d.Find(d.Body(), 0, 5); got != nil {
		t.Errorf("Find out of range = %v, want nil", got)
	}
	if got := TextContent(d.Body()); got != "ab" {
		t.Errorf("TextContent = %q, want ab", got)
	}
}
