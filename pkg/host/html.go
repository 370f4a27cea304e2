package host

import (
	"io"
	"sort"
	"strings"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// HTML serializes n and its subtree. Attributes and styles are written in
// key order so two structurally equal trees serialize identically.
func HTML(n *MemNode) string {
	var b strings.Builder
	_ = WriteHTML(&b, n)
	return b.String()
}

// WriteHTML streams the serialization of n to w.
func WriteHTML(w io.Writer, n *MemNode) error {
	sw, ok := w.(io.StringWriter)
	if !ok {
		sw = &stringWriter{w}
	}
	return writeNode(sw, n)
}

type stringWriter struct{ io.Writer }

func (s *stringWriter) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

func writeNode(w io.StringWriter, n *MemNode) error {
	if n.IsText {
		_, err := w.WriteString(escapeHTML(n.Text))
		return err
	}

	if _, err := w.WriteString("<" + n.Tag); err != nil {
		return err
	}
	if err := writeAttributes(w, n); err != nil {
		return err
	}
	if _, err := w.WriteString(">"); err != nil {
		return err
	}
	if voidElements[n.Tag] && len(n.Children) == 0 {
		return nil
	}
	for _, c := range n.Children {
		if err := writeNode(w, c); err != nil {
			return err
		}
	}
	_, err := w.WriteString("</" + n.Tag + ">")
	return err
}

func writeAttributes(w io.StringWriter, n *MemNode) error {
	type pair struct{ k, v string }
	var attrs []pair
	for k, v := range n.Attrs {
		attrs = append(attrs, pair{k, v})
	}
	for k, a := range n.AttrsNS {
		attrs = append(attrs, pair{k, a.Value})
	}
	if len(n.Styles) > 0 {
		keys := make([]string, 0, len(n.Styles))
		for k := range n.Styles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var style strings.Builder
		for i, k := range keys {
			if i > 0 {
				style.WriteString(" ")
			}
			style.WriteString(k + ": " + n.Styles[k] + ";")
		}
		attrs = append(attrs, pair{"style", style.String()})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].k < attrs[j].k })

	for _, a := range attrs {
		if _, err := w.WriteString(" " + a.k + `="` + escapeAttr(a.v) + `"`); err != nil {
			return err
		}
	}
	return nil
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for safe inclusion in a double-quoted attribute.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#10;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}
