package vdom

import "fmt"

// createElement creates a new element with the given tag and arguments.
// Arguments can be: nil, Fact, []Fact, *VNode, []*VNode, string.
func createElement(tag string, args []any) *VNode {
	var facts []Fact
	var children []*VNode

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional facts and children)
			continue
		case Fact:
			facts = append(facts, v)
		case []Fact:
			facts = append(facts, v...)
		case *VNode:
			if v != nil {
				children = append(children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					children = append(children, c)
				}
			}
		case string:
			children = append(children, Text(v))
		default:
			panic(fmt.Sprintf("vdom: unsupported %s argument of type %T", tag, arg))
		}
	}

	return Element(tag, facts, children)
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Sectioning and text

func Div(args ...any) *VNode     { return createElement("div", args) }
func Span(args ...any) *VNode    { return createElement("span", args) }
func P(args ...any) *VNode       { return createElement("p", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Ul(args ...any) *VNode      { return createElement("ul", args) }
func Li(args ...any) *VNode      { return createElement("li", args) }
func A(args ...any) *VNode       { return createElement("a", args) }
func Strong(args ...any) *VNode  { return createElement("strong", args) }
func Code(args ...any) *VNode    { return createElement("code", args) }

// Forms

func Button(args ...any) *VNode { return createElement("button", args) }
func Input(args ...any) *VNode  { return createElement("input", args) }
func Label(args ...any) *VNode  { return createElement("label", args) }

// SVG

// SVGNamespace is the namespace used by Svg and its children.
const SVGNamespace = "http://www.w3.org/2000/svg"

// Svg creates an svg element in the SVG namespace.
func Svg(facts []Fact, children ...*VNode) *VNode {
	return ElementNS(SVGNamespace, "svg", facts, children)
}

// Circle creates an SVG circle element.
func Circle(facts ...Fact) *VNode {
	return ElementNS(SVGNamespace, "circle", facts, nil)
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// RangeKeyed maps a slice to keyed children.
func RangeKeyed[T any](items []T, key func(T) string, fn func(item T) *VNode) []KeyedChild {
	result := make([]KeyedChild, 0, len(items))
	for _, item := range items {
		result = append(result, KeyedChild{Key: key(item), Node: fn(item)})
	}
	return result
}
