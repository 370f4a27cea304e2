// Package host defines the retained-tree primitives the patch engine is
// written against, and ships an in-memory retained tree that implements them.
//
// # Primitives
//
// Host is the complete capability surface used by pkg/vdom: node creation,
// attribute and style mutation, event listener registration, child list
// mutation and in-place text replacement. ChildAt is the only read
// primitive; it lets the patch engine walk the retained tree in lock-step
// with the previous virtual tree.
//
// # Memory
//
// Document is a retained tree held entirely in memory. It is used by tests,
// by the CLI demo and by the live server, which serializes it with HTML and
// routes browser events back through Dispatch:
//
//	doc := host.NewDocument()
//	btn := doc.CreateElement("button", "")
//	doc.AppendChild(doc.Body(), btn)
//	doc.Dispatch(btn, "click", nil)
package host
