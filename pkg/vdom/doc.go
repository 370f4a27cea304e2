// Package vdom is the virtual tree engine: an immutable node model, a diff
// that turns two trees into an ordered patch list, and a patch engine that
// applies that list to a retained tree through the host primitives.
//
// # Core Types
//
// VNode is the node type. Its Kind selects the variant: text, element,
// keyed element, tagged (a message mapper wrapped around a subtree), lazy
// (a memoized view) and custom (a node rendered and diffed by an
// application-supplied CustomImpl). Facts hold the properties, attributes,
// namespaced attributes, styles and event handlers of an element.
//
// # Element API
//
// Elements are built with variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    Button(OnClick(Increment), Text("+")),
//	)
//
// Keyed children use Keyed with KeyedChild values, and Map wraps a subtree
// so messages produced inside it are transformed before reaching the
// application.
//
// # Diffing
//
// Diff compares two trees and returns patches in traversal-index order.
// Children of keyed elements are reconciled with a single left-to-right
// scan that recognizes swaps, single insertions and single removals, and
// turns a removal and insertion of the same key into a move.
//
// # Applying
//
// Engine renders trees into a host.Host and applies patch lists to them.
// View ties an Engine to a mount point and keeps the previous tree, which
// is what the program renderer uses on every model change.
package vdom
