package vdom

import (
	"reflect"

	"github.com/vango-dev/vela/pkg/decode"
)

// Diff compares two VNode trees and returns the patches needed to transform
// prev into next. Patches are ordered by Index.
func Diff(prev, next *VNode) []*Patch {
	var patches []*Patch
	diffHelp(prev, next, &patches, 0)
	return patches
}

// diffHelp compares the nodes at traversal position index.
func diffHelp(x, y *VNode, patches *[]*Patch, index int) {
	if x == y {
		return
	}

	if x.Kind != y.Kind {
		pushPatch(patches, &Patch{Kind: PatchRedraw, Index: index, Node: y})
		return
	}

	switch y.Kind {
	case KindTagged:
		diffTagged(x, y, patches, index)

	case KindLazy:
		diffLazy(x, y, patches, index)

	case KindText:
		if x.Text != y.Text {
			pushPatch(patches, &Patch{Kind: PatchText, Index: index, Text: y.Text})
		}

	case KindElement:
		if x.Tag != y.Tag || x.Namespace != y.Namespace {
			pushPatch(patches, &Patch{Kind: PatchRedraw, Index: index, Node: y})
			return
		}
		diffFactsAt(x, y, patches, index)
		diffKids(x, y, patches, index)

	case KindKeyed:
		if x.Tag != y.Tag || x.Namespace != y.Namespace {
			pushPatch(patches, &Patch{Kind: PatchRedraw, Index: index, Node: y})
			return
		}
		diffFactsAt(x, y, patches, index)
		diffKeyedKids(x, y, patches, index)

	case KindCustom:
		if x.Impl != y.Impl {
			pushPatch(patches, &Patch{Kind: PatchRedraw, Index: index, Node: y})
			return
		}
		diffFactsAt(x, y, patches, index)
		if y.Impl.Diff != nil {
			if cp := y.Impl.Diff(x.Model, y.Model); cp != nil {
				pushPatch(patches, &Patch{Kind: PatchCustom, Index: index, Custom: cp})
			}
		}
	}
}

func diffTagged(x, y *VNode, patches *[]*Patch, index int) {
	xTaggers, xSub := unwrapTagged(x)
	yTaggers, ySub := unwrapTagged(y)

	if len(xTaggers) != len(yTaggers) {
		pushPatch(patches, &Patch{Kind: PatchRedraw, Index: index, Node: y})
		return
	}
	for i := range xTaggers {
		if xTaggers[i] != yTaggers[i] {
			pushPatch(patches, &Patch{Kind: PatchTagger, Index: index, Taggers: yTaggers})
			break
		}
	}

	// All collapsed layers share one index; the subtree starts right after.
	diffHelp(xSub, ySub, patches, index+1)
}

func diffLazy(x, y *VNode, patches *[]*Patch, index int) {
	if x.View == y.View && sameArgs(x.Args, y.Args) {
		y.cached = x.force()
		return
	}

	next := y.force()
	var sub []*Patch
	diffHelp(x.force(), next, &sub, 0)
	if len(sub) > 0 {
		pushPatch(patches, &Patch{Kind: PatchThunk, Index: index, Patches: sub})
	}
}

// diffKids handles unkeyed children by position. Trailing removals or
// additions are emitted at the parent's index ahead of the child patches.
func diffKids(x, y *VNode, patches *[]*Patch, index int) {
	xKids, yKids := x.Children, y.Children
	xLen, yLen := len(xKids), len(yKids)

	if xLen > yLen {
		pushPatch(patches, &Patch{Kind: PatchRemoveLast, Index: index, From: yLen, Count: xLen - yLen})
	} else if xLen < yLen {
		pushPatch(patches, &Patch{Kind: PatchAppend, Index: index, From: xLen, Kids: yKids})
	}

	minLen := min(xLen, yLen)
	for i := 0; i < minLen; i++ {
		xKid := xKids[i]
		index++
		diffHelp(xKid, yKids[i], patches, index)
		index += xKid.Descendants
	}
}

func diffFactsAt(x, y *VNode, patches *[]*Patch, index int) {
	if d := diffFacts(&x.Facts, &y.Facts); d != nil {
		pushPatch(patches, &Patch{Kind: PatchFacts, Index: index, Facts: d})
	}
}

// diffFacts returns nil when the two fact sets are equivalent.
func diffFacts(x, y *Facts) *FactsDiff {
	d := &FactsDiff{}

	for k, xv := range x.Props {
		yv, ok := y.Props[k]
		switch {
		case !ok:
			d.Props = setAny(d.Props, k, nil)
		case k == "value" || k == "checked" || !sameRef(xv, yv):
			// value and checked track user input, so they are always re-applied.
			d.Props = setAny(d.Props, k, yv)
		}
	}
	for k, yv := range y.Props {
		if _, ok := x.Props[k]; !ok {
			d.Props = setAny(d.Props, k, yv)
		}
	}

	for k, xv := range x.Attrs {
		yv, ok := y.Attrs[k]
		if !ok {
			d.Attrs = setStrPtr(d.Attrs, k, nil)
		} else if xv != yv {
			d.Attrs = setStrPtr(d.Attrs, k, &yv)
		}
	}
	for k, yv := range y.Attrs {
		if _, ok := x.Attrs[k]; !ok {
			v := yv
			d.Attrs = setStrPtr(d.Attrs, k, &v)
		}
	}

	for k, xv := range x.AttrsNS {
		yv, ok := y.AttrsNS[k]
		if !ok {
			d.AttrsNS = setNS(d.AttrsNS, k, NSChange{Namespace: xv.Namespace})
		} else if xv != yv {
			v := yv.Value
			d.AttrsNS = setNS(d.AttrsNS, k, NSChange{Namespace: yv.Namespace, Value: &v})
		}
	}
	for k, yv := range y.AttrsNS {
		if _, ok := x.AttrsNS[k]; !ok {
			v := yv.Value
			d.AttrsNS = setNS(d.AttrsNS, k, NSChange{Namespace: yv.Namespace, Value: &v})
		}
	}

	for k, xv := range x.Styles {
		yv, ok := y.Styles[k]
		if !ok {
			d.Styles = setStr(d.Styles, k, "")
		} else if xv != yv {
			d.Styles = setStr(d.Styles, k, yv)
		}
	}
	for k, yv := range y.Styles {
		if _, ok := x.Styles[k]; !ok {
			d.Styles = setStr(d.Styles, k, yv)
		}
	}

	for k, xv := range x.Events {
		yv, ok := y.Events[k]
		if !ok {
			d.Events = setHandler(d.Events, k, nil)
		} else if xv != yv && !equalHandlers(xv, yv) {
			d.Events = setHandler(d.Events, k, yv)
		}
	}
	for k, yv := range y.Events {
		if _, ok := x.Events[k]; !ok {
			d.Events = setHandler(d.Events, k, yv)
		}
	}

	if d.empty() {
		return nil
	}
	return d
}

// equalHandlers keeps identical handlers rebuilt on every render from
// producing a facts patch.
func equalHandlers(a, b *Handler) bool {
	return a.Options == b.Options && decode.Equal(a.Decoder, b.Decoder)
}

// sameRef is reference equality for values held in an any: comparable
// values compare with ==, reference types by address. Functions are never
// the same.
func sameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Func:
		return false
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	case reflect.Slice:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

func sameArgs(xs, ys []any) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !sameRef(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

func setAny(m map[string]any, k string, v any) map[string]any {
	if m == nil {
		m = make(map[string]any)
	}
	m[k] = v
	return m
}

func setStr(m map[string]string, k, v string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[k] = v
	return m
}

func setStrPtr(m map[string]*string, k string, v *string) map[string]*string {
	if m == nil {
		m = make(map[string]*string)
	}
	m[k] = v
	return m
}

func setNS(m map[string]NSChange, k string, v NSChange) map[string]NSChange {
	if m == nil {
		m = make(map[string]NSChange)
	}
	m[k] = v
	return m
}

func setHandler(m map[string]*Handler, k string, v *Handler) map[string]*Handler {
	if m == nil {
		m = make(map[string]*Handler)
	}
	m[k] = v
	return m
}
