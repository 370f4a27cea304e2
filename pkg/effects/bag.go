package effects

type bagKind uint8

const (
	bagLeaf bagKind = iota
	bagBatch
	bagMap
)

// Bag is an immutable tree of effect descriptions. A nil *Bag is the empty
// bag.
type Bag struct {
	kind bagKind

	home  string // bagLeaf
	value any    // bagLeaf

	bags []*Bag // bagBatch

	tagger func(any) any // bagMap
	inner  *Bag          // bagMap
}

// Leaf returns a bag holding one effect value for the manager registered
// under home.
func Leaf(home string, value any) *Bag {
	return &Bag{kind: bagLeaf, home: home, value: value}
}

// Batch combines bags. Nil entries are skipped.
func Batch(bags ...*Bag) *Bag {
	return &Bag{kind: bagBatch, bags: bags}
}

// None is the empty bag.
func None() *Bag { return nil }

// MapBag wraps bag so every message its effects produce goes through fn
// before it reaches the application. Nested MapBag calls apply the
// innermost fn first.
func MapBag(fn func(any) any, bag *Bag) *Bag {
	if bag == nil {
		return nil
	}
	return &Bag{kind: bagMap, tagger: fn, inner: bag}
}

// taggers is the chain collected while walking MapBag layers, innermost
// first.
type taggers []func(any) any

func (ts taggers) apply(msg any) any {
	for _, fn := range ts {
		msg = fn(msg)
	}
	return msg
}

// gather calls visit for every leaf of bag with the tagger chain wrapping
// it.
func gather(bag *Bag, chain taggers, visit func(home string, value any, chain taggers)) {
	if bag == nil {
		return
	}
	switch bag.kind {
	case bagLeaf:
		visit(bag.home, bag.value, chain)
	case bagBatch:
		for _, b := range bag.bags {
			gather(b, chain, visit)
		}
	case bagMap:
		// The inner tagger runs before every tagger already collected.
		next := make(taggers, 0, len(chain)+1)
		next = append(next, bag.tagger)
		next = append(next, chain...)
		gather(bag.inner, next, visit)
	}
}
