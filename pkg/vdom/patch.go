package vdom

import "github.com/vango-dev/vela/pkg/host"

// PatchKind is the type of patch operation.
type PatchKind uint8

const (
	PatchRedraw     PatchKind = iota // Render a new subtree in place of the old one
	PatchFacts                       // Apply a FactsDiff
	PatchText                        // Replace text content
	PatchThunk                       // Apply nested patches of a lazy node
	PatchTagger                      // Replace the tagger chain of a Tagged node
	PatchRemoveLast                  // Drop trailing children
	PatchAppend                      // Append new trailing children
	PatchRemove                      // Remove (or start moving) a keyed child
	PatchReorder                     // Keyed children reconciliation result
	PatchCustom                      // Delegate to a CustomImpl
)

// String returns the string representation of the PatchKind.
func (k PatchKind) String() string {
	switch k {
	case PatchRedraw:
		return "Redraw"
	case PatchFacts:
		return "Facts"
	case PatchText:
		return "Text"
	case PatchThunk:
		return "Thunk"
	case PatchTagger:
		return "TaggerChange"
	case PatchRemoveLast:
		return "RemoveLast"
	case PatchAppend:
		return "Append"
	case PatchRemove:
		return "Remove"
	case PatchReorder:
		return "Reorder"
	case PatchCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Patch is a single mutation of the retained tree. Index is the target's
// position in the traversal order of the previous virtual tree.
type Patch struct {
	Kind  PatchKind
	Index int

	Node    *VNode     // Redraw
	Facts   *FactsDiff // Facts
	Text    string     // Text
	Patches []*Patch   // Thunk
	Taggers []*Tagger  // TaggerChange

	// RemoveLast drops Count children starting at From. Append renders
	// Kids[From:] at the end.
	From  int
	Count int
	Kids  []*VNode

	Move    *Move       // Remove; nil for a plain removal
	Reorder *Reorder    // Reorder
	Custom  CustomPatch // Custom

	// Filled in by address resolution.
	target    host.Node
	parent    host.Node
	eventNode *EventNode
}

// Reorder is the payload of a PatchReorder.
type Reorder struct {
	// Patches holds the child diffs and removals, in index order.
	Patches []*Patch
	// Inserts go to a fixed position among the children.
	Inserts []Insert
	// EndInserts are appended after everything else; nil when there are none.
	EndInserts []Insert
}

// Insert places an entry's node among the children of a keyed element.
// Index is ignored for end inserts.
type Insert struct {
	Index int
	Entry *Entry
}

// EntryState tracks what happened to a key during reconciliation.
type EntryState uint8

const (
	EntryInserted EntryState = iota
	EntryRemoved
	EntryMoved
)

// Entry is the reconciliation record for one key. When a key is both
// removed and inserted, the entry becomes a move and the retained node is
// reused.
type Entry struct {
	Key   string
	State EntryState
	Node  *VNode

	index       int
	removePatch *Patch
	real        host.Node
}

// Move is attached to a Remove patch whose node is re-inserted elsewhere.
type Move struct {
	Patches []*Patch
	Entry   *Entry
}

// FactsDiff lists the fact changes of one element. A nil map means no
// change in that category.
type FactsDiff struct {
	Props   map[string]any      // nil value removes
	Attrs   map[string]*string  // nil value removes
	AttrsNS map[string]NSChange // nil Value removes
	Styles  map[string]string   // "" clears
	Events  map[string]*Handler // nil removes
}

// NSChange is a namespaced attribute change.
type NSChange struct {
	Namespace string
	Value     *string
}

func (d *FactsDiff) empty() bool {
	return d.Props == nil && d.Attrs == nil && d.AttrsNS == nil && d.Styles == nil && d.Events == nil
}

func pushPatch(patches *[]*Patch, p *Patch) *Patch {
	*patches = append(*patches, p)
	return p
}
