package vdom

// dupKeySuffix is appended to a key that was already inserted or removed
// in the same child list. Duplicate keys are a usage error; the suffix keeps
// the side table consistent instead of failing.
const dupKeySuffix = "\x00dup"

// diffKeyedKids reconciles keyed children with a single left-to-right scan
// that looks one entry ahead on each side. It recognizes matching keys, a
// swap of two neighbours, a single insertion, a single removal and a
// replacement. Anything else stops the scan and the remaining children are
// removed and inserted at the end, where matching keys still become moves.
func diffKeyedKids(xParent, yParent *VNode, patches *[]*Patch, rootIndex int) {
	var local []*Patch
	changes := make(map[string]*Entry)
	var inserts []Insert

	xKids, yKids := xParent.Keyed, yParent.Keyed
	xLen, yLen := len(xKids), len(yKids)
	xIndex, yIndex := 0, 0
	index := rootIndex

scan:
	for xIndex < xLen && yIndex < yLen {
		x, y := xKids[xIndex], yKids[yIndex]

		if x.Key == y.Key {
			index++
			diffHelp(x.Node, y.Node, &local, index)
			index += x.Node.Descendants

			xIndex++
			yIndex++
			continue
		}

		var xNext, yNext *KeyedChild
		if xIndex+1 < xLen {
			xNext = &xKids[xIndex+1]
		}
		if yIndex+1 < yLen {
			yNext = &yKids[yIndex+1]
		}

		oldMatch := xNext != nil && y.Key == xNext.Key
		newMatch := yNext != nil && x.Key == yNext.Key

		switch {
		case newMatch && oldMatch:
			// swap x and xNext
			index++
			diffHelp(x.Node, yNext.Node, &local, index)
			insertNode(changes, &local, y.Key, y.Node, yIndex, &inserts)
			index += x.Node.Descendants

			index++
			removeNode(changes, &local, xNext.Key, xNext.Node, index)
			index += xNext.Node.Descendants

			xIndex += 2
			yIndex += 2

		case newMatch:
			// insert y
			index++
			insertNode(changes, &local, y.Key, y.Node, yIndex, &inserts)
			diffHelp(x.Node, yNext.Node, &local, index)
			index += x.Node.Descendants

			xIndex++
			yIndex += 2

		case oldMatch:
			// remove x
			index++
			removeNode(changes, &local, x.Key, x.Node, index)
			index += x.Node.Descendants

			index++
			diffHelp(xNext.Node, y.Node, &local, index)
			index += xNext.Node.Descendants

			xIndex += 2
			yIndex++

		case xNext != nil && yNext != nil && xNext.Key == yNext.Key:
			// remove x, insert y
			index++
			removeNode(changes, &local, x.Key, x.Node, index)
			insertNode(changes, &local, y.Key, y.Node, yIndex, &inserts)
			index += x.Node.Descendants

			index++
			diffHelp(xNext.Node, yNext.Node, &local, index)
			index += xNext.Node.Descendants

			xIndex += 2
			yIndex += 2

		default:
			break scan
		}
	}

	for ; xIndex < xLen; xIndex++ {
		index++
		x := xKids[xIndex]
		removeNode(changes, &local, x.Key, x.Node, index)
		index += x.Node.Descendants
	}

	var endInserts []Insert
	for ; yIndex < yLen; yIndex++ {
		y := yKids[yIndex]
		if endInserts == nil {
			endInserts = make([]Insert, 0, yLen-yIndex)
		}
		insertNode(changes, &local, y.Key, y.Node, 0, &endInserts)
	}

	if len(local) > 0 || len(inserts) > 0 || endInserts != nil {
		pushPatch(patches, &Patch{
			Kind:  PatchReorder,
			Index: rootIndex,
			Reorder: &Reorder{
				Patches:    local,
				Inserts:    inserts,
				EndInserts: endInserts,
			},
		})
	}
}

// insertNode records that key appears in the new list. If the key was
// removed earlier in the scan, the pair becomes a move and the removed
// node's patch learns where its subtree diffs live.
func insertNode(changes map[string]*Entry, local *[]*Patch, key string, vnode *VNode, yIndex int, inserts *[]Insert) {
	entry, ok := changes[key]

	if !ok {
		entry = &Entry{
			Key:   key,
			State: EntryInserted,
			Node:  vnode,
			index: yIndex,
		}
		*inserts = append(*inserts, Insert{Index: yIndex, Entry: entry})
		changes[key] = entry
		return
	}

	if entry.State == EntryRemoved {
		*inserts = append(*inserts, Insert{Index: yIndex, Entry: entry})

		entry.State = EntryMoved
		var sub []*Patch
		diffHelp(entry.Node, vnode, &sub, entry.index)
		entry.index = yIndex
		entry.removePatch.Move = &Move{Patches: sub, Entry: entry}
		return
	}

	insertNode(changes, local, key+dupKeySuffix, vnode, yIndex, inserts)
}

// removeNode records that key left the old list at traversal index.
func removeNode(changes map[string]*Entry, local *[]*Patch, key string, vnode *VNode, index int) {
	entry, ok := changes[key]

	if !ok {
		p := pushPatch(local, &Patch{Kind: PatchRemove, Index: index})
		changes[key] = &Entry{
			Key:         key,
			State:       EntryRemoved,
			Node:        vnode,
			index:       index,
			removePatch: p,
		}
		return
	}

	if entry.State == EntryInserted {
		entry.State = EntryMoved
		var sub []*Patch
		diffHelp(vnode, entry.Node, &sub, index)
		pushPatch(local, &Patch{
			Kind:  PatchRemove,
			Index: index,
			Move:  &Move{Patches: sub, Entry: entry},
		})
		return
	}

	removeNode(changes, local, key+dupKeySuffix, vnode, index)
}
