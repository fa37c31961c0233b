/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"github.com/ccnlabs/ccnd/core"
)

// slotMask extracts the low bits of a face id that index
// facesByFaceID; MaxFaces is required to be a power of two (spec.md
// §3: "Face id encoding").
const slotMask = uint32(core.MaxFaces - 1)

// Table is the registry of connection endpoints (spec.md §2 component
// 2 / §4.1). A face id packs slot|generation; generation is bumped
// whenever the free list wraps so stale ids from a reused slot fail
// lookup (spec.md §3 "Face id encoding").
type Table struct {
	facesByFaceID []*Face
	freeList      []uint32 // free slot indices
	faceGen       uint32
	nextSlot      uint32 // next never-used slot, until freeList absorbs reclaimed ones
}

// NewTable creates an empty face table with an initial dense array.
func NewTable() *Table {
	return &Table{
		facesByFaceID: make([]*Face, 64),
	}
}

// Enroll assigns a stable face id to f and registers it in the table.
// It grows the dense array by roughly 1.5x when full, up to MaxFaces,
// and fails with ErrFaceTableFull once that hard cap is reached
// (spec.md §4.1).
func (t *Table) Enroll(f *Face) (uint32, error) {
	var slot uint32
	if n := len(t.freeList); n > 0 {
		slot = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		if t.nextSlot >= uint32(len(t.facesByFaceID)) {
			if uint32(len(t.facesByFaceID)) >= core.MaxFaces {
				return 0, core.ErrFaceTableFull
			}
			newSize := len(t.facesByFaceID) + len(t.facesByFaceID)/2
			if newSize > core.MaxFaces {
				newSize = core.MaxFaces
			}
			grown := make([]*Face, newSize)
			copy(grown, t.facesByFaceID)
			t.facesByFaceID = grown
		}
		slot = t.nextSlot
		t.nextSlot++
	}

	id := slot | (t.faceGen << faceIDSlotBits)
	f.ID = id
	t.facesByFaceID[slot] = f
	return id, nil
}

// faceIDSlotBits is the number of low bits reserved for the slot
// index; MaxFaces = 1<<16 so 16 bits suffice.
const faceIDSlotBits = 16

// Lookup returns the face with the given id, or nil if it does not
// exist or the slot has since been reused for a different generation
// (spec.md §4.1).
func (t *Table) Lookup(id uint32) *Face {
	slot := id & slotMask
	if int(slot) >= len(t.facesByFaceID) {
		return nil
	}
	f := t.facesByFaceID[slot]
	if f == nil || f.ID != id {
		return nil
	}
	return f
}

// Release clears the slot for id, returning it to the free list. Bumps
// the table's generation once the free list wraps back to slot 0 so
// that ids minted before the wrap can never resolve again (spec.md
// §4.1).
func (t *Table) Release(id uint32) {
	slot := id & slotMask
	if int(slot) >= len(t.facesByFaceID) || t.facesByFaceID[slot] == nil || t.facesByFaceID[slot].ID != id {
		return
	}
	t.facesByFaceID[slot] = nil
	t.freeList = append(t.freeList, slot)
	if len(t.freeList) >= len(t.facesByFaceID) {
		// One tick of faceGen changes bits above slotMask by exactly
		// MaxFaces in the combined id, invalidating every id minted
		// before the wrap (spec.md §3 "Face id encoding").
		t.faceGen++
	}
}

// Each calls fn for every live face in the table, in slot order. fn
// must not enroll or release faces.
func (t *Table) Each(fn func(*Face)) {
	for _, f := range t.facesByFaceID {
		if f != nil {
			fn(f)
		}
	}
}

// Len returns the number of live faces.
func (t *Table) Len() int {
	n := 0
	t.Each(func(*Face) { n++ })
	return n
}
