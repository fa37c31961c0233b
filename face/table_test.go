/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/face"
)

func TestTableEnrollAndLookup(t *testing.T) {
	tab := face.NewTable()
	f := &face.Face{}

	id, err := tab.Enroll(f)
	assert.NoError(t, err)
	assert.Equal(t, id, f.ID)
	assert.Same(t, f, tab.Lookup(id))
	assert.Equal(t, 1, tab.Len())
}

func TestTableReleaseInvalidatesStaleID(t *testing.T) {
	tab := face.NewTable()
	f := &face.Face{}
	id, _ := tab.Enroll(f)

	tab.Release(id)
	assert.Nil(t, tab.Lookup(id))
	assert.Equal(t, 0, tab.Len())
}

// TestTableReusesReleasedSlot exercises the free-list path: releasing
// and re-enrolling within the same generation reuses the freed slot
// and therefore the same face id, per spec.md §3's "Face id encoding".
func TestTableReusesReleasedSlot(t *testing.T) {
	tab := face.NewTable()
	f1 := &face.Face{}
	id1, _ := tab.Enroll(f1)
	tab.Release(id1)

	f2 := &face.Face{}
	id2, err := tab.Enroll(f2)
	assert.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Same(t, f2, tab.Lookup(id2))
}

// TestTableGenerationWrapInvalidatesOldIDs releases every slot in a
// freshly created table (which never grows beyond its initial size in
// this test) so the free list wraps and the generation bumps,
// invalidating every id minted before the wrap even though the
// underlying slots are immediately reused.
func TestTableGenerationWrapInvalidatesOldIDs(t *testing.T) {
	tab := face.NewTable()
	var ids []uint32
	for i := 0; i < 64; i++ {
		id, err := tab.Enroll(&face.Face{})
		assert.NoError(t, err)
		ids = append(ids, id)
	}
	for _, id := range ids {
		tab.Release(id)
	}

	newID, err := tab.Enroll(&face.Face{})
	assert.NoError(t, err)
	assert.NotEqual(t, ids[0], newID)
	assert.Nil(t, tab.Lookup(ids[0]))
}

func TestTableEachVisitsEveryLiveFace(t *testing.T) {
	tab := face.NewTable()
	tab.Enroll(&face.Face{})
	tab.Enroll(&face.Face{})
	tab.Enroll(&face.Face{})

	seen := 0
	tab.Each(func(*face.Face) { seen++ })
	assert.Equal(t, 3, seen)
}
