/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/face"
	"github.com/ccnlabs/ccnd/fw"
	"github.com/ccnlabs/ccnd/ndn"
	"github.com/ccnlabs/ccnd/sched"
	"github.com/ccnlabs/ccnd/table"
)

// manualClock lets a test advance time deterministically, mirroring
// sched's own test clock.
type manualClock struct{ now int64 }

func (c *manualClock) NowMicros() int64 { return c.now }

func newTestDaemon() *fw.Daemon {
	d, _ := newTestDaemonWithClock()
	return d
}

func newTestDaemonWithClock() (*fw.Daemon, *manualClock) {
	clock := &manualClock{}
	d := &fw.Daemon{
		Faces:       face.NewTable(),
		Content:     table.NewContentStore(1),
		Prefixes:    table.NewPrefixTable(),
		Propagating: table.NewPropagatingTable(),
		Sched:       sched.New(clock),
		Rand:        rand.New(rand.NewSource(1)),
	}
	return d, clock
}

func insertContent(t *testing.T, cs *table.ContentStore, comps ...[]byte) *table.ContentEntry {
	t.Helper()
	name := ndn.NewNameFromComponents(comps...)
	entry, result := cs.Insert(name, []byte("wire"), []byte("tail"), 4, [32]byte{}, 0)
	assert.Equal(t, table.InsertedNew, result)
	return entry
}

// An interest's name must be a strict prefix of the content name, so
// an interest for exactly the stored name finds nothing.
func TestMatchTraversalExactNameIsNotAHit(t *testing.T) {
	d := newTestDaemon()
	insertContent(t, d.Content, []byte("go"), []byte("ndn"))

	it := ndn.NewInterest(ndn.NewNameFromComponents([]byte("go"), []byte("ndn")))
	hit := fw.MatchTraversal(d.Content, it, it.PrefixComponents(), 0, false, func(*table.ContentEntry) bool { return true })
	assert.Nil(t, hit)
}

func TestMatchTraversalNoCandidateBelowPrefix(t *testing.T) {
	d := newTestDaemon()
	insertContent(t, d.Content, []byte("go"))

	it := ndn.NewInterest(ndn.NewNameFromComponents([]byte("go"), []byte("ndn")))
	hit := fw.MatchTraversal(d.Content, it, it.PrefixComponents(), 0, false, func(*table.ContentEntry) bool { return true })
	assert.Nil(t, hit)
}

func TestMatchTraversalRightmostReturnsLastMatch(t *testing.T) {
	d := newTestDaemon()
	insertContent(t, d.Content, []byte("go"), []byte("a"))
	insertContent(t, d.Content, []byte("go"), []byte("b"))
	insertContent(t, d.Content, []byte("go"), []byte("c"))

	it := ndn.NewInterest(ndn.NewNameFromComponents([]byte("go")))
	hit := fw.MatchTraversal(d.Content, it, it.PrefixComponents(), 0, true, func(*table.ContentEntry) bool { return true })
	assert.NotNil(t, hit)

	next := d.Content.Next(hit)
	assert.Nil(t, next)
}

func TestResponseFilterPassesUsesBloomWhenPresent(t *testing.T) {
	sigHash := [32]byte{1, 2, 3}
	content := &table.ContentEntry{SigHash: sigHash}

	bloom := ndn.NewBloom(1)
	bloom.Add(sigHash)
	it := &ndn.Interest{ResponseFilter: bloom}
	assert.False(t, fw.ResponseFilterPasses(it, content, 1, false))

	empty := &ndn.Interest{}
	assert.True(t, fw.ResponseFilterPasses(empty, content, 1, false))
	assert.False(t, fw.ResponseFilterPasses(empty, content, 1, true))
}

func TestResponseFilterPassesUnblocksAlreadySentFaceWhenFilterSaysUnseen(t *testing.T) {
	content := &table.ContentEntry{
		SigHash:   [32]byte{9, 9, 9},
		Faces:     []uint32{1, 2},
		NFaceDone: 2,
		NFaceOld:  2,
	}

	// The filter's sig hash set doesn't include this content's, so the
	// requester claims not to have seen it, even though face 1 is
	// already in the done partition.
	bloom := ndn.NewBloom(1)
	bloom.Add([32]byte{1, 1, 1})
	it := &ndn.Interest{ResponseFilter: bloom}

	assert.True(t, fw.ResponseFilterPasses(it, content, 1, false))
	assert.NotContains(t, content.Faces, uint32(1))
	assert.Equal(t, 1, content.NFaceDone)
	assert.Contains(t, content.Faces, uint32(2))
}

func TestMatchInterestForFaceResendsAfterUnblock(t *testing.T) {
	d, clock := newTestDaemonWithClock()
	writeFd, readEnd := makePipe(t)
	f := &face.Face{Fd: writeFd}
	id, _ := d.Faces.Enroll(f)

	prefix := d.Prefixes.GetOrCreate(ndn.NewNameFromComponents([]byte("go")).Encoded)
	prefix.RecordDemand(id)

	content := insertContent(t, d.Content, []byte("go"), []byte("ndn"))
	matched := d.MatchInterestForFace(content, id)
	assert.Equal(t, 1, matched)

	clock.now = d.Sched.NextDeadlineMicros()
	d.Sched.Run()
	assert.Contains(t, content.Faces, id)
	assert.Equal(t, 1, content.NFaceDone)

	buf := make([]byte, 256)
	_, err := readEnd.Read(buf)
	assert.NoError(t, err)

	// A fresh interest whose filter says "not seen" clears the
	// previously-sent mark; the same demand recorded again drives a
	// second, genuine resend rather than being treated as already done.
	content.Unblock(id)
	prefix.RecordDemand(id)
	matched = d.MatchInterestForFace(content, id)
	assert.Equal(t, 1, matched)

	clock.now = d.Sched.NextDeadlineMicros()
	d.Sched.Run()
	assert.Contains(t, content.Faces, id)
	assert.Equal(t, 1, content.NFaceDone)

	n, err := readEnd.Read(buf)
	assert.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestMatchInterestsDeliversToWaitingFaceAndConsumesDemand(t *testing.T) {
	d := newTestDaemon()
	writeFd, _ := makePipe(t)
	f := &face.Face{Fd: writeFd}
	id, err := d.Faces.Enroll(f)
	assert.NoError(t, err)

	prefix := d.Prefixes.GetOrCreate(ndn.NewNameFromComponents([]byte("go")).Encoded)
	prefix.RecordDemand(id)

	content := insertContent(t, d.Content, []byte("go"), []byte("ndn"))
	matched := d.MatchInterests(content)

	assert.Equal(t, 1, matched)
	assert.Contains(t, content.Faces, id)
	assert.Equal(t, int64(0), prefix.Counters[0])
}

func TestMatchInterestsSkipsDeadFaceAndZeroesDemand(t *testing.T) {
	d := newTestDaemon()
	f := &face.Face{}
	id, _ := d.Faces.Enroll(f)
	prefix := d.Prefixes.GetOrCreate(ndn.NewNameFromComponents([]byte("go")).Encoded)
	prefix.RecordDemand(id)
	d.Faces.Release(id)

	content := insertContent(t, d.Content, []byte("go"), []byte("ndn"))
	matched := d.MatchInterests(content)

	assert.Equal(t, 0, matched)
	assert.Empty(t, content.Faces)
	assert.Equal(t, int64(0), prefix.Counters[0])
}

func TestMatchInterestForFaceRestrictsToOneFace(t *testing.T) {
	d := newTestDaemon()
	writeFd, _ := makePipe(t)
	f := &face.Face{Fd: writeFd}
	id, _ := d.Faces.Enroll(f)

	other := &face.Face{}
	otherID, _ := d.Faces.Enroll(other)

	prefix := d.Prefixes.GetOrCreate(ndn.NewNameFromComponents([]byte("go")).Encoded)
	prefix.RecordDemand(id)
	prefix.RecordDemand(otherID)

	content := insertContent(t, d.Content, []byte("go"), []byte("ndn"))
	matched := d.MatchInterestForFace(content, id)

	assert.Equal(t, 1, matched)
	assert.Contains(t, content.Faces, id)
	assert.NotContains(t, content.Faces, otherID)
}
