/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/face"
	"github.com/ccnlabs/ccnd/ndn"
)

func TestOutboundFacesExcludesIngressAndRespectsScope(t *testing.T) {
	d := newTestDaemon()
	from := &face.Face{Fd: -1}
	d.Faces.Enroll(from)

	other := &face.Face{Fd: -1}
	otherID, _ := d.Faces.Enroll(other)

	out := d.OutboundFaces(from, nil)
	assert.ElementsMatch(t, []uint32{otherID}, out)

	scopeZero := 0
	assert.Empty(t, d.OutboundFaces(from, &scopeZero))

	linked := &face.Face{Fd: -1, IsLinkFramed: true}
	linkedID, _ := d.Faces.Enroll(linked)

	scopeOne := 1
	out = d.OutboundFaces(from, &scopeOne)
	assert.NotContains(t, out, linkedID)
	assert.Contains(t, out, otherID)
}

func TestSpliceNonceIfAbsentGeneratesNonceOnce(t *testing.T) {
	d := newTestDaemon()
	name := ndn.NewNameFromComponents([]byte("go"))
	it := ndn.NewInterest(name)
	wire, err := ndn.EncodeInterest(it)
	assert.NoError(t, err)

	newWire, nonce := d.SpliceNonceIfAbsent(it, wire)
	assert.Len(t, nonce, 6)
	assert.Equal(t, it.Nonce, nonce)
	assert.NotEqual(t, wire, newWire)

	sameWire, sameNonce := d.SpliceNonceIfAbsent(it, newWire)
	assert.Equal(t, newWire, sameWire)
	assert.Equal(t, nonce, sameNonce)
}

func TestLookupLoopDropsDuplicateNonceAndCountsIt(t *testing.T) {
	d := newTestDaemon()
	name := ndn.NewNameFromComponents([]byte("go"))
	it := ndn.NewInterest(name)
	wire, err := ndn.EncodeInterest(it)
	assert.NoError(t, err)

	from := &face.Face{Fd: -1}
	d.Faces.Enroll(from)
	egressFd, _ := makePipe(t)
	egress := &face.Face{Fd: egressFd}
	d.Faces.Enroll(egress)

	prefix := d.Prefixes.GetOrCreate([]byte("go"))
	ok := d.PropagateInterest(from, it, wire, prefix)
	assert.True(t, ok)
	assert.Equal(t, 1, d.Propagating.Len())

	assert.True(t, d.LookupLoop(it.Nonce))
	assert.EqualValues(t, 1, d.InterestsDropped)
}

func TestPropagateInterestSendsToOutboundFacesThenAwaitsReplyThenReaps(t *testing.T) {
	d, clock := newTestDaemonWithClock()

	from := &face.Face{Fd: -1}
	d.Faces.Enroll(from)

	egressFd, egressRead := makePipe(t)
	egress := &face.Face{Fd: egressFd}
	d.Faces.Enroll(egress)

	name := ndn.NewNameFromComponents([]byte("go"))
	it := ndn.NewInterest(name)
	wire, err := ndn.EncodeInterest(it)
	assert.NoError(t, err)

	prefix := d.Prefixes.GetOrCreate([]byte("go"))
	ok := d.PropagateInterest(from, it, wire, prefix)
	assert.True(t, ok)
	assert.Equal(t, 1, d.Propagating.Len())

	// A single tick drains the one outbound face and, in the same
	// stroke, arms the reaper for its first pass over the newly
	// awaiting-reply entry (Scheduler.Run fires every task due at or
	// before "now", and armReaper(0) arms with a zero delay). The entry
	// must not vanish once the outbound set empties — it keeps
	// suppressing loops for this nonce until it has gone two
	// consecutive idle reaper passes.
	propagateDeadline := d.Sched.NextDeadlineMicros()
	assert.GreaterOrEqual(t, propagateDeadline, int64(0))
	clock.now = propagateDeadline
	d.Sched.Run()

	assert.EqualValues(t, 1, d.NOutInterests)
	assert.Equal(t, 1, d.Propagating.Len())
	assert.True(t, d.LookupLoop(it.Nonce))

	buf := make([]byte, 256)
	n, err := egressRead.Read(buf)
	assert.NoError(t, err)
	assert.Greater(t, n, 0)

	// A second consecutive idle reaper pass retires it.
	reaperDeadline := d.Sched.NextDeadlineMicros()
	assert.GreaterOrEqual(t, reaperDeadline, int64(0))
	clock.now = reaperDeadline
	d.Sched.Run()
	assert.Equal(t, 0, d.Propagating.Len())
}

func TestPropagateInterestNoOutboundFacesReturnsFalse(t *testing.T) {
	d := newTestDaemon()
	from := &face.Face{Fd: -1}
	d.Faces.Enroll(from)

	name := ndn.NewNameFromComponents([]byte("go"))
	it := ndn.NewInterest(name)
	wire, err := ndn.EncodeInterest(it)
	assert.NoError(t, err)

	prefix := d.Prefixes.GetOrCreate([]byte("go"))
	ok := d.PropagateInterest(from, it, wire, prefix)
	assert.False(t, ok)
	assert.Equal(t, 0, d.Propagating.Len())
}
