/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/face"
	"github.com/ccnlabs/ccnd/ndn"
	"github.com/ccnlabs/ccnd/table"
)

// OutboundFaces computes the propagation face set for an interest
// arriving on from, grounded in get_outbound_faces: scope 0 forwards
// nowhere, scope 1 excludes link-framed faces, and any other scope
// (including "no scope restriction") forwards to every other face
// (spec.md §4.4). This is explicitly "where a forwarding table would
// be plugged in" in the original; dynamic FIB is a Non-goal here too,
// so every face is a candidate.
func (d *Daemon) OutboundFaces(from *face.Face, scope *int) []uint32 {
	var out []uint32
	if scope != nil && *scope == 0 {
		return out
	}
	blockLinkFramed := scope != nil && *scope == 1
	d.Faces.Each(func(f *face.Face) {
		if f == from {
			return
		}
		if blockLinkFramed && f.IsLinkFramed {
			return
		}
		out = append(out, f.ID)
	})
	return out
}

// SpliceNonceIfAbsent ensures wire carries a nonce, generating and
// re-encoding one when interest arrived without it, grounded in
// propagate_interest's "this interest has no nonce; add one before
// going on" branch (spec.md §4.4 "Nonce synthesis": "the modified
// bytes, not the original, are what propagates").
func (d *Daemon) SpliceNonceIfAbsent(interest *ndn.Interest, wire []byte) ([]byte, []byte) {
	if len(interest.Nonce) > 0 {
		return wire, interest.Nonce
	}
	nonce := make([]byte, 6)
	for i := range nonce {
		nonce[i] = byte(d.Rand.Intn(256))
	}
	interest.Nonce = nonce
	out, err := ndn.EncodeInterest(interest)
	if err != nil {
		return wire, nonce
	}
	return out, nonce
}

// PropagateInterest arms a new PropagatingEntry keyed by nonce and
// links it into prefix's ring, grounded in propagate_interest: a
// hashtable insert under the nonce, and a do_propagate task armed with
// a small random initial delay, uniform in [0, 8192) microseconds
// (spec.md §4.4 "the propagating entry drains its outbound set one
// face per tick"). It returns false if this nonce is already
// propagating (the "shouldn't happen much" duplicate-seek branch).
func (d *Daemon) PropagateInterest(from *face.Face, interest *ndn.Interest, wire []byte, prefix *table.PrefixEntry) bool {
	outbound := d.OutboundFaces(from, interest.Scope)
	if len(outbound) == 0 {
		return false
	}
	wire, nonce := d.SpliceNonceIfAbsent(interest, wire)

	pe := &table.PropagatingEntry{
		InterestMsg: wire,
		IngressFace: from.ID,
		Outbound:    outbound,
	}
	if !d.Propagating.Insert(nonce, pe) {
		return false
	}
	table.LinkToPrefix(prefix, pe)

	pe.Task = d.Sched.Schedule(d.randomPropagateDelayMicros(), func(canceled bool) int64 {
		return d.doPropagate(nonce, pe, canceled)
	})
	return true
}

// randomPropagateDelayMicros draws ccnd's own uniform [0, 8192)
// microsecond initial propagation delay (nrand48(h->seed) % 8192).
func (d *Daemon) randomPropagateDelayMicros() int64 {
	return int64(d.Rand.Intn(8192))
}

// doPropagate is do_propagate: each tick pops one face off pe's
// outbound stack, sends the interest to it if still live, and
// reschedules with a fresh delay in [PropagateDelayMinMicrosec,
// PropagateDelayMaxMicrosec] until the set drains. Once drained, pe
// transitions to the "awaiting reply" state instead of being removed
// outright: it stays keyed by nonce, still suppressing loops, until
// the reaper retires it after two idle sweep passes (spec.md §4.4,
// §4.7).
func (d *Daemon) doPropagate(nonce []byte, pe *table.PropagatingEntry, canceled bool) int64 {
	if canceled {
		pe.Outbound = nil
	}
	if len(pe.Outbound) > 0 {
		faceid := pe.Outbound[len(pe.Outbound)-1]
		pe.Outbound = pe.Outbound[:len(pe.Outbound)-1]
		if f := d.Faces.Lookup(faceid); f != nil {
			frame := face.FrameForSend(f, pe.InterestMsg)
			if ok, _ := f.TrySendDirect(frame); ok || f.HasQueuedOutput() {
				d.NOutInterests++
			}
		}
	}
	if len(pe.Outbound) == 0 {
		pe.Task = nil
		pe.AwaitingReply = true
		pe.IdlePasses = 0
		d.armReaper(0)
		return -1
	}
	return core.PropagateDelayMinMicrosec + int64(d.Rand.Intn(int(core.PropagateDelayMaxMicrosec-core.PropagateDelayMinMicrosec)+1))
}

// finishedPropagating retires pe outright: unlinks it from its prefix
// ring and drops it from the nonce table, grounded in
// finished_propagating. Called only by the reaper once an
// awaiting-reply entry has gone two sweep passes without activity
// (spec.md §4.7), never directly from doPropagate.
func (d *Daemon) finishedPropagating(nonce []byte, pe *table.PropagatingEntry) {
	table.Unlink(pe)
	d.Propagating.Remove(nonce)
}

// LookupLoop reports whether nonce is already propagating, and if so
// increments InterestsDropped, grounded in ccnd.c's loop-suppression
// check on interest arrival (spec.md §4.4 "Loop suppression").
func (d *Daemon) LookupLoop(nonce []byte) bool {
	if len(nonce) == 0 {
		return false
	}
	if d.Propagating.Lookup(nonce) != nil {
		d.InterestsDropped++
		return true
	}
	return false
}
