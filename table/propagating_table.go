/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"github.com/cornelk/hashmap"

	"github.com/ccnlabs/ccnd/sched"
)

// PropagatingEntry is one outstanding forwarded interest awaiting
// replies, keyed by its nonce (spec.md §3 "Propagating interest
// entry"). Outbound holds the still-to-send face ids as a LIFO stack,
// popped one per do_propagate tick, grounded in ccnd.c's
// propagating_entry (interest_msg/size/faceid/outbound) plus the
// prev/next ring pointers used to attach it to its owning
// PrefixEntry.
type PropagatingEntry struct {
	InterestMsg []byte
	IngressFace uint32
	Outbound    []uint32
	Task        *sched.Task

	// AwaitingReply is set once Outbound has drained (spec.md §4.4): the
	// entry no longer sends, but stays keyed by nonce so LookupLoop
	// keeps suppressing duplicates until the reaper retires it.
	AwaitingReply bool
	// IdlePasses counts consecutive reaper sweeps since AwaitingReply
	// was set with no further activity; the reaper removes the entry
	// once this reaches 2 (spec.md §4.7), mirroring the "two quiet
	// passes" idiom fw/reap.go already uses for datagram faces.
	IdlePasses int

	prev, next *PropagatingEntry // ring pointers within a PrefixEntry.PropagatingHead
}

// PropagatingTable is the nonce-keyed hashtable of outstanding
// forwarded interests (spec.md §2 component 5), grounded in ccnd.c's
// h->propagating_tab.
type PropagatingTable struct {
	byNonce hashmap.HashMap
}

// NewPropagatingTable creates an empty table.
func NewPropagatingTable() *PropagatingTable {
	return &PropagatingTable{}
}

// Lookup returns the entry for nonce, or nil if the interest has not
// been seen before (spec.md §4.4 "Loop suppression").
func (t *PropagatingTable) Lookup(nonce []byte) *PropagatingEntry {
	v, ok := t.byNonce.GetStringKey(string(nonce))
	if !ok {
		return nil
	}
	return v.(*PropagatingEntry)
}

// Insert records a new propagating entry under nonce. It returns false
// without modifying the table if nonce is already present, mirroring
// hashtb_seek's HT_OLD_ENTRY branch in propagate_interest (the
// "interesting - this shouldn't happen much" case, since loop
// suppression should have already caught it on arrival).
func (t *PropagatingTable) Insert(nonce []byte, pe *PropagatingEntry) bool {
	actual, loaded := t.byNonce.GetOrInsert(string(nonce), pe)
	return !loaded && actual == pe
}

// Remove deletes nonce's entry.
func (t *PropagatingTable) Remove(nonce []byte) {
	t.byNonce.Del(string(nonce))
}

// Len reports the number of outstanding propagating entries, mirroring
// ccnd's hashtb_n(h->propagating_tab) count consulted by the reaper.
func (t *PropagatingTable) Len() int {
	return int(t.byNonce.Len())
}

// Each calls fn for every (nonce, entry) pair; used by the reaper sweep
// to find drained entries awaiting retirement (spec.md §4.7).
func (t *PropagatingTable) Each(fn func(nonce []byte, entry *PropagatingEntry)) {
	for kv := range t.byNonce.Iter() {
		fn([]byte(kv.Key.(string)), kv.Value.(*PropagatingEntry))
	}
}

// LinkToPrefix attaches pe to prefix's circular ring of propagating
// entries, creating the ring's sentinel head node on first use,
// grounded in link_propagating_interest_to_interest_entry.
func LinkToPrefix(prefix *PrefixEntry, pe *PropagatingEntry) {
	head := prefix.PropagatingHead
	if head == nil {
		head = &PropagatingEntry{}
		head.next = head
		head.prev = head
		prefix.PropagatingHead = head
	}
	pe.next = head
	pe.prev = head.prev
	pe.prev.next = pe
	pe.next.prev = pe
}

// Unlink removes pe from whatever ring it belongs to, grounded in
// finished_propagating's list-splice-out step.
func Unlink(pe *PropagatingEntry) {
	if pe.prev != nil {
		pe.prev.next = pe.next
	}
	if pe.next != nil {
		pe.next.prev = pe.prev
	}
	pe.prev, pe.next = nil, nil
}

// CancelOneFor finds and unlinks the first propagating entry attached
// to prefix whose ingress face is faceid, if any, mirroring
// cancel_one_propagating_interest (used when a fresh matching interest
// from the same face arrives, since it supersedes any earlier
// still-outstanding forward).
func CancelOneFor(prefix *PrefixEntry, faceid uint32) *PropagatingEntry {
	head := prefix.PropagatingHead
	if head == nil {
		return nil
	}
	for p := head.next; p != head; p = p.next {
		if p.IngressFace == faceid {
			Unlink(p)
			return p
		}
	}
	return nil
}
