/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"github.com/cornelk/hashmap"

	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/internal/xmath"
)

// PrefixEntry tracks, for one name prefix, which faces have expressed
// demand and how strongly, plus the head of a ring of propagating
// interests sharing that prefix (spec.md §3 "Interest prefix entry").
// InterestedFaceID[i] and Counters[i] are parallel arrays, grounded in
// ccnd.c's interestprefix_entry (interested_faceid/counters
// ccn_indexbuf pair) and mutated with the same swap-with-last removal
// idiom used by age_interests.
type PrefixEntry struct {
	InterestedFaceID []uint32
	Counters         []int64
	Idle             int // consecutive aging passes with zero counters (spec.md §4.6)

	// PropagatingHead is the sentinel of a circular doubly-linked list
	// of propagating entries sharing this prefix, mirroring
	// link_propagating_interest_to_interest_entry's ring; nil until
	// the first propagating interest links in.
	PropagatingHead *PropagatingEntry
}

// PrefixTable is the hashtable of PrefixEntry keyed by the raw encoded
// name-prefix bytes (spec.md §2 component 4), grounded in ccnd.c's
// h->interestprefix_tab.
type PrefixTable struct {
	byPrefix hashmap.HashMap
}

// NewPrefixTable creates an empty table.
func NewPrefixTable() *PrefixTable {
	return &PrefixTable{}
}

// Lookup returns the entry for prefix, or nil if none exists.
func (t *PrefixTable) Lookup(prefix []byte) *PrefixEntry {
	v, ok := t.byPrefix.GetStringKey(string(prefix))
	if !ok {
		return nil
	}
	return v.(*PrefixEntry)
}

// GetOrCreate returns the entry for prefix, creating an empty one on
// first demand.
func (t *PrefixTable) GetOrCreate(prefix []byte) *PrefixEntry {
	key := string(prefix)
	if v, ok := t.byPrefix.GetStringKey(key); ok {
		return v.(*PrefixEntry)
	}
	entry := &PrefixEntry{}
	actual, _ := t.byPrefix.GetOrInsert(key, entry)
	return actual.(*PrefixEntry)
}

// RecordDemand adds unitInterest worth of demand from face on this
// prefix entry, creating a (faceid, counter) pair if face has none yet
// or adding to its existing counter otherwise. Mirrors the
// interested_faceid/counters maintenance implicit in ccnd's interest
// arrival path (propagate_interest / match logic keyed by
// interestprefix_tab lookups).
func (e *PrefixEntry) RecordDemand(face uint32) {
	for i, f := range e.InterestedFaceID {
		if f == face {
			e.Counters[i] += core.CCNUnitInterest
			return
		}
	}
	e.InterestedFaceID = append(e.InterestedFaceID, face)
	e.Counters = append(e.Counters, core.CCNUnitInterest)
	e.Idle = 0
}

// ConsumeDemand decrements face's counter by CCNUnitInterest, floored
// at 0, returning the count observed before decrementing. It is called
// once per content match, grounded in match_interests's
// count -= CCN_UNIT_INTEREST; if (count < 0) count = 0.
func (e *PrefixEntry) ConsumeDemand(face uint32) (before int64, found bool) {
	for i, f := range e.InterestedFaceID {
		if f == face {
			before = e.Counters[i]
			e.Counters[i] = xmath.Max(e.Counters[i]-core.CCNUnitInterest, 0)
			return before, true
		}
	}
	return 0, false
}

// ZeroCount marks face's counter as exhausted (used when its face has
// vanished mid-match), grounded in match_interests's "else count = 0"
// branch for a stale faceid.
func (e *PrefixEntry) ZeroCount(face uint32) {
	for i, f := range e.InterestedFaceID {
		if f == face {
			e.Counters[i] = 0
			return
		}
	}
}

// Age applies one interest-demand-aging pass to this entry's counters,
// grounded in age_interests: counters above CCNUnitInterest decay by
// 5/6 (rounded, approximating the fourth root of 1/2 so four passes
// halve demand); counters at CCNUnitInterest step down by one unit;
// zeroed counters are dropped via swap-with-last. It returns the
// number of counters still active after aging.
func (e *PrefixEntry) Age() int {
	n := len(e.Counters)
	for i := 0; i < n; i++ {
		count := e.Counters[i]
		switch {
		case count > core.CCNUnitInterest:
			e.Counters[i] = (count*5 + 3) / 6
		case count > 0:
			e.Counters[i] = count - 1
		default:
			last := n - 1
			e.InterestedFaceID[i] = e.InterestedFaceID[last]
			e.Counters[i] = e.Counters[last]
			i--
			n--
		}
	}
	e.InterestedFaceID = e.InterestedFaceID[:n]
	e.Counters = e.Counters[:n]
	if n > 0 {
		e.Idle = 0
	} else {
		e.Idle++
	}
	return n
}

// IsIdle reports whether this entry has gone more than
// core.PrefixIdleLimit consecutive aging passes with no active
// counters, in which case age_interests deletes it outright.
func (e *PrefixEntry) IsIdle() bool {
	return len(e.Counters) == 0 && e.Idle > core.PrefixIdleLimit
}

// Delete removes prefix's entry outright, used once an entry goes idle
// or its owning face table collapses to nothing.
func (t *PrefixTable) Delete(prefix []byte) {
	t.byPrefix.Del(string(prefix))
}

// Each calls fn for every (prefix, entry) pair; fn must not add or
// remove prefixes.
func (t *PrefixTable) Each(fn func(prefix []byte, entry *PrefixEntry)) {
	for kv := range t.byPrefix.Iter() {
		fn([]byte(kv.Key.(string)), kv.Value.(*PrefixEntry))
	}
}

// Len reports the number of prefix entries, mirroring ccnd's
// hashtb_n(h->interestprefix_tab) count used to decide whether the
// aging task should keep re-arming itself.
func (t *PrefixTable) Len() int {
	return int(t.byPrefix.Len())
}
