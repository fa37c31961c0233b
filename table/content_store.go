/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package table implements the Content Store, Interest Prefix Table,
// and Propagating Interest Table (spec.md §2 components 3-5), grounded
// in YaNFD's fw/table package for hashtable/index conventions and in
// ccnd.c's content_from_accession/content_skiplist_*/enroll_content
// family for the store's own two-index algorithm, which YaNFD's
// FIB/CS-LRU tables do not need since they don't keep a name-ordered
// skiplist.
package table

import (
	"math/rand"

	"github.com/cespare/xxhash"
	"github.com/cornelk/hashmap"

	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/internal/xmath"
	"github.com/ccnlabs/ccnd/ndn"
	"github.com/ccnlabs/ccnd/sched"
)

// minAccessionWindow bounds how small the accession dense array can
// shrink to when growing, so a store that has only ever held a
// handful of entries doesn't reallocate on every single insert.
const minAccessionWindow = 20

// skiplistMaxDepth mirrors ccnd.c's CCN_SKIPLIST_MAX_DEPTH.
const skiplistMaxDepth = core.CCNSkiplistMaxDepth

// ContentEntry is a stored ContentObject plus the bookkeeping the
// matching engine and delivery scheduler need (spec.md §3 "Content
// entry"). Key holds the encoded name prefix bytes; Tail holds
// everything after it (MetaInfo/Content/Signature); Comps marks
// component byte-boundaries within Key, mirroring ccnd's
// key/key_size/tail/tail_size/comps split so prefix comparisons never
// need to touch Tail.
type ContentEntry struct {
	Accession uint64
	Key       []byte
	Tail      []byte
	Comps     []int
	SigOffset int
	SigHash   [32]byte

	// Wire is the complete, outer-Data-TLV-wrapped ContentObject exactly
	// as it arrived (or, for locally-sourced content, as it was
	// encoded), sent verbatim by sendContent. Key/Tail/Comps exist only
	// to index and compare names; ccnd.c keeps the analogous split for
	// the same reason, since content_ccnb is what actually gets copied
	// out to a face, not a reconstruction from key+tail.
	Wire []byte

	// Faces is the ordered set of face ids pending or done delivery.
	// Faces[:NFaceDone] have been sent; Faces[NFaceDone:NFaceOld] were
	// done as of the previous cleaning pass (spec.md §3 invariant
	// "nface_done <= nface_old <= faces.length").
	Faces     []uint32
	NFaceDone int
	NFaceOld  int

	// TailHash is xxhash.Sum64(Tail), checked before the full byte
	// comparison in Insert's dedup path so a colliding key with a
	// different-length or differently-hashed tail is rejected without
	// scanning it, grounded in YaNFD's dead-nonce-list.go use of
	// xxhash.Sum64 as a fast wire-identity fingerprint.
	TailHash uint64

	Sender   *sched.Task
	SlowSend bool

	skiplinks []uint64 // skiplinks[i] = accession of this entry's level-i successor
}

// NumComponents returns the parsed name's component count.
func (c *ContentEntry) NumComponents() int {
	return len(c.Comps) - 1
}

// Unblock clears faceid's previously-sent mark if it is in the done
// partition, so a subsequent match re-adds it past the boundary and
// triggers a genuine resend, grounded in ccnd.c's content_is_unblocked
// tombstoning content->faces->buf[k] for k < nface_done (spec.md §4.3
// "the previously-sent mark is cleared and the content is resent"). It
// reports whether faceid was found and cleared.
func (c *ContentEntry) Unblock(faceid uint32) bool {
	for i := 0; i < c.NFaceDone; i++ {
		if c.Faces[i] != faceid {
			continue
		}
		c.Faces = append(c.Faces[:i], c.Faces[i+1:]...)
		c.NFaceDone--
		if c.NFaceOld > 0 {
			c.NFaceOld--
		}
		return true
	}
	return false
}

// ContentStore is the hashtable-plus-skiplist-plus-accession-array
// index described in spec.md §4.2. All methods must be called from the
// single event-loop goroutine (spec.md §5).
type ContentStore struct {
	byName hashmap.HashMap // string(Key) -> *ContentEntry

	accessionBase   uint64
	byAccession     []*ContentEntry
	nextAccession   uint64

	skiplinks []uint64 // header node: skiplinks[i] = accession of level-i head
	rng       *rand.Rand
}

// NewContentStore creates an empty store. seed comes from the daemon's
// own entropy pool (spec.md §9 references ccnd's process-wide PRNG
// seed) so skiplist depths and, indirectly, propagation delays are not
// globally deterministic across runs.
func NewContentStore(seed int64) *ContentStore {
	return &ContentStore{
		nextAccession: 1, // 0 is the skiplink "header / end of list" value
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// Len reports the number of distinct names currently stored, mirroring
// ccnd's hashtb_n(h->content_tab) count consulted by the status log.
func (cs *ContentStore) Len() int {
	return int(cs.byName.Len())
}

// contentFromAccession returns the entry at accession if it is still
// live in the current window, grounded in content_from_accession's
// bounds-and-identity check.
func (cs *ContentStore) contentFromAccession(accession uint64) *ContentEntry {
	if accession < cs.accessionBase {
		return nil
	}
	i := accession - cs.accessionBase
	if i >= uint64(len(cs.byAccession)) {
		return nil
	}
	c := cs.byAccession[i]
	if c == nil || c.Accession != accession {
		return nil
	}
	return c
}

// EachLive calls fn for every live entry in the accession window, in
// accession order, grounded in clean_deamon's sweep over
// content_by_accession[0..n). fn may mutate an entry's Faces slice in
// place but must not insert or remove entries.
func (cs *ContentStore) EachLive(fn func(*ContentEntry)) {
	for _, c := range cs.byAccession {
		if c != nil {
			fn(c)
		}
	}
}

// ContentFromAccession is the exported form of contentFromAccession,
// used by callers resuming enumeration from a face's cached_accession
// hint (spec.md §4.3 step 1).
func (cs *ContentStore) ContentFromAccession(accession uint64) *ContentEntry {
	return cs.contentFromAccession(accession)
}

// enroll places content into the accession dense index, growing the
// window to ~1.5x+20 and trimming leading nulls by advancing
// accessionBase, grounded in enroll_content.
func (cs *ContentStore) enroll(content *ContentEntry) {
	if content.Accession >= cs.accessionBase+uint64(len(cs.byAccession)) {
		newWindow := xmath.Max((len(cs.byAccession)+20)*3/2, minAccessionWindow)
		newArray := make([]*ContentEntry, newWindow)
		i := 0
		for i < len(cs.byAccession) && cs.byAccession[i] == nil {
			i++
		}
		cs.accessionBase += uint64(i)
		j := 0
		for i < len(cs.byAccession) {
			newArray[j] = cs.byAccession[i]
			i++
			j++
		}
		cs.byAccession = newArray
	}
	cs.byAccession[content.Accession-cs.accessionBase] = content
}

// compareNames orders two encoded names by their parsed component
// sequence, not raw byte order (spec.md §4.2 "lexicographic order of
// components over the parsed name, not byte-by-byte over arbitrary
// prefixes"). It returns <0, 0, >0 like bytes.Compare.
func compareNames(aKey []byte, aComps []int, bKey []byte, bComps []int) int {
	an, bn := len(aComps)-1, len(bComps)-1
	for i := 0; i < an && i < bn; i++ {
		a := aKey[aComps[i]:aComps[i+1]]
		b := bKey[bComps[i]:bComps[i+1]]
		if c := compareBytes(a, b); c != 0 {
			return c
		}
	}
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// findBeforeLevels computes, at every skiplist level, the predecessor
// entry (by accession) whose name compares strictly less than the
// parsed name (key, comps); 0 means the header itself. For each level
// i (from the top down) it walks forward along level-i links until the
// next entry's name is >= key, grounded in
// content_skiplist_findbefore (transcribed level-by-level rather than
// with the C version's single shared multi-level cursor, which relies
// on pointer aliasing that has no clean Go equivalent).
func (cs *ContentStore) findBeforeLevels(key []byte, comps []int) []uint64 {
	n := len(cs.skiplinks)
	pred := make([]uint64, n)
	for i := n - 1; i >= 0; i-- {
		var predAccession uint64 // 0 = header
		links := cs.skiplinks
		for {
			next := links[i]
			if next == 0 {
				break
			}
			content := cs.contentFromAccession(next)
			if content == nil || i >= len(content.skiplinks) {
				break
			}
			if compareNames(content.Key, content.Comps, key, comps) >= 0 {
				break
			}
			predAccession = next
			links = content.skiplinks
		}
		pred[i] = predAccession
	}
	return pred
}

// predLinksAt returns the mutable link slice a predecessor accession
// owns at level i (the header's own skiplinks slice when accession is
// 0), used by insert/remove to splice.
func (cs *ContentStore) predLinksAt(accession uint64) []uint64 {
	if accession == 0 {
		return cs.skiplinks
	}
	c := cs.contentFromAccession(accession)
	if c == nil {
		return nil
	}
	return c.skiplinks
}

// insertSkiplist links content into the ordered index at a randomly
// chosen depth, grounded in content_skiplist_insert: depth starts at 1
// and grows by one for each coin flip (probability 1/4 of a 4-sided
// draw) that comes up "continue", capped at skiplistMaxDepth-1 and at
// the header's current depth so the list only grows one level at a
// time.
func (cs *ContentStore) insertSkiplist(content *ContentEntry) {
	d := 1
	for d < skiplistMaxDepth-1 {
		if cs.rng.Intn(4) != 0 {
			break
		}
		d++
	}
	if max := len(cs.skiplinks) + 1; d > max {
		d = max
	}
	for len(cs.skiplinks) < d {
		cs.skiplinks = append(cs.skiplinks, 0)
	}
	pred := cs.findBeforeLevels(content.Key, content.Comps)
	if len(pred) < d {
		d = len(pred)
	}
	content.skiplinks = make([]uint64, d)
	for i := 0; i < d; i++ {
		links := cs.predLinksAt(pred[i])
		content.skiplinks[i] = links[i]
		links[i] = content.Accession
	}
}

// removeSkiplist unlinks content from the ordered index, grounded in
// content_skiplist_remove.
func (cs *ContentStore) removeSkiplist(content *ContentEntry) {
	if content.skiplinks == nil {
		return
	}
	pred := cs.findBeforeLevels(content.Key, content.Comps)
	d := len(content.skiplinks)
	if d > len(pred) {
		d = len(pred)
	}
	for i := 0; i < d; i++ {
		links := cs.predLinksAt(pred[i])
		links[i] = content.skiplinks[i]
	}
	content.skiplinks = nil
}

// FindFirstMatchCandidate returns find_before(name)'s level-0
// successor: the smallest stored name that is >= the given parsed
// name, or nil if none exists (spec.md §4.3 step 2).
func (cs *ContentStore) FindFirstMatchCandidate(key []byte, comps []int) *ContentEntry {
	pred := cs.findBeforeLevels(key, comps)
	if len(pred) == 0 {
		return nil
	}
	links := cs.predLinksAt(pred[0])
	if links == nil || len(links) == 0 {
		return nil
	}
	return cs.contentFromAccession(links[0])
}

// Next returns the level-0 skiplink successor of content, or nil at
// the end of the list (spec.md §4.2 "Enumeration in name order").
func (cs *ContentStore) Next(content *ContentEntry) *ContentEntry {
	if content == nil || len(content.skiplinks) < 1 {
		return nil
	}
	return cs.contentFromAccession(content.skiplinks[0])
}

// InsertResult reports what Insert actually did, since duplicate and
// colliding keys are handled without creating (or replacing) an entry.
type InsertResult int

const (
	// InsertedNew means a brand new content entry was stored.
	InsertedNew InsertResult = iota
	// InsertedDuplicate means an identical (key, tail) pair already
	// existed; the incoming face id was recorded on it instead.
	InsertedDuplicate
	// InsertedCollision means the key existed with different tail
	// bytes; per spec.md §4.2 both the old and new object are
	// discarded rather than the store holding two objects under one
	// name.
	InsertedCollision
)

// Insert stores a decoded content object under its parsed name,
// applying ccnd's dedup/collision rule (spec.md §4.2 "Insertion"): a
// byte-identical (key, tail) resubmission just adds face to the
// existing entry's send set past the done partition; a same-key,
// different-tail submission discards both the existing and incoming
// object, since the store tolerates at most one object per name.
func (cs *ContentStore) Insert(name *ndn.Name, wire []byte, tail []byte, sigOffset int, sigHash [32]byte, face uint32) (*ContentEntry, InsertResult) {
	keyStr := string(name.Encoded)
	tailHash := xxhash.Sum64(tail)
	if v, ok := cs.byName.GetStringKey(keyStr); ok {
		existing := v.(*ContentEntry)
		if existing.TailHash == tailHash && bytesEqual(existing.Tail, tail) {
			if face != 0 {
				existing.Faces = append(existing.Faces[:existing.NFaceOld], appendUnique(existing.Faces[existing.NFaceOld:], face)...)
			}
			return existing, InsertedDuplicate
		}
		cs.remove(existing)
		return nil, InsertedCollision
	}

	comps := name.Boundaries()

	content := &ContentEntry{
		Accession: cs.nextAccession,
		Key:       name.Encoded,
		Tail:      tail,
		Comps:     comps,
		SigOffset: sigOffset,
		SigHash:   sigHash,
		TailHash:  tailHash,
		Wire:      wire,
	}
	if face != 0 {
		// The arrival face already has this object: record it in the
		// done partition so delivery never echoes it back there.
		content.Faces = []uint32{face}
		content.NFaceDone = 1
		content.NFaceOld = 1
	}
	cs.nextAccession++

	cs.byName.Set(keyStr, content)
	cs.enroll(content)
	cs.insertSkiplist(content)
	return content, InsertedNew
}

// remove deletes content from every index, grounded in
// finalize_content's skiplist-remove-then-clear-accession-slot order.
func (cs *ContentStore) remove(content *ContentEntry) {
	cs.removeSkiplist(content)
	i := content.Accession - cs.accessionBase
	if i < uint64(len(cs.byAccession)) && cs.byAccession[i] == content {
		cs.byAccession[i] = nil
	}
	cs.byName.Del(string(content.Key))
}

// Remove deletes content from the store, used by the cleaning pass and
// by the collision path in Insert.
func (cs *ContentStore) Remove(content *ContentEntry) {
	cs.remove(content)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func appendUnique(faces []uint32, face uint32) []uint32 {
	for _, f := range faces {
		if f == face {
			return faces
		}
	}
	return append(faces, face)
}
