/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"bytes"

	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/ndn"
	"github.com/ccnlabs/ccnd/table"
)

// isPrefixMatch implements content_matches_interest_prefix (spec.md
// §4.3): content must have at least prefixComps+1 components, with a
// special allowance when content has exactly prefixComps and the
// interest's own last component has the byte length of an explicit
// digest component (in which case that trailing digest component is
// stripped before comparing).
func isPrefixMatch(content *table.ContentEntry, interestKey []byte, interestComps []int, prefixComps int) bool {
	if content.NumComponents() < prefixComps+1 {
		if content.NumComponents() == prefixComps && prefixComps > 0 &&
			interestComps[prefixComps]-interestComps[prefixComps-1] == core.DigestComponentLength {
			prefixComps--
		} else {
			return false
		}
	}
	prefixLen := interestComps[prefixComps] - interestComps[0]
	if content.Comps[prefixComps]-content.Comps[0] != prefixLen {
		return false
	}
	return bytes.Equal(
		content.Key[content.Comps[0]:content.Comps[0]+prefixLen],
		interestKey[interestComps[0]:interestComps[0]+prefixLen],
	)
}

// MatchTraversal walks the content store's skiplist looking for a
// content object that satisfies interest, grounded in ccnd.c's
// interest-arrival traversal (comment block above content lookup in
// the main dispatch, spec.md §4.3 "Traversal"). prefixComps is the
// interest's own prefix component count; startAccession, when
// non-zero, resumes from the requesting face's cached_accession hint
// (step 1); rightmost selects "keep walking, remember the last hit"
// instead of stopping at the first (step 3).
func MatchTraversal(cs *table.ContentStore, interest *ndn.Interest, prefixComps int, startAccession uint64, rightmost bool, filter func(*table.ContentEntry) bool) *table.ContentEntry {
	interestBoundaries := interest.Name.Boundaries()

	var cursor *table.ContentEntry
	if startAccession != 0 {
		start := cs.ContentFromAccession(startAccession)
		cursor = cs.Next(start)
	} else {
		candidate := cs.FindFirstMatchCandidate(interest.Name.Encoded, interestBoundaries)
		cursor = candidate
	}

	var best *table.ContentEntry
	for cursor != nil {
		if !isPrefixMatch(cursor, interest.Name.Encoded, interestBoundaries, prefixComps) {
			break
		}
		if filter(cursor) && ndn.MatchesQualifiers(interest, contentAsObject(cursor), prefixComps) {
			if !rightmost {
				return cursor
			}
			best = cursor
		}
		cursor = cs.Next(cursor)
	}
	return best
}

// contentAsObject reconstructs just enough of a ContentObject for
// qualifier matching (name, publisher digest) from a stored
// ContentEntry's key/tail split, without re-decoding the full TLV
// tree on every candidate.
func contentAsObject(c *table.ContentEntry) *ndn.ContentObject {
	name, err := ndn.DecodeName(c.Key[c.Comps[0]:c.Comps[len(c.Comps)-1]])
	if err != nil {
		name = &ndn.Name{}
	}
	return &ndn.ContentObject{Name: name}
}

// ResponseFilterPasses implements spec.md §4.3's response filter
// check: a content item whose signature hash is present in the
// interest's Bloom filter is skipped. When the filter says faceid has
// *not* seen this content, any previously-sent mark for faceid is
// cleared so the traversal hit forces a genuine resend, grounded in
// ccnd.c's content_is_unblocked, which runs at this same filter check
// in ccnd's own interest-arrival traversal. Absent a filter,
// alreadySent instead tracks the daemon's optional short-term per-face
// blocking.
func ResponseFilterPasses(interest *ndn.Interest, content *table.ContentEntry, faceid uint32, alreadySent bool) bool {
	if interest.ResponseFilter != nil {
		if interest.ResponseFilter.Test(content.SigHash) {
			return false
		}
		content.Unblock(faceid)
		return true
	}
	return !alreadySent
}

// alreadySentTo reports whether faceid is in content's done partition
// (spec.md §4.3's short-term blocking mode: "skips any content this
// face has been sent before"), consulted only when
// Daemon.ShortTermBlocking is enabled.
func alreadySentTo(content *table.ContentEntry, faceid uint32) bool {
	for _, f := range content.Faces[:content.NFaceDone] {
		if f == faceid {
			return true
		}
	}
	return false
}

// MatchInterests implements match_interests (spec.md §4.3 step 4 /
// §4.5): for every prefix of content's name, from longest to shortest,
// look up demand and add each still-interested face to content's
// send set, consuming CCNUnitInterest of demand and cancelling any
// propagating interest from that same face. It returns the number of
// newly matched faces.
func (d *Daemon) MatchInterests(content *table.ContentEntry) int {
	c0 := content.Comps[0]
	key := content.Key[c0:]
	matched := 0
	for ci := content.NumComponents() - 1; ci >= 0; ci-- {
		size := content.Comps[ci] - c0
		entry := d.Prefixes.Lookup(key[:size])
		if entry == nil {
			continue
		}
		for i := 0; i < len(entry.InterestedFaceID); i++ {
			faceid := entry.InterestedFaceID[i]
			if entry.Counters[i] <= 0 {
				continue
			}
			f := d.Faces.Lookup(faceid)
			if f == nil {
				entry.ZeroCount(faceid)
				continue
			}
			idx := faceIndexOf(content.Faces, faceid)
			if idx < 0 || idx >= content.NFaceDone {
				content.Faces = appendUniqueFace(content.Faces, faceid)
				matched++
				entry.ConsumeDemand(faceid)
				table.CancelOneFor(entry, faceid)
			}
		}
	}
	if matched != 0 {
		d.ScheduleContentDelivery(content)
	}
	return matched
}

// MatchInterestForFace is match_interest_for_faceid (spec.md §4.3):
// restricted to the interest's own ingress-adjacent face, used right
// after a fresh interest is recorded so its own propagating entry is
// left alone (only interests seen elsewhere get cancelled).
func (d *Daemon) MatchInterestForFace(content *table.ContentEntry, faceid uint32) int {
	c0 := content.Comps[0]
	key := content.Key[c0:]
	matched := 0
	for ci := content.NumComponents() - 1; ci >= 0; ci-- {
		size := content.Comps[ci] - c0
		entry := d.Prefixes.Lookup(key[:size])
		if entry == nil {
			continue
		}
		for i, f := range entry.InterestedFaceID {
			if f != faceid {
				continue
			}
			if entry.Counters[i] == 0 {
				break
			}
			ff := d.Faces.Lookup(faceid)
			if ff == nil {
				entry.Counters[i] = 0
				break
			}
			before := faceIndexOf(content.Faces, faceid)
			content.Faces = appendUniqueFace(content.Faces, faceid)
			if before >= content.NFaceDone || before < 0 {
				matched++
				entry.ConsumeDemand(faceid)
			}
			break
		}
	}
	d.ScheduleContentDelivery(content)
	return matched
}

func appendUniqueFace(faces []uint32, f uint32) []uint32 {
	for _, existing := range faces {
		if existing == f {
			return faces
		}
	}
	return append(faces, f)
}

func faceIndexOf(faces []uint32, f uint32) int {
	for i, existing := range faces {
		if existing == f {
			return i
		}
	}
	return -1
}
