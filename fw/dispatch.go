/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/ccnlabs/ccnd/face"
	"github.com/ccnlabs/ccnd/ndn"
	"github.com/ccnlabs/ccnd/ndn/tlv"
	"github.com/ccnlabs/ccnd/table"
)

// ProcessMessage dispatches one framed top-level element to interest
// or content handling, grounded in process_input_message's
// CCN_DTAG_Interest/CCN_DTAG_ContentObject branch (the outer PDU
// envelope unwrap it also handles is already done by
// face.ExtractMessages before this is called).
func (d *Daemon) ProcessMessage(from *face.Face, msg face.Message) {
	switch msg.Type {
	case interestTLVType:
		d.ProcessInterest(from, msg.Value)
	case contentTLVType:
		d.ProcessContent(from, msg.Value)
	}
}

const (
	interestTLVType = 5 // ndn.tlvInterest, duplicated here since it's unexported
	contentTLVType  = 6 // ndn.tlvData, duplicated here since it's unexported
)

// ProcessInterest is process_incoming_interest (spec.md §4.3 arrival
// path): out-of-scope link interests are discarded, duplicates
// (already-propagating nonces) are dropped, demand is recorded on the
// prefix entry, and the traversal either finds a hit (schedule
// delivery) or a miss (propagate outward).
func (d *Daemon) ProcessInterest(from *face.Face, value []byte) {
	it, err := decodeInterestValue(value)
	if err != nil {
		return
	}
	d.NInInterests++

	if it.Scope != nil && *it.Scope >= 0 && *it.Scope < 2 && from.IsLinkFramed {
		return
	}
	if d.LookupLoop(it.Nonce) {
		return
	}

	prefixComps := it.PrefixComponents()
	if n := it.Name.NumComponents(); prefixComps > n {
		prefixComps = n
	}
	prefix := nameKey(it.Name, prefixComps)

	// Only trust a cached_accession hint when this interest asks the
	// same question as the one that produced it: no ordering preference
	// beyond leftmost/rightmost, and a prefix that is the whole name
	// (no additional suffix constraints), grounded in
	// process_incoming_interest's
	// "if (pi->orderpref > 1 || pi->prefix_comps != comps->n - 1)
	// face->cached_accession = 0".
	if it.ChildSelector > 1 || prefixComps != it.Name.NumComponents() {
		from.CachedAccession = 0
	}

	entry := d.Prefixes.GetOrCreate(prefix)
	entry.RecordDemand(from.ID)

	rightmost := it.ChildSelector == ndn.ChildSelectorRightmost

	start := uint64(0)
	if from.CachedAccession != 0 {
		start = from.CachedAccession
		from.CachedAccession = 0
	}

	hit := MatchTraversal(d.Content, it, prefixComps, start, rightmost, func(c *table.ContentEntry) bool {
		alreadySent := d.ShortTermBlocking && alreadySentTo(c, from.ID)
		return ResponseFilterPasses(it, c, from.ID, alreadySent)
	})

	if hit != nil {
		d.MatchInterestForFace(hit, from.ID)
		from.CachedAccession = hit.Accession
		return
	}

	// The framer stripped the outer Interest TLV header; restore it so
	// the propagated bytes are a complete Interest element.
	wire := tlv.EncodeBlock(interestTLVType, value)
	d.PropagateInterest(from, it, wire, entry)
}

// decodeInterestValue re-decodes an Interest TLV's inner value, used
// because Message.Value already has the top-level Type/Length peeled
// off by the framer.
func decodeInterestValue(value []byte) (*ndn.Interest, error) {
	return ndn.DecodeInterest(value)
}

// ProcessContent is process_incoming_content (spec.md §4.2 Insertion +
// §4.3 step 4): decode, insert into the content store applying the
// dedup/collision rule, and on a genuinely new or duplicate entry, run
// match_interests to find and schedule delivery to already-waiting
// faces.
func (d *Daemon) ProcessContent(from *face.Face, value []byte) {
	co, err := ndn.DecodeData(value)
	if err != nil {
		return
	}
	d.NInData++
	wire := co.RawWire()
	if wire == nil {
		wire = value
	}
	nameLen := len(ndn.EncodeName(co.Name))
	if nameLen > len(wire) {
		return
	}
	tail := wire[nameLen:]
	sigHash := co.SignatureHash()

	// The framer already stripped the outer Data TLV header before
	// handing us value; re-wrap it here so ContentEntry.Wire holds the
	// same bytes send_content would copy out to a face verbatim.
	full := tlv.EncodeBlock(contentTLVType, wire)

	content, result := d.Content.Insert(co.Name, full, tail, len(wire)-len(co.SignatureValue), sigHash, from.ID)
	switch result {
	case table.InsertedCollision:
		return
	case table.InsertedNew, table.InsertedDuplicate:
		d.MatchInterests(content)
	}
}
