/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "crypto/sha256"

// TLV type numbers for ContentObject fields.
const (
	tlvData            = 6
	tlvMetaInfo        = 20
	tlvContent         = 21
	tlvSignatureInfo   = 22
	tlvSignatureValue  = 23
)

// ContentObject is a signed, named payload (spec.md §3's "content
// entry" wraps one of these with forwarder-owned bookkeeping fields).
// Signature verification itself is out of scope (spec.md §1
// Non-goals); SignatureValue is retained only so a signature-hash can
// be computed for the response filter (spec.md §4.3).
type ContentObject struct {
	Name            *Name
	PublisherDigest []byte
	Content         []byte
	SignatureInfo   []byte
	SignatureValue  []byte

	// raw holds the last encoded wire form: Name.Encoded ("key") is a
	// prefix of it and everything after is the "tail" spec.md §3
	// describes.
	raw []byte
}

// SignatureHash returns the 32-byte digest of the signature value used
// by the response filter (spec.md §4.3's Bloom filter is over these
// hashes). Content with no signature value hashes its content bytes
// instead so it still has a stable identity for the filter.
func (d *ContentObject) SignatureHash() [32]byte {
	if len(d.SignatureValue) > 0 {
		return sha256.Sum256(d.SignatureValue)
	}
	return sha256.Sum256(d.Content)
}

// RawWire returns the last encoded wire form of this content object.
func (d *ContentObject) RawWire() []byte {
	return d.raw
}

// SetRawWire records the encoded wire form, called by the codec after
// encoding or decoding.
func (d *ContentObject) SetRawWire(wire []byte) {
	d.raw = wire
}
