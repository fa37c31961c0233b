/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"crypto/rand"
	"time"
)

// TLV type numbers for Interest fields. See the comment on the Name
// type numbers in name.go: this is this package's own internal wire
// profile, not a claim of NDN-TLV or ccnb conformance.
const (
	tlvInterest             = 5
	tlvNonce                = 10
	tlvScope                = 11
	tlvInterestLifetime     = 12
	tlvMinSuffixComponents  = 13
	tlvMaxSuffixComponents  = 14
	tlvChildSelector        = 15
	tlvExclude              = 16
	tlvPublisherDigest      = 17
	tlvMustBeFresh          = 18
	tlvResponseFilter       = 253
	tlvOuterPDU             = 254
	nonceLength             = 6
	// ChildSelectorRightmost is the "rightmost" ordering preference
	// (spec.md §4.3): under this preference the matching engine keeps
	// walking past the first hit and returns the last one instead.
	ChildSelectorRightmost = 5
)

// Interest represents a subscription for content by hierarchical name
// (spec.md §3/§4.3): a name prefix plus selectors that narrow which
// content under that prefix satisfies it.
type Interest struct {
	Name                 *Name
	MinSuffixComponents  *int
	MaxSuffixComponents  *int
	PublisherDigest      []byte
	Exclude              [][]byte
	ChildSelector        int
	MustBeFresh          bool
	Nonce                []byte
	Scope                *int
	InterestLifetime     time.Duration
	ResponseFilter       *Bloom

	// raw holds the last encoded wire form, including a spliced-in
	// nonce if one was synthesized (spec.md §4.4: "the modified bytes,
	// not the original, are what propagates").
	raw []byte
}

// NewInterest creates an Interest for name with default selectors.
func NewInterest(name *Name) *Interest {
	return &Interest{
		Name:             name,
		ChildSelector:    0,
		InterestLifetime: 4 * time.Second,
	}
}

// EnsureNonce synthesizes a random nonce if one was not already
// present (spec.md §4.4) and reports whether it did so.
func (i *Interest) EnsureNonce() bool {
	if len(i.Nonce) > 0 {
		return false
	}
	i.Nonce = make([]byte, nonceLength)
	_, _ = rand.Read(i.Nonce)
	return true
}

// PrefixComponents returns the number of components in the interest's
// name, i.e. the prefix length a matching content name must extend.
func (i *Interest) PrefixComponents() int {
	return i.Name.NumComponents()
}

// RawWire returns the last encoded wire form of this interest, which
// includes any synthesized nonce spliced into the canonical position.
func (i *Interest) RawWire() []byte {
	return i.raw
}

// SetRawWire records the wire form to propagate, called by the codec
// after encoding or nonce splicing.
func (i *Interest) SetRawWire(wire []byte) {
	i.raw = wire
}
