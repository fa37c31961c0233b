/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"encoding/binary"
	"time"

	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/ndn/tlv"
)

// PDUType is the outer PDU envelope's TLV type. Message Framing
// (spec.md §4.8) recognizes this element by number alone, without
// decoding its contents, to decide whether a face is link-framed.
const PDUType = tlvOuterPDU

// PacketKind distinguishes the two inbound/outbound message types the
// framer dispatches (spec.md §6).
type PacketKind int

const (
	KindUnknown PacketKind = iota
	KindInterest
	KindData
)

// SniffKind inspects a complete top-level TLV element's type to decide
// whether it is an Interest or a ContentObject, without fully decoding
// it. Used by the I/O loop to route a framed message before paying the
// cost of a full decode.
func SniffKind(topLevelType uint64) PacketKind {
	switch topLevelType {
	case tlvInterest:
		return KindInterest
	case tlvData:
		return KindData
	default:
		return KindUnknown
	}
}

// EncodeInterest serializes i to its wire form and records it on i via
// SetRawWire.
func EncodeInterest(i *Interest) ([]byte, error) {
	var body []byte
	body = append(body, EncodeName(i.Name)...)
	if i.MinSuffixComponents != nil {
		body = append(body, tlv.EncodeBlock(tlvMinSuffixComponents, encodeNonNeg(uint64(*i.MinSuffixComponents)))...)
	}
	if i.MaxSuffixComponents != nil {
		body = append(body, tlv.EncodeBlock(tlvMaxSuffixComponents, encodeNonNeg(uint64(*i.MaxSuffixComponents)))...)
	}
	if len(i.PublisherDigest) > 0 {
		body = append(body, tlv.EncodeBlock(tlvPublisherDigest, i.PublisherDigest)...)
	}
	for _, ex := range i.Exclude {
		body = append(body, tlv.EncodeBlock(tlvExclude, ex)...)
	}
	if i.ChildSelector != 0 {
		body = append(body, tlv.EncodeBlock(tlvChildSelector, encodeNonNeg(uint64(i.ChildSelector)))...)
	}
	if i.MustBeFresh {
		body = append(body, tlv.EncodeBlock(tlvMustBeFresh, nil)...)
	}
	if len(i.Nonce) > 0 {
		body = append(body, tlv.EncodeBlock(tlvNonce, i.Nonce)...)
	}
	if i.Scope != nil {
		body = append(body, tlv.EncodeBlock(tlvScope, []byte{byte(*i.Scope)})...)
	}
	if i.InterestLifetime > 0 {
		body = append(body, tlv.EncodeBlock(tlvInterestLifetime, encodeNonNeg(uint64(i.InterestLifetime/time.Millisecond)))...)
	}
	if i.ResponseFilter != nil {
		body = append(body, tlv.EncodeBlock(tlvResponseFilter, i.ResponseFilter.Encode())...)
	}
	wire := tlv.EncodeBlock(tlvInterest, body)
	if len(wire) > core.MaxPDUSize {
		return nil, core.ErrTooLarge
	}
	i.SetRawWire(wire)
	return wire, nil
}

// DecodeInterest parses an Interest TLV element's value (the bytes
// inside the outer Interest TLV, not including its own type/length).
func DecodeInterest(value []byte) (*Interest, error) {
	i := &Interest{ChildSelector: 0}
	pos := 0
	for pos < len(value) {
		blk, err := tlv.DecodeBlock(value[pos:])
		if err != nil {
			return nil, core.ErrParse
		}
		switch blk.Type {
		case tlvName:
			n, err := DecodeName(blk.Value)
			if err != nil {
				return nil, err
			}
			i.Name = n
		case tlvMinSuffixComponents:
			v := int(decodeNonNeg(blk.Value))
			i.MinSuffixComponents = &v
		case tlvMaxSuffixComponents:
			v := int(decodeNonNeg(blk.Value))
			i.MaxSuffixComponents = &v
		case tlvPublisherDigest:
			i.PublisherDigest = append([]byte{}, blk.Value...)
		case tlvExclude:
			i.Exclude = append(i.Exclude, append([]byte{}, blk.Value...))
		case tlvChildSelector:
			i.ChildSelector = int(decodeNonNeg(blk.Value))
		case tlvMustBeFresh:
			i.MustBeFresh = true
		case tlvNonce:
			i.Nonce = append([]byte{}, blk.Value...)
		case tlvScope:
			if len(blk.Value) == 1 {
				v := int(blk.Value[0])
				i.Scope = &v
			}
		case tlvInterestLifetime:
			i.InterestLifetime = time.Duration(decodeNonNeg(blk.Value)) * time.Millisecond
		case tlvResponseFilter:
			if bf, ok := DecodeBloom(blk.Value); ok {
				i.ResponseFilter = bf
			}
		}
		pos += blk.Wirelen
	}
	if i.Name == nil {
		return nil, core.ErrParse
	}
	i.SetRawWire(value)
	return i, nil
}

// SpliceNonce rewrites wire, which must be a previously-decoded
// Interest TLV element's full bytes (type+length+value), inserting a
// Nonce element at the canonical position (immediately after any
// Exclude/ChildSelector/MustBeFresh elements, before Scope) if it does
// not already carry one. This is spec.md §4.4's "the modified bytes,
// not the original, are what propagates": callers must use the
// returned slice, not the original wire, from this point on.
func SpliceNonce(i *Interest, wire []byte) []byte {
	if len(i.Nonce) > 0 {
		return wire
	}
	i.EnsureNonce()
	newWire, err := EncodeInterest(i)
	if err != nil {
		return wire
	}
	return newWire
}

// EncodeData serializes d to its wire form and records it via
// SetRawWire, returning the byte offset within the returned slice at
// which the SignatureValue element's value begins (spec.md §3's
// "signature offset").
func EncodeData(d *ContentObject) ([]byte, int, error) {
	var body []byte
	body = append(body, EncodeName(d.Name)...)
	if len(d.PublisherDigest) > 0 {
		body = append(body, tlv.EncodeBlock(tlvPublisherDigest, d.PublisherDigest)...)
	}
	body = append(body, tlv.EncodeBlock(tlvContent, d.Content)...)
	if len(d.SignatureInfo) > 0 {
		body = append(body, tlv.EncodeBlock(tlvSignatureInfo, d.SignatureInfo)...)
	}
	if len(d.SignatureValue) > 0 {
		body = append(body, tlv.EncodeBlock(tlvSignatureValue, d.SignatureValue)...)
	}
	wire := tlv.EncodeBlock(tlvData, body)
	if len(wire) > core.MaxPDUSize {
		return nil, -1, core.ErrTooLarge
	}
	sigOffset := -1
	if len(d.SignatureValue) > 0 {
		sigOffset = len(wire) - len(d.SignatureValue)
	}
	d.SetRawWire(wire)
	return wire, sigOffset, nil
}

// DecodeData parses a ContentObject TLV element's value.
func DecodeData(value []byte) (*ContentObject, error) {
	d := &ContentObject{}
	pos := 0
	for pos < len(value) {
		blk, err := tlv.DecodeBlock(value[pos:])
		if err != nil {
			return nil, core.ErrParse
		}
		switch blk.Type {
		case tlvName:
			n, err := DecodeName(blk.Value)
			if err != nil {
				return nil, err
			}
			d.Name = n
		case tlvPublisherDigest:
			d.PublisherDigest = append([]byte{}, blk.Value...)
		case tlvContent:
			d.Content = append([]byte{}, blk.Value...)
		case tlvSignatureInfo:
			d.SignatureInfo = append([]byte{}, blk.Value...)
		case tlvSignatureValue:
			d.SignatureValue = append([]byte{}, blk.Value...)
		}
		pos += blk.Wirelen
	}
	if d.Name == nil {
		return nil, core.ErrParse
	}
	d.SetRawWire(value)
	return d, nil
}

func encodeNonNeg(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	i := 0
	for i < 7 && b[i] == 0 {
		i++
	}
	return b[i:]
}

func decodeNonNeg(v []byte) uint64 {
	var out uint64
	for _, b := range v {
		out = out<<8 | uint64(b)
	}
	return out
}

// WrapPDU wraps payload in the outer PDU envelope (spec.md §4.8),
// marking the sending side as a link-framed peer to a decoder that
// recognizes it.
func WrapPDU(payload []byte) []byte {
	return tlv.EncodeBlock(PDUType, payload)
}
