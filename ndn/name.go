/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/ndn/tlv"
)

// TLV type numbers used by the wire codec. These are internal to this
// package's own encoding and carry no meaning outside it; a production
// deployment would swap this file's Encode/Decode pair for a codec
// matching a real NDN-TLV or ccnb wire profile (spec.md §1(a): the wire
// codec is an external collaborator).
const (
	tlvName          = 7
	tlvNameComponent = 8
)

// Name is a hierarchical name: an ordered sequence of opaque byte
// components. Two names compare lexicographically over the encoded
// form of their complete component sequence (spec.md §3).
//
// Component boundaries are resolved through Comps, a parallel array of
// byte offsets into Encoded recorded when the name was parsed:
// Comps[i] is the offset of the start of the Name TLV's i-th component
// element (its type byte), and len(Comps) == NumComponents(). Encoded holds the raw
// component TLVs concatenated (not including the outer Name TLV
// header), matching the "key" convention content entries use.
type Name struct {
	Encoded []byte
	Comps   []int
}

// NumComponents returns the number of components in the name.
func (n *Name) NumComponents() int {
	return len(n.Comps)
}

// Component returns the raw bytes of the i-th component's TLV element
// (type + length + value), the unit compared byte-for-byte by prefix
// matching.
func (n *Name) Component(i int) []byte {
	start := n.Comps[i]
	end := len(n.Encoded)
	if i+1 < len(n.Comps) {
		end = n.Comps[i+1]
	}
	return n.Encoded[start:end]
}

// Boundaries returns component byte-offsets padded with a trailing
// sentinel equal to len(Encoded), the n+1-length convention ccnd's own
// comps indexbuf uses (comps[i] for i in [0,n], with comps[n] marking
// the end of the last component) so callers can compute a prefix's
// byte length as Boundaries()[k]-Boundaries()[0] without a special
// case for the last component.
func (n *Name) Boundaries() []int {
	b := make([]int, len(n.Comps)+1)
	copy(b, n.Comps)
	b[len(b)-1] = len(n.Encoded)
	return b
}

// PrefixBytes returns the encoded bytes of the first k components.
func (n *Name) PrefixBytes(k int) []byte {
	if k == 0 {
		return nil
	}
	end := len(n.Encoded)
	if k < len(n.Comps) {
		end = n.Comps[k]
	}
	return n.Encoded[0:end]
}

// Compare returns -1, 0, or 1 according to the lexicographic order of
// the encoded component sequences of n and other, comparing the full
// encoded byte strings (spec.md §3: "lexicographically over the
// encoded form of their complete component sequence").
func (n *Name) Compare(other *Name) int {
	return bytes.Compare(n.Encoded, other.Encoded)
}

// CompareToBytes compares n's encoded form to a raw encoded name.
func (n *Name) CompareToBytes(encoded []byte) int {
	return bytes.Compare(n.Encoded, encoded)
}

// String renders the name using dot-hex escaping for non-printable
// bytes, purely for logging.
func (n *Name) String() string {
	var b strings.Builder
	for i := 0; i < n.NumComponents(); i++ {
		b.WriteByte('/')
		comp := n.Component(i)
		blk, err := tlv.DecodeBlock(comp)
		if err != nil {
			b.WriteString("(err)")
			continue
		}
		b.WriteString(escapeComponent(blk.Value))
	}
	if n.NumComponents() == 0 {
		b.WriteByte('/')
	}
	return b.String()
}

func escapeComponent(v []byte) string {
	var b strings.Builder
	for _, c := range v {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			s := strconv.FormatInt(int64(c), 16)
			if len(s) == 1 {
				b.WriteByte('0')
			}
			b.WriteString(s)
		}
	}
	return b.String()
}

// DecodeName parses a Name TLV element's value into component
// boundary offsets, enforcing spec.md §7's component-count size
// violation.
func DecodeName(value []byte) (*Name, error) {
	n := &Name{Encoded: value}
	pos := 0
	for pos < len(value) {
		blk, err := tlv.DecodeBlock(value[pos:])
		if err != nil {
			return nil, core.ErrParse
		}
		n.Comps = append(n.Comps, pos)
		pos += blk.Wirelen
		if len(n.Comps) > core.MaxNameComponents {
			return nil, core.ErrTooManyComps
		}
	}
	return n, nil
}

// EncodeName wraps a name's encoded components in the outer Name TLV.
func EncodeName(n *Name) []byte {
	return tlv.EncodeBlock(tlvName, n.Encoded)
}

// NewNameFromComponents builds a Name from a list of raw component
// values, primarily used by tests.
func NewNameFromComponents(comps ...[]byte) *Name {
	n := &Name{}
	for _, c := range comps {
		n.Comps = append(n.Comps, len(n.Encoded))
		n.Encoded = append(n.Encoded, tlv.EncodeBlock(tlvNameComponent, c)...)
	}
	return n
}

// IsDigestComponent reports whether a TLV element spanning byte range
// [start, end) has exactly the length of an explicit
// content-digest component (spec.md §4.3).
func IsDigestComponent(end, start int) bool {
	return end-start == core.DigestComponentLength
}
