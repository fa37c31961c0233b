/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package tlv implements the low-level Type-Length-Value primitives the
// wire codec (ndn package) is built from. It is the "external
// collaborator" wire-format codec named in spec.md §1(a): the forwarder
// depends only on the ndn.Name/Interest/ContentObject shapes it
// produces, never on these primitives directly.
package tlv

import (
	"encoding/binary"
	"errors"
)

// ErrTooShort indicates a buffer ended before a complete TLV element
// could be decoded from it; framers use this to distinguish "need more
// bytes" from a genuine parse error.
var ErrTooShort = errors.New("tlv: buffer too short")

// EncodeVarNum encodes a non-negative integer using NDN-TLV's variable
// length number encoding: values up to 0xFC fit in a single byte, then
// a 0xFD/0xFE/0xFF prefix byte selects a 2/4/8-byte big-endian value.
func EncodeVarNum(in uint64) []byte {
	switch {
	case in <= 0xFC:
		return []byte{byte(in)}
	case in <= 0xFFFF:
		b := make([]byte, 3)
		b[0] = 0xFD
		binary.BigEndian.PutUint16(b[1:], uint16(in))
		return b
	case in <= 0xFFFFFFFF:
		b := make([]byte, 5)
		b[0] = 0xFE
		binary.BigEndian.PutUint32(b[1:], uint32(in))
		return b
	default:
		b := make([]byte, 9)
		b[0] = 0xFF
		binary.BigEndian.PutUint64(b[1:], in)
		return b
	}
}

// DecodeVarNum decodes a non-negative integer from the head of in,
// returning the value and the number of bytes it occupied.
func DecodeVarNum(in []byte) (uint64, int, error) {
	if len(in) < 1 {
		return 0, 0, ErrTooShort
	}
	switch {
	case in[0] <= 0xFC:
		return uint64(in[0]), 1, nil
	case in[0] == 0xFD:
		if len(in) < 3 {
			return 0, 0, ErrTooShort
		}
		return uint64(binary.BigEndian.Uint16(in[1:3])), 3, nil
	case in[0] == 0xFE:
		if len(in) < 5 {
			return 0, 0, ErrTooShort
		}
		return uint64(binary.BigEndian.Uint32(in[1:5])), 5, nil
	default:
		if len(in) < 9 {
			return 0, 0, ErrTooShort
		}
		return binary.BigEndian.Uint64(in[1:9]), 9, nil
	}
}

// Block is a decoded (type, value) pair together with the number of
// wire bytes it and its length prefix occupied, used by the framer to
// walk a byte stream one element at a time without copying.
type Block struct {
	Type    uint64
	Value   []byte
	Wirelen int
}

// DecodeBlock decodes one TLV element from the head of in. It returns
// ErrTooShort if in does not yet contain a complete element (the
// framer's cue to wait for more bytes rather than treating this as a
// parse error).
func DecodeBlock(in []byte) (Block, error) {
	t, tn, err := DecodeVarNum(in)
	if err != nil {
		return Block{}, err
	}
	l, ln, err := DecodeVarNum(in[tn:])
	if err != nil {
		return Block{}, err
	}
	start := tn + ln
	end := start + int(l)
	if end > len(in) {
		return Block{}, ErrTooShort
	}
	return Block{Type: t, Value: in[start:end], Wirelen: end}, nil
}

// EncodeBlock encodes a (type, value) pair as a complete TLV element.
func EncodeBlock(t uint64, value []byte) []byte {
	out := make([]byte, 0, len(value)+9)
	out = append(out, EncodeVarNum(t)...)
	out = append(out, EncodeVarNum(uint64(len(value)))...)
	out = append(out, value...)
	return out
}
