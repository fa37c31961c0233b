/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/ndn"
	"github.com/ccnlabs/ccnd/ndn/tlv"
)

// decoderState is a sliding decoder over Face.inbuf (spec.md §4.8): it
// has no state of its own beyond "how many trailing bytes of inbuf are
// unconsumed", since every message is self-delimiting TLV.
type decoderState struct{}

// Message is one framer-recognized element ready for dispatch: its
// top-level TLV type and inner value bytes (with any outer PDU
// envelope already stripped).
type Message struct {
	Type  uint64
	Value []byte
}

// Feed appends newly-received bytes to the face's inbound buffer and
// counts the receive for the reaper's inactivity check.
func (f *Face) Feed(data []byte) {
	f.touch()
	f.inbuf = append(f.inbuf, data...)
}

// DiscardInbound drops whatever is currently buffered. Used when a
// datagram face's most recent datagram fails to decode (spec.md §4.8,
// §7): unlike a stream, one bad datagram carries no implication about
// the framing of the next one, so the face stays alive and only the
// bad bytes are thrown away.
func (f *Face) DiscardInbound() {
	f.inbuf = f.inbuf[:0]
}

// ExtractMessages drains as many complete top-level messages as are
// currently buffered, unwrapping at most one level of outer PDU
// envelope (spec.md §4.8). A face's first PDU-wrapped message marks it
// link-framed for the rest of its lifetime.
func (f *Face) ExtractMessages() ([]Message, error) {
	var out []Message
	pos := 0
	for pos < len(f.inbuf) {
		blk, err := tlv.DecodeBlock(f.inbuf[pos:])
		if err == tlv.ErrTooShort {
			break // wait for more bytes
		}
		if err != nil {
			return out, core.ErrParse
		}
		if blk.Type == ndn.PDUType {
			f.IsLinkFramed = true
			inner, err := drainPDUBody(blk.Value)
			if err != nil {
				return out, err
			}
			out = append(out, inner...)
		} else {
			out = append(out, Message{Type: blk.Type, Value: blk.Value})
		}
		pos += blk.Wirelen
	}
	f.inbuf = append([]byte{}, f.inbuf[pos:]...)
	return out, nil
}

// drainPDUBody decodes the elements nested inside one outer PDU
// envelope. A second nested envelope is refused to bound recursion
// (spec.md §4.8).
func drainPDUBody(body []byte) ([]Message, error) {
	var out []Message
	pos := 0
	for pos < len(body) {
		blk, err := tlv.DecodeBlock(body[pos:])
		if err != nil {
			return out, core.ErrParse
		}
		if blk.Type == ndn.PDUType {
			return out, core.ErrNestedPDU
		}
		out = append(out, Message{Type: blk.Type, Value: blk.Value})
		pos += blk.Wirelen
	}
	return out, nil
}

// FrameForSend wraps wire in the outer PDU envelope when the
// destination face expects framed PDUs, otherwise returns it unchanged
// (spec.md §4.5: "if face.flags says it expects framed PDUs, the bytes
// are wrapped in an outer PDU envelope; otherwise sent as-is").
func FrameForSend(f *Face, wire []byte) []byte {
	if f.IsLinkFramed {
		return ndn.WrapPDU(wire)
	}
	return wire
}
