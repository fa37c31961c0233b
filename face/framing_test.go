/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/face"
	"github.com/ccnlabs/ccnd/ndn"
	"github.com/ccnlabs/ccnd/ndn/tlv"
)

func TestExtractMessagesWaitsForCompleteElement(t *testing.T) {
	f := &face.Face{}
	full := tlv.EncodeBlock(5, []byte("hello"))

	f.Feed(full[:len(full)-2])
	msgs, err := f.ExtractMessages()
	assert.NoError(t, err)
	assert.Empty(t, msgs)

	f.Feed(full[len(full)-2:])
	msgs, err = f.ExtractMessages()
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, uint64(5), msgs[0].Type)
	assert.Equal(t, []byte("hello"), msgs[0].Value)
}

func TestExtractMessagesUnwrapsOuterPDUAndMarksLinkFramed(t *testing.T) {
	f := &face.Face{}
	inner := tlv.EncodeBlock(5, []byte("payload"))
	wrapped := ndn.WrapPDU(inner)

	f.Feed(wrapped)
	msgs, err := f.ExtractMessages()
	assert.NoError(t, err)
	assert.True(t, f.IsLinkFramed)
	assert.Len(t, msgs, 1)
	assert.Equal(t, uint64(5), msgs[0].Type)
}

func TestExtractMessagesRejectsNestedPDU(t *testing.T) {
	f := &face.Face{}
	inner := ndn.WrapPDU(tlv.EncodeBlock(5, []byte("x")))
	doubled := ndn.WrapPDU(inner)

	f.Feed(doubled)
	_, err := f.ExtractMessages()
	assert.Error(t, err)
}

func TestFrameForSendWrapsOnlyForLinkFramedFaces(t *testing.T) {
	wire := tlv.EncodeBlock(5, []byte("x"))

	plain := &face.Face{}
	assert.Equal(t, wire, face.FrameForSend(plain, wire))

	linked := &face.Face{IsLinkFramed: true}
	wrapped := face.FrameForSend(linked, wire)
	assert.NotEqual(t, wire, wrapped)

	blk, err := tlv.DecodeBlock(wrapped)
	assert.NoError(t, err)
	assert.Equal(t, uint64(ndn.PDUType), blk.Type)
}

func TestQueueSendAndHasQueuedOutput(t *testing.T) {
	f := &face.Face{Fd: -1}
	assert.False(t, f.HasQueuedOutput())
	f.QueueSend([]byte("frame"))
	assert.True(t, f.HasQueuedOutput())
}
