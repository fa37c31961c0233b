/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/ndn/tlv"
)

// decodeOuter strips a top-level TLV element's type/length header,
// the way the I/O loop's framer does before ProcessMessage sees the
// inner Interest/ContentObject bytes.
func decodeOuter(t *testing.T, wire []byte) []byte {
	t.Helper()
	blk, err := tlv.DecodeBlock(wire)
	assert.NoError(t, err)
	return blk.Value
}

func topLevelType(t *testing.T, wire []byte) uint64 {
	t.Helper()
	blk, err := tlv.DecodeBlock(wire)
	assert.NoError(t, err)
	return blk.Type
}
