/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/ndn"
)

func TestInterestEncodeDecodeRoundTrip(t *testing.T) {
	name := ndn.NewNameFromComponents([]byte("go"), []byte("ndn"))
	i := ndn.NewInterest(name)
	i.MustBeFresh = true
	i.EnsureNonce()

	wire, err := ndn.EncodeInterest(i)
	assert.NoError(t, err)
	assert.Equal(t, wire, i.RawWire())

	// strip the outer Interest TLV header the same way the I/O loop's
	// framer does before handing a message to ProcessInterest.
	blk := decodeOuter(t, wire)
	decoded, err := ndn.DecodeInterest(blk)
	assert.NoError(t, err)
	assert.True(t, decoded.MustBeFresh)
	assert.Equal(t, i.Nonce, decoded.Nonce)
	assert.Equal(t, "/go/ndn", decoded.Name.String())
}

func TestSpliceNonceIsIdempotentOnceSet(t *testing.T) {
	name := ndn.NewNameFromComponents([]byte("a"))
	i := ndn.NewInterest(name)
	wire, err := ndn.EncodeInterest(i)
	assert.NoError(t, err)
	assert.Empty(t, i.Nonce)

	spliced := ndn.SpliceNonce(i, wire)
	assert.NotEmpty(t, i.Nonce)
	assert.NotEqual(t, wire, spliced)

	again := ndn.SpliceNonce(i, spliced)
	assert.Equal(t, spliced, again)
}

func TestDataEncodeDecodeRoundTripAndSignatureHash(t *testing.T) {
	name := ndn.NewNameFromComponents([]byte("go"), []byte("ndn"))
	d := &ndn.ContentObject{Name: name, Content: []byte("hello"), SignatureValue: []byte{0xAA, 0xBB}}

	wire, sigOffset, err := ndn.EncodeData(d)
	assert.NoError(t, err)
	assert.Equal(t, len(wire)-len(d.SignatureValue), sigOffset)

	blk := decodeOuter(t, wire)
	decoded, err := ndn.DecodeData(blk)
	assert.NoError(t, err)
	assert.Equal(t, "/go/ndn", decoded.Name.String())
	assert.Equal(t, []byte("hello"), decoded.Content)
	assert.Equal(t, d.SignatureHash(), decoded.SignatureHash())
}

func TestSignatureHashFallsBackToContentWhenUnsigned(t *testing.T) {
	name := ndn.NewNameFromComponents([]byte("a"))
	withSig := &ndn.ContentObject{Name: name, Content: []byte("x"), SignatureValue: []byte{1, 2, 3}}
	withoutSig := &ndn.ContentObject{Name: name, Content: []byte("x")}
	assert.NotEqual(t, withSig.SignatureHash(), withoutSig.SignatureHash())
}

func TestSniffKind(t *testing.T) {
	i := ndn.NewInterest(ndn.NewNameFromComponents([]byte("a")))
	wire, err := ndn.EncodeInterest(i)
	assert.NoError(t, err)
	assert.Equal(t, ndn.KindInterest, ndn.SniffKind(topLevelType(t, wire)))

	d := &ndn.ContentObject{Name: ndn.NewNameFromComponents([]byte("a")), Content: []byte("y")}
	dwire, _, err := ndn.EncodeData(d)
	assert.NoError(t, err)
	assert.Equal(t, ndn.KindData, ndn.SniffKind(topLevelType(t, dwire)))
}

func TestInterestLifetimeDefault(t *testing.T) {
	i := ndn.NewInterest(ndn.NewNameFromComponents([]byte("a")))
	assert.Equal(t, 4*time.Second, i.InterestLifetime)
}
