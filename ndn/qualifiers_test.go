/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/ndn"
)

func TestMatchesQualifiersExclude(t *testing.T) {
	interest := ndn.NewInterest(ndn.NewNameFromComponents([]byte("go")))
	content := &ndn.ContentObject{Name: ndn.NewNameFromComponents([]byte("go"), []byte("ndn"))}

	assert.True(t, ndn.MatchesQualifiers(interest, content, 1))

	interest.Exclude = [][]byte{content.Name.Component(1)}
	assert.False(t, ndn.MatchesQualifiers(interest, content, 1))
}

func TestMatchesQualifiersSuffixComponentBounds(t *testing.T) {
	interest := ndn.NewInterest(ndn.NewNameFromComponents([]byte("go")))
	content := &ndn.ContentObject{Name: ndn.NewNameFromComponents([]byte("go"), []byte("ndn"), []byte("v1"))}

	max := 1
	interest.MaxSuffixComponents = &max
	assert.False(t, ndn.MatchesQualifiers(interest, content, 1))

	max = 2
	assert.True(t, ndn.MatchesQualifiers(interest, content, 1))

	min := 3
	interest.MinSuffixComponents = &min
	assert.False(t, ndn.MatchesQualifiers(interest, content, 1))
}

func TestMatchesQualifiersPublisherDigest(t *testing.T) {
	interest := ndn.NewInterest(ndn.NewNameFromComponents([]byte("go")))
	interest.PublisherDigest = []byte{1, 2, 3}
	content := &ndn.ContentObject{Name: ndn.NewNameFromComponents([]byte("go")), PublisherDigest: []byte{9, 9, 9}}

	assert.False(t, ndn.MatchesQualifiers(interest, content, 0))
	content.PublisherDigest = []byte{1, 2, 3}
	assert.True(t, ndn.MatchesQualifiers(interest, content, 0))
}
