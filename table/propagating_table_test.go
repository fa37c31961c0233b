/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/table"
)

func TestPropagatingTableInsertRejectsDuplicateNonce(t *testing.T) {
	pt := table.NewPropagatingTable()
	nonce := []byte{1, 2, 3, 4}

	first := &table.PropagatingEntry{IngressFace: 1}
	assert.True(t, pt.Insert(nonce, first))

	second := &table.PropagatingEntry{IngressFace: 2}
	assert.False(t, pt.Insert(nonce, second))
	assert.Same(t, first, pt.Lookup(nonce))
}

func TestPropagatingTableRemove(t *testing.T) {
	pt := table.NewPropagatingTable()
	nonce := []byte{9, 9}
	pt.Insert(nonce, &table.PropagatingEntry{})
	assert.Equal(t, 1, pt.Len())

	pt.Remove(nonce)
	assert.Equal(t, 0, pt.Len())
	assert.Nil(t, pt.Lookup(nonce))
}

func TestLinkToPrefixAndCancelOneFor(t *testing.T) {
	prefix := &table.PrefixEntry{}
	pe1 := &table.PropagatingEntry{IngressFace: 1}
	pe2 := &table.PropagatingEntry{IngressFace: 2}

	table.LinkToPrefix(prefix, pe1)
	table.LinkToPrefix(prefix, pe2)
	assert.NotNil(t, prefix.PropagatingHead)

	found := table.CancelOneFor(prefix, 1)
	assert.Same(t, pe1, found)
	assert.Nil(t, table.CancelOneFor(prefix, 1))

	still := table.CancelOneFor(prefix, 2)
	assert.Same(t, pe2, still)
}

func TestUnlinkDetachesFromRing(t *testing.T) {
	prefix := &table.PrefixEntry{}
	pe := &table.PropagatingEntry{}
	table.LinkToPrefix(prefix, pe)
	table.Unlink(pe)
	assert.Nil(t, table.CancelOneFor(prefix, 0))
}
