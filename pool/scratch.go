/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package pool implements the Scratch Buffer Pool (spec.md §2 component
// 1): reusable byte buffers and index vectors borrowed for the
// duration of a single I/O loop iteration to avoid allocation churn
// per message. Grounded in YaNFD's NDNLPLinkService, which allocates
// one github.com/zjkmxy/stealthpool.Pool per link service and draws
// receive buffers from it.
package pool

import (
	"github.com/ccnlabs/ccnd/core"
	"github.com/Link512/stealthpool"
)

const (
	blockSize  = 65535 + 16
	blockCount = 4096
)

// Pool hands out scratch byte buffers backed by a stealthpool block
// pool, and plain index vectors backed by a sync.Pool-free freelist
// (index vectors are small and short-lived enough that a stealthpool
// block would be overkill).
type Pool struct {
	blocks *stealthpool.Pool
	idxvec [][]int
}

// New allocates a scratch pool sized for the daemon's expected
// concurrent in-flight message count.
func New() (*Pool, error) {
	blocks, err := stealthpool.New(blockCount, stealthpool.WithBlockSize(blockSize))
	if err != nil {
		return nil, err
	}
	return &Pool{blocks: blocks}, nil
}

// Close releases the underlying stealthpool allocation.
func (p *Pool) Close() {
	if p.blocks != nil {
		p.blocks.Close()
	}
}

// Scratch is a borrowed byte buffer. At most one caller holds a given
// Scratch at a time (spec.md §5); Release returns it to the pool.
type Scratch struct {
	block *stealthpool.Block
	buf   []byte
}

// Bytes returns the buffer's backing slice, valid until Release.
func (s *Scratch) Bytes() []byte {
	return s.buf
}

// Acquire borrows a scratch buffer of at least MaxPDUSize capacity,
// large enough for one framed message plus a PDU envelope header.
func (p *Pool) Acquire() (*Scratch, error) {
	blk, err := p.blocks.Alloc()
	if err != nil {
		return nil, err
	}
	buf := blk.Bytes()
	if cap(buf) < core.MaxPDUSize {
		blk.Release()
		return nil, core.ErrTooLarge
	}
	return &Scratch{block: blk, buf: buf[:0]}, nil
}

// Release returns the scratch buffer to the pool. Using s after
// Release is a use-after-free bug the caller must avoid, exactly as
// with any single-holder pool.
func (s *Scratch) Release() {
	if s.block != nil {
		s.block.Release()
		s.block = nil
	}
}

// AcquireIndexVec borrows a reusable []int index vector (used for
// component-boundary and face-id scratch arrays during matching),
// growing or shrinking the returned slice to length n.
func (p *Pool) AcquireIndexVec(n int) []int {
	if l := len(p.idxvec); l > 0 {
		v := p.idxvec[l-1]
		p.idxvec = p.idxvec[:l-1]
		if cap(v) >= n {
			return v[:n]
		}
	}
	return make([]int, n, n*2+8)
}

// ReleaseIndexVec returns an index vector to the pool for reuse.
func (p *Pool) ReleaseIndexVec(v []int) {
	p.idxvec = append(p.idxvec, v[:0])
}
