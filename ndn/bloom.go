/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "github.com/cespare/xxhash"

// bloomBits and bloomHashes size the response filter's Bloom filter
// (spec.md §4.3): a fixed-size filter is encoded into the interest, so
// both ends must agree on its dimensions. 8192 bits and 4 hashes keep
// the false-positive rate low for the handful of already-seen content
// items a single interest realistically carries.
const (
	bloomBits   = 8192
	bloomBytes  = bloomBits / 8
	bloomHashes = 4
)

// Bloom is a fixed-size Bloom filter over 32-byte signature-hash
// values, used by the response filter to let a requester tell the
// forwarder which content it has already seen (spec.md §4.3).
type Bloom struct {
	bits [bloomBytes]byte
	seed uint64
}

// NewBloom creates an empty Bloom filter seeded with seed, so two
// requesters using different seeds don't collide identically.
func NewBloom(seed uint64) *Bloom {
	return &Bloom{seed: seed}
}

// indices derives bloomHashes bit indices from a signature hash using
// Kirsch-Mitzenmacher double hashing from two xxhash digests (of the
// whole hash and of its second half).
func (b *Bloom) indices(sigHash [32]byte) [bloomHashes]uint32 {
	h1 := xxhash.Sum64(sigHash[:]) ^ b.seed
	h2 := xxhash.Sum64(sigHash[16:]) ^ b.seed
	var idx [bloomHashes]uint32
	for i := 0; i < bloomHashes; i++ {
		idx[i] = uint32((h1 + uint64(i)*h2) % bloomBits)
	}
	return idx
}

// Add marks sigHash as present in the filter.
func (b *Bloom) Add(sigHash [32]byte) {
	for _, idx := range b.indices(sigHash) {
		b.bits[idx/8] |= 1 << (idx % 8)
	}
}

// Test reports whether sigHash may be present in the filter. A false
// positive is possible; a false negative is not.
func (b *Bloom) Test(sigHash [32]byte) bool {
	for _, idx := range b.indices(sigHash) {
		if b.bits[idx/8]&(1<<(idx%8)) == 0 {
			return false
		}
	}
	return true
}

// Encode serializes the filter's seed and bitset for wire transport.
func (b *Bloom) Encode() []byte {
	out := make([]byte, 8+bloomBytes)
	for i := 0; i < 8; i++ {
		out[i] = byte(b.seed >> (8 * i))
	}
	copy(out[8:], b.bits[:])
	return out
}

// DecodeBloom parses the wire form Encode produces.
func DecodeBloom(in []byte) (*Bloom, bool) {
	if len(in) != 8+bloomBytes {
		return nil, false
	}
	b := &Bloom{}
	for i := 0; i < 8; i++ {
		b.seed |= uint64(in[i]) << (8 * i)
	}
	copy(b.bits[:], in[8:])
	return b, true
}
