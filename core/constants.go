/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "time"

// Tunables named directly after the original ccnd's preprocessor
// constants (see original_source/ccnd/agent/ccnd.c). The values below
// are the ones shipped by the reference implementation and are fixed at
// compile time; none of them is read from the configuration file.
const (
	// CCNUnitInterest is one unit of interest demand credited to a
	// face on arrival of a matching interest.
	CCNUnitInterest = 1

	// CCNInterestHalflifeMicrosec is the half-life of interest demand
	// counters absent further arrivals.
	CCNInterestHalflifeMicrosec = 4 * 1024 * 1024

	// CCNInterestAgingMicrosec is the aging pass period: one quarter
	// of the half-life, so four passes approximate one half-life via
	// repeated multiplication by 5/6 (the fourth root of one half).
	CCNInterestAgingMicrosec = CCNInterestHalflifeMicrosec / 4

	// CCNDataPause is the base delay, in microseconds, between sends
	// of the same content object to successive link-framed faces.
	CCNDataPause = 16 * 1024

	// CCNSkiplistMaxDepth bounds the content store skiplist's level
	// count.
	CCNSkiplistMaxDepth = 30

	// MaxFaces bounds the face table's dense array; must be a power
	// of two so faceID = slot | generation can mask out the slot.
	MaxFaces = 1 << 16

	// MaxPDUSize is the largest single Interest/ContentObject message
	// the framer will accept (spec.md §7: size violation above this).
	MaxPDUSize = 65535

	// MaxNameComponents bounds the number of components in a parsed
	// name; oversize names are a size violation (spec.md §7).
	MaxNameComponents = 1024

	// PrefixIdleLimit is the number of consecutive empty aging passes
	// after which an interest prefix entry is deleted.
	PrefixIdleLimit = 8

	// PropagateDelayMinMicrosec and PropagateDelayMaxMicrosec bound
	// (inclusively) the randomized per-face delay between successive
	// sends of a forwarded interest.
	PropagateDelayMinMicrosec = 500
	PropagateDelayMaxMicrosec = 8691

	// CleaningInterval is the period of the face-send-set compaction
	// sweep over the content store's accession window.
	CleaningInterval = 15 * time.Second

	// ListenerRebindWait bounds how long ccnd waits for a prior
	// listener to relinquish its socket path before re-binding.
	ListenerRebindWait = 9 * time.Second

	// DigestComponentLength is the encoded length of an explicit
	// content-digest name component: 1 (type) + 2 (length varint,
	// worst case) + 32 (sha256) + 1, matching spec.md §4.3.
	DigestComponentLength = 1 + 2 + 32 + 1
)
