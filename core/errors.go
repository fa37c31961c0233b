/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "errors"

// Sentinel errors for conditions the forwarder itself detects, matching
// spec.md §7's error kinds. Callers wrap these with fmt.Errorf("...: %w")
// when they have context (name, face id) to add.
var (
	ErrParse            = errors.New("malformed interest or content object")
	ErrTooLarge         = errors.New("message exceeds maximum PDU size")
	ErrTooManyComps     = errors.New("name exceeds maximum component count")
	ErrScopeViolation   = errors.New("scope violation on link-framed face")
	ErrDuplicateNonce   = errors.New("duplicate nonce")
	ErrNameCollision    = errors.New("content name collision")
	ErrFaceTableFull    = errors.New("face table is full")
	ErrNoSuchFace       = errors.New("no such face")
	ErrListenerVanished = errors.New("listener socket path no longer exists")
	ErrNestedPDU        = errors.New("nested outer PDU envelope")
)
