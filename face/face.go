/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package face implements the Face Table (spec.md §2 component 2) and
// the concrete transports (Unix-domain stream, UDP datagram,
// WebSocket, multicast Ethernet) that produce and consume Faces.
package face

import (
	"net"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// Kind distinguishes how a face's bytes are framed and addressed.
type Kind int

const (
	KindUnixStream Kind = iota
	KindUDP
	KindWebSocket
	KindEthernet
)

func (k Kind) String() string {
	switch k {
	case KindUnixStream:
		return "unix"
	case KindUDP:
		return "udp"
	case KindWebSocket:
		return "websocket"
	case KindEthernet:
		return "ether"
	default:
		return "unknown"
	}
}

// outboundQueue is a face's deferred-send buffer (spec.md §3): a list
// of pending frames plus how much of the head frame has already been
// written to the socket.
type outboundQueue struct {
	frames  [][]byte
	flushed int // bytes of frames[0] already written
}

func (q *outboundQueue) empty() bool {
	return len(q.frames) == 0
}

func (q *outboundQueue) push(frame []byte) {
	q.frames = append(q.frames, frame)
}

// Face is a connection endpoint (spec.md §3). Fields mirror the spec's
// data model directly: a stable id, a native handle, framing/transport
// flags, per-kind addressing, buffers, and the aging/resume hints the
// matching engine and reaper consult.
type Face struct {
	ID uint32
	Fd int // -1 for faces without a pollable fd (bridged transports)

	Kind         Kind
	IsDatagram   bool
	IsLinkFramed bool

	PeerAddr    net.Addr // set for datagram/websocket faces
	LocalAddr   net.Addr

	inbuf   []byte
	decoder decoderState

	out *outboundQueue

	// RecvCount is bumped on every successful receive and inspected
	// (then reset) by the reaper's two-pass inactivity check
	// (spec.md §4.7).
	RecvCount uint64

	// CachedAccession resumes prefix enumeration for a repeat
	// interest from the same face (spec.md §4.3 step 1).
	CachedAccession uint64

	// Gone is the reaper's first-strike mark for a datagram face that
	// received nothing during one full reaper period; a second idle
	// period closes the face (spec.md §4.7).
	Gone bool

	// bridged transports (WebSocket, Ethernet) feed bytes through a
	// channel drained by the I/O loop instead of exposing a pollable
	// fd; nil for fd-based faces.
	bridgeIn  chan []byte
	bridgeOut func([]byte) error
	closeFn   func()
}

func (f *Face) String() string {
	return "Face(id=" + strconv.FormatUint(uint64(f.ID), 10) + ", kind=" + f.Kind.String() + ")"
}

// IsBridged reports whether this face is driven by a background
// goroutine rather than the poll set (WebSocket, Ethernet).
func (f *Face) IsBridged() bool {
	return f.bridgeIn != nil
}

// TryReceiveBridged drains one pending inbound frame from a bridged
// transport's background goroutine without blocking (spec.md §5: the
// I/O loop is the only place bridged bytes are allowed to touch
// daemon state). ok is false when nothing is queued right now; closed
// is true once the goroutine has shut down and bridgeIn will never
// yield another frame.
func (f *Face) TryReceiveBridged() (data []byte, ok bool, closed bool) {
	if f.bridgeIn == nil {
		return nil, false, false
	}
	select {
	case b, open := <-f.bridgeIn:
		if !open {
			return nil, false, true
		}
		return b, true, false
	default:
		return nil, false, false
	}
}

// QueueSend enqueues frame for output. If the face has no queued
// output and is not currently write-blocked, the caller uses
// TrySendDirect instead; QueueSend itself never blocks or writes.
func (f *Face) QueueSend(frame []byte) {
	if f.out == nil {
		f.out = &outboundQueue{}
	}
	f.out.push(frame)
}

// HasQueuedOutput reports whether sends must be deferred rather than
// attempted immediately (spec.md §5).
func (f *Face) HasQueuedOutput() bool {
	return f.out != nil && !f.out.empty()
}

// TrySendDirect attempts a single non-blocking write of frame, used
// when the face has no queued output yet (spec.md §5: "Sends are
// non-blocking: a short write installs an outbound queue"). It returns
// true if the whole frame was written.
func (f *Face) TrySendDirect(frame []byte) (bool, error) {
	if f.Fd < 0 {
		if f.bridgeOut != nil {
			return true, f.bridgeOut(frame)
		}
		return false, nil
	}
	n, err := unix.Write(f.Fd, frame)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			f.QueueSend(frame)
			return false, nil
		}
		return false, err
	}
	if n < len(frame) {
		f.QueueSend(frame[n:])
		return false, nil
	}
	return true, nil
}

// FlushQueued drains as much of the outbound queue as the socket will
// currently accept, called from the write-ready callback.
func (f *Face) FlushQueued() error {
	if f.out == nil {
		return nil
	}
	for len(f.out.frames) > 0 {
		head := f.out.frames[0][f.out.flushed:]
		n, err := unix.Write(f.Fd, head)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return nil
			}
			return err
		}
		f.out.flushed += n
		if f.out.flushed >= len(f.out.frames[0]) {
			f.out.frames = f.out.frames[1:]
			f.out.flushed = 0
		} else {
			return nil // partial write; wait for next writability
		}
	}
	return nil
}

// Close tears down the face's underlying transport resources. It does
// not remove the face from the Table; that is the Table's job so it
// can update dispatch state consistently.
func (f *Face) Close() {
	if f.closeFn != nil {
		f.closeFn()
	}
	if f.Fd >= 0 {
		_ = unix.Close(f.Fd)
		f.Fd = -1
	}
}

// touch bumps the receive-activity counter the reaper inspects; the
// reaper itself resets the counter and its strike mark.
func (f *Face) touch() {
	f.RecvCount++
}

func nowMicros() int64 {
	return time.Now().UnixMicro()
}
