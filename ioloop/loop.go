/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package ioloop implements the I/O Loop (spec.md §2 component 8): the
// single unix.Poll-driven dispatch cycle that demultiplexes readable
// and writable file descriptors, drains bridged-transport channels,
// and runs the scheduler, grounded in ccnd.c's run()/process_input.
package ioloop

import (
	"net"

	"golang.org/x/sys/unix"

	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/face"
	"github.com/ccnlabs/ccnd/fw"
	"github.com/ccnlabs/ccnd/mgmt"
	"github.com/ccnlabs/ccnd/sched"
)

// maxPollMillis bounds how long a single poll call blocks even when no
// task is scheduled, so bridged-transport channels (fed by background
// goroutines outside the poll set) are still checked periodically.
const maxPollMillis = 250

// maxBridgedPerFace caps how many queued frames drainBridged pulls
// from a single bridged face per iteration, so one noisy WebSocket or
// Ethernet peer cannot starve fd-based faces.
const maxBridgedPerFace = 32

// targetKind distinguishes what a given poll set entry refers to.
type targetKind int

const (
	targetListener targetKind = iota
	targetUDPListen
	targetFace
)

type target struct {
	kind targetKind
	f    *face.Face // targetFace and targetUDPListen
}

// Loop owns the pollable state the event loop iterates over: the local
// stream listener, the bound datagram sockets, and everything else
// (stream faces, bridged faces) reachable through Daemon.Faces.
type Loop struct {
	Daemon     *fw.Daemon
	Listener   *face.UnixListener
	UDPFaces   []*face.Face
	WSListener *face.WebSocketListener
	Clock      sched.Clock

	udpPeers map[int]map[string]*face.Face // listen fd -> peer key -> Face

	quit      chan struct{}
	statusReq chan chan mgmt.Status
}

// New builds a Loop around an already-constructed daemon, local
// listener, and set of bound UDP sockets. wsListener may be nil when
// the WebSocket listener kind is disabled.
func New(d *fw.Daemon, listener *face.UnixListener, udpFaces []*face.Face, wsListener *face.WebSocketListener) *Loop {
	return &Loop{
		Daemon:     d,
		Listener:   listener,
		UDPFaces:   udpFaces,
		WSListener: wsListener,
		Clock:      sched.SystemClock{},
		udpPeers:   make(map[int]map[string]*face.Face),
		quit:       make(chan struct{}),
		statusReq:  make(chan chan mgmt.Status, 4),
	}
}

// Status answers one status-surface query (SPEC_FULL.md §12 item 4).
// It may be called from any goroutine (the HTTP handler's, in
// particular): it hands the request to the event-loop goroutine over a
// channel and blocks for the reply, since only that goroutine may read
// daemon state (spec.md §5).
func (l *Loop) Status() mgmt.Status {
	resp := make(chan mgmt.Status, 1)
	l.statusReq <- resp
	return <-resp
}

// serviceStatusRequests answers every status query queued since the
// last iteration, run from the event-loop goroutine alongside
// drainBridged and the scheduler tick.
func (l *Loop) serviceStatusRequests() {
	for {
		select {
		case resp := <-l.statusReq:
			resp <- mgmt.SnapshotOf(l.Daemon)
		default:
			return
		}
	}
}

// Stop asks Run to return once its current iteration completes.
func (l *Loop) Stop() {
	select {
	case <-l.quit:
	default:
		close(l.quit)
	}
}

// Run is ccnd's run(): repeatedly polls every pollable fd for
// readiness, drains bridged-transport channels, and fires the
// scheduler, until Stop is called.
func (l *Loop) Run() error {
	for {
		select {
		case <-l.quit:
			return nil
		default:
		}
		if err := l.iterate(); err != nil {
			return err
		}
	}
}

func (l *Loop) iterate() error {
	l.acceptBridgedFaces()
	l.drainBridged()
	l.serviceStatusRequests()

	pollfds, targets := l.buildPollSet()
	n, err := unix.Poll(pollfds, l.pollTimeoutMillis())
	if err != nil && err != unix.EINTR {
		return err
	}
	if n > 0 {
		l.dispatchReady(pollfds, targets)
	}

	l.Daemon.Sched.Run()
	return nil
}

// pollTimeoutMillis bounds the poll call by the scheduler's next
// deadline (spec.md §5 "the only blocking primitive is the poll
// call... bounded by the next scheduled task's deadline"), further
// capped by maxPollMillis so bridged faces are re-checked promptly.
func (l *Loop) pollTimeoutMillis() int {
	deadline := l.Daemon.Sched.NextDeadlineMicros()
	if deadline < 0 {
		return maxPollMillis
	}
	remaining := (deadline - l.Clock.NowMicros()) / 1000
	if remaining < 0 {
		remaining = 0
	}
	if remaining > maxPollMillis {
		remaining = maxPollMillis
	}
	return int(remaining)
}

func (l *Loop) buildPollSet() ([]unix.PollFd, []target) {
	var pollfds []unix.PollFd
	var targets []target

	if l.Listener != nil {
		pollfds = append(pollfds, unix.PollFd{Fd: int32(l.Listener.Fd), Events: unix.POLLIN})
		targets = append(targets, target{kind: targetListener})
	}
	for _, uf := range l.UDPFaces {
		pollfds = append(pollfds, unix.PollFd{Fd: int32(uf.Fd), Events: unix.POLLIN})
		targets = append(targets, target{kind: targetUDPListen, f: uf})
	}
	l.Daemon.Faces.Each(func(f *face.Face) {
		if f.IsBridged() || f.Fd < 0 {
			return
		}
		events := int16(unix.POLLIN)
		if f.HasQueuedOutput() {
			events |= unix.POLLOUT
		}
		pollfds = append(pollfds, unix.PollFd{Fd: int32(f.Fd), Events: events})
		targets = append(targets, target{kind: targetFace, f: f})
	})
	return pollfds, targets
}

func (l *Loop) dispatchReady(pollfds []unix.PollFd, targets []target) {
	for i, pfd := range pollfds {
		if pfd.Revents == 0 {
			continue
		}
		switch targets[i].kind {
		case targetListener:
			l.acceptOne()
		case targetUDPListen:
			l.readDatagrams(targets[i].f)
		case targetFace:
			l.serviceFace(targets[i].f, pfd.Revents)
		}
	}
}

// acceptOne accepts a single pending local connection, grounded in
// accept_new_client being invoked once per readiness notification from
// process_input.
func (l *Loop) acceptOne() {
	f, err := l.Listener.Accept()
	if err != nil {
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			core.LogWarn("ioloop", "accept: ", err)
		}
		return
	}
	if _, err := l.Daemon.EnrollFace(f); err != nil {
		core.LogWarn("ioloop", "enroll: ", err)
		f.Close()
	}
}

// readDatagrams drains one pending datagram from a bound UDP socket,
// demultiplexing by source address into a per-peer Face (spec.md §4.1)
// and handing its bytes to feedAndDispatch; a datagram that does not
// decode is discarded whole rather than kept as a partial frame.
func (l *Loop) readDatagrams(listenFace *face.Face) {
	scratch, err := l.Daemon.Pool.Acquire()
	if err != nil {
		core.LogWarn("ioloop", "scratch pool exhausted: ", err)
		return
	}
	defer scratch.Release()
	buf := scratch.Bytes()[:cap(scratch.Bytes())]

	n, from, err := unix.Recvfrom(listenFace.Fd, buf, 0)
	if err != nil {
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			core.LogWarn("ioloop", "recvfrom: ", err)
		}
		return
	}
	if n == 0 {
		return
	}

	peers := l.udpPeers[listenFace.Fd]
	if peers == nil {
		peers = make(map[string]*face.Face)
		l.udpPeers[listenFace.Fd] = peers
	}
	key := face.DatagramPeerKey(nil, from)
	pf := peers[key]
	if pf == nil {
		pf = face.NewDatagramPeerFace(listenFace.Fd, from, sockaddrToNetAddr(from))
		if _, err := l.Daemon.EnrollFace(pf); err != nil {
			core.LogWarn("ioloop", "enroll dgram peer: ", err)
			return
		}
		peers[key] = pf
	}

	l.feedAndDispatch(pf, buf[:n])
}

func sockaddrToNetAddr(sa unix.Sockaddr) net.Addr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.UDPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}
	case *unix.SockaddrInet6:
		return &net.UDPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}
	default:
		return nil
	}
}

// serviceFace handles one readiness notification for a stream or
// already-enrolled datagram-peer face: queued output is flushed first
// so a face that is both readable and writable doesn't starve its
// pending sends, then one non-blocking read is attempted, grounded in
// do_deferred_write followed by process_input's single recv call per
// readiness.
func (l *Loop) serviceFace(f *face.Face, revents int16) {
	if revents&unix.POLLOUT != 0 {
		if err := f.FlushQueued(); err != nil {
			l.closeFace(f)
			return
		}
	}
	if revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
		return
	}

	scratch, err := l.Daemon.Pool.Acquire()
	if err != nil {
		core.LogWarn("ioloop", "scratch pool exhausted: ", err)
		return
	}
	defer scratch.Release()
	buf := scratch.Bytes()[:cap(scratch.Bytes())]

	n, err := unix.Read(f.Fd, buf)
	if err != nil {
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			l.closeFace(f)
		}
		return
	}
	if n == 0 {
		l.closeFace(f)
		return
	}
	l.feedAndDispatch(f, buf[:n])
}

// feedAndDispatch appends data to f's inbound buffer, extracts every
// complete message now available, and hands each to the forwarding
// core, grounded in process_input's decode-then-dispatch loop. A
// framer-level protocol error is fatal on a stream face (framing
// corruption invalidates every byte after it, so the face is torn
// down) but not on a datagram face, where each read is already a
// complete, independent PDU: the bad datagram is discarded and the
// face is left alive for the next one (spec.md §4.8, §7).
func (l *Loop) feedAndDispatch(f *face.Face, data []byte) {
	f.Feed(data)
	msgs, err := f.ExtractMessages()
	for _, m := range msgs {
		l.Daemon.ProcessMessage(f, m)
	}
	if err != nil {
		if f.IsDatagram {
			core.LogWarn("ioloop", "malformed datagram from ", f, ": ", err)
			f.DiscardInbound()
			return
		}
		core.LogWarn("ioloop", "malformed message from ", f, ": ", err)
		l.closeFace(f)
	}
}

func (l *Loop) closeFace(f *face.Face) {
	f.Close()
	l.Daemon.Faces.Release(f.ID)
	if f.IsDatagram && f.PeerAddr != nil {
		key := face.DatagramPeerKey(f.PeerAddr, nil)
		for _, peers := range l.udpPeers {
			if peers[key] == f {
				delete(peers, key)
				break
			}
		}
	}
}

// acceptBridgedFaces enrolls every WebSocket face that finished its
// upgrade handshake since the last iteration, mirroring acceptOne's
// accept-then-enroll shape for a listener with no fd of its own to
// unix.Poll (spec.md §6 "an additional listener kind may be registered
// without changing the matching engine or content store").
func (l *Loop) acceptBridgedFaces() {
	if l.WSListener == nil {
		return
	}
	for {
		f := l.WSListener.Accept()
		if f == nil {
			return
		}
		if _, err := l.Daemon.EnrollFace(f); err != nil {
			core.LogWarn("ioloop", "enroll websocket: ", err)
			f.Close()
		}
	}
}

// drainBridged pulls buffered frames from every WebSocket/Ethernet
// face's background-goroutine channel and dispatches them exactly like
// a poll-ready fd, since those transports have no fd of their own for
// unix.Poll to watch (spec.md §5).
func (l *Loop) drainBridged() {
	var gone []*face.Face
	l.Daemon.Faces.Each(func(f *face.Face) {
		if !f.IsBridged() {
			return
		}
		for i := 0; i < maxBridgedPerFace; i++ {
			data, ok, closed := f.TryReceiveBridged()
			if closed {
				gone = append(gone, f)
				return
			}
			if !ok {
				return
			}
			l.feedAndDispatch(f, data)
		}
	})
	for _, f := range gone {
		l.closeFace(f)
	}
}
