/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"net"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/ccnlabs/ccnd/face/impl"
)

// DefaultUDPPort is the datagram port used when CCN_LOCAL_PORT is
// unset, empty, or overlong, mirroring ccnd_create's portstr fallback
// (spec.md §6).
const DefaultUDPPort = "4485"

// UDPPortFromEnv derives the datagram port string the way ccnd_create
// does: an unset, empty, or overlong (>10 char) value falls back to
// DefaultUDPPort.
func UDPPortFromEnv(getenv func(string) string) string {
	s := getenv("CCN_LOCAL_PORT")
	if s == "" || len(s) > 10 {
		return DefaultUDPPort
	}
	return s
}

// ListenUDP binds one non-blocking datagram socket per local address
// resolved for port, grounded in ccnd_create's getaddrinfo/socket/bind
// loop over every address family the host offers (spec.md §6 "datagram
// sockets bound to all local addresses").
func ListenUDP(port string) ([]*Face, error) {
	addrs, err := net.ResolveUDPAddr("udp", ":"+port)
	if err != nil {
		return nil, err
	}

	var faces []*Face
	for _, network := range []string{"udp4", "udp6"} {
		conn, err := net.ListenUDP(network, addrs)
		if err != nil {
			continue // address family unavailable on this host; try the next
		}
		raw, err := conn.SyscallConn()
		if err != nil {
			conn.Close()
			continue
		}
		if err := impl.SyscallReuseAddr(network, conn.LocalAddr().String(), raw); err != nil {
			conn.Close()
			return nil, err
		}

		file, err := conn.File()
		if err != nil {
			conn.Close()
			continue
		}
		fd, err := unix.Dup(int(file.Fd()))
		file.Close()
		conn.Close()
		if err != nil {
			continue
		}
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			continue
		}

		faces = append(faces, &Face{
			ID:         0,
			Fd:         fd,
			Kind:       KindUDP,
			IsDatagram: true,
			LocalAddr:  addrs,
		})
	}
	return faces, nil
}

// NewDatagramPeerFace wraps one UDP datagram source address as its own
// Face (spec.md §4.1 "each unique remote address gets its own Face").
// Unlike a stream connection, a UDP peer has no fd of its own to poll
// or write to; reads are pushed in by the I/O loop's recvfrom demux on
// the shared listening socket, and Fd is left at -1 so TrySendDirect
// falls through to bridgeOut, which replies via sendto on that same
// listening socket addressed back to peer.
func NewDatagramPeerFace(listenFd int, peer unix.Sockaddr, peerAddr net.Addr) *Face {
	f := &Face{
		Fd:         -1,
		Kind:       KindUDP,
		IsDatagram: true,
		PeerAddr:   peerAddr,
	}
	f.bridgeOut = func(frame []byte) error {
		return unix.Sendto(listenFd, frame, 0, peer)
	}
	return f
}

// DatagramPeerKey derives a stable lookup string for the dgram_faces
// map (spec.md §4.1 "each unique remote address gets its own Face"),
// analogous to ccnd's per-source-address dgram face lookup. Callers
// pass either a resolved net.Addr (when one is already on hand, e.g.
// from Face.PeerAddr) or a raw unix.Sockaddr straight from recvfrom.
func DatagramPeerKey(addr net.Addr, from unix.Sockaddr) string {
	if addr != nil {
		return addr.String()
	}
	switch a := from.(type) {
	case *unix.SockaddrInet4:
		return net.IP(a.Addr[:]).String() + ":" + strconv.Itoa(a.Port)
	case *unix.SockaddrInet6:
		return net.IP(a.Addr[:]).String() + ":" + strconv.Itoa(a.Port)
	default:
		return ""
	}
}
