/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ccnlabs/ccnd/core"
)

// DefaultSockName is the local listener path used when CCN_LOCAL_PORT
// selects the default port suffix (spec.md §6).
const DefaultSockName = "/tmp/.ccnd.sock"

// UnixListener owns the bound, listening Unix-domain stream socket that
// accepts new local client connections (spec.md §6). It is polled by
// the I/O loop like any other fd, but never becomes a Face itself.
type UnixListener struct {
	Fd       int
	sockname string
}

// rebindPollInterval is the granularity of ListenUnix's rebind wait: it
// sleeps in this many short increments up to core.ListenerRebindWait
// rather than one long blocking call, so a signal arriving mid-wait
// (SPEC_FULL.md §12 item 1) is still handled promptly once the process
// gets back to its signal-handling goroutine.
const rebindPollInterval = 200 * time.Millisecond

// ListenUnix binds and listens on sockname, grounded in ccnd.c's
// create_local_listener: an existing socket file is removed first; if
// removal actually found a file, ccnd waits ListenerRebindWait for the
// prior owner's process to exit before binding, since the old process
// may still hold the address (spec.md §6 "removed on startup; if
// removal found an existing file, wait for the prior owner to exit").
func ListenUnix(sockname string, backlog int) (*UnixListener, error) {
	if err := unix.Unlink(sockname); err == nil {
		waitForRebind()
	} else if err != unix.ENOENT {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}

	addr := &unix.SockaddrUnix{Name: sockname}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &UnixListener{Fd: fd, sockname: sockname}, nil
}

// waitForRebind sleeps out core.ListenerRebindWait in short bounded
// increments instead of one long blocking call.
func waitForRebind() {
	remaining := core.ListenerRebindWait
	for remaining > 0 {
		step := rebindPollInterval
		if step > remaining {
			step = remaining
		}
		time.Sleep(step)
		remaining -= step
	}
}

// Accept accepts one pending connection and wraps it as a non-blocking
// Face, grounded in ccnd.c's accept_new_client (fcntl O_NONBLOCK
// immediately after accept, one Face per accepted fd).
func (l *UnixListener) Accept() (*Face, error) {
	fd, _, err := unix.Accept(l.Fd)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Face{
		ID:         0,
		Fd:         fd,
		Kind:       KindUnixStream,
		IsDatagram: false,
	}, nil
}

// Close closes the listening socket and removes the socket file,
// mirroring cleanup_at_exit/unlink_at_exit's best-effort teardown.
func (l *UnixListener) Close() error {
	err := unix.Close(l.Fd)
	_ = os.Remove(l.sockname)
	return err
}

// SockNameFromEnv derives the local listener path from CCN_LOCAL_PORT
// the way ccnd_get_local_sockname does: an unset, empty, or overlong
// (>10 char) value falls back to the plain default name; otherwise the
// suffix is appended after a dot (spec.md §6 environment variables).
func SockNameFromEnv(getenv func(string) string) string {
	s := getenv("CCN_LOCAL_PORT")
	if s == "" || len(s) > 10 {
		return DefaultSockName
	}
	return DefaultSockName + "." + s
}
