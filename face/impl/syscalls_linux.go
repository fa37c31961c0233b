// +build linux

/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package impl

import (
	"strconv"
	"syscall"

	"github.com/ccnlabs/ccnd/core"
	"golang.org/x/sys/unix"
)

// SyscallGetSocketSendQueueSize returns the current size of the send queue on the specified socket.
func SyscallGetSocketSendQueueSize(c syscall.RawConn) uint64 {
	var val int
	c.Control(func(fd uintptr) {
		var err error
		val, err = unix.IoctlGetInt(int(fd), unix.SIOCOUTQ)
		if err != nil {
			core.LogWarn("face-syscall", "unable to get send queue size for fd="+strconv.Itoa(int(fd))+": "+err.Error())
			val = 0
		}
	})
	return uint64(val)
}
