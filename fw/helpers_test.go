/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// makePipe returns a real writable/readable file descriptor pair so a
// fake face.Face can exercise TrySendDirect's unix.Write path without a
// socket, since bridgeOut is unexported and unsettable from this
// external test package.
func makePipe(t *testing.T) (writeFd int, read *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	assert.NoError(t, err)
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return int(w.Fd()), r
}
