/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/face"
)

func TestEnrollFaceArmsReaperForDatagramFace(t *testing.T) {
	d := newTestDaemon()
	f := &face.Face{Fd: -1, IsDatagram: true}
	_, err := d.EnrollFace(f)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), d.Sched.NextDeadlineMicros())
}

func TestEnrollFaceDoesNotArmReaperForStreamFace(t *testing.T) {
	d := newTestDaemon()
	f := &face.Face{Fd: -1}
	_, err := d.EnrollFace(f)
	assert.NoError(t, err)
	assert.Equal(t, int64(-1), d.Sched.NextDeadlineMicros())
}

func TestReapClosesIdleDatagramFaceAfterTwoQuietPasses(t *testing.T) {
	d, clock := newTestDaemonWithClock()
	f := &face.Face{Fd: -1, IsDatagram: true}
	id, err := d.EnrollFace(f)
	assert.NoError(t, err)

	clock.now = d.Sched.NextDeadlineMicros()
	d.Sched.Run()
	assert.NotNil(t, d.Faces.Lookup(id))
	assert.True(t, f.Gone)

	nextDeadline := d.Sched.NextDeadlineMicros()
	assert.Greater(t, nextDeadline, int64(0))
	clock.now = nextDeadline
	d.Sched.Run()

	assert.Nil(t, d.Faces.Lookup(id))
	assert.Equal(t, int64(-1), d.Sched.NextDeadlineMicros())
}

func TestReapSparesDatagramFaceThatReceivedTraffic(t *testing.T) {
	d, clock := newTestDaemonWithClock()
	f := &face.Face{Fd: -1, IsDatagram: true}
	id, err := d.EnrollFace(f)
	assert.NoError(t, err)

	clock.now = d.Sched.NextDeadlineMicros()
	d.Sched.Run()
	assert.True(t, f.Gone)

	f.RecvCount = 1
	clock.now = d.Sched.NextDeadlineMicros()
	d.Sched.Run()

	assert.False(t, f.Gone)
	assert.Equal(t, uint64(0), f.RecvCount)
	assert.NotNil(t, d.Faces.Lookup(id))
}
