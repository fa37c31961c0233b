/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/face"
	"github.com/ccnlabs/ccnd/table"
)

func TestScheduleContentDeliverySendsToWaitingFace(t *testing.T) {
	d, clock := newTestDaemonWithClock()
	fd, r := makePipe(t)
	f := &face.Face{Fd: fd}
	id, _ := d.Faces.Enroll(f)

	content := &table.ContentEntry{Wire: []byte("wire-bytes"), Faces: []uint32{id}}
	d.ScheduleContentDelivery(content)
	assert.NotNil(t, content.Sender)

	deadline := d.Sched.NextDeadlineMicros()
	assert.GreaterOrEqual(t, deadline, int64(0))
	clock.now = deadline
	d.Sched.Run()

	assert.Equal(t, 1, content.NFaceDone)
	assert.Nil(t, content.Sender)
	assert.EqualValues(t, 1, d.NOutData)

	buf := make([]byte, 64)
	n, err := r.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, "wire-bytes", string(buf[:n]))
}

func TestScheduleContentDeliveryDrainsMultipleFacesOneAtATime(t *testing.T) {
	d, clock := newTestDaemonWithClock()
	fd1, r1 := makePipe(t)
	f1 := &face.Face{Fd: fd1}
	id1, _ := d.Faces.Enroll(f1)

	fd2, r2 := makePipe(t)
	f2 := &face.Face{Fd: fd2}
	id2, _ := d.Faces.Enroll(f2)

	content := &table.ContentEntry{Wire: []byte("x"), Faces: []uint32{id1, id2}}
	d.ScheduleContentDelivery(content)

	for i := 0; i < 5 && content.NFaceDone < len(content.Faces); i++ {
		deadline := d.Sched.NextDeadlineMicros()
		if deadline < 0 {
			break
		}
		clock.now = deadline
		d.Sched.Run()
	}

	assert.Equal(t, 2, content.NFaceDone)
	assert.Nil(t, content.Sender)
	assert.EqualValues(t, 2, d.NOutData)

	buf := make([]byte, 8)
	n, _ := r1.Read(buf)
	assert.Equal(t, "x", string(buf[:n]))
	n, _ = r2.Read(buf)
	assert.Equal(t, "x", string(buf[:n]))
}

func TestScheduleContentDeliverySkipsWhenAlreadySending(t *testing.T) {
	d := newTestDaemon()
	fd, _ := makePipe(t)
	f := &face.Face{Fd: fd}
	id, _ := d.Faces.Enroll(f)

	content := &table.ContentEntry{Wire: []byte("x"), Faces: []uint32{id}}
	d.ScheduleContentDelivery(content)
	first := content.Sender
	d.ScheduleContentDelivery(content)
	assert.Same(t, first, content.Sender)
}

func TestScheduleContentDeliveryNoOpWhenFullyDone(t *testing.T) {
	d := newTestDaemon()
	content := &table.ContentEntry{Wire: []byte("x"), Faces: []uint32{1}, NFaceDone: 1}
	d.ScheduleContentDelivery(content)
	assert.Nil(t, content.Sender)
}
