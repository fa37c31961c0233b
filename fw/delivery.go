/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/face"
	"github.com/ccnlabs/ccnd/table"
)

// chooseContentDelay picks the per-face delay before the next send in
// a content_sender pass, grounded in choose_content_delay: a vanished
// face drains immediately, datagram faces get a small fixed pause,
// link-framed faces get a randomized pause doubled twice under
// slow-send, and local stream faces answer almost immediately (spec.md
// §4.5).
func chooseContentDelay(d *Daemon, faceid uint32, slowSend bool) int64 {
	f := d.Faces.Lookup(faceid)
	if f == nil {
		return 1
	}
	shift := uint(0)
	if slowSend {
		shift = 2
	}
	switch {
	case f.IsDatagram && !f.IsLinkFramed:
		return 100
	case f.IsLinkFramed:
		base := d.Rand.Int63n(core.CCNDataPause) + core.CCNDataPause/2
		return base << shift
	default:
		return 10
	}
}

// ScheduleContentDelivery arms content's sender task if it has
// unsent recipients and none is already running, grounded in
// schedule_content_delivery.
func (d *Daemon) ScheduleContentDelivery(content *table.ContentEntry) {
	if content.Sender != nil {
		return
	}
	if len(content.Faces) <= content.NFaceDone {
		return
	}
	delay := chooseContentDelay(d, content.Faces[content.NFaceDone], content.SlowSend)
	content.Sender = d.Sched.Schedule(delay, func(canceled bool) int64 {
		return d.contentSender(content, canceled)
	})
}

// contentSender is content_sender: walks faces[nface_done:], sending
// once per invocation and rescheduling with the next target's delay,
// until the send set is exhausted (spec.md §4.5).
func (d *Daemon) contentSender(content *table.ContentEntry, canceled bool) int64 {
	if canceled {
		content.Sender = nil
		return -1
	}
	for content.NFaceDone < len(content.Faces) {
		faceid := content.Faces[content.NFaceDone]
		content.NFaceDone++
		f := d.Faces.Lookup(faceid)
		if f == nil {
			continue
		}
		d.sendContent(f, content)
		if content.NFaceDone < len(content.Faces) {
			return chooseContentDelay(d, content.Faces[content.NFaceDone], content.SlowSend)
		}
	}
	content.Sender = nil
	return -1
}

// sendContent writes content's wire bytes to face, wrapping in a PDU
// envelope when the face expects framed PDUs (spec.md §4.5 "On each
// send..."), grounded in send_content.
func (d *Daemon) sendContent(f *face.Face, content *table.ContentEntry) {
	frame := face.FrameForSend(f, content.Wire)
	if ok, err := f.TrySendDirect(frame); ok || err == nil {
		d.NOutData++
	}
}
