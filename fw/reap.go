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

// armReaper re-arms the periodic reaper task if it isn't already
// running, grounded in reap_needed.
func (d *Daemon) armReaper(initDelayMicros int64) {
	if d.reaper != nil {
		return
	}
	d.reaper = d.Sched.Schedule(initDelayMicros, d.reapTick)
}

// reapTick is reap: it marks inactive datagram faces and drains
// resolved propagating entries every pass, re-arming itself at
// 2*CCNInterestHalflifeMicrosec while there is still a datagram face
// or a propagating entry to watch, and otherwise lets itself expire
// (spec.md §4.7).
func (d *Daemon) reapTick(canceled bool) int64 {
	if canceled {
		d.reaper = nil
		return -1
	}
	d.checkDatagramFaces()
	d.checkPropagatingEntries()
	if d.Propagating.Len() > 0 || d.countDatagramFaces() > 0 {
		return 2 * core.CCNInterestHalflifeMicrosec
	}
	d.reaper = nil
	return -1
}

// checkPropagatingEntries retires propagating entries that have been
// awaiting a reply for two consecutive sweep passes with no further
// activity, grounded in the same "one strike, then close on the second
// strike" idiom checkDatagramFaces uses for datagram faces (spec.md
// §4.4, §4.7). An entry still filling its outbound set is left alone —
// only entries doPropagate has already marked AwaitingReply count
// toward the two passes.
func (d *Daemon) checkPropagatingEntries() {
	var toRetire []struct {
		nonce []byte
		pe    *table.PropagatingEntry
	}
	d.Propagating.Each(func(nonce []byte, pe *table.PropagatingEntry) {
		if !pe.AwaitingReply {
			return
		}
		pe.IdlePasses++
		if pe.IdlePasses >= 2 {
			toRetire = append(toRetire, struct {
				nonce []byte
				pe    *table.PropagatingEntry
			}{nonce, pe})
		}
	})
	for _, r := range toRetire {
		d.finishedPropagating(r.nonce, r.pe)
	}
}

// checkDatagramFaces sweeps the face table for datagram faces with two
// consecutive zero-recvcount passes and closes them, grounded in
// check_dgram_faces's "recvcount == 0 -> delete" idiom. touch() (via
// Feed) increments RecvCount on every receipt; this sweep resets it to
// 0 each pass. A face whose RecvCount is still 0 after a full reaper
// period takes one strike, recorded in Face.Gone, and is closed on the
// second consecutive strike; any receipt in between clears the strike.
func (d *Daemon) checkDatagramFaces() {
	var toClose []*face.Face
	d.Faces.Each(func(f *face.Face) {
		if !f.IsDatagram {
			return
		}
		if f.RecvCount == 0 {
			if f.Gone {
				toClose = append(toClose, f)
			} else {
				f.Gone = true
			}
		} else {
			f.RecvCount = 0
			f.Gone = false
		}
	})
	for _, f := range toClose {
		f.Close()
		d.Faces.Release(f.ID)
	}
}

func (d *Daemon) countDatagramFaces() int {
	n := 0
	d.Faces.Each(func(f *face.Face) {
		if f.IsDatagram {
			n++
		}
	})
	return n
}

// ArmCleaning re-arms the periodic content face-set compaction pass if
// it isn't already running, grounded in clean_needed.
func (d *Daemon) ArmCleaning() {
	if d.clean != nil {
		return
	}
	d.clean = d.Sched.Schedule(1_000_000, d.cleanTick)
}

// cleanTick is clean_deamon: for every live content entry, drop face
// ids that no longer resolve to a live face, and for ids in the
// previous done-partition that belong to a link-framed face, drop them
// outright rather than re-sending, preserving the done-partition
// count. It updates NFaceOld so only newly added faces count as unsent
// to link-framed peers on the next pass (spec.md §4.7). It always
// re-arms itself every 15s.
func (d *Daemon) cleanTick(canceled bool) int64 {
	if canceled {
		d.clean = nil
		return -1
	}
	d.Content.EachLive(func(content *table.ContentEntry) {
		faces := content.Faces
		if len(faces) == 0 {
			return
		}
		j, k, doneCount := 0, 0, 0
		for ; j < len(faces); j++ {
			faceid := faces[j]
			f := d.Faces.Lookup(faceid)
			if f == nil {
				continue
			}
			if j < content.NFaceOld && f.IsLinkFramed {
				continue
			}
			if j < content.NFaceDone {
				doneCount++
			}
			faces[k] = faceid
			k++
		}
		if k < len(faces) {
			content.Faces = faces[:k]
			content.NFaceDone = doneCount
		}
		content.NFaceOld = doneCount
	})
	return 15_000_000
}
