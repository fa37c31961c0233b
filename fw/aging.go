/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/table"
)

// AgeInterests runs one interest-demand-aging pass over every prefix
// entry, deleting entries idle for more than core.PrefixIdleLimit
// consecutive passes, grounded in age_interests (spec.md §4.6). It
// returns the number of prefix entries with at least one active
// counter remaining.
func (d *Daemon) AgeInterests() int {
	active := 0
	var toDelete [][]byte
	d.Prefixes.Each(func(prefix []byte, entry *table.PrefixEntry) {
		n := entry.Age()
		if entry.IsIdle() {
			toDelete = append(toDelete, append([]byte{}, prefix...))
			return
		}
		if n > 0 {
			active++
		}
	})
	for _, prefix := range toDelete {
		d.Prefixes.Delete(prefix)
	}
	return active
}

// ArmAging re-arms the periodic aging task if it isn't already
// running, grounded in aging_needed: period is
// CCN_INTEREST_AGING_MICROSEC and the task re-arms itself with the
// same period each time it fires, until the prefix table is empty
// after an aging pass, whereupon it lets itself expire (spec.md §4.6
// "The aging task suspends itself when the table is empty and is
// re-armed on next interest arrival").
func (d *Daemon) ArmAging() {
	if d.age != nil {
		return
	}
	d.age = d.Sched.Schedule(core.CCNInterestAgingMicrosec, d.agingTick)
}

func (d *Daemon) agingTick(canceled bool) int64 {
	if canceled {
		d.age = nil
		return -1
	}
	d.AgeInterests()
	if d.Prefixes.Len() != 0 {
		return core.CCNInterestAgingMicrosec
	}
	d.age = nil
	return -1
}
