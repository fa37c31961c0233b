/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/core"
)

func TestAgeInterestsReportsActiveEntries(t *testing.T) {
	d := newTestDaemon()
	e := d.Prefixes.GetOrCreate([]byte("go"))
	e.RecordDemand(1)

	active := d.AgeInterests()
	assert.Equal(t, 1, active)
	assert.Equal(t, 1, d.Prefixes.Len())
}

func TestAgeInterestsDeletesIdlePrefixes(t *testing.T) {
	d := newTestDaemon()
	e := d.Prefixes.GetOrCreate([]byte("go"))
	e.RecordDemand(1)
	e.ConsumeDemand(1)

	for i := 0; i <= core.PrefixIdleLimit; i++ {
		d.AgeInterests()
	}

	assert.Equal(t, 0, d.Prefixes.Len())
	assert.Nil(t, d.Prefixes.Lookup([]byte("go")))
}

func TestArmAgingRunsUntilPrefixTableEmpty(t *testing.T) {
	d, clock := newTestDaemonWithClock()
	e := d.Prefixes.GetOrCreate([]byte("go"))
	e.RecordDemand(1)
	e.ConsumeDemand(1)

	d.ArmAging()
	assert.Equal(t, int64(core.CCNInterestAgingMicrosec), d.Sched.NextDeadlineMicros())

	for i := 0; i <= core.PrefixIdleLimit; i++ {
		deadline := d.Sched.NextDeadlineMicros()
		assert.GreaterOrEqual(t, deadline, int64(0))
		clock.now = deadline
		d.Sched.Run()
	}

	assert.Equal(t, int64(-1), d.Sched.NextDeadlineMicros())
	assert.Equal(t, 0, d.Prefixes.Len())
}
