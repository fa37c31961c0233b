/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package sched_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnlabs/ccnd/sched"
)

// manualClock lets a test advance time deterministically instead of
// sleeping, mirroring how spec.md's own scheduler tests must drive a
// deadline-ordered heap without depending on wall-clock timing.
type manualClock struct {
	now int64
}

func (c *manualClock) NowMicros() int64 { return c.now }

func TestScheduleFiresAtDeadline(t *testing.T) {
	clock := &manualClock{now: 1000}
	s := sched.New(clock)

	fired := false
	s.Schedule(500, func(canceled bool) int64 {
		fired = true
		assert.False(t, canceled)
		return -1
	})

	assert.Equal(t, 0, s.Run())
	assert.False(t, fired)

	clock.now = 1500
	assert.Equal(t, 1, s.Run())
	assert.True(t, fired)
}

func TestScheduleReschedulesOnNonNegativeReturn(t *testing.T) {
	clock := &manualClock{now: 0}
	s := sched.New(clock)

	count := 0
	s.Schedule(100, func(canceled bool) int64 {
		count++
		if count < 3 {
			return 100
		}
		return -1
	})

	clock.now = 100
	s.Run()
	clock.now = 200
	s.Run()
	clock.now = 300
	s.Run()
	clock.now = 400
	assert.Equal(t, 0, s.Run())
	assert.Equal(t, 3, count)
}

func TestCancelSkipsFutureReschedule(t *testing.T) {
	clock := &manualClock{now: 0}
	s := sched.New(clock)

	var task *sched.Task
	seenCanceled := false
	task = s.Schedule(50, func(canceled bool) int64 {
		seenCanceled = canceled
		return 50
	})
	s.Cancel(task)

	clock.now = 50
	assert.Equal(t, 1, s.Run())
	assert.True(t, seenCanceled)
	assert.Equal(t, 0, s.Len())
}

func TestNextDeadlineMicrosEmptyIsNegativeOne(t *testing.T) {
	s := sched.New(&manualClock{})
	assert.Equal(t, int64(-1), s.NextDeadlineMicros())

	s.Schedule(10, func(bool) int64 { return -1 })
	assert.Equal(t, int64(10), s.NextDeadlineMicros())
}

func TestRunOrdersByDeadlineThenInsertionOrder(t *testing.T) {
	clock := &manualClock{now: 0}
	s := sched.New(clock)

	var order []int
	s.Schedule(10, func(bool) int64 { order = append(order, 1); return -1 })
	s.Schedule(10, func(bool) int64 { order = append(order, 2); return -1 })
	s.Schedule(5, func(bool) int64 { order = append(order, 3); return -1 })

	clock.now = 10
	s.Run()
	assert.Equal(t, []int{3, 1, 2}, order)
}
