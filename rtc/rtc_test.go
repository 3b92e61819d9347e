/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rtc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtrtc/virtrtc/tick"
)

func newTestClock(t *testing.T, width uint, freq tick.Frequency) (*Accumulator, *tick.FakeCounter) {
	t.Helper()
	c := tick.NewFakeCounter(width, freq)
	a, err := NewAccumulator(c)
	require.NoError(t, err)
	return a, c
}

func TestNewAccumulatorBadCounter(t *testing.T) {
	_, err := NewAccumulator(tick.NewFakeCounter(0, 1000))
	require.Error(t, err)
	_, err = NewAccumulator(tick.NewFakeCounter(32, 0))
	require.Error(t, err)
}

func TestNewAccumulatorSeedsSample(t *testing.T) {
	c := tick.NewFakeCounter(32, 1000)
	c.Set(12345)
	a, err := NewAccumulator(c)
	require.NoError(t, err)
	// ticks before construction are not counted
	a.Refresh()
	require.Equal(t, time.Duration(0), a.Elapsed())
}

func TestSetThenReadExact(t *testing.T) {
	a, _ := newTestClock(t, 32, 1000)
	tm := CalendarTime{Year: 2023, Month: time.June, Day: 15, Hour: 12, Minute: 30, Second: 45}
	require.NoError(t, a.SetTime(tm))
	got, err := a.ReadTime()
	require.NoError(t, err)
	require.Equal(t, tm, got)
}

func TestReadAdvancesWithTicks(t *testing.T) {
	// 1000 Hz, set 2010-01-02T10:20:45, counter advances by 5000 ticks,
	// read returns 2010-01-02T10:20:50
	a, c := newTestClock(t, 32, 1000)
	require.NoError(t, a.SetTime(CalendarTime{Year: 2010, Month: time.January, Day: 2, Hour: 10, Minute: 20, Second: 45}))
	c.Advance(5000)
	got, err := a.ReadTime()
	require.NoError(t, err)
	require.Equal(t, CalendarTime{Year: 2010, Month: time.January, Day: 2, Hour: 10, Minute: 20, Second: 50}, got)
}

func TestSetInvalidMonth(t *testing.T) {
	a, _ := newTestClock(t, 32, 1000)
	err := a.SetTime(CalendarTime{Year: 2010, Month: 13, Day: 1})
	require.ErrorIs(t, err, ErrInvalidTime)
}

func TestRefreshExactDelta(t *testing.T) {
	a, c := newTestClock(t, 32, 1000)
	c.Advance(1)
	a.Refresh()
	require.Equal(t, time.Millisecond, a.Elapsed())
	c.Advance(999)
	a.Refresh()
	require.Equal(t, time.Second, a.Elapsed())
}

func TestRefreshIdempotent(t *testing.T) {
	a, c := newTestClock(t, 32, 1000)
	c.Advance(123)
	a.Refresh()
	before := a.Elapsed()
	a.Refresh()
	a.Refresh()
	require.Equal(t, before, a.Elapsed())
}

func TestRefreshSingleWrap(t *testing.T) {
	// 8-bit counter, 250 ticks accounted, then 20 more wrapping through 0
	a, c := newTestClock(t, 8, 1000)
	c.Advance(250)
	a.Refresh()
	c.Advance(20) // counter is now at 14
	a.Refresh()
	require.Equal(t, 270*time.Millisecond, a.Elapsed())
}

func TestRefreshDoubleWrapLosesTime(t *testing.T) {
	// documented limitation: two wraps between refreshes lose a full
	// counter range
	a, c := newTestClock(t, 8, 1000)
	c.Advance(256 + 256 + 10)
	a.Refresh()
	require.Equal(t, 10*time.Millisecond, a.Elapsed())
}

func TestSetDiscardsPendingDelta(t *testing.T) {
	a, c := newTestClock(t, 32, 1000)
	c.Advance(5000) // never refreshed, so unaccounted
	tm := CalendarTime{Year: 2020, Month: time.March, Day: 1, Hour: 0, Minute: 0, Second: 0}
	require.NoError(t, a.SetTime(tm))
	got, err := a.ReadTime()
	require.NoError(t, err)
	require.Equal(t, tm, got)
}

func TestWithEpoch(t *testing.T) {
	c := tick.NewFakeCounter(32, 1000)
	epoch := time.Date(1999, time.December, 31, 23, 59, 59, 0, time.UTC)
	a, err := NewAccumulator(c, WithEpoch(epoch))
	require.NoError(t, err)
	got, err := a.ReadTime()
	require.NoError(t, err)
	require.Equal(t, calendarTimeOf(epoch), got)
}

func TestReadOutOfRange(t *testing.T) {
	a, c := newTestClock(t, 32, 1)
	require.NoError(t, a.SetTime(CalendarTime{Year: MaxYear, Month: time.December, Day: 31, Hour: 23, Minute: 59, Second: 59}))
	c.Advance(2)
	_, err := a.ReadTime()
	require.ErrorIs(t, err, ErrTimeOutOfRange)
}

func TestSetBeyondRangeInvalid(t *testing.T) {
	a, _ := newTestClock(t, 32, 1000)
	err := a.SetTime(CalendarTime{Year: MaxYear + 1, Month: time.January, Day: 1})
	require.ErrorIs(t, err, ErrInvalidTime)
	err = a.SetTime(CalendarTime{Year: MinYear - 1, Month: time.January, Day: 1})
	require.ErrorIs(t, err, ErrInvalidTime)
}

func TestOnAdvanceHook(t *testing.T) {
	a, c := newTestClock(t, 32, 1000)
	var samples []uint64
	a.onAdvance = func(s uint64) { samples = append(samples, s) }
	c.Advance(100)
	a.Refresh()
	require.NoError(t, a.SetTime(CalendarTime{Year: 2020, Month: time.January, Day: 1}))
	require.Equal(t, []uint64{100, 100}, samples)
}

func TestConcurrentCallers(t *testing.T) {
	a, c := newTestClock(t, 32, 1000)
	require.NoError(t, a.SetTime(CalendarTime{Year: 2015, Month: time.July, Day: 14}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				a.Refresh()
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_, _ = a.ReadTime()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 1000; j++ {
			c.Advance(1)
		}
	}()
	wg.Wait()

	// every tick was folded in exactly once, none lost or duplicated
	a.Refresh()
	base := CalendarTime{Year: 2015, Month: time.July, Day: 14}.sinceEpoch()
	require.Equal(t, base+time.Second, a.Elapsed())
}
