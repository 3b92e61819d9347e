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

package tick

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFrequencyDuration(t *testing.T) {
	testCases := []struct {
		name  string
		freq  Frequency
		ticks uint64
		want  time.Duration
	}{
		{"zero", 1000, 0, 0},
		{"one tick at 1kHz", 1000, 1, time.Millisecond},
		{"five seconds at 1kHz", 1000, 5000, 5 * time.Second},
		{"one tick at 1Hz", 1, 1, time.Second},
		{"odd frequency", 250, 3, 12 * time.Millisecond},
		{"full 32bit range at 1kHz", 1000, 1 << 32, time.Duration(1<<32) * time.Millisecond},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.freq.Duration(tt.ticks))
		})
	}
}

func TestFrequencyTicks(t *testing.T) {
	require.Equal(t, uint64(0), Frequency(1000).Ticks(0))
	require.Equal(t, uint64(0), Frequency(1000).Ticks(-time.Second))
	require.Equal(t, uint64(5000), Frequency(1000).Ticks(5*time.Second))
	require.Equal(t, uint64(1), Frequency(1000).Ticks(time.Millisecond))
	// truncation, not rounding
	require.Equal(t, uint64(1), Frequency(1000).Ticks(1900*time.Microsecond))
}

func TestFrequencyRoundTrip(t *testing.T) {
	for _, freq := range []Frequency{1, 100, 250, 1000, 1000000} {
		for _, ticks := range []uint64{0, 1, 999, 12345, 1 << 20} {
			require.Equal(t, ticks, freq.Ticks(freq.Duration(ticks)), "freq=%d ticks=%d", freq, ticks)
		}
	}
}

func TestMask(t *testing.T) {
	require.Equal(t, uint64(0xff), Mask(8))
	require.Equal(t, uint64(0xffffffff), Mask(32))
	require.Equal(t, ^uint64(0), Mask(64))
	require.Equal(t, uint64(1), Mask(1))
}

func TestDelta(t *testing.T) {
	testCases := []struct {
		name      string
		now, last uint64
		width     uint
		want      uint64
	}{
		{"no advance", 42, 42, 32, 0},
		{"simple advance", 5000, 0, 32, 5000},
		{"single wrap", 5, Mask(32) - 4, 32, 10},
		{"wrap to same", 0, Mask(32), 32, 1},
		{"narrow counter wrap", 2, 250, 8, 8},
		{"full width", 1, ^uint64(0), 64, 2},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Delta(tt.now, tt.last, tt.width))
		})
	}
}

func TestDeltaDoubleWrapIsWrong(t *testing.T) {
	// after two wraps the delta is short by one full counter range;
	// callers must keep sampling intervals below WrapPeriod.
	width := uint(8)
	trueElapsed := uint64(2*256 + 7)
	now := trueElapsed & Mask(width)
	require.NotEqual(t, trueElapsed, Delta(now, 0, width))
	require.Equal(t, uint64(7), Delta(now, 0, width))
}

func TestWrapPeriod(t *testing.T) {
	// 2^32 ticks at 1kHz is a bit over 49 days
	p := WrapPeriod(32, 1000)
	require.Equal(t, time.Duration(1<<32)*time.Millisecond, p)
	// 256 ticks at 1Hz
	require.Equal(t, 256*time.Second, WrapPeriod(8, 1))
	require.Equal(t, time.Duration(0), WrapPeriod(32, 0))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(32, 1000))
	require.NoError(t, Validate(1, 1))
	require.NoError(t, Validate(64, 1))
	require.Error(t, Validate(0, 1000))
	require.Error(t, Validate(65, 1000))
	require.Error(t, Validate(32, 0))
}

func TestFakeCounter(t *testing.T) {
	c := NewFakeCounter(8, 1000)
	require.Equal(t, uint64(0), c.Ticks())
	c.Advance(200)
	require.Equal(t, uint64(200), c.Ticks())
	// wraps at 2^8
	c.Advance(100)
	require.Equal(t, uint64(44), c.Ticks())
	c.Set(10)
	require.Equal(t, uint64(10), c.Ticks())
	c.AdvanceBy(5 * time.Millisecond)
	require.Equal(t, uint64(15), c.Ticks())
}

func TestSystemCounter(t *testing.T) {
	_, err := NewSystemCounter(0, 1000)
	require.Error(t, err)

	c, err := NewSystemCounter(32, 1000)
	require.NoError(t, err)
	require.Equal(t, Frequency(1000), c.Frequency())
	require.Equal(t, uint(32), c.Width())

	a := c.Ticks()
	time.Sleep(10 * time.Millisecond)
	b := c.Ticks()
	require.NotZero(t, Delta(b, a, c.Width()))
}
