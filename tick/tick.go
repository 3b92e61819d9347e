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

/*
Package tick models a free-running, fixed-frequency tick counter of fixed
bit width that wraps to zero on overflow, the only time source the rtc
package consumes.

The counter itself is just a number; all the interesting arithmetic lives
here: modular delta between two samples, tick<->duration conversion at a
fixed frequency, and the wrap period that bounds how long two samples may
be apart before a delta becomes ambiguous.
*/
package tick

import (
	"fmt"
	"time"
)

// Frequency is the rate of a tick counter in ticks per second.
type Frequency uint64

// DefaultFrequency mirrors a HZ=1000 kernel tick.
const DefaultFrequency Frequency = 1000

// DefaultWidth is the default counter width in bits.
const DefaultWidth uint = 32

// Duration converts a tick count to a duration at this frequency.
// Conversion is exact within nanosecond resolution.
func (f Frequency) Duration(ticks uint64) time.Duration {
	secs := ticks / uint64(f)
	rem := ticks % uint64(f)
	return time.Duration(secs)*time.Second + time.Duration(rem*uint64(time.Second)/uint64(f))
}

// Ticks converts a duration to a whole number of ticks at this frequency.
func (f Frequency) Ticks(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	secs := uint64(d / time.Second)
	rem := uint64(d % time.Second)
	return secs*uint64(f) + rem*uint64(f)/uint64(time.Second)
}

// Counter is a monotonically wrapping tick counter. Implementations must be
// cheap to sample and safe to call from any goroutine without locking.
type Counter interface {
	// Ticks returns the current counter value, already reduced to the
	// counter's width.
	Ticks() uint64
	// Frequency returns the fixed tick rate of the counter.
	Frequency() Frequency
	// Width returns the counter's bit width, between 1 and 64.
	Width() uint
}

// Mask returns the value mask for a counter of the given width.
func Mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Delta computes now-last in the modular arithmetic of a counter of the
// given width. The result is the true number of elapsed ticks as long as the
// counter wrapped at most once between the two samples; after a second wrap
// the delta is short by a multiple of the counter range and there is no way
// to detect it from the samples alone. Callers bound the sampling interval
// below WrapPeriod to keep that precondition.
func Delta(now, last uint64, width uint) uint64 {
	m := Mask(width)
	return (now - last) & m
}

// WrapPeriod returns how long a counter of the given width and frequency
// takes to run through its full range once.
func WrapPeriod(width uint, freq Frequency) time.Duration {
	if freq == 0 {
		return 0
	}
	return freq.Duration(Mask(width)) + freq.Duration(1)
}

// Validate checks that width and frequency describe a usable counter.
func Validate(width uint, freq Frequency) error {
	if width < 1 || width > 64 {
		return fmt.Errorf("counter width %d out of range [1, 64]", width)
	}
	if freq == 0 {
		return fmt.Errorf("counter frequency must be > 0")
	}
	return nil
}
