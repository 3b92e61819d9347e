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
Package rtc emulates a hardware real-time clock in software, on top of
nothing but a wrapping fixed-frequency tick counter.

The Accumulator folds tick-counter deltas into an authoritative calendar
time. Because the counter wraps, the delta between two samples is only
meaningful while at most one wrap happened between them; the Refresher
samples often enough to keep that guarantee, and every read and set
re-arms it from the freshly recorded baseline.

All clock state sits behind a busy-wait SpinLock so that the same code
path is usable both from ordinary blocking callers and from timer
callbacks where sleeping is not allowed.
*/
package rtc

import (
	"fmt"
	"time"

	"github.com/virtrtc/virtrtc/tick"
)

// Accumulator owns the authoritative calendar time derived from a wrapping
// tick source. All methods are safe for concurrent use.
type Accumulator struct {
	counter tick.Counter

	// guard serializes access to elapsed and lastSample. It must stay a
	// spin lock: Refresh runs from timer-callback context.
	guard      SpinLock
	elapsed    time.Duration // accumulated time since the Unix epoch
	lastSample uint64        // counter value at the last advance

	// onAdvance, when set, runs outside the critical section after every
	// Refresh and SetTime with the just-recorded counter sample. Wired
	// once before the clock is shared; the Refresher uses it to re-arm.
	onAdvance func(sample uint64)
}

// AccumulatorOption configures a new Accumulator.
type AccumulatorOption func(*Accumulator)

// WithEpoch starts the clock at t instead of the Unix epoch.
func WithEpoch(t time.Time) AccumulatorOption {
	return func(a *Accumulator) {
		a.elapsed = t.UTC().Sub(unixEpoch)
	}
}

// NewAccumulator returns an Accumulator reading from c, with the clock at
// the Unix epoch unless WithEpoch says otherwise.
func NewAccumulator(c tick.Counter, opts ...AccumulatorOption) (*Accumulator, error) {
	if err := tick.Validate(c.Width(), c.Frequency()); err != nil {
		return nil, fmt.Errorf("bad tick counter: %w", err)
	}
	a := &Accumulator{
		counter:    c,
		lastSample: c.Ticks(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Refresh folds the counter advance since the last sample into the
// accumulated time. It allocates nothing and never blocks beyond spinning
// on the guard, so it is callable from non-blocking contexts.
//
// The computed delta is correct only while the counter wrapped at most once
// since the previous advance; the Refresher's schedule keeps that true.
func (a *Accumulator) Refresh() {
	a.guard.Lock()
	now := a.counter.Ticks()
	delta := tick.Delta(now, a.lastSample, a.counter.Width())
	a.elapsed += a.counter.Frequency().Duration(delta)
	a.lastSample = now
	a.guard.Unlock()

	if a.onAdvance != nil {
		a.onAdvance(now)
	}
}

// ReadTime refreshes the clock and returns the current calendar time.
// Fails with ErrTimeOutOfRange if the accumulated time left the
// representable span.
func (a *Accumulator) ReadTime() (CalendarTime, error) {
	a.Refresh()

	a.guard.Lock()
	elapsed := a.elapsed
	a.guard.Unlock()

	tm := calendarTimeOf(unixEpoch.Add(elapsed))
	if tm.Year < MinYear || tm.Year > MaxYear {
		return CalendarTime{}, fmt.Errorf("%w: year %d outside [%d, %d]", ErrTimeOutOfRange, tm.Year, MinYear, MaxYear)
	}
	return tm, nil
}

// SetTime overwrites the clock. Any counter advance not yet folded in by a
// Refresh is discarded: the set value is authoritative. Fails with
// ErrInvalidTime if tm is malformed.
func (a *Accumulator) SetTime(tm CalendarTime) error {
	if err := tm.Valid(); err != nil {
		return err
	}

	a.guard.Lock()
	now := a.counter.Ticks()
	a.elapsed = tm.sinceEpoch()
	a.lastSample = now
	a.guard.Unlock()

	if a.onAdvance != nil {
		a.onAdvance(now)
	}
	return nil
}

// Elapsed returns the accumulated time since the Unix epoch as of the last
// advance. It does not refresh first.
func (a *Accumulator) Elapsed() time.Duration {
	a.guard.Lock()
	elapsed := a.elapsed
	a.guard.Unlock()
	return elapsed
}

// Counter returns the tick source the clock is driven by.
func (a *Accumulator) Counter() tick.Counter { return a.counter }

// sample returns the counter value recorded at the last advance.
func (a *Accumulator) sample() uint64 {
	a.guard.Lock()
	s := a.lastSample
	a.guard.Unlock()
	return s
}
