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
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/virtrtc/virtrtc/tick"
)

type refresherState int

const (
	stateDisarmed refresherState = iota
	stateArmed
	stateRefreshing
)

// DefaultMarginDivisor sets the default safety margin to wrap period / 8.
const DefaultMarginDivisor = 8

// Refresher guarantees the Accumulator refreshes at least once per counter
// wrap, so no tick delta ever spans two wraps.
//
// The deadline is always computed relative to the counter sample recorded
// by the last advance, not to wall-clock "now": a late firing still re-arms
// from the true baseline, so scheduling jitter cannot compound into a
// missed wrap. Reads and sets re-arm opportunistically through the
// Accumulator's advance hook, since they move the baseline too.
type Refresher struct {
	acc    *Accumulator
	period time.Duration // wrap period minus the safety margin

	mu       sync.Mutex // guards timer and state; normal context only
	timer    *time.Timer
	state    refresherState
	lastFire time.Time
	inflight sync.WaitGroup

	// onFire runs after every timer-driven refresh with the time since
	// the previous firing, 0 for the first. Wired before Start.
	onFire func(sincePrev time.Duration)
}

// RefresherOption configures a new Refresher.
type RefresherOption func(*Refresher) error

// WithSafetyMargin overrides how long before the expected wrap the timer
// fires. Must be positive and below the full wrap period.
func WithSafetyMargin(margin time.Duration) RefresherOption {
	return func(r *Refresher) error {
		wrap := tick.WrapPeriod(r.acc.counter.Width(), r.acc.counter.Frequency())
		if margin <= 0 || margin >= wrap {
			return fmt.Errorf("safety margin %v outside (0, %v)", margin, wrap)
		}
		r.period = wrap - margin
		return nil
	}
}

// NewRefresher wires a Refresher to acc's advance hook. One refresher per
// accumulator; it starts disarmed.
func NewRefresher(acc *Accumulator, opts ...RefresherOption) (*Refresher, error) {
	wrap := tick.WrapPeriod(acc.counter.Width(), acc.counter.Frequency())
	r := &Refresher{
		acc:    acc,
		period: wrap - wrap/DefaultMarginDivisor,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	acc.onAdvance = r.rearm
	return r, nil
}

// Interval returns the scheduling period between refreshes.
func (r *Refresher) Interval() time.Duration { return r.period }

// OnFire registers f to run after every timer-driven refresh, with the time
// elapsed since the previous firing (0 for the first one). Reads and sets
// do not count: f observes only the periodic schedule. Must be called
// before Start.
func (r *Refresher) OnFire(f func(sincePrev time.Duration)) {
	r.onFire = f
}

// Start arms the timer for one period past the accumulator's current
// baseline. Calling Start on a running refresher is a no-op.
func (r *Refresher) Start() {
	r.mu.Lock()
	if r.state != stateDisarmed {
		r.mu.Unlock()
		return
	}
	r.state = stateArmed
	r.mu.Unlock()

	log.Debugf("arming periodic refresh every %v", r.period)
	r.rearm(r.acc.sample())
}

// Stop disarms the timer and waits for any in-flight firing to finish.
// After Stop returns no further refreshes will be scheduled and the
// accumulator state is safe to tear down.
func (r *Refresher) Stop() {
	r.mu.Lock()
	r.state = stateDisarmed
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()

	r.inflight.Wait()
	log.Debugf("periodic refresh disarmed")
}

// rearm schedules the next firing one period after the given counter
// sample. It runs after every advance, from both the timer path and the
// read/set path.
func (r *Refresher) rearm(sample uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == stateDisarmed {
		return
	}
	r.state = stateArmed

	// how much of the period the baseline has already consumed
	c := r.acc.counter
	since := c.Frequency().Duration(tick.Delta(c.Ticks(), sample, c.Width()))
	d := r.period - since
	if d < 0 {
		d = 0
	}
	if r.timer == nil {
		r.timer = time.AfterFunc(d, r.fire)
	} else {
		r.timer.Stop()
		r.timer.Reset(d)
	}
}

func (r *Refresher) fire() {
	r.mu.Lock()
	if r.state == stateDisarmed {
		r.mu.Unlock()
		return
	}
	r.state = stateRefreshing
	r.inflight.Add(1)
	now := time.Now()
	var sincePrev time.Duration
	if !r.lastFire.IsZero() {
		sincePrev = now.Sub(r.lastFire)
	}
	r.lastFire = now
	r.mu.Unlock()
	defer r.inflight.Done()

	// Refresh triggers the advance hook, which re-arms.
	r.acc.Refresh()

	if r.onFire != nil {
		r.onFire(sincePrev)
	}
}
