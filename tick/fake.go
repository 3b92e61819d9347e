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
	"sync/atomic"
	"time"
)

// FakeCounter is a manually driven Counter for tests. It wraps at the
// configured width just like the real thing, and is safe for concurrent use.
type FakeCounter struct {
	ticks atomic.Uint64
	width uint
	freq  Frequency
}

// NewFakeCounter returns a fake counter starting at 0.
func NewFakeCounter(width uint, freq Frequency) *FakeCounter {
	return &FakeCounter{width: width, freq: freq}
}

// Ticks returns the current fake counter value.
func (c *FakeCounter) Ticks() uint64 {
	return c.ticks.Load() & Mask(c.width)
}

// Frequency returns the configured tick rate.
func (c *FakeCounter) Frequency() Frequency { return c.freq }

// Width returns the configured counter width in bits.
func (c *FakeCounter) Width() uint { return c.width }

// Set forces the counter to a specific value.
func (c *FakeCounter) Set(ticks uint64) {
	c.ticks.Store(ticks & Mask(c.width))
}

// Advance moves the counter forward by n ticks, wrapping if needed.
func (c *FakeCounter) Advance(n uint64) {
	c.ticks.Add(n)
}

// AdvanceBy moves the counter forward by the tick equivalent of d.
func (c *FakeCounter) AdvanceBy(d time.Duration) {
	c.Advance(c.freq.Ticks(d))
}

var _ Counter = (*FakeCounter)(nil)
