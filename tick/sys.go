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

import "time"

// SystemCounter derives a wrapping fixed-width tick counter from the host's
// raw monotonic clock. It behaves like reading a hardware tick register:
// sampling is lock-free and the value wraps at the configured width.
type SystemCounter struct {
	width uint
	freq  Frequency
}

// NewSystemCounter returns a counter of the given width and frequency backed
// by the host monotonic clock.
func NewSystemCounter(width uint, freq Frequency) (*SystemCounter, error) {
	if err := Validate(width, freq); err != nil {
		return nil, err
	}
	return &SystemCounter{width: width, freq: freq}, nil
}

// Ticks samples the monotonic clock and reduces it to the counter domain.
func (c *SystemCounter) Ticks() uint64 {
	return c.freq.Ticks(monotonicNow()) & Mask(c.width)
}

// Frequency returns the configured tick rate.
func (c *SystemCounter) Frequency() Frequency { return c.freq }

// Width returns the configured counter width in bits.
func (c *SystemCounter) Width() uint { return c.width }

var _ Counter = (*SystemCounter)(nil)

// procStart anchors the portable monotonic reading; the absolute base is
// irrelevant, only deltas matter.
var procStart = time.Now()
