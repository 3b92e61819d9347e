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

package daemon

import (
	"sync"

	"github.com/eclesh/welford"
)

// StatsServer is a stats server interface
type StatsServer interface {
	// Reset atomically sets all the counters to 0
	Reset()
	SetCounter(key string, val int64)
	UpdateCounterBy(key string, count int64)
	// ObserveLatency feeds one operation latency sample, in nanoseconds
	ObserveLatency(key string, ns int64)
}

// Stats is a counter map with latency aggregates, safe for concurrent use
type Stats struct {
	mux       sync.Mutex
	counters  map[string]int64
	latencies map[string]*welford.Stats
}

// NewStats created new instance of Stats
func NewStats() *Stats {
	return &Stats{
		counters:  map[string]int64{},
		latencies: map[string]*welford.Stats{},
	}
}

// UpdateCounterBy will increment counter
func (s *Stats) UpdateCounterBy(key string, count int64) {
	s.mux.Lock()
	s.counters[key] += count
	s.mux.Unlock()
}

// SetCounter will set a counter to the provided value.
func (s *Stats) SetCounter(key string, val int64) {
	s.mux.Lock()
	s.counters[key] = val
	s.mux.Unlock()
}

// ObserveLatency adds a latency sample to the running aggregate for key.
func (s *Stats) ObserveLatency(key string, ns int64) {
	s.mux.Lock()
	w, ok := s.latencies[key]
	if !ok {
		w = welford.New()
		s.latencies[key] = w
	}
	w.Add(float64(ns))
	s.mux.Unlock()
}

// Get returns a map of counters, with latency aggregates flattened in as
// mean/stddev/max keys.
func (s *Stats) Get() map[string]int64 {
	ret := make(map[string]int64)
	s.mux.Lock()
	for key, val := range s.counters {
		ret[key] = val
	}
	for key, w := range s.latencies {
		ret[key+".mean_ns"] = int64(w.Mean())
		ret[key+".stddev_ns"] = int64(w.Stddev())
		ret[key+".max_ns"] = int64(w.Max())
	}
	s.mux.Unlock()
	return ret
}

// Reset all the values of counters and drops latency aggregates
func (s *Stats) Reset() {
	s.mux.Lock()
	for k := range s.counters {
		s.counters[k] = 0
	}
	s.latencies = map[string]*welford.Stats{}
	s.mux.Unlock()
}
