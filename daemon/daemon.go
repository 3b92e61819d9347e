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
Package daemon hosts the software RTC in a long-running process: it wires
the system tick counter into the accumulator and its periodic refresher,
and registers the clock with the outside world as a small HTTP API, the
process-level equivalent of registering an RTC device with the kernel.
*/
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/host"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/virtrtc/virtrtc/rtc"
	"github.com/virtrtc/virtrtc/tick"
)

// Daemon runs the software RTC and serves its read/set interface over HTTP.
type Daemon struct {
	cfg       *Config
	stats     StatsServer
	clock     *rtc.Accumulator
	refresher *rtc.Refresher
}

// New creates a new virtrtc daemon
func New(cfg *Config, stats StatsServer) (*Daemon, error) {
	counter, err := tick.NewSystemCounter(cfg.Width, tick.Frequency(cfg.Frequency))
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	var accOpts []rtc.AccumulatorOption
	if cfg.SeedFromHost {
		bootSec, err := host.BootTime()
		if err != nil {
			return nil, fmt.Errorf("getting host boot time: %w", err)
		}
		accOpts = append(accOpts, rtc.WithEpoch(time.Unix(int64(bootSec), 0)))
		log.Debugf("seeding clock from host boot time %v", time.Unix(int64(bootSec), 0).UTC())
	}
	clock, err := rtc.NewAccumulator(counter, accOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating accumulator: %w", err)
	}

	var refOpts []rtc.RefresherOption
	if cfg.SafetyMargin > 0 {
		refOpts = append(refOpts, rtc.WithSafetyMargin(cfg.SafetyMargin))
	}
	refresher, err := rtc.NewRefresher(clock, refOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating refresher: %w", err)
	}

	s := &Daemon{
		cfg:       cfg,
		stats:     stats,
		clock:     clock,
		refresher: refresher,
	}
	// surface periodic-refresh activity: firings plus scheduling jitter,
	// the deviation of the observed inter-refresh interval from the
	// configured period
	refresher.OnFire(func(sincePrev time.Duration) {
		s.stats.UpdateCounterBy("refreshes", 1)
		if sincePrev > 0 {
			jitter := sincePrev - refresher.Interval()
			if jitter < 0 {
				jitter = -jitter
			}
			s.stats.ObserveLatency("refresh_jitter", jitter.Nanoseconds())
		}
	})
	s.stats.SetCounter("read", 0)
	s.stats.SetCounter("set", 0)
	s.stats.SetCounter("refreshes", 0)
	s.stats.SetCounter("invalid_input", 0)
	s.stats.SetCounter("out_of_range", 0)
	s.stats.SetCounter("refresh_interval_ns", int64(refresher.Interval()))
	return s, nil
}

// Clock returns the accumulator the daemon serves.
func (s *Daemon) Clock() *rtc.Accumulator { return s.clock }

func (s *Daemon) handleTime(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleReadTime(w)
	case http.MethodPost:
		s.handleSetTime(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Daemon) handleReadTime(w http.ResponseWriter) {
	start := time.Now()
	tm, err := s.clock.ReadTime()
	s.stats.ObserveLatency("read_latency", time.Since(start).Nanoseconds())
	s.stats.UpdateCounterBy("read", 1)
	if err != nil {
		s.stats.UpdateCounterBy("out_of_range", 1)
		log.Errorf("reading clock: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tm); err != nil {
		log.Errorf("Failed to reply: %v", err)
	}
}

func (s *Daemon) handleSetTime(w http.ResponseWriter, r *http.Request) {
	var tm rtc.CalendarTime
	if err := json.NewDecoder(r.Body).Decode(&tm); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start := time.Now()
	err := s.clock.SetTime(tm)
	s.stats.ObserveLatency("set_latency", time.Since(start).Nanoseconds())
	s.stats.UpdateCounterBy("set", 1)
	if err != nil {
		s.stats.UpdateCounterBy("invalid_input", 1)
		log.Warningf("rejecting set %v: %v", tm, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Infof("clock set to %s", tm)
	w.WriteHeader(http.StatusOK)
}

func (s *Daemon) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/time", s.handleTime)
	return mux
}

// Run serves the clock until ctx is cancelled. The periodic refresher is
// armed for the whole lifetime of the daemon and drained before return.
func (s *Daemon) Run(ctx context.Context) error {
	s.refresher.Start()
	defer s.refresher.Stop()

	srv := &http.Server{Addr: s.cfg.ListenAddr, Handler: s.mux()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Serving clock API on %s", s.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
