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

package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	sd "github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"

	"github.com/virtrtc/virtrtc/daemon"
	"github.com/virtrtc/virtrtc/tick"
)

func main() {
	var (
		cfg     = &daemon.Config{}
		err     error
		cfgPath string
		verbose bool
	)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "virtrtc daemon: a software-emulated RTC\n\nFlags:\n")
		flag.PrintDefaults()
	}

	flag.StringVar(&cfg.ListenAddr, "listenaddr", "localhost:9992", "Address to serve the clock read/set API on")
	flag.IntVar(&cfg.MonitoringPort, "monitoringport", 9993, "Port to run monitoring server on")
	flag.IntVar(&cfg.MetricsPort, "metricsport", 0, "Port to serve prometheus metrics on. 0 means disabled")
	flag.Uint64Var(&cfg.Frequency, "frequency", uint64(tick.DefaultFrequency), "Tick counter frequency in Hz")
	flag.UintVar(&cfg.Width, "width", tick.DefaultWidth, "Tick counter width in bits")
	flag.DurationVar(&cfg.SafetyMargin, "margin", 0, "How long before the expected counter wrap to refresh. 0 means 1/8 of the wrap period")
	flag.BoolVar(&cfg.SeedFromHost, "seedfromhost", true, "Start the clock at host boot time instead of the epoch")

	flag.StringVar(&cfgPath, "cfg", "", "Path to config")
	flag.BoolVar(&verbose, "verbose", false, "Verbose logging")

	flag.Parse()

	log.SetReportCaller(true)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	if cfgPath != "" {
		log.Warningf("using config from %s, flag values are ignored", cfgPath)
		cfg, err = daemon.ReadConfig(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if err := cfg.EvalAndValidate(); err != nil {
		log.Fatal(err)
	}
	log.Debugf("Config: %+v", *cfg)

	stats := daemon.NewJSONStats()
	go stats.Start(cfg.MonitoringPort)
	if cfg.MetricsPort != 0 {
		exporter := daemon.NewPrometheusExporter(cfg.MetricsPort, &stats.Stats, time.Second)
		go exporter.Start()
	}

	s, err := daemon.New(cfg, stats)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if ok, err := sd.SdNotify(false, sd.SdNotifyReady); err != nil {
		log.Warningf("failed to notify systemd: %v", err)
	} else if ok {
		log.Debugf("notified systemd we are ready")
	}

	if err := s.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
