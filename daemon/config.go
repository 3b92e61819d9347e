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
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/virtrtc/virtrtc/tick"
)

// Config represents configuration we expect to read from file
type Config struct {
	ListenAddr     string        // where to serve the clock read/set API
	MonitoringPort int           // where to serve JSON counters
	MetricsPort    int           // where to serve prometheus metrics, 0 disables
	Frequency      uint64        // tick counter frequency, Hz
	Width          uint          // tick counter width, bits
	SafetyMargin   time.Duration // how long before the expected wrap we refresh, 0 means 1/8 of the wrap period
	SeedFromHost   bool          // start the clock at host boot time instead of the epoch
}

// EvalAndValidate makes sure config is valid
func (c *Config) EvalAndValidate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("bad config: 'listenaddr' must be specified")
	}
	if err := tick.Validate(c.Width, tick.Frequency(c.Frequency)); err != nil {
		return fmt.Errorf("bad config: %w", err)
	}
	wrap := tick.WrapPeriod(c.Width, tick.Frequency(c.Frequency))
	if c.SafetyMargin < 0 || c.SafetyMargin >= wrap {
		return fmt.Errorf("bad config: 'safetymargin' %v outside [0, %v)", c.SafetyMargin, wrap)
	}
	return nil
}

// ReadConfig reads config and unmarshals it from yaml into Config
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Config{}
	err = yaml.UnmarshalStrict(data, &c)
	return &c, err
}
