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

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/virtrtc/virtrtc/rtc"
)

var setNowFlag bool

func init() {
	RootCmd.AddCommand(setCmd)
	setCmd.Flags().BoolVar(&setNowFlag, "now", false, "set the clock to the current system time (UTC)")
}

func pushTime(server string, tm rtc.CalendarTime) error {
	body, err := json.Marshal(tm)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("http://%s/time", server)
	log.Debugf("setting clock via %s", url)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("talking to daemon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("daemon returned %s: %s", resp.Status, msg)
	}
	return nil
}

func parseCalendarTime(s string) (rtc.CalendarTime, error) {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return rtc.CalendarTime{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	return rtc.CalendarTime{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}, nil
}

var setCmd = &cobra.Command{
	Use:   "set [YYYY-MM-DDTHH:MM:SS]",
	Short: "Set the clock to the given UTC time",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		var tm rtc.CalendarTime
		var err error
		switch {
		case setNowFlag:
			now := time.Now().UTC()
			tm = rtc.CalendarTime{
				Year:   now.Year(),
				Month:  now.Month(),
				Day:    now.Day(),
				Hour:   now.Hour(),
				Minute: now.Minute(),
				Second: now.Second(),
			}
		case len(args) == 1:
			tm, err = parseCalendarTime(args[0])
			if err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatal("either a timestamp argument or --now is required")
		}
		if err := pushTime(rootServerFlag, tm); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("clock set to %s\n", tm)
	},
}
