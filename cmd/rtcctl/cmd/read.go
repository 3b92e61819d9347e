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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/virtrtc/virtrtc/rtc"
)

func init() {
	RootCmd.AddCommand(readCmd)
}

func fetchTime(server string) (rtc.CalendarTime, error) {
	var tm rtc.CalendarTime
	url := fmt.Sprintf("http://%s/time", server)
	log.Debugf("reading clock from %s", url)
	resp, err := http.Get(url)
	if err != nil {
		return tm, fmt.Errorf("talking to daemon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return tm, fmt.Errorf("daemon returned %s: %s", resp.Status, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(&tm); err != nil {
		return tm, fmt.Errorf("decoding response: %w", err)
	}
	return tm, nil
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the current clock value",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		tm, err := fetchTime(rootServerFlag)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(tm)
		offset := time.Now().UTC().Sub(tm.Time())
		log.Debugf("offset from system clock: %v", offset)
	},
}
