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
	"net/http"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statusMonitoringAddrFlag string

func init() {
	RootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusMonitoringAddrFlag, "monitoring", "m", "localhost:9993", "address of the daemon monitoring server")
}

func fetchCounters(addr string) (map[string]int64, error) {
	url := fmt.Sprintf("http://%s/", addr)
	log.Debugf("fetching counters from %s", url)
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("talking to monitoring server: %w", err)
	}
	defer resp.Body.Close()
	counters := map[string]int64{}
	if err := json.NewDecoder(resp.Body).Decode(&counters); err != nil {
		return nil, fmt.Errorf("decoding counters: %w", err)
	}
	return counters, nil
}

func printStatus(counters map[string]int64) {
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"counter", "value"})
	for _, k := range keys {
		v := fmt.Sprintf("%d", counters[k])
		switch k {
		case "invalid_input", "out_of_range":
			if counters[k] > 0 {
				v = color.RedString("%d", counters[k])
			} else {
				v = color.GreenString("%d", counters[k])
			}
		}
		table.Append([]string{k, v})
	}
	table.Render()
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon counters and clock health",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		counters, err := fetchCounters(statusMonitoringAddrFlag)
		if err != nil {
			log.Fatal(err)
		}
		printStatus(counters)

		tm, err := fetchTime(rootServerFlag)
		if err != nil {
			fmt.Printf("clock: %s\n", color.RedString("%v", err))
			return
		}
		fmt.Printf("clock: %s\n", color.GreenString("%s", tm))
	},
}
