/*
Copyright (c) The wisun-br-linux Authors.

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
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/MathisMARION/wisun-br-linux/internal/regdb"
)

func init() {
	rootCmd.AddCommand(rfConfigCmd)
}

var rfConfigCmd = &cobra.Command{
	Use:   "rfconfig",
	Short: "Print the regulatory channel-plan table",
	Run: func(_ *cobra.Command, _ []string) {
		configureVerbosity()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"domain", "class", "plan", "chan0 (Hz)", "spacing (Hz)", "count", "phy modes"})
		for _, p := range regdb.ChanParamsTable {
			table.Append([]string{
				p.RegDomain,
				fmt.Sprintf("%d", p.OpClass),
				fmt.Sprintf("%d", p.ChanPlanID),
				fmt.Sprintf("%d", p.Chan0FreqHz),
				fmt.Sprintf("%d", p.ChanSpacingHz),
				fmt.Sprintf("%d", p.ChanCount),
				fmt.Sprintf("%v", p.ValidPHYModeIDs),
			})
		}
		table.Render()
	},
}
