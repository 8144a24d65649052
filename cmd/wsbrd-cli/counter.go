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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(counterCmd)
}

var counterCmd = &cobra.Command{
	Use:   "counter <name>",
	Short: "Print a single counter's current value",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		configureVerbosity()
		snap, err := fetchSnapshot(rootAddrFlag)
		if err != nil {
			log.Fatal(err)
		}
		v, ok := snap[args[0]]
		if !ok {
			log.Fatalf("no such counter: %s", args[0])
		}
		fmt.Println(v)
	},
}
