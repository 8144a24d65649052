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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd is wsbrd-cli's entry point. The upstream operator CLI talks
// to wsbrd over D-Bus; nothing in this pack pins a D-Bus client
// library, so this one talks to the daemon's JSON stats endpoint
// (internal/bstats.JSONServer) instead, reusing the one operator
// surface the daemon already exposes over the network.
var rootCmd = &cobra.Command{
	Use:   "wsbrd-cli",
	Short: "Operator CLI for the wsbrd border router daemon",
}

var (
	rootVerboseFlag bool
	rootAddrFlag    string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&rootAddrFlag, "daemon", "d", "localhost:8080", "address of the wsbrd JSON stats endpoint")
}

func configureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
