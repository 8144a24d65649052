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

	"github.com/MathisMARION/wisun-br-linux/internal/regdb"
)

var (
	phyCompatDomain string
	phyCompatPlan   int
	phyCompatClass  int
	phyCompatModeID int
)

func init() {
	rootCmd.AddCommand(phyCompatCmd)
	phyCompatCmd.Flags().StringVar(&phyCompatDomain, "domain", "WW", "regulatory domain code")
	phyCompatCmd.Flags().IntVar(&phyCompatPlan, "plan", 0, "channel plan id (mutually exclusive with --class)")
	phyCompatCmd.Flags().IntVar(&phyCompatClass, "class", 1, "operating class")
	phyCompatCmd.Flags().IntVar(&phyCompatModeID, "phy", 0, "PHY mode id to check")
}

var phyCompatCmd = &cobra.Command{
	Use:   "phycompat",
	Short: "Check a (domain, channel plan, PHY mode) combination before configuring wsbrd",
	Run: func(_ *cobra.Command, _ []string) {
		configureVerbosity()

		chanParams, ok := regdb.ChanParamsResolve(phyCompatDomain, phyCompatPlan, phyCompatClass)
		if !ok {
			log.Fatalf("no channel plan for domain %q plan %d class %d", phyCompatDomain, phyCompatPlan, phyCompatClass)
		}
		phyParams, ok := regdb.PHYParamsFromID(phyCompatModeID)
		if !ok {
			log.Fatalf("no PHY params for mode id %d", phyCompatModeID)
		}
		if regdb.CheckPHYChanCompat(phyParams, chanParams) {
			fmt.Println("compatible")
			return
		}
		fmt.Println("incompatible")
	},
}
