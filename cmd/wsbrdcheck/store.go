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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MathisMARION/wisun-br-linux/internal/store"
)

var storeDBFlag string

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.Flags().StringVarP(&storeDBFlag, "db", "f", "/var/lib/wsbrd/wsbrd.db", "path to the persisted wsbrd.db")
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Print the persisted br-info record and known neighbors",
	Run: func(_ *cobra.Command, _ []string) {
		configureVerbosity()

		st, err := store.Open(storeDBFlag)
		if err != nil {
			log.Fatal(err)
		}
		defer st.Close()

		info, found, err := st.GetBRInfo()
		if err != nil {
			log.Fatal(err)
		}
		if !found {
			fmt.Println("no br-info persisted")
		} else {
			fmt.Printf("network_name=%s bsi=%d pan_id=0x%04x pan_version=%d lfn_version=%d\n",
				info.NetworkName, info.BSI, info.PANID, info.PANVersion, info.LFNVersion)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"eui64", "short addr", "parent", "last seen (unix)"})
		err = st.ForEachNeighbor(func(eui64 [8]byte, rec store.NeighborRecord) error {
			table.Append([]string{
				fmt.Sprintf("%x", eui64),
				fmt.Sprintf("0x%04x", rec.ShortAddr),
				fmt.Sprintf("%v", rec.IsParent),
				fmt.Sprintf("%d", rec.LastSeenSec),
			})
			return nil
		})
		if err != nil {
			log.Fatal(err)
		}
		table.Render()
	},
}
