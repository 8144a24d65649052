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
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/user"
	"strconv"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/MathisMARION/wisun-br-linux/internal/regdb"
	"github.com/MathisMARION/wisun-br-linux/internal/wsbr"

	_ "net/http/pprof"
)

func prepareConfig(cfgPath, networkName, rcpDevice, ownEUI64, tunIface string, monitoringPort, prometheusPort int) (*wsbr.Config, error) {
	cfg := wsbr.DefaultConfig()
	var err error
	warn := func(name string) {
		log.Warningf("overriding %s from CLI flag", name)
	}
	if cfgPath != "" {
		cfg, err = wsbr.ReadConfig(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("reading config from %q: %w", cfgPath, err)
		}
	}
	if networkName != "" && networkName != cfg.NetworkName {
		warn("network-name")
		cfg.NetworkName = networkName
	}
	if rcpDevice != "" && rcpDevice != cfg.RCPDevice {
		warn("rcp-device")
		cfg.RCPDevice = rcpDevice
	}
	if ownEUI64 != "" && ownEUI64 != cfg.OwnEUI64 {
		warn("eui64")
		cfg.OwnEUI64 = ownEUI64
	}
	if tunIface != "" && tunIface != cfg.TunInterface {
		warn("tun")
		cfg.TunInterface = tunIface
	}
	if monitoringPort != 0 && monitoringPort != cfg.MonitoringPort {
		warn("monitoringport")
		cfg.MonitoringPort = monitoringPort
	}
	if prometheusPort != 0 && prometheusPort != cfg.PrometheusPort {
		warn("prometheusport")
		cfg.PrometheusPort = prometheusPort
	}
	log.Debugf("config: %+v", cfg)
	return cfg, nil
}

// listRFConfigs prints the regulatory channel-plan table (common/ws_regdb.c's
// table, as internal/regdb restates it) and exits, for --list-rf-configs.
func listRFConfigs() {
	for _, p := range regdb.ChanParamsTable {
		fmt.Printf("%-4s class=%-2d plan=%-2d chan0=%-10d spacing=%-7d count=%d\n",
			p.RegDomain, p.OpClass, p.ChanPlanID, p.Chan0FreqHz, p.ChanSpacingHz, p.ChanCount)
	}
}

// dropPrivileges switches to the named group then user, the order
// POSIX requires since dropping the user first removes the
// capability to change group. Called only after radio init, matching
// spec.md §6's "-u/-g drop privileges after radio init".
func dropPrivileges(username, groupname string) error {
	if groupname != "" {
		g, err := user.LookupGroup(groupname)
		if err != nil {
			return fmt.Errorf("looking up group %q: %w", groupname, err)
		}
		gid, err := strconv.Atoi(g.Gid)
		if err != nil {
			return fmt.Errorf("parsing gid %q: %w", g.Gid, err)
		}
		if err := unix.Setgid(gid); err != nil {
			return fmt.Errorf("setgid(%d): %w", gid, err)
		}
	}
	if username != "" {
		u, err := user.Lookup(username)
		if err != nil {
			return fmt.Errorf("looking up user %q: %w", username, err)
		}
		uid, err := strconv.Atoi(u.Uid)
		if err != nil {
			return fmt.Errorf("parsing uid %q: %w", u.Uid, err)
		}
		if err := unix.Setuid(uid); err != nil {
			return fmt.Errorf("setuid(%d): %w", uid, err)
		}
	}
	return nil
}

func main() {
	var (
		verboseFlag        bool
		configFlag         string
		networkNameFlag    string
		rcpDeviceFlag      string
		eui64Flag          string
		tunFlag            string
		monitoringPortFlag int
		prometheusPortFlag int
		pprofFlag          string
		deleteStorageFlag  bool
		listRFConfigsFlag  bool
		captureFlag        string
		pcapFlag           string
		userFlag           string
		groupFlag          string
	)

	flag.BoolVar(&verboseFlag, "verbose", false, "verbose output")
	flag.StringVar(&configFlag, "config", "", "path to the config file")
	flag.StringVar(&networkNameFlag, "network-name", "", "Wi-SUN network name")
	flag.StringVar(&rcpDeviceFlag, "rcp-device", "", "serial device the RCP is attached to")
	flag.StringVar(&eui64Flag, "eui64", "", "border router's own EUI-64, colon-separated hex")
	flag.StringVar(&tunFlag, "tun", "", "tun interface name")
	flag.IntVar(&monitoringPortFlag, "monitoringport", 0, "port to serve JSON stats on, 0 to disable")
	flag.IntVar(&prometheusPortFlag, "prometheusport", 0, "port to serve Prometheus metrics on, 0 to disable")
	flag.StringVar(&pprofFlag, "pprof", "", "address to have the profiler listen on, disabled if empty")
	flag.BoolVar(&deleteStorageFlag, "D", false, "delete persisted storage before starting")
	flag.BoolVar(&listRFConfigsFlag, "list-rf-configs", false, "dump the regulatory channel-plan table and exit")
	flag.StringVar(&captureFlag, "capture", "", "record the RCP protocol trace to this file")
	flag.StringVar(&pcapFlag, "pcap", "", "write received frames to this pcap file")
	flag.StringVar(&userFlag, "u", "", "drop to this user after radio init")
	flag.StringVar(&groupFlag, "g", "", "drop to this group after radio init")

	flag.Parse()

	log.SetLevel(log.InfoLevel)
	if verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	if listRFConfigsFlag {
		listRFConfigs()
		return
	}

	cfg, err := prepareConfig(configFlag, networkNameFlag, rcpDeviceFlag, eui64Flag, tunFlag, monitoringPortFlag, prometheusPortFlag)
	if err != nil {
		log.Fatal(err)
	}
	if verboseFlag {
		cfg.Verbose = "debug"
	}

	if deleteStorageFlag {
		path := cfg.StoragePath + "/wsbrd.db"
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Fatalf("deleting storage %s: %v", path, err)
		}
	}

	if pprofFlag != "" {
		go func() {
			if err := http.ListenAndServe(pprofFlag, nil); err != nil {
				log.Errorf("failed to start pprof: %v", err)
			}
		}()
	}

	c, err := wsbr.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	if captureFlag != "" {
		if err := c.EnableRCPCapture(captureFlag); err != nil {
			log.Fatal(err)
		}
	}
	if pcapFlag != "" {
		if err := c.EnablePCAP(pcapFlag); err != nil {
			log.Fatal(err)
		}
	}
	if userFlag != "" || groupFlag != "" {
		if err := dropPrivileges(userFlag, groupFlag); err != nil {
			log.Fatal(err)
		}
	}

	if err := c.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
