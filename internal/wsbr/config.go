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

// Package wsbr composes every component package into the single-
// threaded border router daemon, per spec.md §5 and §9's "no
// globals" redesign of the source's g_ctxt singleton.
package wsbr

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the on-disk daemon configuration, loaded with ReadConfig
// and merged with CLI overrides in cmd/wsbrd, mirroring
// ptp/sptp/client/config.go's ReadConfig/yaml.v2 shape.
type Config struct {
	NetworkName string `yaml:"network_name"`
	Domain      string `yaml:"domain"` // regulatory domain code, e.g. "NA", "EU", "WW" (internal/regdb)
	ChanPlanID  int    `yaml:"chan_plan_id"`
	OpClass     int    `yaml:"op_class"`
	PHYModeID   int    `yaml:"phy_mode_id"`

	TunInterface string `yaml:"tun_interface"`
	RCPDevice    string `yaml:"rcp_device"`
	RCPBaud      int    `yaml:"rcp_baud"`
	OwnEUI64     string `yaml:"own_eui64"` // colon-separated hex, the border router's own MAC address

	StoragePath string `yaml:"storage_path"`

	PANID            uint16 `yaml:"pan_id"`             // 0xffff means "not configured, form a new PAN"
	NetworkSizeClass string `yaml:"network_size_class"` // small | medium | large | xlarge | certification

	GTKNewActivationTime    time.Duration `yaml:"gtk_new_activation_time"`
	GTKExpireOffset         time.Duration `yaml:"gtk_expire_offset"`
	LGTKNewActivationTime   time.Duration `yaml:"lgtk_new_activation_time"`
	LGTKExpireOffset        time.Duration `yaml:"lgtk_expire_offset"`
	RequireExtendedKeyUsage bool          `yaml:"require_extended_key_usage"`

	TrickleIminMs        uint32 `yaml:"trickle_imin_ms"`
	TrickleImaxDoublings uint8  `yaml:"trickle_imax_doublings"`
	TrickleK             uint8  `yaml:"trickle_k"`

	MaxAsyncDurationMs int64         `yaml:"max_async_duration_ms"`
	AsyncWindow        time.Duration `yaml:"async_window"`

	MaxSimultaneousSecurityNegotiations int `yaml:"max_simultaneous_security_negotiations"`

	DHCP6Prefix string `yaml:"dhcp6_prefix"` // leading /64, hex-colon notation

	MonitoringPort int `yaml:"monitoring_port"`
	PrometheusPort int `yaml:"prometheus_port"`

	Verbose string `yaml:"verbose"` // debug | info | warning | error
}

// DefaultConfig returns the configuration a fresh border router starts
// from before any on-disk or CLI override is applied, matching the
// defaults-then-merge shape of sptp's DefaultConfig/PrepareConfig.
func DefaultConfig() *Config {
	return &Config{
		Domain:           "WW",
		TunInterface:     "tun0",
		RCPBaud:          115200,
		StoragePath:      "/var/lib/wsbrd",
		PANID:            0xffff,
		NetworkSizeClass: "small",

		GTKNewActivationTime:  15 * time.Minute,
		GTKExpireOffset:       30 * 24 * time.Hour,
		LGTKNewActivationTime: 15 * time.Minute,
		LGTKExpireOffset:      30 * 24 * time.Hour,

		TrickleIminMs:        15000,
		TrickleImaxDoublings: 5,
		TrickleK:             10,

		MaxAsyncDurationMs: 500,
		AsyncWindow:        time.Second,

		MaxSimultaneousSecurityNegotiations: 8,

		MonitoringPort: 0,
		PrometheusPort: 0,

		Verbose: "info",
	}
}

// ReadConfig loads path over DefaultConfig, the way
// ptp/sptp/client/config.go's ReadConfig seeds from defaults before
// unmarshalling the file on top.
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wsbr: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("wsbr: parsing config %s: %w", path, err)
	}
	return c, nil
}

// Validate rejects a configuration the daemon cannot start with.
func (c *Config) Validate() error {
	if c.NetworkName == "" {
		return fmt.Errorf("network_name must be set")
	}
	if c.RCPDevice == "" {
		return fmt.Errorf("rcp_device must be set")
	}
	if c.OwnEUI64 == "" {
		return fmt.Errorf("own_eui64 must be set")
	}
	switch c.NetworkSizeClass {
	case "small", "medium", "large", "xlarge", "certification":
	default:
		return fmt.Errorf("network_size_class must be one of small, medium, large, xlarge, certification; got %q", c.NetworkSizeClass)
	}
	if c.MaxSimultaneousSecurityNegotiations <= 0 {
		return fmt.Errorf("max_simultaneous_security_negotiations must be positive")
	}
	return nil
}

// neighborCapacity maps the deployment size class to a bounded
// neighbor/supplicant/target table capacity (spec.md §5's "bounded
// capacities based on network-size class").
func (c *Config) neighborCapacity() int {
	switch c.NetworkSizeClass {
	case "small":
		return 100
	case "medium":
		return 1000
	case "large":
		return 5000
	case "xlarge":
		return 10000
	case "certification":
		return 10
	default:
		return 100
	}
}
