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

package wsbr

import (
	"encoding/hex"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/MathisMARION/wisun-br-linux/internal/addrglue"
	"github.com/MathisMARION/wisun-br-linux/internal/auth"
	"github.com/MathisMARION/wisun-br-linux/internal/bstats"
	"github.com/MathisMARION/wisun-br-linux/internal/dhcp6"
	"github.com/MathisMARION/wisun-br-linux/internal/eapol"
	"github.com/MathisMARION/wisun-br-linux/internal/fhss"
	"github.com/MathisMARION/wisun-br-linux/internal/mgmt"
	"github.com/MathisMARION/wisun-br-linux/internal/neighbor"
	"github.com/MathisMARION/wisun-br-linux/internal/rcp"
	"github.com/MathisMARION/wisun-br-linux/internal/regdb"
	"github.com/MathisMARION/wisun-br-linux/internal/rpl"
	"github.com/MathisMARION/wisun-br-linux/internal/store"
	"github.com/MathisMARION/wisun-br-linux/internal/timer"
	"github.com/MathisMARION/wisun-br-linux/internal/trickle"
)

// EUI64 is the border router's own address, shared across every
// component's distinct EUI64 type at the wiring boundary.
type EUI64 [8]byte

// Context is the composed root value every component is threaded
// through by reference, replacing the source's g_ctxt singleton per
// spec.md §9: "restate as a composed root-context value ... globals
// only where the OS itself is global."
type Context struct {
	Config *Config

	Own EUI64

	Store *store.Store
	Addrs *addrglue.IfaceAddrs
	EARO  *addrglue.Registry
	Seeds *addrglue.SeedTable

	RCPTransport *rcp.Transport
	RCP          *rcp.Client

	FHSS *fhss.Manager

	Neighbors *neighbor.Table

	Auth  *auth.Authenticator
	EAPOL *eapol.Relay

	DODAG        *rpl.DODAG
	RPLAnnouncer *rpl.Announcer

	Mgmt *mgmt.Announcer

	DHCP6         *dhcp6.Server
	DHCP6Listener *dhcp6.Listener

	Timers  *timer.Base
	TimerFD *timer.FD

	Counters   *bstats.Counters
	JSONStats  *bstats.JSONServer
	PromExport *bstats.PrometheusExporter

	ChanParams regdb.ChanParams
	PHYParams  regdb.PHYParams

	pcap        *pcapCapture
	captureFile io.Closer
}

// parseEUI64 decodes a colon-separated hex EUI-64, e.g. "00:11:22:33:44:55:66:77".
func parseEUI64(s string) (EUI64, error) {
	var out EUI64
	b, err := hex.DecodeString(strings.ReplaceAll(s, ":", ""))
	if err != nil || len(b) != 8 {
		return out, fmt.Errorf("wsbr: invalid eui64 %q", s)
	}
	copy(out[:], b)
	return out, nil
}

// New builds every component from cfg and wires them together. It
// does not start the RCP read loop's re-apply dance or any listener
// goroutine beyond what the underlying constructors already start
// (rcp.NewClient); callers run Run to drive the event loop.
func New(cfg *Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setLogLevel(cfg.Verbose)

	chanParams, ok := regdb.ChanParamsResolve(cfg.Domain, cfg.ChanPlanID, cfg.OpClass)
	if !ok {
		return nil, fmt.Errorf("wsbr: no channel plan for domain %q plan %d class %d", cfg.Domain, cfg.ChanPlanID, cfg.OpClass)
	}
	phyParams, ok := regdb.PHYParamsFromID(cfg.PHYModeID)
	if !ok {
		return nil, fmt.Errorf("wsbr: no PHY params for mode id %d", cfg.PHYModeID)
	}
	if !regdb.CheckPHYChanCompat(phyParams, chanParams) {
		return nil, fmt.Errorf("wsbr: phy mode %d incompatible with channel plan %d", cfg.PHYModeID, cfg.ChanPlanID)
	}

	st, err := store.Open(cfg.StoragePath + "/wsbrd.db")
	if err != nil {
		return nil, fmt.Errorf("wsbr: opening storage: %w", err)
	}

	brInfo, found, err := st.GetBRInfo()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("wsbr: reading br-info: %w", err)
	}
	panID := cfg.PANID
	panVersion := uint16(0)
	lfnVersion := uint16(0)
	if found {
		panID = brInfo.PANID
		panVersion = brInfo.PANVersion
		lfnVersion = brInfo.LFNVersion
		log.WithField("pan_id", panID).Info("wsbr: resuming persisted PAN identity")
	}

	addrs, err := addrglue.NewIfaceAddrs(cfg.TunInterface)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("wsbr: binding tun interface %s: %w", cfg.TunInterface, err)
	}

	capacity := cfg.neighborCapacity()

	transport, err := rcp.OpenSerial(cfg.RCPDevice, cfg.RCPBaud)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("wsbr: opening RCP device %s: %w", cfg.RCPDevice, err)
	}

	counters := bstats.NewCounters()

	neighbors := neighbor.New(capacity, 2*time.Hour)

	regMask := make(fhss.RegMask, (chanParams.ChanCount+7)/8)
	for i := range regMask {
		regMask[i] = 0xff
	}

	own, err := cfg.ownEUI64()
	if err != nil {
		transport.Close()
		st.Close()
		return nil, err
	}

	rtr, err := rpl.NewNetlinkRouter(cfg.TunInterface)
	if err != nil {
		transport.Close()
		st.Close()
		return nil, fmt.Errorf("wsbr: building RPL route injector: %w", err)
	}
	dodag := rpl.NewDODAG(rtr, time.Second)

	rplTrickle := trickle.New(trickle.Config{
		IminMs:        cfg.TrickleIminMs,
		ImaxDoublings: cfg.TrickleImaxDoublings,
		K:             cfg.TrickleK,
	}, nil)
	dodagID, err := netip.ParseAddr("::1")
	if err != nil {
		return nil, err
	}
	rplAnnouncer := rpl.NewAnnouncer(rpl.DODAGConfig{
		InstanceID:      0,
		DODAGID:         dodagID,
		DODAGVersion:    1,
		PCS:             0,
		LifetimeUnit:    60 * time.Second,
		DefaultLifetime: 0xff,
	}, rplTrickle, 10)

	limiter := mgmt.NewAirtimeLimiter(cfg.MaxAsyncDurationMs, cfg.AsyncWindow)
	mgmtAnnouncer := mgmt.NewAnnouncer(mgmt.State{
		NetworkName: cfg.NetworkName,
		PANVersion:  panVersion,
		LFNVersion:  lfnVersion,
	}, trickle.Config{
		IminMs:        cfg.TrickleIminMs,
		ImaxDoublings: cfg.TrickleImaxDoublings,
		K:             cfg.TrickleK,
	}, &brInfoPersister{store: st, networkName: cfg.NetworkName, bsi: brInfo.BSI, panID: panID, lfnVersion: lfnVersion}, limiter)

	policy := auth.CertPolicy{RequireExtendedKeyUsage: cfg.RequireExtendedKeyUsage}
	authn := auth.New(auth.EUI64(own), newCertBackend(nil, policy), policy, auth.Lifetimes{
		ExpireOffset:      cfg.GTKExpireOffset,
		NewActivationTime: cfg.GTKNewActivationTime,
	}, auth.Lifetimes{
		ExpireOffset:      cfg.LGTKExpireOffset,
		NewActivationTime: cfg.LGTKNewActivationTime,
	})

	var dhcpServer *dhcp6.Server
	var dhcpListener *dhcp6.Listener
	if cfg.DHCP6Prefix != "" {
		prefix, err := parseEUI64(cfg.DHCP6Prefix)
		if err != nil {
			return nil, fmt.Errorf("wsbr: dhcp6_prefix: %w", err)
		}
		dhcpServer = dhcp6.NewServer(prefix, own)
		dhcpListener, err = dhcp6.Listen(cfg.TunInterface)
		if err != nil {
			return nil, fmt.Errorf("wsbr: opening dhcp6 listener: %w", err)
		}
	}

	c := &Context{
		Config:        cfg,
		Own:           own,
		Store:         st,
		Addrs:         addrs,
		EARO:          addrglue.NewRegistry(capacity),
		Seeds:         addrglue.NewSeedTable(capacity),
		RCPTransport:  transport,
		Neighbors:     neighbors,
		Auth:          authn,
		DODAG:         dodag,
		RPLAnnouncer:  rplAnnouncer,
		Mgmt:          mgmtAnnouncer,
		DHCP6:         dhcpServer,
		DHCP6Listener: dhcpListener,
		Timers:        timer.NewBase(),
		Counters:      counters,
		ChanParams:    chanParams,
		PHYParams:     phyParams,
	}

	c.RCP = rcp.NewClient(transport, c.reapplyRCPConfig)
	c.FHSS = fhss.NewManager(regMask, &rcpFHSSPusher{rcp: c.RCP})
	c.EAPOL = eapol.NewRelay(&rcpMeshSender{rcp: c.RCP}, &authEAPOLSink{auth: authn}, 4)
	c.EAPOL.Start()

	timerFD, err := timer.NewFD(c.Timers)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("wsbr: creating timerfd: %w", err)
	}
	c.TimerFD = timerFD

	if cfg.MonitoringPort != 0 {
		c.JSONStats = bstats.NewJSONServer(counters)
		go func() {
			if err := c.JSONStats.Start(cfg.MonitoringPort); err != nil {
				log.WithError(err).Error("wsbr: json stats server stopped")
			}
		}()
	}
	if cfg.PrometheusPort != 0 {
		c.PromExport = bstats.NewPrometheusExporter(counters, cfg.PrometheusPort, 10*time.Second)
		go func() {
			if err := c.PromExport.Start(); err != nil {
				log.WithError(err).Error("wsbr: prometheus exporter stopped")
			}
		}()
	}

	c.registerMaintenanceTimers()
	return c, nil
}

// Close tears down every component holding an OS resource. It does
// not attempt clean protocol shutdown (no "deregister from network"
// handshake exists for a border router) — just releases fds.
func (c *Context) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.TimerFD != nil {
		record(c.TimerFD.Close())
	}
	if c.EAPOL != nil {
		c.EAPOL.Stop()
	}
	if c.DHCP6Listener != nil {
		record(c.DHCP6Listener.Close())
	}
	if c.RCP != nil {
		record(c.RCP.Close())
	}
	if c.Store != nil {
		record(c.Store.Close())
	}
	if c.pcap != nil {
		record(c.pcap.close())
	}
	if c.captureFile != nil {
		record(c.captureFile.Close())
	}
	return firstErr
}

func setLogLevel(verbose string) {
	switch verbose {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func (cfg *Config) ownEUI64() (EUI64, error) {
	return parseEUI64(cfg.OwnEUI64)
}
