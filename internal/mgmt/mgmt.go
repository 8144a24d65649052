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

// Package mgmt builds the PAN Advertisement / Solicit / Config /
// Config Solicit frames and owns pan_version bookkeeping and
// async-transmission airtime rate limiting (spec.md §4.7).
package mgmt

import (
	"github.com/MathisMARION/wisun-br-linux/internal/ie"
	"github.com/MathisMARION/wisun-br-linux/internal/trickle"
)

// Persister is the subset of the persistence facade (C14) mgmt needs:
// saving the PAN version after every bump, so a restart resumes from
// the last value rather than going backwards (spec.md §4.0's
// monotonic-across-restarts invariant extends to pan_version).
type Persister interface {
	SavePANVersion(uint16) error
}

// State is the PAN-wide, non-per-neighbor fields announced in
// PA/PAS/PC/PCS, per spec.md §4.7.
type State struct {
	NetworkName string
	PANSize     uint16
	RoutingCost uint16
	PANVersion  uint16
	LFNVersion  uint16
	GTKHashes   [4][8]byte
	LGTKHashes  [3][8]byte
	LFNEnabled  bool

	US  ie.USIE
	BS  ie.BSIE
	BT  ie.BTIE
	UTT ie.UTTIE
	POM ie.POMIE
	JM  *ie.JMIE // nil when no join metrics are advertised
}

// Announcer builds PA/PAS/PC/PCS frames and owns their Trickle
// instances and the shared PAN State.
type Announcer struct {
	State State

	PA  *trickle.Timer
	PAS *trickle.Timer
	PC  *trickle.Timer
	PCS *trickle.Timer

	persister Persister
	limiter   *AirtimeLimiter
}

// NewAnnouncer builds an Announcer with the given Trickle
// configuration shared by all four instances, a 50% airtime split is
// not assumed: each instance gets its own Timer so PA and PC can run
// independent schedules.
func NewAnnouncer(state State, cfg trickle.Config, persister Persister, limiter *AirtimeLimiter) *Announcer {
	return &Announcer{
		State:     state,
		PA:        trickle.New(cfg, nil),
		PAS:       trickle.New(cfg, nil),
		PC:        trickle.New(cfg, nil),
		PCS:       trickle.New(cfg, nil),
		persister: persister,
		limiter:   limiter,
	}
}

// BuildPA assembles a PAN Advertisement: UTT + US-IE + PAN-IE +
// NETNAME-IE + POM-IE, plus JM-IE when join metrics are configured.
func (a *Announcer) BuildPA() ie.IETree {
	payload := []ie.PayloadIE{
		a.State.US,
		ie.PANIE{PANSize: a.State.PANSize, RoutingCost: a.State.RoutingCost},
		ie.NETNAMEIE{NetworkName: a.State.NetworkName},
		a.State.POM,
	}
	if a.State.JM != nil {
		payload = append(payload, *a.State.JM)
	}
	return ie.IETree{
		Header:  []ie.HeaderIE{a.State.UTT},
		Payload: payload,
	}
}

// BuildPAS assembles a PAN Advertisement Solicit: UTT + US-IE + NETNAME-IE.
func (a *Announcer) BuildPAS() ie.IETree {
	return ie.IETree{
		Header:  []ie.HeaderIE{a.State.UTT},
		Payload: []ie.PayloadIE{a.State.US, ie.NETNAMEIE{NetworkName: a.State.NetworkName}},
	}
}

// BuildPC assembles a PAN Config: UTT + US-IE + BS-IE + BT-IE +
// PANVER-IE + GTKHASH-IE, plus LFNVER-IE/LGTKHASH-IE when LFNs are enabled.
func (a *Announcer) BuildPC() ie.IETree {
	payload := []ie.PayloadIE{
		a.State.US,
		a.State.BS,
		ie.PANVERIE{PANVersion: a.State.PANVersion},
		ie.GTKHASHIE{Hashes: a.State.GTKHashes},
	}
	if a.State.LFNEnabled {
		payload = append(payload,
			ie.LFNVERIE{LFNVersion: a.State.LFNVersion},
			ie.LGTKHASHIE{Hashes: a.State.LGTKHashes},
		)
	}
	return ie.IETree{
		Header:  []ie.HeaderIE{a.State.UTT, a.State.BT},
		Payload: payload,
	}
}

// BuildPCS assembles a PAN Config Solicit: UTT + US-IE + NETNAME-IE.
func (a *Announcer) BuildPCS() ie.IETree {
	return ie.IETree{
		Header:  []ie.HeaderIE{a.State.UTT},
		Payload: []ie.PayloadIE{a.State.US, ie.NETNAMEIE{NetworkName: a.State.NetworkName}},
	}
}

// PANVersionIncrease bumps pan_version, resets the PC Trickle instance
// to inconsistent so the change propagates promptly, and persists the
// new value, per spec.md §4.7.
func (a *Announcer) PANVersionIncrease() error {
	a.State.PANVersion++
	a.PC.Inconsistent()
	if a.persister == nil {
		return nil
	}
	return a.persister.SavePANVersion(a.State.PANVersion)
}

// LFNVersionIncrease bumps lfn_version and, per spec.md §4.7's "LFN
// version bump additionally triggers a PAN version bump", also calls
// PANVersionIncrease.
func (a *Announcer) LFNVersionIncrease() error {
	a.State.LFNVersion++
	return a.PANVersionIncrease()
}
