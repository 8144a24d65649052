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

package rpl

import (
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/MathisMARION/wisun-br-linux/internal/trickle"
)

// Mode of Operation values (RFC 6550 §6.3.1). The root always runs
// non-storing mode per spec.md §4.11.
const ModeOfOperationNonStoring = 1

// ObjectiveCodePointMRHOF is MRHOF's OCP (RFC 6719).
const ObjectiveCodePointMRHOF = 1

// DODAGConfig mirrors the fields of a DIO's DODAG Configuration option
// this root advertises.
type DODAGConfig struct {
	InstanceID      uint8
	DODAGID         netip.Addr
	DODAGVersion    uint8
	PCS             uint8
	LifetimeUnit    time.Duration
	DefaultLifetime uint16
}

// DIOMessage is the root's advertised DIO, built fresh for each
// Trickle-driven transmission.
type DIOMessage struct {
	InstanceID      uint8
	DODAGID         netip.Addr
	DODAGVersion    uint8
	Rank            uint16
	ModeOfOperation uint8
	OCP             uint8
	PCS             uint8
	LifetimeUnit    time.Duration
	DefaultLifetime uint16
	DTSN            uint8
}

// DAOACK acknowledges a DAO whose 'K' flag requested one.
type DAOACK struct {
	InstanceID  uint8
	DODAGID     netip.Addr
	DAOSequence uint8
	Status      uint8
}

// Announcer drives DIO publication on its Trickle timer and answers
// DIS solicitations with a rate-limited unicast DIO, per spec.md
// §4.11. Grounded on internal/mgmt's Announcer (same
// Trickle-driven-periodic-IE shape, here over RPL instead of PAN
// advertisement).
type Announcer struct {
	cfg     DODAGConfig
	dtsn    uint8
	trickle *trickle.Timer

	disCount  atomic.Int64
	disWindow atomic.Int64 // unix seconds of the current rate-limit window
	disLimit  int64
	now       func() time.Time
}

// NewAnnouncer builds an Announcer for cfg, publishing at most
// disPerSecond unicast DIO responses per second to DIS solicitations.
func NewAnnouncer(cfg DODAGConfig, t *trickle.Timer, disPerSecond int64) *Announcer {
	return &Announcer{cfg: cfg, trickle: t, disLimit: disPerSecond, now: time.Now}
}

// BuildDIO assembles the current DIO, with rank fixed at
// MinHopRankIncrease (the root is always rank 1 hop) and DTSN
// incremented by IncrementDTSN whenever a full re-advertisement of
// downward routes is required.
func (a *Announcer) BuildDIO() DIOMessage {
	return DIOMessage{
		InstanceID:      a.cfg.InstanceID,
		DODAGID:         a.cfg.DODAGID,
		DODAGVersion:    a.cfg.DODAGVersion,
		Rank:            MinHopRankIncrease,
		ModeOfOperation: ModeOfOperationNonStoring,
		OCP:             ObjectiveCodePointMRHOF,
		PCS:             a.cfg.PCS,
		LifetimeUnit:    a.cfg.LifetimeUnit,
		DefaultLifetime: a.cfg.DefaultLifetime,
		DTSN:            a.dtsn,
	}
}

// IncrementDTSN bumps the DODAG Trickle Sequence Number, signalling to
// children that they should re-issue DAOs (RFC 6550 §7.2).
func (a *Announcer) IncrementDTSN() {
	a.dtsn++
	a.trickle.Inconsistent()
}

// ShouldTransmit reports whether the DIO Trickle timer permits a
// transmission this interval.
func (a *Announcer) ShouldTransmit() bool { return a.trickle.ShouldTransmit() }

// HandleDIS processes a DIS solicitation, returning a unicast DIO to
// send in reply and true, or false if the per-second rate limit for
// DIS responses has been exhausted.
func (a *Announcer) HandleDIS() (DIOMessage, bool) {
	now := a.now().Unix()
	window := a.disWindow.Load()
	if now != window {
		a.disWindow.Store(now)
		a.disCount.Store(0)
	}
	if a.disCount.Add(1) > a.disLimit {
		return DIOMessage{}, false
	}
	return a.BuildDIO(), true
}

// BuildDAOACK assembles a DAO-ACK for a DAO that set the 'K' flag.
func BuildDAOACK(instanceID uint8, dodagID netip.Addr, daoSequence uint8, status uint8) DAOACK {
	return DAOACK{InstanceID: instanceID, DODAGID: dodagID, DAOSequence: daoSequence, Status: status}
}
