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

// Package rpl implements the non-storing DODAG root: DIO
// advertisement, DAO ingestion into a target/transit graph, host route
// injection, and periodic garbage collection.
package rpl

import (
	"net/netip"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// MinHopRankIncrease is the root's advertised rank (RFC 6550 §3.5.1);
// the root is always rank MIN_HOP_RANK_INC.
const MinHopRankIncrease = 128

// RouteInjector abstracts host kernel route manipulation so this
// package can be tested without netlink access. The concrete
// implementation (netlink.go) is grounded on
// responder/server/ip.go's rtnl usage.
type RouteInjector interface {
	AddRoute(prefix netip.Prefix, via netip.Addr) error
	DelRoute(prefix netip.Prefix) error
}

// Transit is one (transit_parent, path_lifetime, path_sequence) entry
// for a DAO target, i.e. one hop of the non-storing source route
// toward a descendant.
type Transit struct {
	Parent       netip.Addr
	PathSequence uint8
	installedAt  time.Time
	lifetime     time.Duration
}

func (t Transit) expired(now time.Time) bool {
	return now.Sub(t.installedAt) >= t.lifetime
}

// Target is a DAO Target option's resolved state: the prefix plus the
// transit(s) that can currently reach it.
type Target struct {
	Prefix   netip.Prefix
	Transits []Transit
}

// DAO is a parsed DAO message: one or more Target options, each paired
// with the Transit Information that follows it in the message, per
// spec.md §4.11.
type DAO struct {
	Targets []Target
	KFlag   bool
}

// DODAG owns the target→transit graph for a single non-storing DODAG
// instance and injects/removes host routes as targets come and go.
type DODAG struct {
	mu      sync.Mutex
	targets map[netip.Prefix]*Target
	router  RouteInjector

	lifetimeUnit time.Duration
}

// NewDODAG builds an empty DODAG. lifetimeUnit scales DAO path
// lifetimes into a time.Duration (RFC 6550's lifetime unit, seconds by
// default).
func NewDODAG(router RouteInjector, lifetimeUnit time.Duration) *DODAG {
	return &DODAG{
		targets:      make(map[netip.Prefix]*Target),
		router:       router,
		lifetimeUnit: lifetimeUnit,
	}
}

// IngestTarget applies one (prefix, parent, pathLifetime, pathSequence)
// tuple from a DAO message, per spec.md §4.11: insert if new; if
// path_sequence is newer than the stored one (lollipop compare),
// replace; otherwise drop the update.
func (d *DODAG) IngestTarget(prefix netip.Prefix, parent netip.Addr, pathLifetimeUnits uint16, pathSequence uint8, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	lifetime := time.Duration(pathLifetimeUnits) * d.lifetimeUnit
	newTransit := Transit{Parent: parent, PathSequence: pathSequence, installedAt: now, lifetime: lifetime}

	tgt, ok := d.targets[prefix]
	if !ok {
		tgt = &Target{Prefix: prefix}
		d.targets[prefix] = tgt
		tgt.Transits = append(tgt.Transits, newTransit)
		d.injectRoute(tgt, parent)
		return
	}

	for i, tr := range tgt.Transits {
		if tr.Parent == parent {
			if !NewerPathSequence(pathSequence, tr.PathSequence) {
				return
			}
			tgt.Transits[i] = newTransit
			return
		}
	}
	tgt.Transits = append(tgt.Transits, newTransit)
}

func (d *DODAG) injectRoute(tgt *Target, via netip.Addr) {
	if d.router == nil {
		return
	}
	if err := d.router.AddRoute(tgt.Prefix, via); err != nil {
		log.Errorf("[rpl] route injection failed for %s via %s: %v", tgt.Prefix, via, err)
	}
}

// GC removes transits whose lifetime has elapsed and, for any target
// left with no transits, removes the target and withdraws its route.
func (d *DODAG) GC(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for prefix, tgt := range d.targets {
		kept := tgt.Transits[:0]
		for _, tr := range tgt.Transits {
			if !tr.expired(now) {
				kept = append(kept, tr)
			}
		}
		tgt.Transits = kept
		if len(tgt.Transits) == 0 {
			delete(d.targets, prefix)
			if d.router != nil {
				if err := d.router.DelRoute(prefix); err != nil {
					log.Errorf("[rpl] route removal failed for %s: %v", prefix, err)
				}
			}
		}
	}
}

// Target returns the current resolved state for prefix, if any.
func (d *DODAG) Target(prefix netip.Prefix) (Target, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tgt, ok := d.targets[prefix]
	if !ok {
		return Target{}, false
	}
	cp := *tgt
	cp.Transits = append([]Transit(nil), tgt.Transits...)
	return cp, ok
}

// Len reports the number of currently resolved targets.
func (d *DODAG) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.targets)
}
