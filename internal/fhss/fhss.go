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

// Package fhss tracks frequency-hopping schedules: the border router's
// own unicast/broadcast schedule, and two schedules per neighbor — one
// fed only by frames that passed security, one fed by any frame at
// all — so an unauthenticated peer can never steer the router's own
// transmit timing (spec.md §4.4).
package fhss

import (
	"github.com/MathisMARION/wisun-br-linux/internal/ie"
)

// EUI64 identifies a neighbor's schedule.
type EUI64 [8]byte

// Schedule is one side's view of a unicast or broadcast hopping plan,
// folding together what US-IE/BS-IE/UTT-IE/BT-IE carry.
type Schedule struct {
	ChannelFunction ie.ChannelFunction
	ChannelPlanID   uint8
	FixedChannel    uint16
	DwellIntervalMs uint8
	Exclude         ie.ExcludedChannels

	// Broadcast-only fields; zero for a unicast schedule.
	BroadcastIntervalMs uint32
	BroadcastScheduleID uint16

	// UFSI/BT timing offsets, present once a UTT-IE/BT-IE has been seen.
	SlotNumber uint16
	Offset     uint32
}

// Pusher is the subset of the RCP client fhss needs: pushing the
// host's own timing and per-neighbor timing. Satisfied by
// *rcp.Client via small adapter methods in internal/wsbr; kept as an
// interface here so this package does not import internal/rcp.
type Pusher interface {
	PushOwnTimings(Schedule) error
	PushNeighborTimings(EUI64, Schedule) error
	DropNeighbor(EUI64) error
}

type neighborEntry struct {
	secured, unsecured *Schedule
}

// Manager owns the own schedule and every neighbor's secured/unsecured
// schedules, and is the single place that normalises channel exclusion
// against the regulatory mask before anything is advertised or pushed
// to the RCP.
type Manager struct {
	regMask RegMask
	pusher  Pusher

	ownUnicast   Schedule
	ownBroadcast Schedule
	neighbors    map[EUI64]*neighborEntry
}

// NewManager builds a Manager for the given regulatory channel mask.
func NewManager(regMask RegMask, pusher Pusher) *Manager {
	return &Manager{regMask: regMask, pusher: pusher, neighbors: make(map[EUI64]*neighborEntry)}
}

// SetOwnUnicast updates the router's own unicast schedule, intersects
// its exclusions with the regulatory mask, and pushes the result.
func (m *Manager) SetOwnUnicast(s Schedule) error {
	s.Exclude = Normalize(s.Exclude, m.regMask)
	m.ownUnicast = s
	return m.pusher.PushOwnTimings(s)
}

// SetOwnBroadcast updates the router's own broadcast schedule the same way.
func (m *Manager) SetOwnBroadcast(s Schedule) error {
	s.Exclude = Normalize(s.Exclude, m.regMask)
	m.ownBroadcast = s
	return m.pusher.PushOwnTimings(s)
}

// OwnUnicast returns the current own unicast schedule.
func (m *Manager) OwnUnicast() Schedule { return m.ownUnicast }

// OwnBroadcast returns the current own broadcast schedule.
func (m *Manager) OwnBroadcast() Schedule { return m.ownBroadcast }

// UpdateNeighbor records a newly-seen schedule for eui64. secured must
// be true only for frames whose MIC the RCP has already validated
// (spec.md §4.4); an unsecured update never overwrites a secured one,
// and is only ever consulted before the neighbor authenticates.
func (m *Manager) UpdateNeighbor(eui64 EUI64, s Schedule, secured bool) error {
	s.Exclude = Normalize(s.Exclude, m.regMask)
	e, ok := m.neighbors[eui64]
	if !ok {
		e = &neighborEntry{}
		m.neighbors[eui64] = e
	}
	if secured {
		e.secured = &s
		return m.pusher.PushNeighborTimings(eui64, s)
	}
	e.unsecured = &s
	return nil
}

// Promote discards a neighbor's unsecured schedule once it has
// authenticated and its secured schedule has taken over; it is a
// no-op if no unsecured schedule was ever recorded.
func (m *Manager) Promote(eui64 EUI64) {
	if e, ok := m.neighbors[eui64]; ok {
		e.unsecured = nil
	}
}

// NeighborSchedule returns the schedule that should govern TX timing
// to eui64: the secured one if present, else the unsecured one, else
// ok is false. Once a neighbor has a secured schedule the unsecured
// one is never consulted again even if it is later refreshed, per
// spec.md §4.4's split.
func (m *Manager) NeighborSchedule(eui64 EUI64) (Schedule, bool) {
	e, ok := m.neighbors[eui64]
	if !ok {
		return Schedule{}, false
	}
	if e.secured != nil {
		return *e.secured, true
	}
	if e.unsecured != nil {
		return *e.unsecured, true
	}
	return Schedule{}, false
}

// DropNeighbor removes eui64's schedules entirely and tells the RCP.
func (m *Manager) DropNeighbor(eui64 EUI64) error {
	delete(m.neighbors, eui64)
	return m.pusher.DropNeighbor(eui64)
}
