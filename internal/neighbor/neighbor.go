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

// Package neighbor is the EUI-64-indexed peer table: bounded capacity
// with oldest-stale eviction, ETX/RSL smoothing, and lifecycle
// callbacks for the Authenticator and RPL root (spec.md §4.5).
package neighbor

import (
	"sync"
	"time"
)

// EUI64 identifies a neighbor.
type EUI64 [8]byte

// rslAlpha is the smoothing weight in RSL_new = (1-α)·RSL_old + α·RSSI.
const rslAlpha = 1.0 / 8.0

// Neighbor is one peer's tracked state. Callers must not mutate a
// Neighbor obtained from the table in place; go through Table's
// methods so lastSeen/eviction bookkeeping stays correct.
type Neighbor struct {
	EUI64 EUI64

	RSL float64 // smoothed received signal level, dBm
	ETX float64 // smoothed expected transmission count

	FrameCounterMin map[uint8]uint32 // per key index, persisted floor
	LastRxCounter   map[uint8]uint32 // per key index, last accepted

	firstSeen      time.Time
	lastSeen       time.Time
	lastSecureFrame time.Time
}

// HasFreshSecureFrame reports whether n has had a successfully-parsed
// secured frame within staleAfter of now; the table's eviction policy
// only ever evicts neighbors for which this is false.
func (n *Neighbor) HasFreshSecureFrame(now time.Time, staleAfter time.Duration) bool {
	return !n.lastSecureFrame.IsZero() && now.Sub(n.lastSecureFrame) < staleAfter
}

// Table is the bounded, EUI-64-indexed neighbor table.
type Table struct {
	mu sync.Mutex

	capacity   int
	staleAfter time.Duration
	now        func() time.Time

	entries map[EUI64]*Neighbor

	onAdd []func(*Neighbor)
	onDel []func(*Neighbor)
}

// New builds a Table bounded to capacity entries; staleAfter is the
// window used by the oldest-stale eviction policy.
func New(capacity int, staleAfter time.Duration) *Table {
	return &Table{
		capacity:   capacity,
		staleAfter: staleAfter,
		now:        time.Now,
		entries:    make(map[EUI64]*Neighbor),
	}
}

// OnAdd registers a callback invoked (synchronously, under no lock)
// whenever a neighbor is created.
func (t *Table) OnAdd(f func(*Neighbor)) { t.onAdd = append(t.onAdd, f) }

// OnDel registers a callback invoked whenever a neighbor is removed,
// whether by eviction or explicit Delete.
func (t *Table) OnDel(f func(*Neighbor)) { t.onDel = append(t.onDel, f) }

// Len reports the current neighbor count.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Get returns the neighbor for eui64, if any.
func (t *Table) Get(eui64 EUI64) (*Neighbor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.entries[eui64]
	return n, ok
}

// EnsureAdmitted returns the existing neighbor for eui64, or creates
// one — evicting the oldest stale neighbor first if the table is at
// capacity. It returns ok=false (and no neighbor) if the table is full
// and every current neighbor has a fresh secure frame, per spec.md
// §4.5: "Insertions succeed until capacity; beyond that, admission
// requires evicting the oldest neighbor without a fresh secure frame."
func (t *Table) EnsureAdmitted(eui64 EUI64) (*Neighbor, bool) {
	t.mu.Lock()
	if n, ok := t.entries[eui64]; ok {
		n.lastSeen = t.now()
		t.mu.Unlock()
		return n, true
	}
	if len(t.entries) >= t.capacity {
		victim := t.oldestStaleLocked()
		if victim == nil {
			t.mu.Unlock()
			return nil, false
		}
		delete(t.entries, victim.EUI64)
		t.mu.Unlock()
		t.notifyDel(victim)
		t.mu.Lock()
	}
	now := t.now()
	n := &Neighbor{
		EUI64:           eui64,
		FrameCounterMin: make(map[uint8]uint32),
		LastRxCounter:   make(map[uint8]uint32),
		firstSeen:       now,
		lastSeen:        now,
	}
	t.entries[eui64] = n
	t.mu.Unlock()
	t.notifyAdd(n)
	return n, true
}

// oldestStaleLocked returns the neighbor with the earliest lastSeen
// among those without a fresh secure frame, or nil if none qualify.
// Callers must hold t.mu.
func (t *Table) oldestStaleLocked() *Neighbor {
	now := t.now()
	var oldest *Neighbor
	for _, n := range t.entries {
		if n.HasFreshSecureFrame(now, t.staleAfter) {
			continue
		}
		if oldest == nil || n.lastSeen.Before(oldest.lastSeen) {
			oldest = n
		}
	}
	return oldest
}

// Delete removes eui64 explicitly, invoking any OnDel callbacks.
func (t *Table) Delete(eui64 EUI64) {
	t.mu.Lock()
	n, ok := t.entries[eui64]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.entries, eui64)
	t.mu.Unlock()
	t.notifyDel(n)
}

func (t *Table) notifyAdd(n *Neighbor) {
	for _, f := range t.onAdd {
		f(n)
	}
}

func (t *Table) notifyDel(n *Neighbor) {
	for _, f := range t.onDel {
		f(n)
	}
}

// RecordSecureFrame marks eui64 as having just passed a secured-frame
// parse, refreshing both lastSeen and the fresh-secure-frame window.
func (t *Table) RecordSecureFrame(eui64 EUI64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.entries[eui64]; ok {
		now := t.now()
		n.lastSeen = now
		n.lastSecureFrame = now
	}
}

// UpdateRSL applies the standard smoothing formula RSL_new =
// (1-α)·RSL_old + α·RSSI, α=1/8 (spec.md §4.5). The first sample seeds
// RSL directly rather than smoothing against a zero baseline.
func (t *Table) UpdateRSL(eui64 EUI64, rssi float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.entries[eui64]
	if !ok {
		return
	}
	if n.firstSeen.Equal(n.lastSeen) && n.RSL == 0 {
		n.RSL = rssi
		return
	}
	n.RSL = (1-rslAlpha)*n.RSL + rslAlpha*rssi
}

// UpdateETX applies an EWMA update to the expected-transmission-count
// estimate for eui64 given the outcome of one frame (1.0 = delivered
// on the first try, higher values for frames needing retries).
func (t *Table) UpdateETX(eui64 EUI64, sample float64) {
	const etxAlpha = 1.0 / 8.0
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.entries[eui64]
	if !ok {
		return
	}
	if n.ETX == 0 {
		n.ETX = sample
		return
	}
	n.ETX = (1-etxAlpha)*n.ETX + etxAlpha*sample
}

// CheckFrameCounter validates candidate against eui64's persisted
// floor for keyIndex and, if it is acceptable, advances the floor.
// Returns false (without advancing anything) if candidate is not
// strictly greater than the last accepted counter, satisfying spec.md
// §8's testable property that frame_counter_min is strictly monotonic.
func (t *Table) CheckFrameCounter(eui64 EUI64, keyIndex uint8, candidate uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.entries[eui64]
	if !ok {
		return false
	}
	if last, seen := n.LastRxCounter[keyIndex]; seen && candidate <= last {
		return false
	}
	n.LastRxCounter[keyIndex] = candidate
	if candidate > n.FrameCounterMin[keyIndex] {
		n.FrameCounterMin[keyIndex] = candidate
	}
	return true
}

// SeedFrameCounterMin restores a persisted floor on startup, before
// any frame has been received in this process lifetime. It also seeds
// the runtime last-rx-counter gate, so CheckFrameCounter's first call
// this process enforces the persisted floor rather than accepting any
// value (spec.md's "strictly monotonic frame_counter_min across
// restarts" invariant).
func (t *Table) SeedFrameCounterMin(eui64 EUI64, keyIndex uint8, floor uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.entries[eui64]
	if !ok {
		return
	}
	if floor > n.FrameCounterMin[keyIndex] {
		n.FrameCounterMin[keyIndex] = floor
	}
	if last, seen := n.LastRxCounter[keyIndex]; !seen || floor > last {
		n.LastRxCounter[keyIndex] = floor
	}
}
