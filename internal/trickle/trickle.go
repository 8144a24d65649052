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

// Package trickle implements the Trickle timer algorithm (RFC 6206) as
// used for PA/PAS/PC/PCS, DIO, and MPL forwarding in spec.md §4.6: a
// multi-instance, config/state-split timer where each instance decides
// independently whether to suppress its next transmission.
package trickle

import "math/rand"

// Config is an instance's static tunables: minimum interval, the
// number of doublings allowed before the interval caps out, and the
// redundancy constant k.
type Config struct {
	IminMs      uint32
	ImaxDoublings uint8
	K           uint8
}

// Timer is one Trickle instance's mutable state, split from Config the
// way servo.Servo separates static tunables from per-update state.
type Timer struct {
	cfg Config

	iCurrentMs uint32
	c          uint8
	tInIntervalMs uint32

	rng *rand.Rand
}

// New builds a Timer at Imin, matching the state a fresh or
// just-reset instance has: c=0 and I=Imin.
func New(cfg Config, rng *rand.Rand) *Timer {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	t := &Timer{cfg: cfg, rng: rng}
	t.iCurrentMs = cfg.IminMs
	t.pickT()
	return t
}

// imaxMs is the interval ceiling: Imin doubled ImaxDoublings times.
func (t *Timer) imaxMs() uint32 {
	v := uint64(t.cfg.IminMs)
	for i := uint8(0); i < t.cfg.ImaxDoublings; i++ {
		v *= 2
	}
	return uint32(v)
}

// pickT chooses t uniformly in [I/2, I), the point within the current
// interval at which ShouldTransmit becomes meaningful.
func (t *Timer) pickT() {
	half := t.iCurrentMs / 2
	span := t.iCurrentMs - half
	if span == 0 {
		t.tInIntervalMs = half
		return
	}
	t.tInIntervalMs = half + uint32(t.rng.Int63n(int64(span)))
}

// IntervalMs returns the current interval length I.
func (t *Timer) IntervalMs() uint32 { return t.iCurrentMs }

// TMs returns this interval's chosen transmission point t.
func (t *Timer) TMs() uint32 { return t.tInIntervalMs }

// ShouldTransmit reports whether, at interval-point t, this instance
// transmits: it does unless c has already reached k (spec.md §4.6:
// "if c < k, transmit at t (else suppress)").
func (t *Timer) ShouldTransmit() bool { return t.c < t.cfg.K }

// Consistent increments the redundancy counter c: call once per
// consistent transmission overheard from another speaker in this
// interval.
func (t *Timer) Consistent() { t.c++ }

// EndInterval advances I toward Imax and resets c, then repicks t —
// the transition spec.md §4.6 describes as "I <- min(2*I, Imax); c <-
// 0" at interval end.
func (t *Timer) EndInterval() {
	doubled := uint64(t.iCurrentMs) * 2
	if imax := uint64(t.imaxMs()); doubled > imax {
		doubled = imax
	}
	t.iCurrentMs = uint32(doubled)
	t.c = 0
	t.pickT()
}

// Inconsistent resets I to Imin (unless it is already there) and
// restarts the interval, per spec.md §4.6.
func (t *Timer) Inconsistent() {
	if t.iCurrentMs == t.cfg.IminMs {
		return
	}
	t.reset()
}

// Reset is Inconsistent's idempotent variant: it always resets I to
// Imin and restarts, even if I is already Imin.
func (t *Timer) Reset() { t.reset() }

func (t *Timer) reset() {
	t.iCurrentMs = t.cfg.IminMs
	t.c = 0
	t.pickT()
}
