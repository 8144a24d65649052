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

// Package timer distributes a single 50ms global tick to named timer
// channels (MPL, RPL, IPv6 destination/route cache, fragmentation,
// ICMP, 6LoWPAN ND, ETX, adaptation, neighbor, reachable time, Wi-SUN
// common, PAE, DHCPv6, LTS), dispatched strictly serially per
// spec.md §4.12.
package timer

import (
	"sort"
	"time"
)

// TickInterval is the global tick period (spec.md §4.12).
const TickInterval = 50 * time.Millisecond

// Handler is invoked when a channel's period elapses. now is the
// logical tick time, not wall-clock time, so handlers stay
// deterministic under test.
type Handler func(now time.Time)

// channel is one named timer's registered period and countdown state.
type channel struct {
	name      string
	periodRef uint32
	periodic  bool
	remaining uint32
	handler   Handler
	fired     bool
}

// Base dispatches the global tick to registered named channels in a
// fixed, deterministic order, never concurrently — one handler runs to
// completion before the next is invoked, matching spec.md §4.12's
// "dispatch is strictly serial."
type Base struct {
	channels map[string]*channel
	order    []string
	tick     uint64
}

// NewBase builds an empty tick dispatcher.
func NewBase() *Base {
	return &Base{channels: make(map[string]*channel)}
}

// Register adds a named channel firing every period (rounded down to
// whole ticks, minimum one tick). If periodic, it re-arms after firing;
// otherwise it fires once and then stays registered without firing
// again (Pending reports false) until Unregister removes it.
func (b *Base) Register(name string, period time.Duration, periodic bool, h Handler) {
	ticks := uint32(period / TickInterval)
	if ticks == 0 {
		ticks = 1
	}
	b.channels[name] = &channel{name: name, periodRef: ticks, periodic: periodic, remaining: ticks, handler: h}
	b.order = append(b.order, name)
	sort.Strings(b.order)
}

// Unregister removes a named channel, e.g. when a feature it serves is
// disabled at runtime.
func (b *Base) Unregister(name string) {
	delete(b.channels, name)
	for i, n := range b.order {
		if n == name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Tick advances every registered channel by one global tick, firing
// any whose countdown reaches zero, in a fixed name-sorted order.
func (b *Base) Tick(now time.Time) {
	b.tick++
	var fired []string
	for _, name := range b.order {
		ch := b.channels[name]
		if ch.remaining == 0 {
			continue
		}
		ch.remaining--
		if ch.remaining == 0 {
			ch.fired = true
			fired = append(fired, name)
		}
	}
	for _, name := range fired {
		ch, ok := b.channels[name]
		if !ok {
			continue
		}
		ch.handler(now)
		if ch.periodic {
			ch.remaining = ch.periodRef
			ch.fired = false
		}
	}
}

// TickCount reports how many ticks have been dispatched.
func (b *Base) TickCount() uint64 { return b.tick }

// Pending reports whether name is still armed to fire (false once a
// one-shot channel has fired and not been re-registered).
func (b *Base) Pending(name string) bool {
	ch, ok := b.channels[name]
	return ok && !ch.fired
}
