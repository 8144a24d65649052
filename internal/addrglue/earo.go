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

package addrglue

import (
	"net/netip"
	"sync"
	"time"
)

// EARO status codes (RFC 8505 §5.1), returned in the NA's Address
// Registration Option in reply to an NS carrying an EARO.
type EARO uint8

const (
	EAROSuccess                                EARO = 0
	EARODuplicateAddress                       EARO = 1
	EARONeighborCacheFull                      EARO = 2
	EAROMoved                                  EARO = 3
	EARORemoved                                EARO = 4
	EAROValidationRequested                    EARO = 5
	EARODuplicateSourceAddress                 EARO = 6
	EAROInvalidSourceAddress                   EARO = 7
	EARORegisteredAddressTopologicallyIncorrect EARO = 8
	EARO6LBRRegistrySaturated                  EARO = 9
	EAROValidationFailed                       EARO = 10
)

// EUI64 identifies a registering node.
type EUI64 [8]byte

type registration struct {
	eui64      EUI64
	addr       netip.Addr
	expiresAt  time.Time
}

// Registry is the border router's 6LBR address-registration table: it
// answers each NS+EARO with a status per RFC 8505, bounded by
// capacity (spec.md §5's "bounded capacity" discipline).
type Registry struct {
	mu       sync.Mutex
	entries  map[EUI64]registration
	byAddr   map[netip.Addr]EUI64
	capacity int
	now      func() time.Time
}

// NewRegistry builds a Registry bounded at capacity entries.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		entries:  make(map[EUI64]registration),
		byAddr:   make(map[netip.Addr]EUI64),
		capacity: capacity,
		now:      time.Now,
	}
}

// Register processes one NS+EARO registration attempt, returning the
// EARO status to echo back in the NA.
//
// lifetimeMinutes == 0 is a de-registration request (RFC 8505 §5.2):
// the entry is removed and EAROSuccess (or EARORemoved if it existed)
// is returned.
func (r *Registry) Register(eui64 EUI64, addr netip.Addr, lifetimeMinutes uint16) EARO {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lifetimeMinutes == 0 {
		existing, ok := r.entries[eui64]
		if !ok {
			return EAROSuccess
		}
		delete(r.entries, eui64)
		delete(r.byAddr, existing.addr)
		return EARORemoved
	}

	if owner, ok := r.byAddr[addr]; ok && owner != eui64 {
		return EARODuplicateAddress
	}

	if _, exists := r.entries[eui64]; !exists && len(r.entries) >= r.capacity {
		return EARONeighborCacheFull
	}

	if existing, ok := r.entries[eui64]; ok && existing.addr != addr {
		delete(r.byAddr, existing.addr)
	}

	r.entries[eui64] = registration{
		eui64:     eui64,
		addr:      addr,
		expiresAt: r.now().Add(time.Duration(lifetimeMinutes) * time.Minute),
	}
	r.byAddr[addr] = eui64
	return EAROSuccess
}

// GC removes expired registrations.
func (r *Registry) GC() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for eui64, reg := range r.entries {
		if !now.Before(reg.expiresAt) {
			delete(r.entries, eui64)
			delete(r.byAddr, reg.addr)
		}
	}
}

// Len reports the number of live registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Lookup returns the registered address for eui64, if any.
func (r *Registry) Lookup(eui64 EUI64) (netip.Addr, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.entries[eui64]
	return reg.addr, ok
}
