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

// Package auth implements the Wi-SUN FAN 1.1 border router's
// authenticator: EAP-TLS identity verification, the 4-way handshake,
// the group-key handshake, and GTK/LGTK lifecycle management.
package auth

import "sync"

const (
	numGTKSlots  = 4
	numLGTKSlots = 3
)

// Backend abstracts the EAP-TLS credential source: either a local
// mbedTLS-equivalent certificate verifier or a RADIUS relay (spec.md's
// optional RADIUS backend, EAP tunnelled per RFC 3579).
type Backend interface {
	// VerifyIdentity validates a supplicant's EAP-TLS certificate chain
	// and returns the TLS master secret and randoms to derive PMK from.
	VerifyIdentity(eui64 EUI64, certDER []byte) (masterSecret, clientRandom, serverRandom []byte, err error)
}

// Authenticator owns every joined supplicant's handshake state plus
// the shared GTK/LGTK key rotation, mirroring the single
// authenticator instance a Wi-SUN border router runs network-wide.
type Authenticator struct {
	mu sync.Mutex

	ownEUI64 EUI64
	backend  Backend
	policy   CertPolicy

	supplicants map[EUI64]*Supplicant
	gtks        *KeySet
	lgtks       *KeySet
}

// New builds an Authenticator bound to ownEUI64 (the border router's
// own EUI-64, used as the 4-way handshake's A-MAC).
func New(ownEUI64 EUI64, backend Backend, policy CertPolicy, gtkLifetimes, lgtkLifetimes Lifetimes) *Authenticator {
	return &Authenticator{
		ownEUI64:    ownEUI64,
		backend:     backend,
		policy:      policy,
		supplicants: make(map[EUI64]*Supplicant),
		gtks:        NewKeySet(numGTKSlots, gtkLifetimes),
		lgtks:       NewKeySet(numLGTKSlots, lgtkLifetimes),
	}
}

// Supplicant returns the tracked state for eui64, creating it in
// StateInit if this is the first message seen from that node.
func (a *Authenticator) Supplicant(eui64 EUI64) *Supplicant {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.supplicants[eui64]
	if !ok {
		s = NewSupplicant(eui64)
		a.supplicants[eui64] = s
	}
	return s
}

// Forget drops a supplicant's state, e.g. on de-association.
func (a *Authenticator) Forget(eui64 EUI64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.supplicants, eui64)
}

// GTKs and LGTKs expose the shared group-key slot arrays for the
// management layer (internal/mgmt) to read hashes from for PAN/PC IEs
// and for the EAPOL layer to read wrapped key material from.
func (a *Authenticator) GTKs() *KeySet  { return a.gtks }
func (a *Authenticator) LGTKs() *KeySet { return a.lgtks }

// TickKeys advances both GTK and LGTK slot lifecycles and installs a
// fresh key into either keyset that has entered its "new install
// required" window, returning the slot indices touched so the caller
// can push install messages to still-authenticated supplicants.
func (a *Authenticator) TickKeys() (freshGTKSlot, freshLGTKSlot int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.gtks.Tick()
	a.lgtks.Tick()

	freshGTKSlot, freshLGTKSlot = -1, -1
	if a.gtks.NeedsFreshInstall() {
		freshGTKSlot, err = a.gtks.InstallFresh()
		if err != nil {
			return -1, -1, err
		}
	}
	if a.lgtks.NeedsFreshInstall() {
		idx, lerr := a.lgtks.InstallFresh()
		if lerr != nil {
			return freshGTKSlot, -1, lerr
		}
		freshLGTKSlot = idx
	}
	return freshGTKSlot, freshLGTKSlot, nil
}

// WrapGroupKey wraps slot's key under supplicant eui64's derived KEK,
// for delivery in the group-key handshake's Message 1.
func (a *Authenticator) WrapGroupKey(eui64 EUI64, slot Slot) ([24]byte, error) {
	s := a.Supplicant(eui64)
	kek := PTKKeyEncryptionKey(s.PTK)
	return WrapGTK(kek, slot.Key)
}
