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

// Package eapol relays EAPOL frames between mesh supplicants and the
// border router's authenticator: upstream frames are tagged with the
// originating supplicant's identity and handed to the authenticator,
// downstream frames are routed back out to the supplicant's mesh
// address.
package eapol

import (
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrBusy is returned by SendDownstream when a frame is still
// in-flight for the target supplicant, per spec.md §4.10's "no
// queueing beyond one in-flight frame per supplicant".
var ErrBusy = errors.New("eapol: frame already in flight for this supplicant")

// EUI64 identifies a mesh supplicant.
type EUI64 [8]byte

// BSI is the Broadcast Schedule Identifier of the PAN the frame
// arrived on or is destined for.
type BSI uint16

// Upstream is an EAPOL frame received from a mesh supplicant, tagged
// with the identity the authenticator needs to route its reply.
type Upstream struct {
	Supplicant EUI64
	BSI        BSI
	Frame      []byte
}

// MeshSender transmits an EAPOL frame to a supplicant's mesh address.
// The concrete implementation is the RCP TX path (internal/rcp); kept
// as an interface here so the relay has no transport dependency.
type MeshSender interface {
	SendEAPOL(supplicant EUI64, frame []byte) error
}

// AuthenticatorSink delivers an upstream EAPOL frame to the
// authenticator for processing.
type AuthenticatorSink interface {
	HandleEAPOL(u Upstream) error
}

// inflight tracks whether a supplicant currently has a downstream
// frame outstanding.
type inflight struct {
	mu   sync.Mutex
	busy map[EUI64]bool
}

func newInflight() *inflight {
	return &inflight{busy: make(map[EUI64]bool)}
}

func (f *inflight) tryStart(eui64 EUI64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy[eui64] {
		return false
	}
	f.busy[eui64] = true
	return true
}

func (f *inflight) clear(eui64 EUI64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.busy, eui64)
}

// Relay forwards EAPOL frames in both directions. Upstream frames are
// dispatched to a fixed worker pool (mirroring the teacher's
// pre-created-worker pattern) so a slow authenticator call cannot
// stall frame reception; downstream sends are synchronous and
// at-most-once per spec.md §4.10.
type Relay struct {
	Sender  MeshSender
	Sink    AuthenticatorSink
	Workers int

	tasks    chan Upstream
	inflight *inflight
	wg       sync.WaitGroup
}

// NewRelay builds a Relay with the given worker pool size. workers
// defaults to 1 if <= 0.
func NewRelay(sender MeshSender, sink AuthenticatorSink, workers int) *Relay {
	if workers <= 0 {
		workers = 1
	}
	return &Relay{
		Sender:   sender,
		Sink:     sink,
		Workers:  workers,
		tasks:    make(chan Upstream, workers),
		inflight: newInflight(),
	}
}

// Start launches the upstream worker pool. Call Stop to drain it.
func (r *Relay) Start() {
	for i := 0; i < r.Workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

// Stop closes the task queue and waits for in-flight workers to
// finish their current task.
func (r *Relay) Stop() {
	close(r.tasks)
	r.wg.Wait()
}

func (r *Relay) worker() {
	defer r.wg.Done()
	for u := range r.tasks {
		if err := r.Sink.HandleEAPOL(u); err != nil {
			log.Errorf("[eapol] authenticator rejected frame from %x: %v", u.Supplicant, err)
		}
	}
}

// ReceiveUpstream enqueues a frame received from the mesh for
// delivery to the authenticator. It never blocks the caller on the
// authenticator's processing time.
func (r *Relay) ReceiveUpstream(u Upstream) {
	select {
	case r.tasks <- u:
	default:
		log.Warningf("[eapol] upstream queue full, dropping frame from %x", u.Supplicant)
	}
}

// SendDownstream routes an EAPOL frame from the authenticator out to
// supplicant over the mesh. Returns ErrBusy if a prior frame to the
// same supplicant is still in flight. The in-flight marker is cleared
// either by AckDownstream (the expected reply arrived, or the
// authenticator gave up) or immediately if the send itself fails, since
// a send failure has no pending reply to wait for.
func (r *Relay) SendDownstream(supplicant EUI64, frame []byte) error {
	if !r.inflight.tryStart(supplicant) {
		return ErrBusy
	}
	if err := r.Sender.SendEAPOL(supplicant, frame); err != nil {
		r.inflight.clear(supplicant)
		return err
	}
	return nil
}

// AckDownstream clears the in-flight marker for supplicant, per
// spec.md §4.10: retries past the single in-flight frame are the
// authenticator's responsibility, not the relay's.
func (r *Relay) AckDownstream(supplicant EUI64) {
	r.inflight.clear(supplicant)
}
