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

package auth

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// State is a step in a supplicant's authentication state machine, per
// spec.md §4.9's EAP-TLS + 4-way handshake + group-key handshake flow.
type State int

const (
	StateInit State = iota
	StateEAPTLS
	State4WHMsg1Sent
	State4WHMsg3Sent
	StateGroupKeyHandshake
	StateAuthenticated
)

// MsgType identifies an inbound message driving a Supplicant's state
// transitions.
type MsgType int

const (
	MsgEAPResponse MsgType = iota
	MsgEAPSuccess
	Msg4WHMsg2
	Msg4WHMsg4
	MsgGKHMsg2
)

// EUI64 identifies a supplicant by its link-layer address.
type EUI64 [8]byte

// Supplicant tracks one joining node's authentication progress and
// derived key material. One Supplicant exists per associated node for
// the lifetime of its session, mirroring the per-peer state the
// teacher's BMC/PTP session objects keep.
type Supplicant struct {
	EUI64 EUI64
	State State

	// TraceID correlates this supplicant's handshake log lines across
	// EAP-TLS, the 4-way handshake and the group-key handshake, the way
	// caddyhttp/requestid tags a request's lifetime with one uuid.
	TraceID uuid.UUID

	ANonce [32]byte
	SNonce [32]byte
	PMK    [48]byte
	PTK    [32]byte

	eapSuccessSeen bool
}

// NewSupplicant starts a fresh supplicant in StateInit.
func NewSupplicant(eui64 EUI64) *Supplicant {
	return &Supplicant{EUI64: eui64, State: StateInit, TraceID: uuid.New()}
}

// transitions enumerates the only (currentState, msg) pairs that
// advance the state machine; anything else is ErrUnexpectedMessage.
var transitions = map[State]map[MsgType]State{
	StateInit:              {MsgEAPResponse: StateEAPTLS},
	StateEAPTLS:            {MsgEAPResponse: StateEAPTLS, MsgEAPSuccess: State4WHMsg1Sent},
	State4WHMsg1Sent:       {Msg4WHMsg2: State4WHMsg3Sent},
	State4WHMsg3Sent:       {Msg4WHMsg4: StateGroupKeyHandshake},
	StateGroupKeyHandshake: {MsgGKHMsg2: StateAuthenticated},
}

// Advance validates and applies a state transition, returning
// ErrUnexpectedMessage if msg is not valid for the supplicant's
// current state (spec.md §4.9: "a message out of sequence for the
// supplicant's current state is rejected, not queued").
func (s *Supplicant) Advance(msg MsgType) error {
	next, ok := transitions[s.State][msg]
	if !ok {
		log.WithFields(log.Fields{"trace_id": s.TraceID, "state": s.State, "msg": msg}).Debug("auth: rejected out-of-sequence message")
		return ErrUnexpectedMessage
	}
	log.WithFields(log.Fields{"trace_id": s.TraceID, "from": s.State, "to": next}).Debug("auth: supplicant state transition")
	s.State = next
	return nil
}

// VerifyMIC checks frame's EAPOL MIC (at micOffset) against the
// supplicant's derived PTK key-confirmation key. Returns ErrBadMIC on
// mismatch.
func (s *Supplicant) VerifyMIC(frame []byte, micOffset int, gotMIC [16]byte) error {
	kck := PTKKeyConfirmationKey(s.PTK)
	want, err := EAPOLMIC(kck, frame, micOffset)
	if err != nil {
		return err
	}
	if want != gotMIC {
		return ErrBadMIC
	}
	return nil
}

// DeriveSessionKeys computes PMK and PTK for the supplicant from TLS
// master secret/randoms and both nonces, and stores them on s.
func (s *Supplicant) DeriveSessionKeys(masterSecret, clientRandom, serverRandom []byte, authMAC EUI64) {
	s.PMK = DerivePMK(masterSecret, clientRandom, serverRandom)
	s.PTK = DerivePTK(s.PMK[:], s.ANonce, s.SNonce, [8]byte(authMAC), [8]byte(s.EUI64))
}
