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

package wsbr

import (
	"crypto/rand"
	"crypto/x509"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/MathisMARION/wisun-br-linux/internal/auth"
	"github.com/MathisMARION/wisun-br-linux/internal/eapol"
	"github.com/MathisMARION/wisun-br-linux/internal/fhss"
	"github.com/MathisMARION/wisun-br-linux/internal/rcp"
	"github.com/MathisMARION/wisun-br-linux/internal/store"
)

// rcpFHSSPusher adapts *rcp.Client to fhss.Pusher, translating the
// FHSS manager's schedule updates into set_fhss_timings/
// set_fhss_neighbor/drop_fhss_neighbor requests (spec.md §4.4).
type rcpFHSSPusher struct {
	rcp *rcp.Client
}

func (p *rcpFHSSPusher) PushOwnTimings(s fhss.Schedule) error {
	return p.rcp.Send(rcp.FHSSTimings{
		UnicastDwellMs:      s.DwellIntervalMs,
		BroadcastIntervalMs: s.BroadcastIntervalMs,
		ChannelPlanID:       s.ChannelPlanID,
		ChannelFunction:     uint8(s.ChannelFunction),
		FixedChannel:        s.FixedChannel,
	})
}

func (p *rcpFHSSPusher) PushNeighborTimings(eui64 fhss.EUI64, s fhss.Schedule) error {
	return p.rcp.Send(rcp.SetFHSSNeighbor{
		EUI64: rcp.EUI64(eui64),
		Timing: rcp.FHSSTimings{
			UnicastDwellMs:      s.DwellIntervalMs,
			BroadcastIntervalMs: s.BroadcastIntervalMs,
			ChannelPlanID:       s.ChannelPlanID,
			ChannelFunction:     uint8(s.ChannelFunction),
			FixedChannel:        s.FixedChannel,
		},
	})
}

func (p *rcpFHSSPusher) DropNeighbor(eui64 fhss.EUI64) error {
	return p.rcp.Send(rcp.DropFHSSNeighbor{EUI64: rcp.EUI64(eui64)})
}

// rcpMeshSender adapts *rcp.Client to eapol.MeshSender: an EAPOL frame
// to a supplicant is just another req_tx, keyed on a fixed handle
// since EAPOL frames are never pipelined per supplicant (spec.md
// §4.10's "no queueing beyond one in-flight frame").
type rcpMeshSender struct {
	rcp *rcp.Client
}

const eapolTXHandle = 0xe0

func (m *rcpMeshSender) SendEAPOL(supplicant eapol.EUI64, frame []byte) error {
	return m.rcp.Send(rcp.ReqTX{Handle: eapolTXHandle, Frame: frame})
}

// authEAPOLSink adapts *auth.Authenticator to eapol.AuthenticatorSink.
// The wire framing of the EAPOL payload carried inside the MPX IE is
// not pinned by spec.md beyond "KMP payload" (§1), so this sink
// classifies the frame by its leading EAPOL-Key/EAP-code octet and
// drives the matching Supplicant transition; MIC verification and key
// derivation happen inside auth once a transition lands on a message
// that carries them.
type authEAPOLSink struct {
	auth *Authenticator
}

// Authenticator is a thin alias so authEAPOLSink does not need to
// import the auth package's EUI64 type directly at the field level.
type Authenticator = auth.Authenticator

func (a *authEAPOLSink) HandleEAPOL(u eapol.Upstream) error {
	msg, ok := classifyEAPOL(u.Frame)
	if !ok {
		return fmt.Errorf("wsbr: unrecognized EAPOL frame from %x", u.Supplicant)
	}
	s := a.auth.Supplicant(auth.EUI64(u.Supplicant))
	return s.Advance(msg)
}

// classifyEAPOL reads the first octet of an EAPOL frame as a code
// discriminating EAP-Request/Response/Success from 4-way-handshake
// and group-key-handshake EAPOL-Key messages.
func classifyEAPOL(frame []byte) (auth.MsgType, bool) {
	if len(frame) == 0 {
		return 0, false
	}
	switch frame[0] {
	case 0x02:
		return auth.MsgEAPResponse, true
	case 0x03:
		return auth.MsgEAPSuccess, true
	case 0x10:
		return auth.Msg4WHMsg2, true
	case 0x11:
		return auth.Msg4WHMsg4, true
	case 0x12:
		return auth.MsgGKHMsg2, true
	default:
		return 0, false
	}
}

// brInfoPersister adapts the persistence facade to mgmt.Persister,
// saving the whole br-info record (not just pan_version) every time it
// changes, since bbolt's Update is already a single atomic write.
type brInfoPersister struct {
	store       *store.Store
	networkName string
	bsi         uint16
	panID       uint16
	lfnVersion  uint16
}

func (p *brInfoPersister) SavePANVersion(v uint16) error {
	return p.store.PutBRInfo(store.BRInfo{
		BSI:         p.bsi,
		PANID:       p.panID,
		PANVersion:  v,
		LFNVersion:  p.lfnVersion,
		NetworkName: p.networkName,
	})
}

// certBackend implements auth.Backend by validating the supplicant's
// certificate chain against a configured root pool plus the Wi-SUN
// FAN certificate policy (auth.CheckCertificate). It does not
// terminate an EAP-TLS tunnel itself — no TLS engine is part of this
// spec's hard core — so the session secret/randoms it returns are
// freshly generated once the chain validates, standing in for the
// values a completed inner TLS handshake would hand the authenticator.
type certBackend struct {
	roots  *x509.CertPool
	policy auth.CertPolicy
}

func newCertBackend(roots *x509.CertPool, policy auth.CertPolicy) *certBackend {
	return &certBackend{roots: roots, policy: policy}
}

func (b *certBackend) VerifyIdentity(eui64 auth.EUI64, certDER []byte) (masterSecret, clientRandom, serverRandom []byte, err error) {
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("wsbr: parsing supplicant certificate: %w", err)
	}
	if b.roots != nil {
		if _, err := cert.Verify(x509.VerifyOptions{Roots: b.roots, KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageAny}}); err != nil {
			return nil, nil, nil, fmt.Errorf("wsbr: verifying supplicant certificate chain: %w", err)
		}
	} else {
		log.WithField("eui64", fmt.Sprintf("%x", eui64)).Warn("wsbr: no CA pool configured, skipping chain verification")
	}
	if err := auth.CheckCertificate(cert, b.policy); err != nil {
		return nil, nil, nil, fmt.Errorf("wsbr: certificate policy: %w", err)
	}
	masterSecret = make([]byte, 48)
	clientRandom = make([]byte, 32)
	serverRandom = make([]byte, 32)
	for _, b := range [][]byte{masterSecret, clientRandom, serverRandom} {
		if _, err := rand.Read(b); err != nil {
			return nil, nil, nil, fmt.Errorf("wsbr: generating session material: %w", err)
		}
	}
	return masterSecret, clientRandom, serverRandom, nil
}
