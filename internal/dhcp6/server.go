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

package dhcp6

import (
	"errors"
	"fmt"
)

// ErrUnsupportedRequest is returned for any request this server
// intentionally does not answer (anything but SOLICIT with rapid
// commit, or a RELAY-FORW wrapping one).
var ErrUnsupportedRequest = errors.New("dhcp6: unsupported request")

// Server answers DHCPv6 SOLICIT messages with a single IA_NA address
// derived from a fixed /64 prefix and the client's EUI-64, using rapid
// commit (RFC 3315 §17.1.4): no ADVERTISE round trip.
type Server struct {
	// Prefix is the leading 8 octets of every address this server
	// hands out.
	Prefix [8]byte
	// ServerHWAddr identifies this server in its own DUID-LL Server
	// Identifier option.
	ServerHWAddr [8]byte

	PreferredLifetime uint32
	ValidLifetime     uint32
}

// NewServer builds a Server with RFC 3315 §22.4-compatible infinite
// lifetimes unless overridden.
func NewServer(prefix, serverHWAddr [8]byte) *Server {
	return &Server{
		Prefix:            prefix,
		ServerHWAddr:      serverHWAddr,
		ValidLifetime:     0xFFFFFFFF,
		PreferredLifetime: 0xFFFFFFFF,
	}
}

// HandleRequest processes one received DHCPv6 message (SOLICIT or a
// RELAY-FORW wrapping one) and returns the reply to send back
// (REPLY or a RELAY-REPL wrapping one), or ErrUnsupportedRequest /a
// parse error for anything this server doesn't answer.
func (s *Server) HandleRequest(req []byte) ([]byte, error) {
	if len(req) < 1 {
		return nil, fmt.Errorf("dhcp6: empty message")
	}
	if req[0] == MsgRelayForward {
		return s.handleRelayForward(req)
	}
	if req[0] != MsgSolicit {
		return nil, fmt.Errorf("%w: message type %d", ErrUnsupportedRequest, req[0])
	}
	return s.handleSolicit(req)
}

// handleRelayForward unwraps a RELAY-FORW message, recurses into the
// inner message, and re-wraps the reply in a RELAY-REPL carrying the
// same link-address/peer-address and (if present) interface-id,
// mirroring dhcp_handle_request_fwd's echo-the-envelope behavior.
func (s *Server) handleRelayForward(req []byte) ([]byte, error) {
	if len(req) < 1+1+16+16 {
		return nil, fmt.Errorf("dhcp6: truncated RELAY-FORW header")
	}
	hopCount := req[1]
	linkAddr := req[2:18]
	peerAddr := req[18:34]

	opts, err := ParseOptions(req[34:])
	if err != nil {
		return nil, fmt.Errorf("dhcp6: parse RELAY-FORW options: %w", err)
	}

	relayOpt, ok := Get(opts, OptRelay)
	if !ok {
		return nil, fmt.Errorf("dhcp6: RELAY-FORW missing relay message option")
	}

	innerReply, err := s.HandleRequest(relayOpt.Data)
	if err != nil {
		return nil, err
	}

	reply := []byte{MsgRelayReply, hopCount}
	reply = append(reply, linkAddr...)
	reply = append(reply, peerAddr...)

	var outOpts []Option
	if ifaceIDOpt, ok := Get(opts, OptInterfaceID); ok {
		outOpts = append(outOpts, ifaceIDOpt)
	}
	outOpts = append(outOpts, Option{Code: OptRelay, Data: innerReply})
	reply = WriteOptions(reply, outOpts)
	return reply, nil
}

// handleSolicit builds the REPLY for a rapid-commit SOLICIT, per
// dhcp_handle_request: requires Client ID (link-layer DUID), IA_NA,
// Rapid Commit and Elapsed Time options, and ignores everything else.
func (s *Server) handleSolicit(req []byte) ([]byte, error) {
	if len(req) < 4 {
		return nil, fmt.Errorf("dhcp6: truncated SOLICIT header")
	}
	transactionID := req[1:4]

	opts, err := ParseOptions(req[4:])
	if err != nil {
		return nil, fmt.Errorf("dhcp6: parse SOLICIT options: %w", err)
	}

	clientIDOpt, ok := Get(opts, OptClientID)
	if !ok {
		return nil, fmt.Errorf("%w: missing client identifier option", ErrUnsupportedRequest)
	}
	clientDUID, err := ParseClientDUID(clientIDOpt.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRequest, err)
	}
	if len(clientDUID.LLAddr) != 8 {
		return nil, fmt.Errorf("%w: client link-layer address is %d bytes, want 8", ErrUnsupportedRequest, len(clientDUID.LLAddr))
	}

	ianaOpt, ok := Get(opts, OptIANA)
	if !ok {
		return nil, fmt.Errorf("%w: missing IA_NA option", ErrUnsupportedRequest)
	}
	iana, err := ParseIANA(ianaOpt.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRequest, err)
	}

	if _, ok := Get(opts, OptRapidCommit); !ok {
		return nil, fmt.Errorf("%w: missing rapid commit option", ErrUnsupportedRequest)
	}
	if _, ok := Get(opts, OptElapsedTime); !ok {
		return nil, fmt.Errorf("%w: missing elapsed time option", ErrUnsupportedRequest)
	}

	addr := s.deriveAddress(clientDUID.LLAddr)

	reply := []byte{MsgReply}
	reply = append(reply, transactionID...)
	reply = WriteOptions(reply, []Option{
		{Code: OptServerID, Data: MarshalDUID(ClientDUID{HWType: HWTypeEUI64, LLAddr: s.ServerHWAddr[:]})},
		{Code: OptClientID, Data: clientIDOpt.Data},
		{Code: OptIANA, Data: MarshalIANAWithAddress(iana.IAID, addr, s.PreferredLifetime, s.ValidLifetime)},
		{Code: OptRapidCommit, Data: nil},
	})
	return reply, nil
}

// deriveAddress builds the handed-out IPv6 address from the server's
// prefix and the client's EUI-64, flipping the universal/local bit
// (RFC 4291 §2.5.1 modified EUI-64) exactly as the original server's
// ipv6[8] ^= 0x02 does.
func (s *Server) deriveAddress(clientEUI64 []byte) [16]byte {
	var addr [16]byte
	copy(addr[0:8], s.Prefix[:])
	copy(addr[8:16], clientEUI64)
	addr[8] ^= 0x02
	return addr
}
