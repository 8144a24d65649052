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

// Package dhcp6 implements a minimal DHCPv6 server (RFC 3315) handing
// out a single /64-derived address per client via IA_NA, with relay
// (RELAY-FORW/RELAY-REPL) unwrapping for requests that arrive through
// relay agents. Prefix delegation is not served.
package dhcp6

import "net"

// Message types, RFC 3315 §24.2.
const (
	MsgSolicit           uint8 = 1
	MsgAdvertise         uint8 = 2
	MsgRequest           uint8 = 3
	MsgConfirm           uint8 = 4
	MsgRenew             uint8 = 5
	MsgRebind            uint8 = 6
	MsgReply             uint8 = 7
	MsgRelease           uint8 = 8
	MsgDecline           uint8 = 9
	MsgReconfigure       uint8 = 10
	MsgInformationReq    uint8 = 11
	MsgRelayForward      uint8 = 12
	MsgRelayReply        uint8 = 13
)

// Option codes, RFC 3315 §24.3.
const (
	OptClientID       uint16 = 1
	OptServerID       uint16 = 2
	OptIANA           uint16 = 3
	OptIATA           uint16 = 4
	OptIAAddr         uint16 = 5
	OptORO            uint16 = 6
	OptPreference     uint16 = 7
	OptElapsedTime    uint16 = 8
	OptRelay          uint16 = 9
	OptAuth           uint16 = 11
	OptUnicast        uint16 = 12
	OptStatusCode     uint16 = 13
	OptRapidCommit    uint16 = 14
	OptUserClass      uint16 = 15
	OptVendorClass    uint16 = 16
	OptVendorSpecific uint16 = 17
	OptInterfaceID    uint16 = 18
	OptReconfMsg      uint16 = 19
	OptReconfAccept   uint16 = 20
)

// DUID types, RFC 3315 §24.5.
const (
	DUIDTypeLinkLayerPlusTime uint16 = 1
	DUIDTypeEnterprise        uint16 = 2
	DUIDTypeLinkLayer         uint16 = 3
	DUIDTypeUUID              uint16 = 4
)

// ARP hardware types used in link-layer DUIDs, per the IANA ARP
// Parameters registry.
const (
	HWTypeIEEE802 uint16 = 6
	HWTypeEUI64   uint16 = 0x1b
)

// ClientUDPPort and ServerUDPPort are the well-known DHCPv6 ports,
// RFC 3315 §5.2.
const (
	ClientUDPPort = 546
	ServerUDPPort = 547
)

// AllDHCPRelayAgentsAndServers is the RFC 3315 §5.1 multicast group
// DHCPv6 servers and relays listen on.
var AllDHCPRelayAgentsAndServers = net.ParseIP("ff02::1:2")
