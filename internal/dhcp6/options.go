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
	"encoding/binary"
	"fmt"
)

// Option is one DHCPv6 option: a 2-octet code, a 2-octet length, and
// that many octets of content (RFC 3315 §22.1).
type Option struct {
	Code uint16
	Data []byte
}

const optionHeadSize = 4

// ParseOptions walks b as a back-to-back sequence of options.
func ParseOptions(b []byte) ([]Option, error) {
	var opts []Option
	pos := 0
	for pos < len(b) {
		if pos+optionHeadSize > len(b) {
			return nil, fmt.Errorf("dhcp6: truncated option header at offset %d", pos)
		}
		code := binary.BigEndian.Uint16(b[pos:])
		length := int(binary.BigEndian.Uint16(b[pos+2:]))
		pos += optionHeadSize
		if pos+length > len(b) {
			return nil, fmt.Errorf("dhcp6: option %d declares %d bytes, only %d remain", code, length, len(b)-pos)
		}
		data := make([]byte, length)
		copy(data, b[pos:pos+length])
		opts = append(opts, Option{Code: code, Data: data})
		pos += length
	}
	return opts, nil
}

// WriteOptions appends opts to buf in wire format.
func WriteOptions(buf []byte, opts []Option) []byte {
	for _, o := range opts {
		head := make([]byte, optionHeadSize)
		binary.BigEndian.PutUint16(head, o.Code)
		binary.BigEndian.PutUint16(head[2:], uint16(len(o.Data)))
		buf = append(buf, head...)
		buf = append(buf, o.Data...)
	}
	return buf
}

// Get returns the first option with the given code, if present.
func Get(opts []Option, code uint16) (Option, bool) {
	for _, o := range opts {
		if o.Code == code {
			return o, true
		}
	}
	return Option{}, false
}

// ClientDUID is a RFC 3315 §9.2 link-layer DUID, the only DUID form
// this server understands.
type ClientDUID struct {
	HWType uint16
	LLAddr []byte
}

// ParseClientDUID decodes the Client Identifier option's content as a
// DUID-LL (link-layer) DUID.
func ParseClientDUID(data []byte) (ClientDUID, error) {
	if len(data) < 4 {
		return ClientDUID{}, fmt.Errorf("dhcp6: DUID too short: %d bytes", len(data))
	}
	duidType := binary.BigEndian.Uint16(data)
	if duidType != DUIDTypeLinkLayer {
		return ClientDUID{}, fmt.Errorf("dhcp6: unsupported DUID type %d", duidType)
	}
	hwType := binary.BigEndian.Uint16(data[2:])
	if hwType != HWTypeEUI64 && hwType != HWTypeIEEE802 {
		return ClientDUID{}, fmt.Errorf("dhcp6: unsupported DUID hardware type %d", hwType)
	}
	lladdr := make([]byte, len(data)-4)
	copy(lladdr, data[4:])
	return ClientDUID{HWType: hwType, LLAddr: lladdr}, nil
}

// MarshalDUID encodes a DUID-LL option payload.
func MarshalDUID(d ClientDUID) []byte {
	buf := make([]byte, 4+len(d.LLAddr))
	binary.BigEndian.PutUint16(buf, DUIDTypeLinkLayer)
	binary.BigEndian.PutUint16(buf[2:], d.HWType)
	copy(buf[4:], d.LLAddr)
	return buf
}

// IANA is the decoded content of an Identity Association for
// Non-temporary Addresses option (RFC 3315 §22.4), without its
// sub-options (this server never nests IA Address options inside a
// request, only in its own replies).
type IANA struct {
	IAID uint32
	T1   uint32
	T2   uint32
}

// ParseIANA decodes an IA_NA option's fixed header.
func ParseIANA(data []byte) (IANA, error) {
	if len(data) < 12 {
		return IANA{}, fmt.Errorf("dhcp6: IA_NA too short: %d bytes", len(data))
	}
	return IANA{
		IAID: binary.BigEndian.Uint32(data[0:]),
		T1:   binary.BigEndian.Uint32(data[4:]),
		T2:   binary.BigEndian.Uint32(data[8:]),
	}, nil
}

// MarshalIANAWithAddress encodes an IA_NA option carrying a single
// nested IA Address sub-option.
func MarshalIANAWithAddress(iaid uint32, addr [16]byte, preferredLifetime, validLifetime uint32) []byte {
	iaAddr := make([]byte, 24)
	copy(iaAddr[0:], addr[:])
	binary.BigEndian.PutUint32(iaAddr[16:], preferredLifetime)
	binary.BigEndian.PutUint32(iaAddr[20:], validLifetime)
	iaAddrOpt := WriteOptions(nil, []Option{{Code: OptIAAddr, Data: iaAddr}})

	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:], iaid)
	// T1/T2 left at zero: renewal is driven by the preferred/valid
	// lifetimes on the IA Address sub-option, as the server hands out
	// a stable prefix-derived address rather than leasing from a pool.
	return append(buf, iaAddrOpt...)
}
