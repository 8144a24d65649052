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

package ie

import (
	"encoding/binary"
	"fmt"
)

// groupWiSUN is the payload-IE group id carrying the whole Wi-SUN
// payload IE tree (PAN/NETNAME/PANVER/... and the nested MLME
// US/BS sub-IEs) as one nested element list, per spec.md §4.1's
// "payload IEs — nested long form".
const groupWiSUN = 1

// groupPayloadTermination marks the end of the payload IE list, the
// payload-IE analogue of the header-IE termination IEs; whatever
// follows it in the frame is opaque MAC payload (MPX-framed 6LoWPAN
// or KMP data, per spec.md §4.2).
const groupPayloadTermination = 0xf

const payloadIEHeadSize = 2

// payloadIEHeadMarshalBinaryTo writes the 2-octet payload IE
// descriptor: bits 0-10 length, bits 11-14 group id, bit 15 type (1).
func payloadIEHeadMarshalBinaryTo(b []byte, group uint8, length int) {
	word := uint16(length&0x7ff) | uint16(group&0xf)<<11 | 1<<15
	binary.LittleEndian.PutUint16(b, word)
}

func unmarshalPayloadIEHead(b []byte) (group uint8, length int, err error) {
	if len(b) < payloadIEHeadSize {
		return 0, 0, fmt.Errorf("%w: payload IE descriptor needs %d bytes, got %d", ErrTruncated, payloadIEHeadSize, len(b))
	}
	word := binary.LittleEndian.Uint16(b)
	length = int(word & 0x7ff)
	group = uint8((word >> 11) & 0xf)
	return group, length, nil
}

// Each nested sub-element inside the Wi-SUN payload IE group uses a
// 1-byte type tag and a 1-byte length, matching the short-form nested
// encoding used throughout the real Wi-SUN payload IE tree.
const subElementHeadSize = 2

// PayloadIE is any payload-tier information element nested inside the
// Wi-SUN payload IE group.
type PayloadIE interface {
	PayloadIEType() PayloadType
}

// RawPayloadIE is an unrecognised payload sub-IE, preserved verbatim.
type RawPayloadIE struct {
	Type    PayloadType
	Content []byte
}

// PayloadIEType implements PayloadIE.
func (p RawPayloadIE) PayloadIEType() PayloadType { return p.Type }

// USIE is the Unicast Schedule payload IE: the sender's own unicast
// dwell interval, channel plan, channel function, and (if applicable)
// the fixed channel.
type USIE struct {
	DwellIntervalMs  uint8
	ClockDrift       uint8
	TimingAccuracyUs uint8
	ChannelPlanID    uint8
	ChannelFunction  ChannelFunction
	FixedChannel     uint16 // valid only when ChannelFunction == ChannelFunctionFixed
	ChannelExclude   ExcludedChannels
}

// PayloadIEType implements PayloadIE.
func (USIE) PayloadIEType() PayloadType { return PayloadUS }

// BSIE is the Broadcast Schedule payload IE.
type BSIE struct {
	BroadcastDwellIntervalMs uint8
	BroadcastIntervalMs      uint32
	BroadcastScheduleID      uint16 // BSI
	ChannelPlanID            uint8
	ChannelFunction          ChannelFunction
	FixedChannel             uint16
	ChannelExclude           ExcludedChannels
}

// PayloadIEType implements PayloadIE.
func (BSIE) PayloadIEType() PayloadType { return PayloadBS }

// PANIE carries PAN-wide sizing and routing-cost hints advertised in
// a PA frame.
type PANIE struct {
	PANSize       uint16
	RoutingCost   uint16
	UseParentBSIS bool
	RoutingMethod uint8
	LFNWindowStyle bool
	FANTPSVersion uint8
}

// PayloadIEType implements PayloadIE.
func (PANIE) PayloadIEType() PayloadType { return PayloadPAN }

// NETNAMEIE carries the UTF-8 network name (spec.md §3: ≤32 bytes).
type NETNAMEIE struct {
	NetworkName string
}

// PayloadIEType implements PayloadIE.
func (NETNAMEIE) PayloadIEType() PayloadType { return PayloadNETNAME }

// PANVERIE carries the PAN version lollipop counter.
type PANVERIE struct {
	PANVersion uint16
}

// PayloadIEType implements PayloadIE.
func (PANVERIE) PayloadIEType() PayloadType { return PayloadPANVER }

// GTKHASHIE carries up to 4 64-bit GTK hashes (spec.md §3).
type GTKHASHIE struct {
	Hashes [4][8]byte
}

// PayloadIEType implements PayloadIE.
func (GTKHASHIE) PayloadIEType() PayloadType { return PayloadGTKHASH }

// POMIE advertises the sender's PHY operating modes.
type POMIE struct {
	PhyOpModes   []uint8
	MDRCapable   bool
}

// PayloadIEType implements PayloadIE.
func (POMIE) PayloadIEType() PayloadType { return PayloadPOM }

// LFNVERIE carries the LFN version lollipop counter.
type LFNVERIE struct {
	LFNVersion uint16
}

// PayloadIEType implements PayloadIE.
func (LFNVERIE) PayloadIEType() PayloadType { return PayloadLFNVER }

// LGTKHASHIE carries up to 3 64-bit LGTK hashes.
type LGTKHASHIE struct {
	Hashes [3][8]byte
	Active uint8 // index of the active LGTK slot
}

// PayloadIEType implements PayloadIE.
func (LGTKHASHIE) PayloadIEType() PayloadType { return PayloadLGTKHASH }

// LBATSIE advertises the LFN broadcast schedule's absolute time sync window.
type LBATSIE struct {
	BroadcastIntervalOffsetMs uint32
	AdditionalTransmitMs      uint16
}

// PayloadIEType implements PayloadIE.
func (LBATSIE) PayloadIEType() PayloadType { return PayloadLBATS }

// LCPIE carries the LFN channel plan (distinct fields from the FFN US/BS IEs).
type LCPIE struct {
	ChannelPlanID   uint8
	ChannelFunction ChannelFunction
	FixedChannel    uint16
}

// PayloadIEType implements PayloadIE.
func (LCPIE) PayloadIEType() PayloadType { return PayloadLCP }

// VPIE is an opaque vendor payload IE.
type VPIE struct {
	Content []byte
}

// PayloadIEType implements PayloadIE.
func (VPIE) PayloadIEType() PayloadType { return PayloadVP }

// JMIE carries one or more join metrics (e.g. PLF); spec.md §4.8 says
// the metric with the newest content version wins when more than one
// is observed for the same metric id.
type JMMetric struct {
	MetricID       uint8
	ContentVersion uint8
	Value          uint16
}

type JMIE struct {
	Metrics []JMMetric
}

// PayloadIEType implements PayloadIE.
func (JMIE) PayloadIEType() PayloadType { return PayloadJM }

// JoinMetricPLF is the JM-IE metric id for PAN Load Factor (spec.md §4.8).
const JoinMetricPLF uint8 = 0

func marshalExcludedChannels(e ExcludedChannels, b []byte) int {
	b[0] = uint8(e.Encoding)
	pos := 1
	switch e.Encoding {
	case ExcludedChannelsNone:
	case ExcludedChannelsRange:
		b[pos] = uint8(len(e.Ranges))
		pos++
		for _, r := range e.Ranges {
			binary.LittleEndian.PutUint16(b[pos:], r.Start)
			binary.LittleEndian.PutUint16(b[pos+2:], r.End)
			pos += 4
		}
	case ExcludedChannelsBitmask:
		binary.LittleEndian.PutUint16(b[pos:], uint16(len(e.Mask)))
		pos += 2
		pos += copy(b[pos:], e.Mask)
	}
	return pos
}

func excludedChannelsLen(e ExcludedChannels) int {
	switch e.Encoding {
	case ExcludedChannelsNone:
		return 1
	case ExcludedChannelsRange:
		return 1 + 1 + 4*len(e.Ranges)
	case ExcludedChannelsBitmask:
		return 1 + 2 + len(e.Mask)
	}
	return 1
}

func parseExcludedChannels(b []byte) (ExcludedChannels, int, error) {
	if len(b) < 1 {
		return ExcludedChannels{}, 0, fmt.Errorf("%w: channel exclusion tag missing", ErrTruncated)
	}
	enc := ExcludedChannelsEncoding(b[0])
	pos := 1
	switch enc {
	case ExcludedChannelsNone:
		return ExcludedChannels{Encoding: enc}, pos, nil
	case ExcludedChannelsRange:
		if len(b) < pos+1 {
			return ExcludedChannels{}, 0, fmt.Errorf("%w: channel exclusion range count missing", ErrTruncated)
		}
		n := int(b[pos])
		pos++
		if len(b) < pos+4*n {
			return ExcludedChannels{}, 0, fmt.Errorf("%w: channel exclusion ranges truncated", ErrTruncated)
		}
		ranges := make([]ChannelRange, n)
		for i := 0; i < n; i++ {
			ranges[i] = ChannelRange{
				Start: binary.LittleEndian.Uint16(b[pos:]),
				End:   binary.LittleEndian.Uint16(b[pos+2:]),
			}
			pos += 4
		}
		return ExcludedChannels{Encoding: enc, Ranges: ranges}, pos, nil
	case ExcludedChannelsBitmask:
		if len(b) < pos+2 {
			return ExcludedChannels{}, 0, fmt.Errorf("%w: channel exclusion mask length missing", ErrTruncated)
		}
		n := int(binary.LittleEndian.Uint16(b[pos:]))
		pos += 2
		if len(b) < pos+n {
			return ExcludedChannels{}, 0, fmt.Errorf("%w: channel exclusion mask truncated", ErrTruncated)
		}
		mask := make([]byte, n)
		copy(mask, b[pos:pos+n])
		pos += n
		return ExcludedChannels{Encoding: enc, Mask: mask}, pos, nil
	default:
		return ExcludedChannels{}, 0, fmt.Errorf("%w: unknown channel exclusion encoding %d", ErrMalformed, enc)
	}
}

func channelPlanFieldsLen(fn ChannelFunction) int {
	if fn == ChannelFunctionFixed {
		return 2
	}
	return 0
}

func parseUSIE(b []byte) (USIE, error) {
	if len(b) < 6 {
		return USIE{}, fmt.Errorf("%w: US-IE needs 6 bytes, got %d", ErrTruncated, len(b))
	}
	u := USIE{
		DwellIntervalMs:  b[0],
		ClockDrift:       b[1],
		TimingAccuracyUs: b[2],
		ChannelPlanID:    b[3],
		ChannelFunction:  ChannelFunction(b[4]),
	}
	if u.ChannelPlanID == 7 {
		return USIE{}, fmt.Errorf("%w: US-IE channel plan 7 is reserved", ErrMalformed)
	}
	pos := 5
	if u.ChannelFunction == ChannelFunctionFixed {
		if len(b) < pos+2 {
			return USIE{}, fmt.Errorf("%w: US-IE fixed channel truncated", ErrTruncated)
		}
		u.FixedChannel = binary.LittleEndian.Uint16(b[pos:])
		pos += 2
	}
	excl, n, err := parseExcludedChannels(b[pos:])
	if err != nil {
		return USIE{}, err
	}
	u.ChannelExclude = excl
	_ = n
	return u, nil
}

func (u USIE) marshalLen() int {
	return 5 + channelPlanFieldsLen(u.ChannelFunction) + excludedChannelsLen(u.ChannelExclude)
}

func (u USIE) marshalTo(b []byte) int {
	b[0] = u.DwellIntervalMs
	b[1] = u.ClockDrift
	b[2] = u.TimingAccuracyUs
	b[3] = u.ChannelPlanID
	b[4] = uint8(u.ChannelFunction)
	pos := 5
	if u.ChannelFunction == ChannelFunctionFixed {
		binary.LittleEndian.PutUint16(b[pos:], u.FixedChannel)
		pos += 2
	}
	pos += marshalExcludedChannels(u.ChannelExclude, b[pos:])
	return pos
}

func parseBSIE(b []byte) (BSIE, error) {
	if len(b) < 10 {
		return BSIE{}, fmt.Errorf("%w: BS-IE needs 10 bytes, got %d", ErrTruncated, len(b))
	}
	s := BSIE{
		BroadcastDwellIntervalMs: b[0],
		BroadcastIntervalMs:      binary.LittleEndian.Uint32(b[1:]),
		BroadcastScheduleID:      binary.LittleEndian.Uint16(b[5:]),
		ChannelPlanID:            b[7],
		ChannelFunction:          ChannelFunction(b[8]),
	}
	if s.ChannelPlanID == 7 {
		return BSIE{}, fmt.Errorf("%w: BS-IE channel plan 7 is reserved", ErrMalformed)
	}
	pos := 9
	if s.ChannelFunction == ChannelFunctionFixed {
		if len(b) < pos+2 {
			return BSIE{}, fmt.Errorf("%w: BS-IE fixed channel truncated", ErrTruncated)
		}
		s.FixedChannel = binary.LittleEndian.Uint16(b[pos:])
		pos += 2
	}
	excl, _, err := parseExcludedChannels(b[pos:])
	if err != nil {
		return BSIE{}, err
	}
	s.ChannelExclude = excl
	return s, nil
}

func (s BSIE) marshalLen() int {
	return 9 + channelPlanFieldsLen(s.ChannelFunction) + excludedChannelsLen(s.ChannelExclude)
}

func (s BSIE) marshalTo(b []byte) int {
	b[0] = s.BroadcastDwellIntervalMs
	binary.LittleEndian.PutUint32(b[1:], s.BroadcastIntervalMs)
	binary.LittleEndian.PutUint16(b[5:], s.BroadcastScheduleID)
	b[7] = s.ChannelPlanID
	b[8] = uint8(s.ChannelFunction)
	pos := 9
	if s.ChannelFunction == ChannelFunctionFixed {
		binary.LittleEndian.PutUint16(b[pos:], s.FixedChannel)
		pos += 2
	}
	pos += marshalExcludedChannels(s.ChannelExclude, b[pos:])
	return pos
}

const panIEFlagUseParentBSIS = 1 << 0
const panIEFlagLFNWindowStyle = 1 << 1

func parsePANIE(b []byte) (PANIE, error) {
	if len(b) < 6 {
		return PANIE{}, fmt.Errorf("%w: PAN-IE needs 6 bytes, got %d", ErrTruncated, len(b))
	}
	return PANIE{
		PANSize:        binary.LittleEndian.Uint16(b[0:]),
		RoutingCost:    binary.LittleEndian.Uint16(b[2:]),
		UseParentBSIS:  b[4]&panIEFlagUseParentBSIS != 0,
		LFNWindowStyle: b[4]&panIEFlagLFNWindowStyle != 0,
		RoutingMethod:  b[4] >> 2,
		FANTPSVersion:  b[5],
	}, nil
}

func (p PANIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint16(b[0:], p.PANSize)
	binary.LittleEndian.PutUint16(b[2:], p.RoutingCost)
	var flags uint8
	if p.UseParentBSIS {
		flags |= panIEFlagUseParentBSIS
	}
	if p.LFNWindowStyle {
		flags |= panIEFlagLFNWindowStyle
	}
	flags |= p.RoutingMethod << 2
	b[4] = flags
	b[5] = p.FANTPSVersion
	return 6
}

const maxNetworkNameLen = 32

func parseNETNAMEIE(b []byte) (NETNAMEIE, error) {
	if len(b) > maxNetworkNameLen {
		return NETNAMEIE{}, fmt.Errorf("%w: NETNAME-IE exceeds %d bytes", ErrMalformed, maxNetworkNameLen)
	}
	return NETNAMEIE{NetworkName: string(b)}, nil
}

func (n NETNAMEIE) marshalLen() int { return len(n.NetworkName) }

func (n NETNAMEIE) marshalTo(b []byte) int {
	return copy(b, n.NetworkName)
}

func parsePANVERIE(b []byte) (PANVERIE, error) {
	if len(b) < 2 {
		return PANVERIE{}, fmt.Errorf("%w: PANVER-IE needs 2 bytes, got %d", ErrTruncated, len(b))
	}
	return PANVERIE{PANVersion: binary.LittleEndian.Uint16(b)}, nil
}

func (p PANVERIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint16(b, p.PANVersion)
	return 2
}

func parseGTKHASHIE(b []byte) (GTKHASHIE, error) {
	if len(b) < 32 {
		return GTKHASHIE{}, fmt.Errorf("%w: GTKHASH-IE needs 32 bytes, got %d", ErrTruncated, len(b))
	}
	var g GTKHASHIE
	for i := 0; i < 4; i++ {
		copy(g.Hashes[i][:], b[i*8:i*8+8])
	}
	return g, nil
}

func (g GTKHASHIE) marshalTo(b []byte) int {
	for i := 0; i < 4; i++ {
		copy(b[i*8:], g.Hashes[i][:])
	}
	return 32
}

func parseLFNVERIE(b []byte) (LFNVERIE, error) {
	if len(b) < 2 {
		return LFNVERIE{}, fmt.Errorf("%w: LFNVER-IE needs 2 bytes, got %d", ErrTruncated, len(b))
	}
	return LFNVERIE{LFNVersion: binary.LittleEndian.Uint16(b)}, nil
}

func (l LFNVERIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint16(b, l.LFNVersion)
	return 2
}

func parseLGTKHASHIE(b []byte) (LGTKHASHIE, error) {
	if len(b) < 25 {
		return LGTKHASHIE{}, fmt.Errorf("%w: LGTKHASH-IE needs 25 bytes, got %d", ErrTruncated, len(b))
	}
	var g LGTKHASHIE
	for i := 0; i < 3; i++ {
		copy(g.Hashes[i][:], b[i*8:i*8+8])
	}
	g.Active = b[24]
	return g, nil
}

func (g LGTKHASHIE) marshalTo(b []byte) int {
	for i := 0; i < 3; i++ {
		copy(b[i*8:], g.Hashes[i][:])
	}
	b[24] = g.Active
	return 25
}

func parseLBATSIE(b []byte) (LBATSIE, error) {
	if len(b) < 6 {
		return LBATSIE{}, fmt.Errorf("%w: LBATS-IE needs 6 bytes, got %d", ErrTruncated, len(b))
	}
	return LBATSIE{
		BroadcastIntervalOffsetMs: binary.LittleEndian.Uint32(b[0:]),
		AdditionalTransmitMs:      binary.LittleEndian.Uint16(b[4:]),
	}, nil
}

func (l LBATSIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint32(b[0:], l.BroadcastIntervalOffsetMs)
	binary.LittleEndian.PutUint16(b[4:], l.AdditionalTransmitMs)
	return 6
}

func parseLCPIE(b []byte) (LCPIE, error) {
	if len(b) < 2 {
		return LCPIE{}, fmt.Errorf("%w: LCP-IE needs 2 bytes, got %d", ErrTruncated, len(b))
	}
	l := LCPIE{ChannelPlanID: b[0], ChannelFunction: ChannelFunction(b[1])}
	if l.ChannelFunction == ChannelFunctionFixed {
		if len(b) < 4 {
			return LCPIE{}, fmt.Errorf("%w: LCP-IE fixed channel truncated", ErrTruncated)
		}
		l.FixedChannel = binary.LittleEndian.Uint16(b[2:])
	}
	return l, nil
}

func (l LCPIE) marshalLen() int { return 2 + channelPlanFieldsLen(l.ChannelFunction) }

func (l LCPIE) marshalTo(b []byte) int {
	b[0] = l.ChannelPlanID
	b[1] = uint8(l.ChannelFunction)
	pos := 2
	if l.ChannelFunction == ChannelFunctionFixed {
		binary.LittleEndian.PutUint16(b[pos:], l.FixedChannel)
		pos += 2
	}
	return pos
}

func parsePOMIE(b []byte) (POMIE, error) {
	if len(b) < 1 {
		return POMIE{}, fmt.Errorf("%w: POM-IE needs 1 byte, got %d", ErrTruncated, len(b))
	}
	n := int(b[0] & 0x7f)
	mdr := b[0]&0x80 != 0
	if len(b) < 1+n {
		return POMIE{}, fmt.Errorf("%w: POM-IE phy list truncated", ErrTruncated)
	}
	modes := make([]uint8, n)
	copy(modes, b[1:1+n])
	return POMIE{PhyOpModes: modes, MDRCapable: mdr}, nil
}

func (p POMIE) marshalLen() int { return 1 + len(p.PhyOpModes) }

func (p POMIE) marshalTo(b []byte) int {
	b[0] = uint8(len(p.PhyOpModes)) & 0x7f
	if p.MDRCapable {
		b[0] |= 0x80
	}
	n := copy(b[1:], p.PhyOpModes)
	return 1 + n
}

func parseVPIE(b []byte) (VPIE, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	return VPIE{Content: cp}, nil
}

func (v VPIE) marshalTo(b []byte) int { return copy(b, v.Content) }

const jmMetricSize = 4

func parseJMIE(b []byte) (JMIE, error) {
	if len(b)%jmMetricSize != 0 {
		return JMIE{}, fmt.Errorf("%w: JM-IE length %d not a multiple of %d", ErrMalformed, len(b), jmMetricSize)
	}
	n := len(b) / jmMetricSize
	metrics := make([]JMMetric, n)
	for i := 0; i < n; i++ {
		off := i * jmMetricSize
		metrics[i] = JMMetric{
			MetricID:       b[off],
			ContentVersion: b[off+1],
			Value:          binary.LittleEndian.Uint16(b[off+2:]),
		}
	}
	return JMIE{Metrics: metrics}, nil
}

func (j JMIE) marshalLen() int { return jmMetricSize * len(j.Metrics) }

func (j JMIE) marshalTo(b []byte) int {
	for i, m := range j.Metrics {
		off := i * jmMetricSize
		b[off] = m.MetricID
		b[off+1] = m.ContentVersion
		binary.LittleEndian.PutUint16(b[off+2:], m.Value)
	}
	return jmMetricSize * len(j.Metrics)
}

func parsePayloadSubIE(typ PayloadType, content []byte) (PayloadIE, error) {
	switch typ {
	case PayloadUS:
		return parseUSIE(content)
	case PayloadBS:
		return parseBSIE(content)
	case PayloadPAN:
		return parsePANIE(content)
	case PayloadNETNAME:
		return parseNETNAMEIE(content)
	case PayloadPANVER:
		return parsePANVERIE(content)
	case PayloadGTKHASH:
		return parseGTKHASHIE(content)
	case PayloadPOM:
		return parsePOMIE(content)
	case PayloadLFNVER:
		return parseLFNVERIE(content)
	case PayloadLGTKHASH:
		return parseLGTKHASHIE(content)
	case PayloadLBATS:
		return parseLBATSIE(content)
	case PayloadLCP:
		return parseLCPIE(content)
	case PayloadVP:
		return parseVPIE(content)
	case PayloadJM:
		return parseJMIE(content)
	default:
		cp := make([]byte, len(content))
		copy(cp, content)
		return RawPayloadIE{Type: typ, Content: cp}, nil
	}
}

func payloadSubIELen(p PayloadIE) (int, error) {
	switch v := p.(type) {
	case USIE:
		return v.marshalLen(), nil
	case BSIE:
		return v.marshalLen(), nil
	case PANIE:
		return 6, nil
	case NETNAMEIE:
		return v.marshalLen(), nil
	case PANVERIE:
		return 2, nil
	case GTKHASHIE:
		return 32, nil
	case POMIE:
		return v.marshalLen(), nil
	case LFNVERIE:
		return 2, nil
	case LGTKHASHIE:
		return 25, nil
	case LBATSIE:
		return 6, nil
	case LCPIE:
		return v.marshalLen(), nil
	case VPIE:
		return len(v.Content), nil
	case JMIE:
		return v.marshalLen(), nil
	case RawPayloadIE:
		return len(v.Content), nil
	default:
		return 0, fmt.Errorf("%w: unknown payload IE type %T", ErrMalformed, p)
	}
}

func payloadSubIEMarshalTo(p PayloadIE, b []byte) int {
	switch v := p.(type) {
	case USIE:
		return v.marshalTo(b)
	case BSIE:
		return v.marshalTo(b)
	case PANIE:
		return v.marshalTo(b)
	case NETNAMEIE:
		return v.marshalTo(b)
	case PANVERIE:
		return v.marshalTo(b)
	case GTKHASHIE:
		return v.marshalTo(b)
	case POMIE:
		return v.marshalTo(b)
	case LFNVERIE:
		return v.marshalTo(b)
	case LGTKHASHIE:
		return v.marshalTo(b)
	case LBATSIE:
		return v.marshalTo(b)
	case LCPIE:
		return v.marshalTo(b)
	case VPIE:
		return v.marshalTo(b)
	case JMIE:
		return v.marshalTo(b)
	case RawPayloadIE:
		return copy(b, v.Content)
	default:
		return 0
	}
}

// ParsePayloadIEs parses the payload IE list from b, which must start
// right after the header IEs and their termination IE. It stops at
// the payload termination group and returns the number of bytes of b
// consumed, including that terminator, so the caller can locate the
// start of the frame's opaque MAC payload.
func ParsePayloadIEs(b []byte) ([]PayloadIE, int, error) {
	var out []PayloadIE
	pos := 0
	for pos < len(b) {
		group, length, err := unmarshalPayloadIEHead(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += payloadIEHeadSize
		if length > len(b)-pos {
			return nil, 0, fmt.Errorf("%w: payload IE group %d declares %d bytes, only %d remain", ErrTruncated, group, length, len(b)-pos)
		}
		groupBody := b[pos : pos+length]
		pos += length

		if group == groupPayloadTermination {
			return out, pos, nil
		}
		if group != groupWiSUN {
			// Unsupported (non-Wi-SUN) payload IE groups are skipped whole.
			continue
		}
		for len(groupBody) > 0 {
			if len(groupBody) < subElementHeadSize {
				return nil, 0, fmt.Errorf("%w: truncated Wi-SUN payload sub-IE header", ErrTruncated)
			}
			typ := PayloadType(groupBody[0])
			sublen := int(groupBody[1])
			groupBody = groupBody[subElementHeadSize:]
			if sublen > len(groupBody) {
				return nil, 0, fmt.Errorf("%w: Wi-SUN payload sub-IE %s declares %d bytes, only %d remain", ErrTruncated, typ, sublen, len(groupBody))
			}
			content := groupBody[:sublen]
			groupBody = groupBody[sublen:]

			parsed, perr := parsePayloadSubIE(typ, content)
			if perr != nil {
				return nil, 0, perr
			}
			out = append(out, parsed)
		}
	}
	// No explicit terminator: treat EOF as implicit end of list.
	return out, pos, nil
}

// WritePayloadIEs appends the Wi-SUN payload IE group containing ies,
// followed by the payload termination marker, to buf and returns the
// new slice.
func WritePayloadIEs(buf []byte, ies []PayloadIE) ([]byte, error) {
	bodyLen := 0
	for _, p := range ies {
		n, err := payloadSubIELen(p)
		if err != nil {
			return nil, err
		}
		if n > 0xff {
			return nil, fmt.Errorf("%w: payload sub-IE %s content %d bytes exceeds 255-byte limit", ErrMalformed, p.PayloadIEType(), n)
		}
		bodyLen += subElementHeadSize + n
	}
	head := make([]byte, payloadIEHeadSize)
	payloadIEHeadMarshalBinaryTo(head, groupWiSUN, bodyLen)
	buf = append(buf, head...)

	for _, p := range ies {
		n, _ := payloadSubIELen(p)
		sub := make([]byte, subElementHeadSize+n)
		sub[0] = uint8(p.PayloadIEType())
		sub[1] = uint8(n)
		payloadSubIEMarshalTo(p, sub[subElementHeadSize:])
		buf = append(buf, sub...)
	}

	term := make([]byte, payloadIEHeadSize)
	payloadIEHeadMarshalBinaryTo(term, groupPayloadTermination, 0)
	buf = append(buf, term...)
	return buf, nil
}
