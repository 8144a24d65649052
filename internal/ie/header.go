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

// HeaderIE is any header-tier information element. Unknown subtypes
// decode to RawHeaderIE so that forward-compatible skipping (spec.md
// §4.1) never fails the whole parse.
type HeaderIE interface {
	HeaderIEType() HeaderType
}

const headerIEHeadSize = 2

// headerIEHeadMarshalBinaryTo writes the 2-octet header IE descriptor:
// bits 0-6 length, bits 7-14 element id, bit 15 type (0 for header IEs).
func headerIEHeadMarshalBinaryTo(b []byte, typ HeaderType, length int) {
	word := uint16(length&0x7f) | uint16(typ)<<7
	binary.LittleEndian.PutUint16(b, word)
}

func unmarshalHeaderIEHead(b []byte) (typ HeaderType, length int, err error) {
	if len(b) < headerIEHeadSize {
		return 0, 0, fmt.Errorf("%w: header IE descriptor needs %d bytes, got %d", ErrTruncated, headerIEHeadSize, len(b))
	}
	word := binary.LittleEndian.Uint16(b)
	length = int(word & 0x7f)
	typ = HeaderType((word >> 7) & 0xff)
	return typ, length, nil
}

// RawHeaderIE is an unrecognised header IE, kept verbatim so a
// round-trip of a frame carrying it (skipped, per spec.md §4.1) does
// not lose the bytes of IEs we do understand alongside it.
type RawHeaderIE struct {
	Type    HeaderType
	Content []byte
}

// HeaderIEType implements HeaderIE.
func (h RawHeaderIE) HeaderIEType() HeaderType { return h.Type }

// UTTIE is the Unicast Timing & Frame Type header IE.
type UTTIE struct {
	FrameType  uint8
	UFSI       uint32 // 24 bits on the wire
}

// HeaderIEType implements HeaderIE.
func (UTTIE) HeaderIEType() HeaderType { return HeaderUTT }

func parseUTTIE(b []byte) (UTTIE, error) {
	if len(b) < 4 {
		return UTTIE{}, fmt.Errorf("%w: UTT-IE needs 4 bytes, got %d", ErrTruncated, len(b))
	}
	return UTTIE{
		FrameType: b[0],
		UFSI:      uint32(b[1]) | uint32(b[2])<<8 | uint32(b[3])<<16,
	}, nil
}

func (u UTTIE) marshalTo(b []byte) int {
	b[0] = u.FrameType
	b[1] = byte(u.UFSI)
	b[2] = byte(u.UFSI >> 8)
	b[3] = byte(u.UFSI >> 16)
	return 4
}

// BTIE is the Broadcast Timing header IE.
type BTIE struct {
	SlotNumber  uint16
	Offset      uint32 // 24 bits
	IntervalMs  uint32
}

// HeaderIEType implements HeaderIE.
func (BTIE) HeaderIEType() HeaderType { return HeaderBT }

func parseBTIE(b []byte) (BTIE, error) {
	if len(b) < 9 {
		return BTIE{}, fmt.Errorf("%w: BT-IE needs 9 bytes, got %d", ErrTruncated, len(b))
	}
	return BTIE{
		SlotNumber: binary.LittleEndian.Uint16(b[0:]),
		Offset:     uint32(b[2]) | uint32(b[3])<<8 | uint32(b[4])<<16,
		IntervalMs: binary.LittleEndian.Uint32(b[5:]),
	}, nil
}

func (t BTIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint16(b[0:], t.SlotNumber)
	b[2] = byte(t.Offset)
	b[3] = byte(t.Offset >> 8)
	b[4] = byte(t.Offset >> 16)
	binary.LittleEndian.PutUint32(b[5:], t.IntervalMs)
	return 9
}

// FCIE is the Flow Control header IE.
type FCIE struct {
	TXFlowCtrl uint8
	RXFlowCtrl uint8
}

// HeaderIEType implements HeaderIE.
func (FCIE) HeaderIEType() HeaderType { return HeaderFC }

func parseFCIE(b []byte) (FCIE, error) {
	if len(b) < 2 {
		return FCIE{}, fmt.Errorf("%w: FC-IE needs 2 bytes, got %d", ErrTruncated, len(b))
	}
	return FCIE{TXFlowCtrl: b[0], RXFlowCtrl: b[1]}, nil
}

func (f FCIE) marshalTo(b []byte) int {
	b[0] = f.TXFlowCtrl
	b[1] = f.RXFlowCtrl
	return 2
}

// RSLIE carries a smoothed received signal level as transmitted by
// the peer (separate from our own locally-measured RSL).
type RSLIE struct {
	RSL uint8 // offset-encoded: real dBm = RSL - 174
}

// HeaderIEType implements HeaderIE.
func (RSLIE) HeaderIEType() HeaderType { return HeaderRSL }

func parseRSLIE(b []byte) (RSLIE, error) {
	if len(b) < 1 {
		return RSLIE{}, fmt.Errorf("%w: RSL-IE needs 1 byte, got %d", ErrTruncated, len(b))
	}
	return RSLIE{RSL: b[0]}, nil
}

func (r RSLIE) marshalTo(b []byte) int {
	b[0] = r.RSL
	return 1
}

// EAIE carries the authenticator's EUI-64, letting a joining node
// locate the authenticator without a prior EAPOL exchange.
type EAIE struct {
	EUI64 [8]byte
}

// HeaderIEType implements HeaderIE.
func (EAIE) HeaderIEType() HeaderType { return HeaderEA }

func parseEAIE(b []byte) (EAIE, error) {
	if len(b) < 8 {
		return EAIE{}, fmt.Errorf("%w: EA-IE needs 8 bytes, got %d", ErrTruncated, len(b))
	}
	var e EAIE
	copy(e.EUI64[:], b[:8])
	return e, nil
}

func (e EAIE) marshalTo(b []byte) int {
	copy(b, e.EUI64[:])
	return 8
}

// NRIE advertises the sender's node role (FFN / LFN / BR).
type NRIE struct {
	NodeRole uint8
}

// HeaderIEType implements HeaderIE.
func (NRIE) HeaderIEType() HeaderType { return HeaderNR }

func parseNRIE(b []byte) (NRIE, error) {
	if len(b) < 1 {
		return NRIE{}, fmt.Errorf("%w: NR-IE needs 1 byte, got %d", ErrTruncated, len(b))
	}
	return NRIE{NodeRole: b[0]}, nil
}

func (n NRIE) marshalTo(b []byte) int {
	b[0] = n.NodeRole
	return 1
}

// PANIDIE carries the 16-bit PAN id explicitly (used by some LFN frames
// that otherwise omit it from the addressing fields).
type PANIDIE struct {
	PANID uint16
}

// HeaderIEType implements HeaderIE.
func (PANIDIE) HeaderIEType() HeaderType { return HeaderPANID }

func parsePANIDIE(b []byte) (PANIDIE, error) {
	if len(b) < 2 {
		return PANIDIE{}, fmt.Errorf("%w: PANID-IE needs 2 bytes, got %d", ErrTruncated, len(b))
	}
	return PANIDIE{PANID: binary.LittleEndian.Uint16(b)}, nil
}

func (p PANIDIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint16(b, p.PANID)
	return 2
}

// LUTTIE is the LFN analogue of UTTIE.
type LUTTIE struct {
	FrameType uint8
	UFSI      uint32
}

// HeaderIEType implements HeaderIE.
func (LUTTIE) HeaderIEType() HeaderType { return HeaderLUTT }

func parseLUTTIE(b []byte) (LUTTIE, error) {
	u, err := parseUTTIE(b)
	return LUTTIE(u), err
}

func (l LUTTIE) marshalTo(b []byte) int { return UTTIE(l).marshalTo(b) }

// LBTIE is the LFN analogue of BTIE.
type LBTIE struct {
	SlotNumber uint16
	Offset     uint32
	IntervalMs uint32
}

// HeaderIEType implements HeaderIE.
func (LBTIE) HeaderIEType() HeaderType { return HeaderLBT }

func parseLBTIE(b []byte) (LBTIE, error) {
	t, err := parseBTIE(b)
	return LBTIE(t), err
}

func (l LBTIE) marshalTo(b []byte) int { return BTIE(l).marshalTo(b) }

// LUSIE carries the LFN unicast schedule timing (dwell interval only;
// the channel list lives in the LFN US payload IE).
type LUSIE struct {
	ListenIntervalMs uint32
}

// HeaderIEType implements HeaderIE.
func (LUSIE) HeaderIEType() HeaderType { return HeaderLUS }

func parseLUSIE(b []byte) (LUSIE, error) {
	if len(b) < 4 {
		return LUSIE{}, fmt.Errorf("%w: LUS-IE needs 4 bytes, got %d", ErrTruncated, len(b))
	}
	return LUSIE{ListenIntervalMs: binary.LittleEndian.Uint32(b)}, nil
}

func (l LUSIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint32(b, l.ListenIntervalMs)
	return 4
}

// LBSIE carries the LFN broadcast schedule synchronisation period.
type LBSIE struct {
	BroadcastIntervalMs uint32
	SyncPeriod          uint8
}

// HeaderIEType implements HeaderIE.
func (LBSIE) HeaderIEType() HeaderType { return HeaderLBS }

func parseLBSIE(b []byte) (LBSIE, error) {
	if len(b) < 5 {
		return LBSIE{}, fmt.Errorf("%w: LBS-IE needs 5 bytes, got %d", ErrTruncated, len(b))
	}
	return LBSIE{
		BroadcastIntervalMs: binary.LittleEndian.Uint32(b[0:]),
		SyncPeriod:          b[4],
	}, nil
}

func (l LBSIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint32(b[0:], l.BroadcastIntervalMs)
	b[4] = l.SyncPeriod
	return 5
}

// LBCIE carries the LFN broadcast slot number and fractional offset.
type LBCIE struct {
	BroadcastSlot uint16
	BroadcastIntervalOffset uint32
}

// HeaderIEType implements HeaderIE.
func (LBCIE) HeaderIEType() HeaderType { return HeaderLBC }

func parseLBCIE(b []byte) (LBCIE, error) {
	if len(b) < 6 {
		return LBCIE{}, fmt.Errorf("%w: LBC-IE needs 6 bytes, got %d", ErrTruncated, len(b))
	}
	return LBCIE{
		BroadcastSlot:           binary.LittleEndian.Uint16(b[0:]),
		BroadcastIntervalOffset: binary.LittleEndian.Uint32(b[2:]),
	}, nil
}

func (l LBCIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint16(b[0:], l.BroadcastSlot)
	binary.LittleEndian.PutUint32(b[2:], l.BroadcastIntervalOffset)
	return 6
}

// LNDIE advertises LFN network discovery parameters to allow a new LFN
// to size its discovery listen window.
type LNDIE struct {
	ResponseThreshold uint8
	ResponseDelayMs   uint16
	DiscoverySlotMs   uint16
	DiscoverySlots    uint8
	DiscoveryFirstSlot uint16
}

// HeaderIEType implements HeaderIE.
func (LNDIE) HeaderIEType() HeaderType { return HeaderLND }

func parseLNDIE(b []byte) (LNDIE, error) {
	if len(b) < 8 {
		return LNDIE{}, fmt.Errorf("%w: LND-IE needs 8 bytes, got %d", ErrTruncated, len(b))
	}
	return LNDIE{
		ResponseThreshold:  b[0],
		ResponseDelayMs:    binary.LittleEndian.Uint16(b[1:]),
		DiscoverySlotMs:    binary.LittleEndian.Uint16(b[3:]),
		DiscoverySlots:     b[5],
		DiscoveryFirstSlot: binary.LittleEndian.Uint16(b[6:]),
	}, nil
}

func (l LNDIE) marshalTo(b []byte) int {
	b[0] = l.ResponseThreshold
	binary.LittleEndian.PutUint16(b[1:], l.ResponseDelayMs)
	binary.LittleEndian.PutUint16(b[3:], l.DiscoverySlotMs)
	b[5] = l.DiscoverySlots
	binary.LittleEndian.PutUint16(b[6:], l.DiscoveryFirstSlot)
	return 8
}

// LTOIE carries the LFN's time offset relative to its parent, used to
// schedule the next LFN broadcast sync point.
type LTOIE struct {
	OffsetMs   uint32
	AdjustedMs uint32
}

// HeaderIEType implements HeaderIE.
func (LTOIE) HeaderIEType() HeaderType { return HeaderLTO }

func parseLTOIE(b []byte) (LTOIE, error) {
	if len(b) < 8 {
		return LTOIE{}, fmt.Errorf("%w: LTO-IE needs 8 bytes, got %d", ErrTruncated, len(b))
	}
	return LTOIE{
		OffsetMs:   binary.LittleEndian.Uint32(b[0:]),
		AdjustedMs: binary.LittleEndian.Uint32(b[4:]),
	}, nil
}

func (l LTOIE) marshalTo(b []byte) int {
	binary.LittleEndian.PutUint32(b[0:], l.OffsetMs)
	binary.LittleEndian.PutUint32(b[4:], l.AdjustedMs)
	return 8
}

// VHIE is an opaque vendor-header IE; its content is never interpreted
// by the core, only carried.
type VHIE struct {
	Content []byte
}

// HeaderIEType implements HeaderIE.
func (VHIE) HeaderIEType() HeaderType { return HeaderVH }

func (v VHIE) marshalTo(b []byte) int {
	return copy(b, v.Content)
}

// parseHeaderIE dispatches on type, returning a RawHeaderIE (and a nil
// error) for anything we don't recognise so the caller can skip it.
func parseHeaderIE(typ HeaderType, content []byte) (HeaderIE, error) {
	switch typ {
	case HeaderUTT:
		return parseUTTIE(content)
	case HeaderBT:
		return parseBTIE(content)
	case HeaderFC:
		return parseFCIE(content)
	case HeaderRSL:
		return parseRSLIE(content)
	case HeaderEA:
		return parseEAIE(content)
	case HeaderNR:
		return parseNRIE(content)
	case HeaderPANID:
		return parsePANIDIE(content)
	case HeaderLUTT:
		return parseLUTTIE(content)
	case HeaderLBT:
		return parseLBTIE(content)
	case HeaderLUS:
		return parseLUSIE(content)
	case HeaderLBS:
		return parseLBSIE(content)
	case HeaderLBC:
		return parseLBCIE(content)
	case HeaderLND:
		return parseLNDIE(content)
	case HeaderLTO:
		return parseLTOIE(content)
	case HeaderVH:
		cp := make([]byte, len(content))
		copy(cp, content)
		return VHIE{Content: cp}, nil
	case HeaderTermination1, HeaderTermination2:
		return RawHeaderIE{Type: typ}, nil
	default:
		cp := make([]byte, len(content))
		copy(cp, content)
		return RawHeaderIE{Type: typ, Content: cp}, nil
	}
}

func headerIEContentLen(h HeaderIE) (int, error) {
	switch v := h.(type) {
	case UTTIE:
		return 4, nil
	case BTIE:
		return 9, nil
	case FCIE:
		return 2, nil
	case RSLIE:
		return 1, nil
	case EAIE:
		return 8, nil
	case NRIE:
		return 1, nil
	case PANIDIE:
		return 2, nil
	case LUTTIE:
		return 4, nil
	case LBTIE:
		return 9, nil
	case LUSIE:
		return 4, nil
	case LBSIE:
		return 5, nil
	case LBCIE:
		return 6, nil
	case LNDIE:
		return 8, nil
	case LTOIE:
		return 8, nil
	case VHIE:
		return len(v.Content), nil
	case RawHeaderIE:
		return len(v.Content), nil
	default:
		return 0, fmt.Errorf("%w: unknown header IE type %T", ErrMalformed, h)
	}
}

func headerIEMarshalContentTo(h HeaderIE, b []byte) int {
	switch v := h.(type) {
	case UTTIE:
		return v.marshalTo(b)
	case BTIE:
		return v.marshalTo(b)
	case FCIE:
		return v.marshalTo(b)
	case RSLIE:
		return v.marshalTo(b)
	case EAIE:
		return v.marshalTo(b)
	case NRIE:
		return v.marshalTo(b)
	case PANIDIE:
		return v.marshalTo(b)
	case LUTTIE:
		return v.marshalTo(b)
	case LBTIE:
		return v.marshalTo(b)
	case LUSIE:
		return v.marshalTo(b)
	case LBSIE:
		return v.marshalTo(b)
	case LBCIE:
		return v.marshalTo(b)
	case LNDIE:
		return v.marshalTo(b)
	case LTOIE:
		return v.marshalTo(b)
	case VHIE:
		return v.marshalTo(b)
	case RawHeaderIE:
		return copy(b, v.Content)
	default:
		return 0
	}
}

// ParseHeaderIEs parses a sequence of header IEs starting at b[0],
// stopping when a Header Termination IE is seen or b is exhausted.
// It returns the parsed IEs, the number of bytes consumed (including
// the terminating IE, if any), and whether a payload IE list follows
// (true for Termination-IE-1, false for Termination-IE-2 or EOF).
func ParseHeaderIEs(b []byte) (ies []HeaderIE, consumed int, payloadFollows bool, err error) {
	pos := 0
	for pos < len(b) {
		typ, length, herr := unmarshalHeaderIEHead(b[pos:])
		if herr != nil {
			return nil, 0, false, herr
		}
		pos += headerIEHeadSize
		if pos+length > len(b) {
			return nil, 0, false, fmt.Errorf("%w: header IE type %s declares %d bytes, only %d remain", ErrTruncated, typ, length, len(b)-pos)
		}
		content := b[pos : pos+length]
		pos += length

		if typ == HeaderTermination1 {
			return ies, pos, true, nil
		}
		if typ == HeaderTermination2 {
			return ies, pos, false, nil
		}

		parsed, perr := parseHeaderIE(typ, content)
		if perr != nil {
			return nil, 0, false, perr
		}
		ies = append(ies, parsed)
	}
	// No termination IE: per spec.md §4.2, this frame carries no payload IEs.
	return ies, pos, false, nil
}

// WriteHeaderIEs appends ies to buf, followed by the appropriate
// Header Termination IE (1 if payloadFollows, 2 otherwise), and
// returns the new slice.
func WriteHeaderIEs(buf []byte, ies []HeaderIE, payloadFollows bool) ([]byte, error) {
	for _, h := range ies {
		n, err := headerIEContentLen(h)
		if err != nil {
			return nil, err
		}
		if n > 0x7f {
			return nil, fmt.Errorf("%w: header IE %s content %d bytes exceeds 127-byte limit", ErrMalformed, h.HeaderIEType(), n)
		}
		head := make([]byte, headerIEHeadSize)
		headerIEHeadMarshalBinaryTo(head, h.HeaderIEType(), n)
		buf = append(buf, head...)
		content := make([]byte, n)
		headerIEMarshalContentTo(h, content)
		buf = append(buf, content...)
	}
	termType := HeaderTermination2
	if payloadFollows {
		termType = HeaderTermination1
	}
	head := make([]byte, headerIEHeadSize)
	headerIEHeadMarshalBinaryTo(head, termType, 0)
	buf = append(buf, head...)
	return buf, nil
}
