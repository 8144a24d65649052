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

// Package frame implements the IEEE 802.15.4-2015 data/ack frame
// header, security header, and IE-list assembly described in
// spec.md §4.2. It honors only frame-version 2015, the address
// combinations spec.md calls out, and security level ENC-MIC-64 with
// key-id mode INDEX; everything else is a typed error, never a panic.
package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/MathisMARION/wisun-br-linux/internal/ie"
)

// Type is the 802.15.4 frame type (Table 7-1); only Data and Ack are honored.
type Type uint8

// Frame types spec.md §4.2 accepts.
const (
	TypeData Type = 0x1
	TypeAck  Type = 0x2
)

const frameVersion2015 = 0x2

// fcf field masks, per IEEE 802.15.4-2020 Figure 7-2 (unchanged since 2015).
const (
	fcfFrameType    = 0x0007
	fcfSecured      = 0x0008
	fcfFramePending = 0x0010
	fcfAckReq       = 0x0020
	fcfPANIDCompr   = 0x0040
	fcfDelSeqno     = 0x0100
	fcfHasIE        = 0x0200
	fcfDstAddrMode  = 0x0c00
	fcfFrameVersion = 0x3000
	fcfSrcAddrMode  = 0xc000
)

const (
	addrModeNone  = 0x0
	addrModeShort = 0x2
	addrModeEUI64 = 0x3
)

// SecurityLevel identifies the MAC security level field; only
// ENC-MIC-64 is honored (spec.md §4.2).
type SecurityLevel uint8

// SecurityLevelEncMIC64 is the only security level spec.md honors.
const SecurityLevelEncMIC64 SecurityLevel = 0x6

// KeyIDMode identifies the key source/index encoding; only explicit
// one-byte INDEX mode is honored (spec.md §1 Non-goals, §4.2).
type KeyIDMode uint8

// KeyIDModeIndex is the only key-id mode honored.
const KeyIDModeIndex KeyIDMode = 0x1

const (
	secHdrLevel       = 0x07
	secHdrKeyIDMode   = 0x18
	secHdrDelFrameCtr = 0x20
)

// EUI64 is an IEEE EUI-64 address, stored big-endian (network order)
// the way spec.md's Neighbor table indexes peers.
type EUI64 [8]byte

// Broadcast is the all-ones EUI-64 used for MAC_ADDR_MODE_NONE destinations.
var Broadcast = EUI64{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// Security carries the parsed (or to-be-written) MAC security header.
// A zero value (KeyIndex == 0) means the frame is unsecured.
type Security struct {
	Level         SecurityLevel
	KeyIDMode     KeyIDMode
	KeyIndex      uint8
	FrameCounter  uint32
	CounterPresent bool
}

// Header is the parsed 802.15.4-2015 addressing + security header.
type Header struct {
	Type     Type
	Seqno    int16 // -1 means sequence-number-suppressed
	AckReq   bool
	Dst      EUI64 // Broadcast when destination addressing is omitted
	HasDst   bool
	PANID    uint16 // 0xffff when omitted
	Src      EUI64
	Security Security
	HasIE    bool
}

// Parsed is a fully decoded frame: header, IE tree, and any residual
// MAC payload (MPX-framed 6LoWPAN or KMP data).
type Parsed struct {
	Header  Header
	IEs     ie.IETree
	Payload []byte
}

// Parse decodes b as an 802.15.4-2015 data or ack frame per spec.md
// §4.2. Any framing or addressing combination other than the ones
// spec.md names returns a wrapped ErrUnsupported; truncated content
// returns a wrapped ErrTruncated. The caller
// (frame dispatch, C2 consumer) is expected to count and drop per
// spec.md §7, never treat this as fatal.
func Parse(b []byte) (Parsed, error) {
	if len(b) < 2 {
		return Parsed{}, fmt.Errorf("%w: frame shorter than FCF", ErrTruncated)
	}
	fcf := binary.LittleEndian.Uint16(b)
	pos := 2

	typ := Type(fcf & fcfFrameType)
	if typ != TypeData && typ != TypeAck {
		return Parsed{}, fmt.Errorf("%w: frame type %d", ErrUnsupported, typ)
	}
	if (fcf&fcfFrameVersion)>>12 != frameVersion2015 {
		return Parsed{}, fmt.Errorf("%w: frame version %d", ErrUnsupported, (fcf&fcfFrameVersion)>>12)
	}

	hdr := Header{Type: typ, AckReq: fcf&fcfAckReq != 0, Seqno: -1}

	if fcf&fcfDelSeqno == 0 {
		if len(b) < pos+1 {
			return Parsed{}, fmt.Errorf("%w: missing sequence number", ErrTruncated)
		}
		hdr.Seqno = int16(b[pos])
		pos++
	}

	dstMode := uint8((fcf & fcfDstAddrMode) >> 10)
	srcMode := uint8((fcf & fcfSrcAddrMode) >> 14)
	panIDCompr := fcf&fcfPANIDCompr != 0

	combo, ok := lookupAddrCombo(dstMode, srcMode, panIDCompr)
	if !ok {
		return Parsed{}, fmt.Errorf("%w: address mode dst=%d src=%d pan_id_compr=%v", ErrUnsupported, dstMode, srcMode, panIDCompr)
	}

	if combo.dstEUI64 {
		if len(b) < pos+8 {
			return Parsed{}, fmt.Errorf("%w: truncated destination address", ErrTruncated)
		}
		hdr.Dst = eui64FromLE(b[pos : pos+8])
		hdr.HasDst = true
		pos += 8
	} else {
		hdr.Dst = Broadcast
	}

	hdr.PANID = 0xffff
	if combo.hasSrcPANID {
		if len(b) < pos+2 {
			return Parsed{}, fmt.Errorf("%w: truncated PAN id", ErrTruncated)
		}
		hdr.PANID = binary.LittleEndian.Uint16(b[pos:])
		pos += 2
	}

	if len(b) < pos+8 {
		return Parsed{}, fmt.Errorf("%w: truncated source address", ErrTruncated)
	}
	hdr.Src = eui64FromLE(b[pos : pos+8])
	pos += 8

	if fcf&fcfSecured != 0 {
		sec, n, err := parseSecurityHeader(b[pos:])
		if err != nil {
			return Parsed{}, err
		}
		hdr.Security = sec
		pos += n
		// The trailing 8-byte MIC is validated by the RCP (spec.md §4.2);
		// the host only strips it from the payload view.
		if len(b) < pos+8 {
			return Parsed{}, fmt.Errorf("%w: missing MIC-64", ErrTruncated)
		}
		b = b[:len(b)-8]
	}

	hdr.HasIE = fcf&fcfHasIE != 0
	var tree ie.IETree
	if hdr.HasIE {
		var n int
		var err error
		tree, n, err = ie.Parse(b[pos:], ie.DirectionRx)
		if err != nil {
			return Parsed{}, err
		}
		pos += n
	}

	payload := make([]byte, len(b)-pos)
	copy(payload, b[pos:])

	return Parsed{Header: hdr, IEs: tree, Payload: payload}, nil
}

// Write assembles p into a fresh byte slice, per spec.md §4.2's write
// path: frame-control, seqno, addresses, security header, header IEs
// (termination-IE-1 if payload IEs follow, termination-IE-2
// otherwise), payload IE list, payload. The trailing MIC-64, if
// Security.KeyIndex != 0, is left zeroed: it is computed by the RCP.
func Write(p Parsed) ([]byte, error) {
	dstEUI64 := p.Header.HasDst
	panIDCompr, hasSrcPANID, ok := addrComboForWrite(dstEUI64, p.Header.PANID != 0xffff)
	if !ok {
		return nil, fmt.Errorf("%w: no address mode for dstEUI64=%v hasSrcPANID=%v", ErrUnsupported, dstEUI64, p.Header.PANID != 0xffff)
	}

	dstMode := uint16(addrModeNone)
	if dstEUI64 {
		dstMode = addrModeEUI64
	}

	fcf := uint16(p.Header.Type) & fcfFrameType
	if p.Header.Security.KeyIndex != 0 {
		fcf |= fcfSecured
	}
	if p.Header.AckReq {
		fcf |= fcfAckReq
	}
	if panIDCompr {
		fcf |= fcfPANIDCompr
	}
	if p.Header.Seqno < 0 {
		fcf |= fcfDelSeqno
	}
	fcf |= fcfHasIE
	fcf |= dstMode << 10
	fcf |= frameVersion2015 << 12
	fcf |= addrModeEUI64 << 14

	buf := make([]byte, 2, 64)
	binary.LittleEndian.PutUint16(buf, fcf)

	if p.Header.Seqno >= 0 {
		buf = append(buf, byte(p.Header.Seqno))
	}
	if dstEUI64 {
		buf = append(buf, eui64ToLE(p.Header.Dst)...)
	}
	if hasSrcPANID {
		buf = binary.LittleEndian.AppendUint16(buf, p.Header.PANID)
	}
	buf = append(buf, eui64ToLE(p.Header.Src)...)

	if p.Header.Security.KeyIndex != 0 {
		var err error
		buf, err = writeSecurityHeader(buf, p.Header.Security)
		if err != nil {
			return nil, err
		}
	}

	var err error
	buf, err = ie.Write(buf, p.IEs)
	if err != nil {
		return nil, err
	}

	buf = append(buf, p.Payload...)

	if p.Header.Security.KeyIndex != 0 {
		buf = append(buf, make([]byte, 8)...) // MIC-64 filled in by the RCP
	}
	return buf, nil
}

func parseSecurityHeader(b []byte) (Security, int, error) {
	if len(b) < 1 {
		return Security{}, 0, fmt.Errorf("%w: missing security control field", ErrTruncated)
	}
	scf := b[0]
	level := SecurityLevel(scf & secHdrLevel)
	if level != SecurityLevelEncMIC64 {
		return Security{}, 0, fmt.Errorf("%w: security level %d", ErrUnsupported, level)
	}
	keyMode := KeyIDMode((scf & secHdrKeyIDMode) >> 3)
	if keyMode != KeyIDModeIndex {
		return Security{}, 0, fmt.Errorf("%w: key id mode %d", ErrUnsupported, keyMode)
	}
	ctrSuppressed := scf&secHdrDelFrameCtr != 0
	pos := 1
	sec := Security{Level: level, KeyIDMode: keyMode}
	if !ctrSuppressed {
		if len(b) < pos+4 {
			return Security{}, 0, fmt.Errorf("%w: truncated frame counter", ErrTruncated)
		}
		sec.FrameCounter = binary.LittleEndian.Uint32(b[pos:])
		sec.CounterPresent = true
		pos += 4
	}
	if len(b) < pos+1 {
		return Security{}, 0, fmt.Errorf("%w: missing key index", ErrTruncated)
	}
	sec.KeyIndex = b[pos]
	pos++
	return sec, pos, nil
}

func writeSecurityHeader(buf []byte, sec Security) ([]byte, error) {
	scf := uint8(SecurityLevelEncMIC64) | uint8(KeyIDModeIndex)<<3
	if !sec.CounterPresent {
		scf |= secHdrDelFrameCtr
	}
	buf = append(buf, scf)
	if sec.CounterPresent {
		buf = binary.LittleEndian.AppendUint32(buf, sec.FrameCounter)
	}
	buf = append(buf, sec.KeyIndex)
	return buf, nil
}

func eui64FromLE(b []byte) EUI64 {
	var e EUI64
	for i := 0; i < 8; i++ {
		e[7-i] = b[i]
	}
	return e
}

func eui64ToLE(e EUI64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = e[7-i]
	}
	return out
}

type addrCombo struct {
	dstEUI64    bool
	hasSrcPANID bool
}

// addrCombos enumerates exactly the combinations spec.md §4.2 honors:
// address-compression 0b01 (src EUI-64 only, no dst) or symmetric
// (src+dst EUI-64), each with PAN-ID-present on the combination that
// needs it. This restates the source's table-driven union (spec.md §9)
// as a small discriminated lookup.
var addrCombos = []struct {
	dstMode     uint8
	srcMode     uint8
	panIDCompr  bool
	combo       addrCombo
}{
	{addrModeNone, addrModeEUI64, false, addrCombo{dstEUI64: false, hasSrcPANID: true}},
	{addrModeNone, addrModeEUI64, true, addrCombo{dstEUI64: false, hasSrcPANID: false}},
	{addrModeEUI64, addrModeEUI64, true, addrCombo{dstEUI64: true, hasSrcPANID: false}},
}

func lookupAddrCombo(dstMode, srcMode uint8, panIDCompr bool) (addrCombo, bool) {
	for _, c := range addrCombos {
		if c.dstMode == dstMode && c.srcMode == srcMode && c.panIDCompr == panIDCompr {
			return c.combo, true
		}
	}
	return addrCombo{}, false
}

func addrComboForWrite(dstEUI64, hasSrcPANID bool) (panIDCompr, hasPAN bool, ok bool) {
	for _, c := range addrCombos {
		if c.combo.dstEUI64 == dstEUI64 && c.combo.hasSrcPANID == hasSrcPANID {
			return c.panIDCompr, c.combo.hasSrcPANID, true
		}
	}
	return false, false, false
}
