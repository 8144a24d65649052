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

package rcp

import "fmt"

// EUI64 is an IEEE EUI-64 address as carried on the RCP wire.
type EUI64 [8]byte

// SetRadioTxPower is set_radio_tx_power(dbm).
type SetRadioTxPower struct{ DBm int8 }

func (r SetRadioTxPower) marshal() (Opcode, []byte) {
	e := NewEncoder()
	e.PutU8(uint8(r.DBm))
	return OpSetRadioTxPower, e.Bytes()
}

// SetSecurity is set_security(enable).
type SetSecurity struct{ Enable bool }

func (r SetSecurity) marshal() (Opcode, []byte) {
	e := NewEncoder()
	e.PutBool(r.Enable)
	return OpSetSecurity, e.Bytes()
}

// SetFrameCounter is set_frame_counter(slot, value), used on startup
// to seed the RCP with the persisted monotonic floor (spec.md §4.0).
type SetFrameCounter struct {
	Slot  uint8
	Value uint32
}

func (r SetFrameCounter) marshal() (Opcode, []byte) {
	e := NewEncoder()
	e.PutU8(r.Slot)
	e.PutU32(r.Value)
	return OpSetFrameCounter, e.Bytes()
}

// SetKey is set_key(slot, lookup, key).
type SetKey struct {
	Slot   uint8
	Lookup [9]byte
	Key    [16]byte
}

func (r SetKey) marshal() (Opcode, []byte) {
	e := NewEncoder()
	e.PutU8(r.Slot)
	e.PutFixed(r.Lookup[:])
	e.PutFixed(r.Key[:])
	return OpSetKey, e.Bytes()
}

// SetFilterSrc64 is set_filter_src64(list, allow|deny).
type SetFilterSrc64 struct {
	List   []EUI64
	Policy AllowDeny
}

func (r SetFilterSrc64) marshal() (Opcode, []byte) {
	e := NewEncoder()
	e.PutU8(uint8(r.Policy))
	e.PutU16(uint16(len(r.List)))
	for _, a := range r.List {
		e.PutFixed(a[:])
	}
	return OpSetFilterSrc64, e.Bytes()
}

// FHSSTimings is the own unicast/broadcast schedule pushed via
// set_fhss_timings: unicast and broadcast dwell, broadcast interval,
// channel plan ID, channel function and fixed channel, shared shape with internal/ie's US-IE/BS-IE (C4 folds
// one FHSSTimings into an IE and into this request).
type FHSSTimings struct {
	UnicastDwellMs   uint8
	BroadcastDwellMs uint8
	BroadcastIntervalMs uint32
	ChannelPlanID    uint8
	ChannelFunction  uint8
	FixedChannel     uint16
}

func (r FHSSTimings) marshal() (Opcode, []byte) {
	e := NewEncoder()
	e.PutU8(r.UnicastDwellMs)
	e.PutU8(r.BroadcastDwellMs)
	e.PutU32(r.BroadcastIntervalMs)
	e.PutU8(r.ChannelPlanID)
	e.PutU8(r.ChannelFunction)
	e.PutU16(r.FixedChannel)
	return OpSetFHSSTimings, e.Bytes()
}

// SetFHSSNeighbor is set_fhss_neighbor(eui64, timing).
type SetFHSSNeighbor struct {
	EUI64  EUI64
	Timing FHSSTimings
}

func (r SetFHSSNeighbor) marshal() (Opcode, []byte) {
	e := NewEncoder()
	e.PutFixed(r.EUI64[:])
	_, body := r.Timing.marshal()
	e.buf = append(e.buf, body...)
	return OpSetFHSSNeighbor, e.Bytes()
}

// DropFHSSNeighbor is drop_fhss_neighbor(eui64).
type DropFHSSNeighbor struct{ EUI64 EUI64 }

func (r DropFHSSNeighbor) marshal() (Opcode, []byte) {
	e := NewEncoder()
	e.PutFixed(r.EUI64[:])
	return OpDropFHSSNeighbor, e.Bytes()
}

// ReqReset is req_reset: ask the RCP to restart its MAC/PHY state.
type ReqReset struct{}

func (r ReqReset) marshal() (Opcode, []byte) { return OpReqReset, nil }

// ReqTX is req_tx(frame_desc): transmit handle carries the request
// correlation used to match the later CnfTX.
type ReqTX struct {
	Handle  uint8
	Channel uint8
	Frame   []byte
}

func (r ReqTX) marshal() (Opcode, []byte) {
	e := NewEncoder()
	e.PutU8(r.Handle)
	e.PutU8(r.Channel)
	e.PutData(r.Frame)
	return OpReqTX, e.Bytes()
}

// request is the set of outbound primitives the client can send.
type request interface {
	marshal() (Opcode, []byte)
}

// CnfTX is cnf_tx(handle, status).
type CnfTX struct {
	Handle uint8
	Status TXStatus
}

func parseCnfTX(d *Decoder) CnfTX {
	return CnfTX{Handle: d.U8(), Status: TXStatus(d.U8())}
}

// IndRX is ind_rx: a received frame plus its radio metadata.
type IndRX struct {
	Frame        []byte
	TimestampUs  uint64
	Channel      uint8
	LQI          uint8
	RSSI         int8
	KeyIndexUsed uint8
	FrameCounter uint32
}

func parseIndRX(d *Decoder) IndRX {
	return IndRX{
		Frame:        d.Data(),
		TimestampUs:  d.U64(),
		Channel:      d.U8(),
		LQI:          d.U8(),
		RSSI:         int8(d.U8()),
		KeyIndexUsed: d.U8(),
		FrameCounter: d.U32(),
	}
}

// IndReset is ind_reset(version_label, fw_version, api_version).
type IndReset struct {
	VersionLabel string
	FWVersion    string
	APIVersion   string
}

func parseIndReset(d *Decoder) IndReset {
	return IndReset{
		VersionLabel: d.Str(),
		FWVersion:    d.Str(),
		APIVersion:   d.Str(),
	}
}

// Indication is the sum type returned by Client.Indications(); exactly
// one of its fields is non-nil per value delivered.
type Indication struct {
	CnfTX    *CnfTX
	IndRX    *IndRX
	IndReset *IndReset
}

func parseIndication(f rawFrame) (Indication, error) {
	d := NewDecoder(f.Body)
	var ind Indication
	switch f.Opcode {
	case OpCnfTX:
		v := parseCnfTX(d)
		ind.CnfTX = &v
	case OpIndRX:
		v := parseIndRX(d)
		ind.IndRX = &v
	case OpIndReset:
		v := parseIndReset(d)
		ind.IndReset = &v
	default:
		return Indication{}, fmt.Errorf("%w: unknown indication opcode %d", ErrMalformed, f.Opcode)
	}
	if d.Err != nil {
		return Indication{}, d.Err
	}
	return ind, nil
}
