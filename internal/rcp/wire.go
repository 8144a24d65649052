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

import (
	"encoding/binary"
	"fmt"
)

// Encoder builds one RCP frame body field by field, little-endian,
// matching the host-interface primitive set spec.md §4.3 describes
// without pinning an exact wire layout.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated frame body.
func (e *Encoder) Bytes() []byte { return e.buf }

// PutBool appends a one-byte boolean.
func (e *Encoder) PutBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// PutU8 appends one byte.
func (e *Encoder) PutU8(v uint8) { e.buf = append(e.buf, v) }

// PutU16 appends a little-endian uint16.
func (e *Encoder) PutU16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }

// PutU32 appends a little-endian uint32.
func (e *Encoder) PutU32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

// PutU64 appends a little-endian uint64.
func (e *Encoder) PutU64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

// PutUint appends v as a LEB128 varint, mirroring hif_push_uint.
func (e *Encoder) PutUint(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			e.buf = append(e.buf, b|0x80)
		} else {
			e.buf = append(e.buf, b)
			return
		}
	}
}

// PutData appends a length-prefixed (uint16 LE) byte string.
func (e *Encoder) PutData(v []byte) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(len(v)))
	e.buf = append(e.buf, v...)
}

// PutFixed appends v verbatim, with no length prefix; used for
// fixed-size fields such as an EUI-64 or a key material buffer.
func (e *Encoder) PutFixed(v []byte) { e.buf = append(e.buf, v...) }

// PutStr appends a NUL-terminated string.
func (e *Encoder) PutStr(v string) { e.buf = append(append(e.buf, v...), 0) }

// Decoder reads fields back out of a frame body in the same order
// Encoder wrote them, matching hif_pop_* semantics: once any read
// fails, Err is set and further reads keep returning zero values
// instead of panicking, so callers can parse optimistically and check
// Err once at the end.
type Decoder struct {
	buf []byte
	pos int
	Err error
}

// NewDecoder wraps b for sequential field reads.
func NewDecoder(b []byte) *Decoder { return &Decoder{buf: b} }

// Remaining reports how many bytes have not yet been consumed.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

func (d *Decoder) need(n int) bool {
	if d.Err != nil {
		return false
	}
	if d.pos+n > len(d.buf) {
		d.Err = fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, len(d.buf)-d.pos)
		return false
	}
	return true
}

// Bool reads one byte as a boolean.
func (d *Decoder) Bool() bool {
	if !d.need(1) {
		return false
	}
	v := d.buf[d.pos] != 0
	d.pos++
	return v
}

// U8 reads one byte.
func (d *Decoder) U8() uint8 {
	if !d.need(1) {
		return 0
	}
	v := d.buf[d.pos]
	d.pos++
	return v
}

// U16 reads a little-endian uint16.
func (d *Decoder) U16() uint16 {
	if !d.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v
}

// U32 reads a little-endian uint32.
func (d *Decoder) U32() uint32 {
	if !d.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v
}

// U64 reads a little-endian uint64.
func (d *Decoder) U64() uint64 {
	if !d.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v
}

// Uint reads a LEB128 varint, mirroring hif_pop_uint.
func (d *Decoder) Uint() uint32 {
	if d.Err != nil {
		return 0
	}
	var v uint32
	shift := uint(0)
	for {
		if !d.need(1) {
			return 0
		}
		cur := d.buf[d.pos]
		d.pos++
		v |= uint32(cur&0x7f) << shift
		shift += 7
		if cur&0x80 == 0 {
			return v
		}
		if shift > 32 {
			d.Err = fmt.Errorf("%w: varint overflow", ErrMalformed)
			return 0
		}
	}
}

// Data reads a length-prefixed (uint16 LE) byte string.
func (d *Decoder) Data() []byte {
	n := int(d.U16())
	if !d.need(n) {
		return nil
	}
	v := make([]byte, n)
	copy(v, d.buf[d.pos:d.pos+n])
	d.pos += n
	return v
}

// Fixed reads exactly n bytes verbatim.
func (d *Decoder) Fixed(n int) []byte {
	if !d.need(n) {
		return nil
	}
	v := make([]byte, n)
	copy(v, d.buf[d.pos:d.pos+n])
	d.pos += n
	return v
}

// Str reads a NUL-terminated string.
func (d *Decoder) Str() string {
	if d.Err != nil {
		return ""
	}
	for i := d.pos; i < len(d.buf); i++ {
		if d.buf[i] == 0 {
			v := string(d.buf[d.pos:i])
			d.pos = i + 1
			return v
		}
	}
	d.Err = fmt.Errorf("%w: unterminated string", ErrMalformed)
	return ""
}
