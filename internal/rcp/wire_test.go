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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.PutBool(true)
	e.PutU8(0xab)
	e.PutU16(0x1234)
	e.PutU32(0xdeadbeef)
	e.PutU64(0x0123456789abcdef)
	e.PutUint(300) // exercises the multi-byte LEB128 path
	e.PutData([]byte{1, 2, 3})
	e.PutFixed([]byte{9, 9})
	e.PutStr("wisun")

	d := NewDecoder(e.Bytes())
	assert.True(t, d.Bool())
	assert.Equal(t, uint8(0xab), d.U8())
	assert.Equal(t, uint16(0x1234), d.U16())
	assert.Equal(t, uint32(0xdeadbeef), d.U32())
	assert.Equal(t, uint64(0x0123456789abcdef), d.U64())
	assert.Equal(t, uint32(300), d.Uint())
	assert.Equal(t, []byte{1, 2, 3}, d.Data())
	assert.Equal(t, []byte{9, 9}, d.Fixed(2))
	assert.Equal(t, "wisun", d.Str())
	require.NoError(t, d.Err)
	assert.Equal(t, 0, d.Remaining())
}

func TestDecodeTruncatedSetsErr(t *testing.T) {
	d := NewDecoder([]byte{0x01})
	_ = d.U32()
	require.Error(t, d.Err)
	assert.True(t, errors.Is(d.Err, ErrTruncated))
	// Further reads stay zero rather than panicking.
	assert.Equal(t, uint8(0), d.U8())
}

func TestUintVarintSingleByte(t *testing.T) {
	e := NewEncoder()
	e.PutUint(42)
	assert.Equal(t, []byte{42}, e.Bytes())
}
