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

package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathisMARION/wisun-br-linux/internal/ie"
)

func TestWriteParseRoundTripUnsecuredBroadcast(t *testing.T) {
	p := Parsed{
		Header: Header{
			Type:   TypeData,
			Seqno:  7,
			AckReq: false,
			HasDst: false,
			PANID:  0xcafe,
			Src:    EUI64{1, 2, 3, 4, 5, 6, 7, 8},
			HasIE:  true,
		},
		IEs: ie.IETree{
			Header: []ie.HeaderIE{ie.RSLIE{RSL: 180}},
		},
		Payload: []byte{0xde, 0xad, 0xbe, 0xef},
	}

	buf, err := Write(p)
	require.NoError(t, err)

	got, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, p.Header.Type, got.Header.Type)
	assert.Equal(t, p.Header.Seqno, got.Header.Seqno)
	assert.False(t, got.Header.HasDst)
	assert.Equal(t, p.Header.PANID, got.Header.PANID)
	assert.Equal(t, p.Header.Src, got.Header.Src)
	assert.Equal(t, p.IEs, got.IEs)
	assert.Equal(t, p.Payload, got.Payload)
}

func TestWriteParseRoundTripUnicastPANIDCompressed(t *testing.T) {
	p := Parsed{
		Header: Header{
			Type:   TypeData,
			Seqno:  -1, // sequence number suppressed
			AckReq: true,
			Dst:    EUI64{8, 7, 6, 5, 4, 3, 2, 1},
			HasDst: true,
			PANID:  0xffff, // omitted, compressed onto the destination
			Src:    EUI64{1, 2, 3, 4, 5, 6, 7, 8},
		},
		Payload: []byte{0x01},
	}

	buf, err := Write(p)
	require.NoError(t, err)

	got, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), got.Header.Seqno)
	assert.True(t, got.Header.HasDst)
	assert.Equal(t, p.Header.Dst, got.Header.Dst)
	assert.Equal(t, uint16(0xffff), got.Header.PANID)
	assert.Equal(t, p.Payload, got.Payload)
}

func TestParseUnsupportedFrameVersionDropped(t *testing.T) {
	buf := []byte{0x01, 0x00} // data frame, frame version field 0, not 2015
	_, err := Parse(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestParseUnsupportedAddressCombinationDropped(t *testing.T) {
	// dst mode = short (0x2), which this implementation never honors.
	// fcfDelSeqno is set so the FCF alone is a complete, parseable prefix.
	fcf := uint16(frameVersion2015)<<12 | uint16(addrModeEUI64)<<14 | uint16(addrModeShort)<<10 | fcfDelSeqno | uint16(TypeData)
	buf := []byte{byte(fcf), byte(fcf >> 8)}
	_, err := Parse(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestParseTruncatedSourceAddressIsMalformed(t *testing.T) {
	p := Parsed{
		Header: Header{Type: TypeData, Seqno: 1, PANID: 0xcafe, Src: EUI64{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	buf, err := Write(p)
	require.NoError(t, err)

	_, err = Parse(buf[:len(buf)-4]) // chop off half the source address
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestParseUnsupportedSecurityLevelDropped(t *testing.T) {
	p := Parsed{
		Header: Header{
			Type:  TypeData,
			Seqno: 1,
			PANID: 0xcafe,
			Src:   EUI64{1, 2, 3, 4, 5, 6, 7, 8},
			Security: Security{
				KeyIndex:       1,
				CounterPresent: true,
				FrameCounter:   9,
			},
		},
	}
	buf, err := Write(p)
	require.NoError(t, err)

	// Corrupt the security control field's level bits. The layout after
	// the source address is: scf, frame counter, key index, a 2-byte
	// header-IE terminator (no IEs and no payload here), then the MIC.
	secOffset := len(buf) - 8 /* MIC */ - 2 /* IE terminator */ - 1 /* key index */ - 4 /* counter */ - 1 /* scf */
	buf[secOffset] = (buf[secOffset] &^ secHdrLevel) | 0x1

	_, err = Parse(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
}
