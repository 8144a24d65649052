package dhcp6

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionsRoundTripsWriteOptions(t *testing.T) {
	want := []Option{
		{Code: OptClientID, Data: []byte{1, 2, 3}},
		{Code: OptRapidCommit, Data: nil},
	}

	wire := WriteOptions(nil, want)
	got, err := ParseOptions(wire)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, OptClientID, got[0].Code)
	assert.Equal(t, []byte{1, 2, 3}, got[0].Data)
	assert.Equal(t, OptRapidCommit, got[1].Code)
	assert.Empty(t, got[1].Data)
}

func TestParseOptionsRejectsTruncatedHeader(t *testing.T) {
	_, err := ParseOptions([]byte{0, 1, 0})

	assert.Error(t, err)
}

func TestParseOptionsRejectsDeclaredLengthLongerThanRemaining(t *testing.T) {
	_, err := ParseOptions([]byte{0, 1, 0, 10, 1, 2})

	assert.Error(t, err)
}

func TestGetFindsMatchingOption(t *testing.T) {
	opts := []Option{{Code: OptServerID, Data: []byte{9}}, {Code: OptClientID, Data: []byte{8}}}

	got, ok := Get(opts, OptClientID)

	require.True(t, ok)
	assert.Equal(t, []byte{8}, got.Data)
}

func TestGetReturnsFalseWhenAbsent(t *testing.T) {
	_, ok := Get(nil, OptClientID)
	assert.False(t, ok)
}

func TestClientDUIDRoundTrips(t *testing.T) {
	want := ClientDUID{HWType: HWTypeEUI64, LLAddr: []byte{1, 2, 3, 4, 5, 6, 7, 8}}

	wire := MarshalDUID(want)
	got, err := ParseClientDUID(wire)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseClientDUIDRejectsUnsupportedType(t *testing.T) {
	wire := MarshalDUID(ClientDUID{HWType: HWTypeEUI64, LLAddr: []byte{1, 2, 3, 4, 5, 6, 7, 8}})
	wire[1] = byte(DUIDTypeUUID)

	_, err := ParseClientDUID(wire)

	assert.Error(t, err)
}

func TestParseIANARoundTrips(t *testing.T) {
	data := MarshalIANAWithAddress(7, [16]byte{0xfd, 0x00, 1}, 100, 200)

	opts, err := ParseOptions(data[12:]) // the sub-option (IA Address) that follows the fixed header
	require.NoError(t, err)
	iana, err := ParseIANA(data[:12])

	require.NoError(t, err)
	assert.Equal(t, uint32(7), iana.IAID)
	require.Len(t, opts, 1)
	assert.Equal(t, OptIAAddr, opts[0].Code)
}
