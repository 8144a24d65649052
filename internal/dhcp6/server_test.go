package dhcp6

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSolicit(t *testing.T, clientEUI64 [8]byte, iaid uint32, withRapidCommit, withElapsed bool) []byte {
	t.Helper()
	opts := []Option{
		{Code: OptClientID, Data: MarshalDUID(ClientDUID{HWType: HWTypeEUI64, LLAddr: clientEUI64[:]})},
		{Code: OptIANA, Data: func() []byte {
			buf := make([]byte, 12)
			buf[3] = byte(iaid)
			return buf
		}()},
	}
	if withRapidCommit {
		opts = append(opts, Option{Code: OptRapidCommit})
	}
	if withElapsed {
		opts = append(opts, Option{Code: OptElapsedTime, Data: []byte{0, 0}})
	}

	msg := []byte{MsgSolicit, 0xaa, 0xbb, 0xcc}
	return WriteOptions(msg, opts)
}

func TestServerHandleRequestRepliesToRapidCommitSolicit(t *testing.T) {
	s := NewServer([8]byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 1}, [8]byte{0xff})
	client := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

	reply, err := s.HandleRequest(buildSolicit(t, client, 42, true, true))

	require.NoError(t, err)
	require.NotEmpty(t, reply)
	assert.Equal(t, MsgReply, reply[0])
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, reply[1:4])

	opts, err := ParseOptions(reply[4:])
	require.NoError(t, err)

	ianaOpt, ok := Get(opts, OptIANA)
	require.True(t, ok)
	iana, err := ParseIANA(ianaOpt.Data)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), iana.IAID)

	subOpts, err := ParseOptions(ianaOpt.Data[12:])
	require.NoError(t, err)
	iaAddrOpt, ok := Get(subOpts, OptIAAddr)
	require.True(t, ok)
	var gotAddr [16]byte
	copy(gotAddr[:], iaAddrOpt.Data[:16])
	assert.Equal(t, s.deriveAddress(client[:]), gotAddr)

	_, ok = Get(opts, OptRapidCommit)
	assert.True(t, ok)
}

func TestServerDeriveAddressFlipsUniversalLocalBit(t *testing.T) {
	s := NewServer([8]byte{0x20, 0x01, 0x0d, 0xb8}, [8]byte{})
	client := []byte{0x00, 1, 2, 3, 4, 5, 6, 7}

	addr := s.deriveAddress(client)

	assert.Equal(t, byte(0x02), addr[8])
	assert.Equal(t, byte(1), addr[9])
}

func TestServerHandleRequestRejectsMissingRapidCommit(t *testing.T) {
	s := NewServer([8]byte{}, [8]byte{})
	client := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

	_, err := s.HandleRequest(buildSolicit(t, client, 1, false, true))

	assert.ErrorIs(t, err, ErrUnsupportedRequest)
}

func TestServerHandleRequestRejectsMissingElapsedTime(t *testing.T) {
	s := NewServer([8]byte{}, [8]byte{})
	client := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

	_, err := s.HandleRequest(buildSolicit(t, client, 1, true, false))

	assert.ErrorIs(t, err, ErrUnsupportedRequest)
}

func TestServerHandleRequestRejectsUnsupportedMessageType(t *testing.T) {
	s := NewServer([8]byte{}, [8]byte{})

	_, err := s.HandleRequest([]byte{MsgRenew, 0, 0, 0})

	assert.ErrorIs(t, err, ErrUnsupportedRequest)
}

func TestServerHandleRequestUnwrapsRelayForwardAndRewrapsReply(t *testing.T) {
	s := NewServer([8]byte{0x20, 0x01, 0x0d, 0xb8}, [8]byte{0xff})
	client := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	inner := buildSolicit(t, client, 9, true, true)

	linkAddr := make([]byte, 16)
	linkAddr[0] = 0xfe
	peerAddr := make([]byte, 16)
	peerAddr[0] = 0xfd

	relayMsg := []byte{MsgRelayForward, 1}
	relayMsg = append(relayMsg, linkAddr...)
	relayMsg = append(relayMsg, peerAddr...)
	relayMsg = WriteOptions(relayMsg, []Option{
		{Code: OptInterfaceID, Data: []byte("eth-relay-1")},
		{Code: OptRelay, Data: inner},
	})

	reply, err := s.HandleRequest(relayMsg)

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(reply), 34)
	assert.Equal(t, MsgRelayReply, reply[0])
	assert.Equal(t, byte(1), reply[1])
	assert.Equal(t, linkAddr, reply[2:18])
	assert.Equal(t, peerAddr, reply[18:34])

	outOpts, err := ParseOptions(reply[34:])
	require.NoError(t, err)
	ifaceIDOpt, ok := Get(outOpts, OptInterfaceID)
	require.True(t, ok)
	assert.Equal(t, "eth-relay-1", string(ifaceIDOpt.Data))

	relayOpt, ok := Get(outOpts, OptRelay)
	require.True(t, ok)
	assert.Equal(t, MsgReply, relayOpt.Data[0])
}

func TestServerHandleRequestRelayForwardPropagatesInnerError(t *testing.T) {
	s := NewServer([8]byte{}, [8]byte{})
	linkAddr := make([]byte, 16)
	peerAddr := make([]byte, 16)

	relayMsg := []byte{MsgRelayForward, 1}
	relayMsg = append(relayMsg, linkAddr...)
	relayMsg = append(relayMsg, peerAddr...)
	relayMsg = WriteOptions(relayMsg, []Option{
		{Code: OptRelay, Data: []byte{MsgRenew, 0, 0, 0}},
	})

	_, err := s.HandleRequest(relayMsg)

	assert.ErrorIs(t, err, ErrUnsupportedRequest)
}
