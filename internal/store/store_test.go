package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wisun-br.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreBRInfoRoundTrips(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.GetBRInfo()
	require.NoError(t, err)
	assert.False(t, ok)

	want := BRInfo{BSI: 42, PANID: 0x1234, PANVersion: 1, NetworkName: "wisun-net"}
	require.NoError(t, s.PutBRInfo(want))

	got, ok, err := s.GetBRInfo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestStoreNeighborRoundTripsAndDeletes(t *testing.T) {
	s := openTestStore(t)
	eui64 := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

	want := NeighborRecord{EUI64: eui64, ShortAddr: 7, IsParent: true, LastSeenSec: 100}
	require.NoError(t, s.PutNeighbor(eui64, want))

	got, ok, err := s.GetNeighbor(eui64)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, s.DeleteNeighbor(eui64))
	_, ok, err = s.GetNeighbor(eui64)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreForEachNeighborVisitsAllRecords(t *testing.T) {
	s := openTestStore(t)
	eui1 := [8]byte{1}
	eui2 := [8]byte{2}
	require.NoError(t, s.PutNeighbor(eui1, NeighborRecord{EUI64: eui1, ShortAddr: 1}))
	require.NoError(t, s.PutNeighbor(eui2, NeighborRecord{EUI64: eui2, ShortAddr: 2}))

	seen := map[[8]byte]uint16{}
	err := s.ForEachNeighbor(func(eui64 [8]byte, rec NeighborRecord) error {
		seen[eui64] = rec.ShortAddr
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, map[[8]byte]uint16{eui1: 1, eui2: 2}, seen)
}

func TestStoreKeysRoundTrips(t *testing.T) {
	s := openTestStore(t)
	eui64 := [8]byte{9, 9, 9, 9, 9, 9, 9, 9}
	want := KeyRecord{EUI64: eui64, GTKHashes: [4][8]byte{{1, 2, 3}}}

	require.NoError(t, s.PutKeys(eui64, want))

	got, ok, err := s.GetKeys(eui64)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestStoreNetworkKeysRoundTrips(t *testing.T) {
	s := openTestStore(t)
	want := NetworkKeysRecord{GTKs: [4][16]byte{{0xaa}}}

	require.NoError(t, s.PutNetworkKeys(want))

	got, ok, err := s.GetNetworkKeys()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestStoreRPLRoundTripsAndDeletes(t *testing.T) {
	s := openTestStore(t)
	want := RPLRecord{
		DODAGID: "fd00::1",
		DTSN:    5,
		Targets: []RPLTargetRecord{{
			Prefix:   "2001:db8::/64",
			Transits: []RPLTransitRecord{{Parent: "fe80::1", PathSequence: 3}},
		}},
	}

	require.NoError(t, s.PutRPL(want.DODAGID, want))

	got, ok, err := s.GetRPL(want.DODAGID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, s.DeleteRPL(want.DODAGID))
	_, ok, err = s.GetRPL(want.DODAGID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreBatchCommitsAllWritesTogether(t *testing.T) {
	s := openTestStore(t)
	eui64 := [8]byte{3, 3, 3}

	err := s.Batch(func(tx *Tx) error {
		if err := tx.PutBRInfo(BRInfo{BSI: 1}); err != nil {
			return err
		}
		return tx.PutNeighbor(eui64, NeighborRecord{EUI64: eui64, ShortAddr: 99})
	})
	require.NoError(t, err)

	info, ok, err := s.GetBRInfo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint16(1), info.BSI)

	rec, ok, err := s.GetNeighbor(eui64)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint16(99), rec.ShortAddr)
}

func TestStoreBatchRollsBackOnError(t *testing.T) {
	s := openTestStore(t)

	errBoom := assert.AnError
	err := s.Batch(func(tx *Tx) error {
		if err := tx.PutBRInfo(BRInfo{BSI: 7}); err != nil {
			return err
		}
		return errBoom
	})
	require.Error(t, err)

	_, ok, err := s.GetBRInfo()
	require.NoError(t, err)
	assert.False(t, ok, "a failed batch must not leave partial writes")
}

func TestStoreReopenPersistsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wisun-br.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.PutBRInfo(BRInfo{BSI: 55, NetworkName: "persisted"}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	info, ok, err := s2.GetBRInfo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", info.NetworkName)
}
