package addrglue

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEUI64(b byte) EUI64 {
	var e EUI64
	e[7] = b
	return e
}

func TestRegistryRegisterSucceedsForNewNode(t *testing.T) {
	r := NewRegistry(4)

	status := r.Register(testEUI64(1), netip.MustParseAddr("2001:db8::1"), 60)

	assert.Equal(t, EAROSuccess, status)
	addr, ok := r.Lookup(testEUI64(1))
	require.True(t, ok)
	assert.Equal(t, "2001:db8::1", addr.String())
}

func TestRegistryRegisterRejectsDuplicateAddressFromAnotherNode(t *testing.T) {
	r := NewRegistry(4)
	addr := netip.MustParseAddr("2001:db8::1")
	require.Equal(t, EAROSuccess, r.Register(testEUI64(1), addr, 60))

	status := r.Register(testEUI64(2), addr, 60)

	assert.Equal(t, EARODuplicateAddress, status)
}

func TestRegistryRegisterAllowsSameNodeToReRegisterSameAddress(t *testing.T) {
	r := NewRegistry(4)
	addr := netip.MustParseAddr("2001:db8::1")
	require.Equal(t, EAROSuccess, r.Register(testEUI64(1), addr, 60))

	status := r.Register(testEUI64(1), addr, 120)

	assert.Equal(t, EAROSuccess, status)
}

func TestRegistryRegisterRejectsWhenCacheFull(t *testing.T) {
	r := NewRegistry(1)
	require.Equal(t, EAROSuccess, r.Register(testEUI64(1), netip.MustParseAddr("2001:db8::1"), 60))

	status := r.Register(testEUI64(2), netip.MustParseAddr("2001:db8::2"), 60)

	assert.Equal(t, EARONeighborCacheFull, status)
}

func TestRegistryRegisterWithZeroLifetimeDeregisters(t *testing.T) {
	r := NewRegistry(4)
	addr := netip.MustParseAddr("2001:db8::1")
	require.Equal(t, EAROSuccess, r.Register(testEUI64(1), addr, 60))

	status := r.Register(testEUI64(1), addr, 0)

	assert.Equal(t, EARORemoved, status)
	_, ok := r.Lookup(testEUI64(1))
	assert.False(t, ok)
}

func TestRegistryDeregisterOfUnknownNodeIsSuccess(t *testing.T) {
	r := NewRegistry(4)

	status := r.Register(testEUI64(9), netip.MustParseAddr("2001:db8::9"), 0)

	assert.Equal(t, EAROSuccess, status)
}

func TestRegistryReRegisterWithNewAddressFreesOldAddress(t *testing.T) {
	r := NewRegistry(4)
	require.Equal(t, EAROSuccess, r.Register(testEUI64(1), netip.MustParseAddr("2001:db8::1"), 60))

	require.Equal(t, EAROSuccess, r.Register(testEUI64(1), netip.MustParseAddr("2001:db8::2"), 60))

	status := r.Register(testEUI64(2), netip.MustParseAddr("2001:db8::1"), 60)
	assert.Equal(t, EAROSuccess, status, "the old address should be free for reuse")
}

func TestRegistryGCRemovesExpiredEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(4)
	r.now = func() time.Time { return now }
	require.Equal(t, EAROSuccess, r.Register(testEUI64(1), netip.MustParseAddr("2001:db8::1"), 1))

	now = now.Add(2 * time.Minute)
	r.GC()

	assert.Equal(t, 0, r.Len())
	_, ok := r.Lookup(testEUI64(1))
	assert.False(t, ok)
}

func TestRegistryGCKeepsUnexpiredEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(4)
	r.now = func() time.Time { return now }
	require.Equal(t, EAROSuccess, r.Register(testEUI64(1), netip.MustParseAddr("2001:db8::1"), 60))

	now = now.Add(time.Minute)
	r.GC()

	assert.Equal(t, 1, r.Len())
}
