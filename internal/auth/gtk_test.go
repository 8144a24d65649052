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

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLifetimes() Lifetimes {
	return Lifetimes{
		ExpireOffset:                time.Hour,
		NewActivationTime:           10 * time.Minute,
		NewInstallRequiredWindow:    20 * time.Minute,
		RevocationLifetimeReduction: 5 * time.Minute,
	}
}

func TestKeySetInstallFreshFillsEmptySlot(t *testing.T) {
	k := NewKeySet(4, testLifetimes())
	idx, err := k.InstallFresh()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, SlotFresh, k.slots[idx].Flag)
}

func TestKeySetInstallFreshErrorsWhenFull(t *testing.T) {
	k := NewKeySet(1, testLifetimes())
	_, err := k.InstallFresh()
	require.NoError(t, err)
	_, err = k.InstallFresh()
	assert.ErrorIs(t, err, ErrNoFreeGTKSlot)
}

func TestKeySetSingleActiveInvariantAcrossActivation(t *testing.T) {
	now := time.Now()
	k := NewKeySet(4, testLifetimes())
	k.now = func() time.Time { return now }

	idx1, err := k.InstallFresh()
	require.NoError(t, err)
	require.NoError(t, k.Activate(idx1))
	assert.Equal(t, 1, k.activeCount())

	idx2, err := k.InstallFresh()
	require.NoError(t, err)
	require.NoError(t, k.Activate(idx2))

	assert.Equal(t, 1, k.activeCount(), "activating a new slot must demote the previously active one")
	assert.Equal(t, SlotExpiring, k.slots[idx1].Flag)
	assert.Equal(t, SlotActive, k.slots[idx2].Flag)
}

func TestKeySetActivateRejectsNonFreshSlot(t *testing.T) {
	k := NewKeySet(4, testLifetimes())
	err := k.Activate(0)
	assert.Error(t, err, "slot 0 is empty, not fresh")
}

func TestKeySetTickActivatesAtActiveAtTime(t *testing.T) {
	now := time.Now()
	k := NewKeySet(4, testLifetimes())
	k.now = func() time.Time { return now }

	idx, err := k.InstallFresh()
	require.NoError(t, err)
	assert.Equal(t, SlotFresh, k.slots[idx].Flag)

	now = now.Add(testLifetimes().NewActivationTime)
	k.Tick()
	assert.Equal(t, SlotActive, k.slots[idx].Flag)
}

func TestKeySetTickExpiresPastExpireAt(t *testing.T) {
	now := time.Now()
	k := NewKeySet(4, testLifetimes())
	k.now = func() time.Time { return now }

	idx, err := k.InstallFresh()
	require.NoError(t, err)
	require.NoError(t, k.Activate(idx))

	now = now.Add(testLifetimes().ExpireOffset)
	k.Tick()
	assert.Equal(t, SlotEmpty, k.slots[idx].Flag)
}

func TestKeySetNeedsFreshInstallOnlyInsideWindow(t *testing.T) {
	now := time.Now()
	lt := testLifetimes()
	k := NewKeySet(4, lt)
	k.now = func() time.Time { return now }

	idx, err := k.InstallFresh()
	require.NoError(t, err)
	require.NoError(t, k.Activate(idx))

	assert.False(t, k.NeedsFreshInstall(), "well before the install-required window")

	now = now.Add(lt.ExpireOffset - lt.NewInstallRequiredWindow + time.Second)
	assert.True(t, k.NeedsFreshInstall())
}

func TestKeySetNeedsFreshInstallFalseIfAlreadyInstalled(t *testing.T) {
	now := time.Now()
	lt := testLifetimes()
	k := NewKeySet(4, lt)
	k.now = func() time.Time { return now }

	idx, err := k.InstallFresh()
	require.NoError(t, err)
	require.NoError(t, k.Activate(idx))

	now = now.Add(lt.ExpireOffset - lt.NewInstallRequiredWindow + time.Second)
	require.True(t, k.NeedsFreshInstall())
	_, err = k.InstallFresh()
	require.NoError(t, err)

	assert.False(t, k.NeedsFreshInstall(), "a fresh replacement is already pending")
}

// TestKeySetInstallFreshActivatesBeforeActiveSlotExpires walks
// scenario D's literal timeline: GTK0 active, expiring at t=3600s,
// new_activation_time=600s. GTK1 is installed at t=1800s and must
// activate at t=3000s (600s before GTK0 expires), not 600s after its
// own install (t=2400s).
func TestKeySetInstallFreshActivatesBeforeActiveSlotExpires(t *testing.T) {
	base := time.Now()
	lt := Lifetimes{
		ExpireOffset:                3600 * time.Second,
		NewActivationTime:           600 * time.Second,
		NewInstallRequiredWindow:    1200 * time.Second,
		RevocationLifetimeReduction: 300 * time.Second,
	}
	k := NewKeySet(4, lt)
	k.now = func() time.Time { return base }

	idx0, err := k.InstallFresh()
	require.NoError(t, err)
	require.NoError(t, k.Activate(idx0))
	require.Equal(t, base.Add(3600*time.Second), k.slots[idx0].ExpireAt)

	k.now = func() time.Time { return base.Add(1800 * time.Second) }
	idx1, err := k.InstallFresh()
	require.NoError(t, err)
	assert.Equal(t, base.Add(3000*time.Second), k.slots[idx1].ActiveAt,
		"GTK1 must activate 600s before GTK0 expires (t=3000s), not 600s after its own install (t=2400s)")

	k.now = func() time.Time { return base.Add(3000 * time.Second) }
	k.Tick()
	assert.Equal(t, SlotActive, k.slots[idx1].Flag, "GTK1 activates at t=3000s")
	assert.Equal(t, SlotExpiring, k.slots[idx0].Flag, "GTK0 is demoted to expiring")

	k.now = func() time.Time { return base.Add(3600 * time.Second) }
	k.Tick()
	assert.Equal(t, SlotEmpty, k.slots[idx0].Flag, "GTK0 is revoked at t=3600s")
}

func TestSlotHashDiffersByIndex(t *testing.T) {
	s := Slot{Key: [16]byte{1, 2, 3}}
	h0 := s.Hash(0)
	h1 := s.Hash(1)
	assert.NotEqual(t, h0, h1, "hash must be bound to the slot index, not just the key")
}
