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

package rpl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathisMARION/wisun-br-linux/internal/trickle"
)

func testAnnouncer() *Announcer {
	tr := trickle.New(trickle.Config{IminMs: 100, ImaxDoublings: 4, K: 2}, nil)
	return NewAnnouncer(DODAGConfig{
		InstanceID:      0,
		DODAGVersion:    1,
		PCS:             0,
		LifetimeUnit:    time.Second,
		DefaultLifetime: 1000,
	}, tr, 2)
}

func TestBuildDIOAdvertisesRootRankAndNonStoringMode(t *testing.T) {
	a := testAnnouncer()
	dio := a.BuildDIO()
	assert.Equal(t, uint16(MinHopRankIncrease), dio.Rank)
	assert.Equal(t, uint8(ModeOfOperationNonStoring), dio.ModeOfOperation)
	assert.Equal(t, uint8(ObjectiveCodePointMRHOF), dio.OCP)
}

func TestIncrementDTSNBumpsDTSNAndResetsTrickle(t *testing.T) {
	a := testAnnouncer()
	a.trickle.EndInterval() // I doubles to 200 ms, away from Imin
	before := a.BuildDIO().DTSN
	a.IncrementDTSN()
	after := a.BuildDIO().DTSN
	assert.Equal(t, before+1, after)
	assert.Equal(t, uint32(100), a.trickle.IntervalMs(), "trickle interval reset to Imin")
}

func TestHandleDISRateLimitsResponses(t *testing.T) {
	a := testAnnouncer()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	_, ok1 := a.HandleDIS()
	_, ok2 := a.HandleDIS()
	_, ok3 := a.HandleDIS()
	require.True(t, ok1)
	require.True(t, ok2)
	assert.False(t, ok3, "third DIS within the same second must be rate-limited")
}

func TestHandleDISResetsLimitInNextWindow(t *testing.T) {
	a := testAnnouncer()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	_, _ = a.HandleDIS()
	_, _ = a.HandleDIS()
	_, ok := a.HandleDIS()
	require.False(t, ok)

	a.now = func() time.Time { return fixed.Add(time.Second) }
	_, ok = a.HandleDIS()
	assert.True(t, ok, "a new second must reopen the rate-limit window")
}

func TestBuildDAOACKCarriesSequenceAndStatus(t *testing.T) {
	a := testAnnouncer()
	dio := a.BuildDIO()
	ack := BuildDAOACK(dio.InstanceID, dio.DODAGID, 7, 0)
	assert.Equal(t, uint8(7), ack.DAOSequence)
	assert.Equal(t, uint8(0), ack.Status)
}
