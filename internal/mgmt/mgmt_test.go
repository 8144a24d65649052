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

package mgmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathisMARION/wisun-br-linux/internal/ie"
	"github.com/MathisMARION/wisun-br-linux/internal/trickle"
)

type fakePersister struct{ saved []uint16 }

func (f *fakePersister) SavePANVersion(v uint16) error {
	f.saved = append(f.saved, v)
	return nil
}

func newAnnouncer(persister Persister) *Announcer {
	state := State{NetworkName: "wisun-net", PANSize: 10, RoutingCost: 1}
	return NewAnnouncer(state, trickle.Config{IminMs: 100, ImaxDoublings: 4, K: 1}, persister, nil)
}

func TestBuildPAContainsExpectedIEs(t *testing.T) {
	a := newAnnouncer(nil)
	tree := a.BuildPA()
	require.Len(t, tree.Header, 1)
	_, ok := tree.Header[0].(ie.UTTIE)
	assert.True(t, ok)

	var sawUS, sawPAN, sawNetname, sawPOM bool
	for _, p := range tree.Payload {
		switch p.(type) {
		case ie.USIE:
			sawUS = true
		case ie.PANIE:
			sawPAN = true
		case ie.NETNAMEIE:
			sawNetname = true
		case ie.POMIE:
			sawPOM = true
		}
	}
	assert.True(t, sawUS)
	assert.True(t, sawPAN)
	assert.True(t, sawNetname)
	assert.True(t, sawPOM)
}

func TestBuildPCIncludesLFNIEsOnlyWhenEnabled(t *testing.T) {
	a := newAnnouncer(nil)
	tree := a.BuildPC()
	for _, p := range tree.Payload {
		if _, ok := p.(ie.LFNVERIE); ok {
			t.Fatal("LFNVER-IE must not be present when LFNs are disabled")
		}
	}

	a.State.LFNEnabled = true
	tree = a.BuildPC()
	var sawLFNVer, sawLGTKHash bool
	for _, p := range tree.Payload {
		switch p.(type) {
		case ie.LFNVERIE:
			sawLFNVer = true
		case ie.LGTKHASHIE:
			sawLGTKHash = true
		}
	}
	assert.True(t, sawLFNVer)
	assert.True(t, sawLGTKHash)
}

func TestPANVersionIncreaseResetsPCTrickleAndPersists(t *testing.T) {
	persister := &fakePersister{}
	a := newAnnouncer(persister)
	a.PC.EndInterval()
	a.PC.EndInterval()
	require.Greater(t, a.PC.IntervalMs(), uint32(100))

	require.NoError(t, a.PANVersionIncrease())
	assert.Equal(t, uint16(1), a.State.PANVersion)
	assert.Equal(t, uint32(100), a.PC.IntervalMs(), "PANVersionIncrease must reset PC's Trickle to inconsistent")
	require.Equal(t, []uint16{1}, persister.saved)
}

func TestLFNVersionIncreaseAlsoBumpsPANVersion(t *testing.T) {
	persister := &fakePersister{}
	a := newAnnouncer(persister)
	require.NoError(t, a.LFNVersionIncrease())
	assert.Equal(t, uint16(1), a.State.LFNVersion)
	assert.Equal(t, uint16(1), a.State.PANVersion)
}

func TestAirtimeLimiterDeniesOverBudget(t *testing.T) {
	l := NewAirtimeLimiter(100, time.Second)
	assert.True(t, l.Allow(60))
	assert.True(t, l.Allow(30))
	assert.False(t, l.Allow(20), "90+20 exceeds the 100ms budget")
	assert.True(t, l.Allow(10), "90+10 exactly meets the budget")
}

func TestAirtimeLimiterResetsAfterWindow(t *testing.T) {
	clock := time.Now()
	l := NewAirtimeLimiter(100, 10*time.Millisecond)
	l.now = func() time.Time { return clock }
	assert.True(t, l.Allow(100))
	assert.False(t, l.Allow(1))

	clock = clock.Add(11 * time.Millisecond)
	assert.True(t, l.Allow(100), "a new window must reset the used budget")
}
