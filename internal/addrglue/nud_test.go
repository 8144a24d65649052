package addrglue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNUDEntryExpireReachableGoesStale(t *testing.T) {
	e := &NUDEntry{State: NUDReachable}

	probe, del := e.Expire()

	assert.False(t, probe)
	assert.False(t, del)
	assert.Equal(t, NUDStale, e.State)
}

func TestNUDEntryExpireDelayGoesProbe(t *testing.T) {
	e := &NUDEntry{State: NUDDelay}

	probe, del := e.Expire()

	assert.False(t, probe)
	assert.False(t, del)
	assert.Equal(t, NUDProbe, e.State)
}

func TestNUDEntryExpireProbeSendsUntilExhausted(t *testing.T) {
	e := &NUDEntry{State: NUDProbe}

	for i := 0; i < maxUnicastSolicit; i++ {
		probe, del := e.Expire()
		assert.True(t, probe, "probe %d should still be sent", i+1)
		assert.False(t, del)
	}

	probe, del := e.Expire()
	assert.False(t, probe)
	assert.True(t, del, "entry should be deleted once probes are exhausted")
}

func TestNUDEntryConfirmReachableResetsProbeCount(t *testing.T) {
	e := &NUDEntry{State: NUDProbe, ProbeCount: 2}

	e.ConfirmReachable()

	assert.Equal(t, NUDReachable, e.State)
	assert.Equal(t, 0, e.ProbeCount)
}

func TestNUDEntryMarkStaleNowProbingOnlyAppliesWhenStale(t *testing.T) {
	e := &NUDEntry{State: NUDStale}
	e.MarkStaleNowProbing()
	assert.Equal(t, NUDDelay, e.State)

	e2 := &NUDEntry{State: NUDReachable}
	e2.MarkStaleNowProbing()
	assert.Equal(t, NUDReachable, e2.State, "non-stale entries are unaffected")
}

func TestNUDStateStringCoversAllStates(t *testing.T) {
	cases := map[NUDState]string{
		NUDIncomplete: "INCOMPLETE",
		NUDReachable:  "REACHABLE",
		NUDStale:      "STALE",
		NUDDelay:      "DELAY",
		NUDProbe:      "PROBE",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
	assert.Equal(t, "UNKNOWN", NUDState(99).String())
}
