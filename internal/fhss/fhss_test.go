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

package fhss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathisMARION/wisun-br-linux/internal/ie"
)

type fakePusher struct {
	ownCalls      []Schedule
	neighborCalls map[EUI64]Schedule
	dropped       []EUI64
}

func newFakePusher() *fakePusher {
	return &fakePusher{neighborCalls: make(map[EUI64]Schedule)}
}

func (f *fakePusher) PushOwnTimings(s Schedule) error {
	f.ownCalls = append(f.ownCalls, s)
	return nil
}

func (f *fakePusher) PushNeighborTimings(e EUI64, s Schedule) error {
	f.neighborCalls[e] = s
	return nil
}

func (f *fakePusher) DropNeighbor(e EUI64) error {
	f.dropped = append(f.dropped, e)
	return nil
}

func TestUnsecuredScheduleNeverOverwritesSecured(t *testing.T) {
	pusher := newFakePusher()
	m := NewManager(RegMask{0xff}, pusher)
	eui := EUI64{1}

	require.NoError(t, m.UpdateNeighbor(eui, Schedule{FixedChannel: 5}, true))
	require.NoError(t, m.UpdateNeighbor(eui, Schedule{FixedChannel: 99}, false))

	got, ok := m.NeighborSchedule(eui)
	require.True(t, ok)
	assert.Equal(t, uint16(5), got.FixedChannel, "an unsecured frame must never steer an already-authenticated neighbor's schedule")
	assert.Len(t, pusher.neighborCalls, 1, "the unsecured update must not be pushed to the RCP")
}

func TestUnsecuredScheduleUsedBeforeAuthentication(t *testing.T) {
	pusher := newFakePusher()
	m := NewManager(RegMask{0xff}, pusher)
	eui := EUI64{2}

	require.NoError(t, m.UpdateNeighbor(eui, Schedule{FixedChannel: 7}, false))
	got, ok := m.NeighborSchedule(eui)
	require.True(t, ok)
	assert.Equal(t, uint16(7), got.FixedChannel)
	assert.Empty(t, pusher.neighborCalls, "unsecured timing is never pushed to the RCP")
}

func TestPromoteDropsUnsecuredSchedule(t *testing.T) {
	m := NewManager(RegMask{0xff}, newFakePusher())
	eui := EUI64{3}
	require.NoError(t, m.UpdateNeighbor(eui, Schedule{FixedChannel: 1}, false))
	m.Promote(eui)
	_, ok := m.NeighborSchedule(eui)
	assert.False(t, ok)
}

func TestNormalizeIntersectsWithRegulatoryMask(t *testing.T) {
	// Regulatory mask permits only channels 0-3 (bits 0-3 of byte 0).
	regMask := RegMask{0x0f}
	exclude := ie.ExcludedChannels{
		Encoding: ie.ExcludedChannelsRange,
		Ranges:   []ie.ChannelRange{{Start: 1, End: 1}},
	}

	got := Normalize(exclude, regMask)
	require.Equal(t, ie.ExcludedChannelsBitmask, got.Encoding)
	// Channel 1 excluded by the peer, channels 4-7 excluded by regulation.
	assert.Equal(t, byte(0b11110010), got.Mask[0])
}

func TestNormalizeNoExclusionsWhenRegMaskAllowsAll(t *testing.T) {
	got := Normalize(ie.ExcludedChannels{Encoding: ie.ExcludedChannelsNone}, RegMask{0xff})
	assert.Equal(t, ie.ExcludedChannelsNone, got.Encoding)
}

func TestRangesRoundTripsFromBitmask(t *testing.T) {
	mask := ie.ExcludedChannels{Encoding: ie.ExcludedChannelsBitmask, Mask: []byte{0b00010110}}
	ranges := Ranges(mask, 8)
	assert.Equal(t, []ie.ChannelRange{{Start: 1, End: 2}, {Start: 4, End: 4}}, ranges)
}

func TestSetOwnUnicastPushesNormalizedSchedule(t *testing.T) {
	pusher := newFakePusher()
	m := NewManager(RegMask{0xff}, pusher)
	require.NoError(t, m.SetOwnUnicast(Schedule{FixedChannel: 11}))
	require.Len(t, pusher.ownCalls, 1)
	assert.Equal(t, ie.ExcludedChannelsNone, pusher.ownCalls[0].Exclude.Encoding)
}
