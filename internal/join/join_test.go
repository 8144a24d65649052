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

package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathisMARION/wisun-br-linux/internal/ie"
)

func TestPANCostSaturates(t *testing.T) {
	assert.Equal(t, uint16(150), PANCost(100, 50))
	assert.Equal(t, uint16(0xFFFF), PANCost(0xFFFF, 10), "PAN Cost must saturate, not wrap")
}

func TestPLFNewestContentVersionWins(t *testing.T) {
	jms := []ie.JMIE{
		{Metrics: []ie.JMMetric{{MetricID: ie.JoinMetricPLF, ContentVersion: 1, Value: 10}}},
		{Metrics: []ie.JMMetric{{MetricID: ie.JoinMetricPLF, ContentVersion: 3, Value: 30}}},
		{Metrics: []ie.JMMetric{{MetricID: ie.JoinMetricPLF, ContentVersion: 2, Value: 20}}},
	}
	v, ok := PLF(jms)
	require.True(t, ok)
	assert.Equal(t, uint16(30), v)
}

func TestPLFAbsentWhenNoMetric(t *testing.T) {
	_, ok := PLF(nil)
	assert.False(t, ok)
}

func TestSelectEAPOLTargetFiltersBySensitivity(t *testing.T) {
	candidates := []Candidate{
		{EUI64: [8]byte{1}, RSSI: -95, HasPLF: true, PLF: 1},
		{EUI64: [8]byte{2}, RSSI: -60, HasPLF: true, PLF: 5},
	}
	got, ok := SelectEAPOLTarget(candidates, -100, 20, 2)
	require.True(t, ok)
	assert.Equal(t, [8]byte{2}, got.EUI64, "candidate 1 falls below sensitivity+threshold+hysteresis and must be excluded")
}

func TestSelectEAPOLTargetPrefersLowestPLFThenLowestPANCost(t *testing.T) {
	candidates := []Candidate{
		{EUI64: [8]byte{1}, RSSI: -50, HasPLF: true, PLF: 10, PANCost: 5},
		{EUI64: [8]byte{2}, RSSI: -50, HasPLF: true, PLF: 5, PANCost: 100},
		{EUI64: [8]byte{3}, RSSI: -50, HasPLF: true, PLF: 5, PANCost: 50},
	}
	got, ok := SelectEAPOLTarget(candidates, -100, 0, 0)
	require.True(t, ok)
	assert.Equal(t, [8]byte{3}, got.EUI64, "lowest PLF is 5, tie broken by lowest PAN Cost (50 < 100)")
}

func TestSelectEAPOLTargetNoCandidatesClearThreshold(t *testing.T) {
	candidates := []Candidate{{EUI64: [8]byte{1}, RSSI: -99}}
	_, ok := SelectEAPOLTarget(candidates, -50, 5, 2)
	assert.False(t, ok)
}

func TestCandidateWithoutPLFIsLeastPreferred(t *testing.T) {
	candidates := []Candidate{
		{EUI64: [8]byte{1}, RSSI: -50, HasPLF: false},
		{EUI64: [8]byte{2}, RSSI: -50, HasPLF: true, PLF: 0xFFFE},
	}
	got, ok := SelectEAPOLTarget(candidates, -100, 0, 0)
	require.True(t, ok)
	assert.Equal(t, [8]byte{2}, got.EUI64)
}
