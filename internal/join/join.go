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

// Package join computes PAN Cost and PAN Load Factor (PLF) for
// candidate parents and elects the EAPOL target, per spec.md §4.8.
package join

import "github.com/MathisMARION/wisun-br-linux/internal/ie"

// maxPANCost is the saturating ceiling for PAN Cost (spec.md §4.8).
const maxPANCost = 0xFFFF

// PANCost computes parent_routing_cost + own_ETX_to_parent, saturating
// at 0xFFFF rather than wrapping.
func PANCost(parentRoutingCost uint16, ownETXToParent float64) uint16 {
	sum := uint32(parentRoutingCost) + uint32(ownETXToParent)
	if sum > maxPANCost {
		return maxPANCost
	}
	return uint16(sum)
}

// ComparisonResult mirrors bmc.ComparisonResult's style of naming which
// side won rather than returning a bare bool, so a caller logging a
// parent-selection decision can say which candidate and why.
type ComparisonResult int8

// Results a join-metric comparison can return.
const (
	ABetter ComparisonResult = 1
	Unknown ComparisonResult = 0
	BBetter ComparisonResult = -1
)

// PLF extracts the newest PAN Load Factor from a set of JM-IEs
// observed from one candidate: "when multiple JM-IEs are observed, the
// one with the newest content version wins" (spec.md §4.8). ok is
// false if no JM-IE carries the PLF metric.
func PLF(jms []ie.JMIE) (value uint16, ok bool) {
	var bestVersion uint8
	found := false
	for _, jm := range jms {
		for _, m := range jm.Metrics {
			if m.MetricID != ie.JoinMetricPLF {
				continue
			}
			if !found || m.ContentVersion > bestVersion {
				bestVersion = m.ContentVersion
				value = m.Value
				found = true
			}
		}
	}
	return value, found
}

// Candidate is one observed potential parent, reduced to exactly the
// fields the EAPOL target election needs.
type Candidate struct {
	EUI64  [8]byte
	PANID  uint16
	RSSI   float64
	PLF    uint16
	HasPLF bool
	PANCost uint16
}

// SelectEAPOLTarget implements spec.md §4.8's router-side election:
// from candidates whose RSSI clears sensitivity + threshold +
// hysteresis, pick the lowest PLF, ties broken by lowest PAN Cost.
// Candidates with no PLF observed are treated as if PLF were maximal
// (least preferred), since a target with no load information should
// never be preferred over one that has reported low load.
func SelectEAPOLTarget(candidates []Candidate, sensitivity, threshold, hysteresis float64) (Candidate, bool) {
	minRSSI := sensitivity + threshold + hysteresis
	var best Candidate
	haveBest := false
	for _, c := range candidates {
		if c.RSSI < minRSSI {
			continue
		}
		if !haveBest {
			best, haveBest = c, true
			continue
		}
		if compareCandidates(c, best) == ABetter {
			best = c
		}
	}
	return best, haveBest
}

func compareCandidates(a, b Candidate) ComparisonResult {
	aPLF, bPLF := effectivePLF(a), effectivePLF(b)
	if aPLF < bPLF {
		return ABetter
	}
	if aPLF > bPLF {
		return BBetter
	}
	if a.PANCost < b.PANCost {
		return ABetter
	}
	if a.PANCost > b.PANCost {
		return BBetter
	}
	return Unknown
}

func effectivePLF(c Candidate) uint16 {
	if !c.HasPLF {
		return 0xFFFF
	}
	return c.PLF
}
