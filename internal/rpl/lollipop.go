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

// circularRegion is the lollipop counter's linear/circular boundary
// (RFC 6550 §7.2): values below it compare linearly, values at or
// above it wrap using signed 8-bit arithmetic.
const circularRegion = 128

// NewerPathSequence reports whether a is a newer RPL path sequence
// than b, using lollipop comparison: within a single region (both
// linear or both circular) the counter only moves forward, so a plain
// (or signed-delta, for the circular region's wraparound) comparison
// applies. A value dropping out of the circular region back into the
// linear one can only happen because the sequence owner restarted its
// counter, so it is always newer than whatever was stored.
func NewerPathSequence(a, b uint8) bool {
	switch {
	case a >= circularRegion && b >= circularRegion:
		return int8(a-b) > 0
	case a < circularRegion && b >= circularRegion:
		return true
	default:
		return a > b
	}
}
