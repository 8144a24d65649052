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
	"sort"

	"github.com/MathisMARION/wisun-br-linux/internal/ie"
)

// RegMask is a regulatory channel mask: bit i set means channel i is
// permitted. Its size is the channel plan's channel count.
type RegMask []byte

// Allowed reports whether channel is permitted by the mask.
func (m RegMask) Allowed(channel uint16) bool {
	byteIdx := int(channel / 8)
	if byteIdx >= len(m) {
		return false
	}
	return m[byteIdx]&(1<<(channel%8)) != 0
}

// Normalize collapses exclude into a single bitmask-encoded
// ie.ExcludedChannels intersected with regMask: the result is what
// spec.md §4.4 says gets advertised, regardless of which encoding the
// peer or the local config used.
func Normalize(exclude ie.ExcludedChannels, regMask RegMask) ie.ExcludedChannels {
	excludedMask := make([]byte, len(regMask))
	switch exclude.Encoding {
	case ie.ExcludedChannelsRange:
		for _, r := range exclude.Ranges {
			for ch := r.Start; ch <= r.End; ch++ {
				setBit(excludedMask, ch)
			}
		}
	case ie.ExcludedChannelsBitmask:
		copy(excludedMask, exclude.Mask)
	case ie.ExcludedChannelsNone:
		// nothing excluded by the peer/config; regulatory mask alone applies
	}

	for i := range excludedMask {
		// A channel is excluded in the result if the peer/config excluded
		// it OR the regulator disallows it: the regulatory mask narrows
		// the advertised set, it can only add exclusions, never remove
		// ones the peer/config already declared.
		excludedMask[i] |= ^regMask[i]
	}

	if isZero(excludedMask) {
		return ie.ExcludedChannels{Encoding: ie.ExcludedChannelsNone}
	}
	return ie.ExcludedChannels{Encoding: ie.ExcludedChannelsBitmask, Mask: excludedMask}
}

func setBit(mask []byte, ch uint16) {
	idx := int(ch / 8)
	if idx >= len(mask) {
		return
	}
	mask[idx] |= 1 << (ch % 8)
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Ranges converts a bitmask-encoded ExcludedChannels back into
// contiguous ranges, the compact form preferred on the wire when the
// exclusion set is a small number of runs.
func Ranges(exclude ie.ExcludedChannels, channelCount int) []ie.ChannelRange {
	if exclude.Encoding != ie.ExcludedChannelsBitmask {
		return nil
	}
	var ranges []ie.ChannelRange
	var start = -1
	for ch := 0; ch < channelCount; ch++ {
		excluded := int(ch/8) < len(exclude.Mask) && exclude.Mask[ch/8]&(1<<(ch%8)) != 0
		if excluded && start < 0 {
			start = ch
		} else if !excluded && start >= 0 {
			ranges = append(ranges, ie.ChannelRange{Start: uint16(start), End: uint16(ch - 1)})
			start = -1
		}
	}
	if start >= 0 {
		ranges = append(ranges, ie.ChannelRange{Start: uint16(start), End: uint16(channelCount - 1)})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges
}
