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

package ie

// Direction distinguishes IE sets parsed from frames we transmit vs.
// frames we receive. Parse accepts a Direction but does not use it:
// both directions are validated the same way.
type Direction uint8

// Directions.
const (
	DirectionRx Direction = iota
	DirectionTx
)

// IETree is the decoded (header IEs, payload IEs) pair for one frame's
// IE list, the unit spec.md §4.1 calls out as the Parse contract.
type IETree struct {
	Header  []HeaderIE
	Payload []PayloadIE
}

// Parse decodes the IE list starting at b[0] (immediately after the
// frame's security header, if any) per spec.md §4.1: header IEs,
// optionally followed by a nested Wi-SUN payload IE group. It returns
// the number of bytes of b consumed by the IE list.
func Parse(b []byte, _ Direction) (IETree, int, error) {
	hdr, consumed, payloadFollows, err := ParseHeaderIEs(b)
	if err != nil {
		return IETree{}, 0, err
	}
	if !payloadFollows {
		return IETree{Header: hdr}, consumed, nil
	}
	payload, payloadConsumed, err := ParsePayloadIEs(b[consumed:])
	if err != nil {
		return IETree{}, 0, err
	}
	return IETree{Header: hdr, Payload: payload}, consumed + payloadConsumed, nil
}

// Write assembles an IE list from tree and appends it to buf.
func Write(buf []byte, tree IETree) ([]byte, error) {
	buf, err := WriteHeaderIEs(buf, tree.Header, len(tree.Payload) > 0)
	if err != nil {
		return nil, err
	}
	if len(tree.Payload) == 0 {
		return buf, nil
	}
	return WritePayloadIEs(buf, tree.Payload)
}
