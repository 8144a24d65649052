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

package rcp

import "errors"

// ErrTruncated/ErrMalformed classify a bad frame body; both are
// reported to the caller and never crash the read loop. ErrAPITooOld
// maps to spec.md §7's RCP_PROTOCOL taxonomy and is the one RCP error
// that is fatal to the daemon (spec.md §4.3: "API version < 2.0.0 is
// fatal").
var (
	ErrTruncated = errors.New("rcp: truncated frame")
	ErrMalformed = errors.New("rcp: malformed frame")
	ErrAPITooOld = errors.New("rcp: api version below floor")
	ErrClosed    = errors.New("rcp: transport closed")
)
