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

import "errors"

// Sentinel errors identifying the FRAME_MALFORMED / FRAME_UNSUPPORTED
// kinds from spec.md §7; callers use errors.Is to classify a failure
// without parsing error strings.
var (
	ErrTruncated          = errors.New("ie: truncated")
	ErrMalformed          = errors.New("ie: malformed")
	ErrUnsupportedSubtype = errors.New("ie: unsupported subtype")
)
