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

package frame

import "errors"

// ErrTruncated means b ended before a length-declared field was fully
// present. ErrUnsupported means the frame used a well-formed but
// unsupported combination (frame type, version, address mode, security
// level, key id mode). Both map to spec.md §7's FRAME_MALFORMED /
// FRAME_UNSUPPORTED taxonomy and are always non-fatal to the caller.
var (
	ErrTruncated   = errors.New("frame: truncated")
	ErrUnsupported = errors.New("frame: unsupported combination")
)
