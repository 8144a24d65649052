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

package auth

import "errors"

// Errors raised by the authenticator state machine, mapping to
// spec.md §7's SECURITY_REJECT / AUTH_FAILURE taxonomy.
var (
	ErrUnexpectedMessage  = errors.New("auth: unexpected message for current state")
	ErrBadMIC             = errors.New("auth: MIC verification failed")
	ErrCertPolicy         = errors.New("auth: certificate policy violation")
	ErrNoFreeGTKSlot       = errors.New("auth: no free GTK slot")
	ErrNoFreeLGTKSlot      = errors.New("auth: no free LGTK slot")
	ErrUnknownSupplicant  = errors.New("auth: unknown supplicant")
)
