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

package mgmt

import (
	"sync/atomic"
	"time"
)

// AirtimeLimiter rate-limits total async transmission airtime to
// max_async_duration ms per transmission window, the way
// ptp4u/server/worker.go tracks each send worker's accumulated load as
// an atomic counter rather than under a mutex.
type AirtimeLimiter struct {
	maxDurationMs int64
	window        time.Duration

	usedMs   int64
	windowAt atomic.Int64 // unix nanos of the start of the current window
	now      func() time.Time
}

// NewAirtimeLimiter builds a limiter capping any single window of
// length window to maxDurationMs milliseconds of async TX.
func NewAirtimeLimiter(maxDurationMs int64, window time.Duration) *AirtimeLimiter {
	l := &AirtimeLimiter{maxDurationMs: maxDurationMs, window: window, now: time.Now}
	l.windowAt.Store(l.now().UnixNano())
	return l
}

// Allow reports whether a transmission lasting durationMs may proceed
// without exceeding the window budget, and if so records its cost.
// Denied transmissions are not charged.
func (l *AirtimeLimiter) Allow(durationMs int64) bool {
	now := l.now()
	if now.Sub(time.Unix(0, l.windowAt.Load())) >= l.window {
		l.windowAt.Store(now.UnixNano())
		atomic.StoreInt64(&l.usedMs, 0)
	}
	if atomic.LoadInt64(&l.usedMs)+durationMs > l.maxDurationMs {
		return false
	}
	atomic.AddInt64(&l.usedMs, durationMs)
	return true
}
