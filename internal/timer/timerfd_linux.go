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

package timer

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// FD wraps a Linux timerfd driving a Base at TickInterval, for the
// event loop (internal/wsbr) to multiplex alongside the RCP
// byte-stream, tun device, and other fds per spec.md §5.
type FD struct {
	fd   int
	base *Base
}

// NewFD creates a monotonic timerfd armed at TickInterval and bound to
// base. Call Fd to obtain the descriptor for the event loop's poll
// set, and Consume whenever it becomes readable.
func NewFD(base *Base) (*FD, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return nil, fmt.Errorf("timer: timerfd_create: %w", err)
	}
	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(TickInterval.Nanoseconds()),
		Value:    unix.NsecToTimespec(TickInterval.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("timer: timerfd_settime: %w", err)
	}
	return &FD{fd: fd, base: base}, nil
}

// Fd returns the underlying file descriptor.
func (f *FD) Fd() int { return f.fd }

// Consume reads the expiration count and dispatches one Base.Tick per
// elapsed interval, catching the event loop up if ticks were missed
// under scheduling pressure.
func (f *FD) Consume() error {
	var buf [8]byte
	n, err := unix.Read(f.fd, buf[:])
	if err != nil {
		return fmt.Errorf("timer: read timerfd: %w", err)
	}
	if n != 8 {
		return fmt.Errorf("timer: short read from timerfd: %d bytes", n)
	}
	count := leU64(buf[:])
	now := time.Now()
	for i := uint64(0); i < count; i++ {
		f.base.Tick(now)
	}
	return nil
}

// Close releases the timerfd.
func (f *FD) Close() error {
	return unix.Close(f.fd)
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
