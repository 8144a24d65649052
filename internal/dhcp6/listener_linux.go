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

package dhcp6

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Listener is a UDP/IPv6 socket bound to the border router's tun
// interface and the DHCPv6 server port.
type Listener struct {
	fd    int
	iface string
}

// Listen opens and binds the DHCPv6 server socket on ifaceName,
// mirroring dhcp_start's socket/SO_BINDTODEVICE/bind sequence.
func Listen(ifaceName string) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, fmt.Errorf("dhcp6: socket: %w", err)
	}
	if err := unix.SetsockoptString(fd, unix.SOL_SOCKET, unix.SO_BINDTODEVICE, ifaceName); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("dhcp6: bind to device %s: %w", ifaceName, err)
	}
	sa := &unix.SockaddrInet6{Port: ServerUDPPort}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("dhcp6: bind: %w", err)
	}
	return &Listener{fd: fd, iface: ifaceName}, nil
}

// Close releases the socket.
func (l *Listener) Close() error {
	return unix.Close(l.fd)
}

// ReadFrom reads one datagram into buf, returning the number of bytes
// read and the sender's address.
func (l *Listener) ReadFrom(buf []byte) (int, net.IP, error) {
	n, from, err := unix.Recvfrom(l.fd, buf, 0)
	if err != nil {
		return 0, nil, fmt.Errorf("dhcp6: recvfrom: %w", err)
	}
	sa, ok := from.(*unix.SockaddrInet6)
	if !ok {
		return n, nil, fmt.Errorf("dhcp6: unexpected source address type %T", from)
	}
	ip := make(net.IP, 16)
	copy(ip, sa.Addr[:])
	return n, ip, nil
}

// WriteTo sends buf to dest on the client port.
func (l *Listener) WriteTo(buf []byte, dest net.IP) error {
	var sa unix.SockaddrInet6
	copy(sa.Addr[:], dest.To16())
	sa.Port = ClientUDPPort
	return unix.Sendto(l.fd, buf, 0, &sa)
}
