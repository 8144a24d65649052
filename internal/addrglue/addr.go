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

package addrglue

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/jsimonetti/rtnetlink/rtnl"
)

// IfaceAddrs assigns/withdraws addresses on a network interface.
// Grounded directly on responder/server/ip.go's addIfaceIP/
// deleteIfaceIP: check current assignment, then rtnl.Dial + AddrAdd/
// AddrDel.
type IfaceAddrs struct {
	iface *net.Interface
}

// NewIfaceAddrs resolves ifaceName (the tun device) for address
// assignment.
func NewIfaceAddrs(ifaceName string) (*IfaceAddrs, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("addrglue: resolve interface %q: %w", ifaceName, err)
	}
	return &IfaceAddrs{iface: iface}, nil
}

// AssignGUA and AssignLinkLocal both add addr, as given, to the
// interface with a /64 prefix; neither derives one address from the
// other.
func (a *IfaceAddrs) AssignGUA(addr netip.Addr) error      { return a.add(addr, 64) }
func (a *IfaceAddrs) AssignLinkLocal(addr netip.Addr) error { return a.add(addr, 64) }

func (a *IfaceAddrs) add(addr netip.Addr, prefixLen int) error {
	if assigned, err := a.assigned(addr); err != nil {
		return err
	} else if assigned {
		return nil
	}

	conn, err := rtnl.Dial(nil)
	if err != nil {
		return fmt.Errorf("addrglue: netlink dial: %w", err)
	}
	defer conn.Close()

	ip := net.IP(addr.AsSlice())
	mask := net.CIDRMask(prefixLen, addr.BitLen())
	if err := conn.AddrAdd(a.iface, &net.IPNet{IP: ip, Mask: mask}); err != nil {
		return fmt.Errorf("addrglue: add address %s: %w", addr, err)
	}
	return nil
}

// Withdraw removes addr from the interface if present.
func (a *IfaceAddrs) Withdraw(addr netip.Addr, prefixLen int) error {
	if assigned, err := a.assigned(addr); err != nil {
		return err
	} else if !assigned {
		return nil
	}

	conn, err := rtnl.Dial(nil)
	if err != nil {
		return fmt.Errorf("addrglue: netlink dial: %w", err)
	}
	defer conn.Close()

	ip := net.IP(addr.AsSlice())
	mask := net.CIDRMask(prefixLen, addr.BitLen())
	if err := conn.AddrDel(a.iface, &net.IPNet{IP: ip, Mask: mask}); err != nil {
		return fmt.Errorf("addrglue: remove address %s: %w", addr, err)
	}
	return nil
}

func (a *IfaceAddrs) assigned(addr netip.Addr) (bool, error) {
	addrs, err := a.iface.Addrs()
	if err != nil {
		return false, fmt.Errorf("addrglue: list interface addresses: %w", err)
	}
	want := net.IP(addr.AsSlice())
	for _, ifaceAddr := range addrs {
		var ip net.IP
		switch v := ifaceAddr.(type) {
		case *net.IPAddr:
			ip = v.IP
		case *net.IPNet:
			ip = v.IP
		default:
			continue
		}
		if ip.Equal(want) {
			return true, nil
		}
	}
	return false, nil
}
