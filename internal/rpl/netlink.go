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

package rpl

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/jsimonetti/rtnetlink/rtnl"
)

// netlinkRouter is the production RouteInjector, adapted from
// responder/server/ip.go's rtnl.Dial/AddrAdd/AddrDel pattern applied
// to routes instead of addresses.
type netlinkRouter struct {
	iface *net.Interface
}

// NewNetlinkRouter builds a RouteInjector that installs/removes routes
// on the named interface (the tun device C13 owns).
func NewNetlinkRouter(ifaceName string) (RouteInjector, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("rpl: resolve interface %q: %w", ifaceName, err)
	}
	return &netlinkRouter{iface: iface}, nil
}

func (r *netlinkRouter) AddRoute(prefix netip.Prefix, via netip.Addr) error {
	conn, err := rtnl.Dial(nil)
	if err != nil {
		return fmt.Errorf("rpl: netlink dial: %w", err)
	}
	defer conn.Close()

	dst := prefixToIPNet(prefix)
	gw := net.IP(via.AsSlice())
	if err := conn.RouteAdd(r.iface, dst, gw); err != nil {
		return fmt.Errorf("rpl: route add %s via %s: %w", prefix, via, err)
	}
	return nil
}

func (r *netlinkRouter) DelRoute(prefix netip.Prefix) error {
	conn, err := rtnl.Dial(nil)
	if err != nil {
		return fmt.Errorf("rpl: netlink dial: %w", err)
	}
	defer conn.Close()

	if err := conn.RouteDel(r.iface, prefixToIPNet(prefix)); err != nil {
		return fmt.Errorf("rpl: route del %s: %w", prefix, err)
	}
	return nil
}

func prefixToIPNet(p netip.Prefix) net.IPNet {
	return net.IPNet{
		IP:   net.IP(p.Addr().AsSlice()),
		Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
	}
}
