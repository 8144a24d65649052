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

package wsbr

import (
	"fmt"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// pcapCapture writes every received 802.15.4 frame to a pcap file for
// the --pcap CLI flag (spec.md §6's CLI surface), grounded on
// gopacket's ziffy/node packet handling from the same pack.
type pcapCapture struct {
	f *os.File
	w *pcapgo.Writer
}

// newPCAPCapture creates (or truncates) path and writes a pcap file
// header for IEEE 802.15.4 link-layer frames.
func newPCAPCapture(path string) (*pcapCapture, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wsbr: opening pcap capture %s: %w", path, err)
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(2047, layers.LinkTypeIEEE802_15_4); err != nil {
		f.Close()
		return nil, fmt.Errorf("wsbr: writing pcap header: %w", err)
	}
	return &pcapCapture{f: f, w: w}, nil
}

func (p *pcapCapture) write(frame []byte) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(frame),
		Length:        len(frame),
	}
	return p.w.WritePacket(ci, frame)
}

func (p *pcapCapture) close() error {
	return p.f.Close()
}

// EnablePCAP arms frame capture to path. It is CLI-only (not part of
// the hard core) so it is opted into after New, not wired through
// Config.
func (c *Context) EnablePCAP(path string) error {
	cap, err := newPCAPCapture(path)
	if err != nil {
		return err
	}
	c.pcap = cap
	return nil
}

// EnableRCPCapture arms the RCP byte-stream trace to path.
func (c *Context) EnableRCPCapture(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wsbr: opening capture %s: %w", path, err)
	}
	c.captureFile = f
	c.RCPTransport.Trace = f
	return nil
}
