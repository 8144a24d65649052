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

import (
	"fmt"

	"github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"
)

// minAPIVersion is the floor spec.md §4.3 names: "API version < 2.0.0
// is fatal".
var minAPIVersion = version.Must(version.NewVersion("2.0.0"))

// ReapplyFunc re-sends the host's full configuration to the RCP after
// a reset indication, per spec.md §4.3's "on ind_reset the host
// re-applies all configuration".
type ReapplyFunc func(c *Client) error

// Client is the single-connection, asynchronous request/indication
// channel to the RCP. Requests are fire-and-forget on the wire;
// cnf_tx/ind_rx/ind_reset arrive on Indications() in frame-arrival
// order, matching spec.md §5's "frames from the RCP are processed in
// arrival order".
type Client struct {
	t        *Transport
	reapply  ReapplyFunc
	indCh    chan Indication
	errCh    chan error
	resetSeq uint64
}

// NewClient wraps t. reapply is invoked (synchronously, from the read
// loop) every time the RCP reports a reset; it must not block on
// Indications() or it will deadlock the one channel it is re-arming.
func NewClient(t *Transport, reapply ReapplyFunc) *Client {
	c := &Client{
		t:       t,
		reapply: reapply,
		indCh:   make(chan Indication, 64),
		errCh:   make(chan error, 1),
	}
	go c.readLoop()
	return c
}

// Indications returns the channel of parsed cnf_tx/ind_rx/ind_reset
// values. It is closed once the transport fails; the terminal error is
// then available from Err().
func (c *Client) Indications() <-chan Indication { return c.indCh }

// Err returns the error that ended the read loop, or nil if it is
// still running.
func (c *Client) Err() error {
	select {
	case err := <-c.errCh:
		c.errCh <- err
		return err
	default:
		return nil
	}
}

// Close closes the underlying transport, which unblocks and ends the
// read loop.
func (c *Client) Close() error { return c.t.Close() }

func (c *Client) readLoop() {
	defer close(c.indCh)
	for {
		f, err := c.t.ReadFrame()
		if err != nil {
			c.errCh <- err
			return
		}
		ind, err := parseIndication(f)
		if err != nil {
			log.WithError(err).Warn("rcp: dropping malformed indication")
			continue
		}
		if ind.IndReset != nil {
			if err := c.onReset(*ind.IndReset); err != nil {
				c.errCh <- err
				return
			}
		}
		c.indCh <- ind
	}
}

func (c *Client) onReset(r IndReset) error {
	c.resetSeq++
	v, err := version.NewVersion(r.APIVersion)
	if err != nil {
		return fmt.Errorf("%w: unparsable api version %q: %v", ErrAPITooOld, r.APIVersion, err)
	}
	if v.LessThan(minAPIVersion) {
		return fmt.Errorf("%w: %s < %s", ErrAPITooOld, v, minAPIVersion)
	}
	log.WithFields(log.Fields{
		"version_label": r.VersionLabel,
		"fw_version":    r.FWVersion,
		"api_version":   r.APIVersion,
	}).Info("rcp: reset, re-applying configuration")
	// Outstanding requests on reset are cancelled (spec.md §4.3): this
	// client never tracks in-flight requests itself, so there is
	// nothing to cancel beyond letting the caller's own timeouts fire.
	if c.reapply == nil {
		return nil
	}
	return c.reapply(c)
}

// Send marshals and writes req as one frame.
func (c *Client) Send(req request) error {
	op, body := req.marshal()
	return c.t.WriteFrame(op, body)
}
