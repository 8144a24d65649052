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
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipePair struct {
	a, b io.ReadWriteCloser
}

func newPipePair() pipePair {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	return pipePair{a: rwc{ar, aw}, b: rwc{br, bw}}
}

type rwc struct {
	io.Reader
	io.Writer
}

func (rwc) Close() error { return nil }

func TestTransportWriteReadFrameRoundTrip(t *testing.T) {
	pair := newPipePair()
	tx := NewTransport(pair.a)
	rx := NewTransport(pair.b)

	done := make(chan rawFrame, 1)
	errCh := make(chan error, 1)
	go func() {
		f, err := rx.ReadFrame()
		if err != nil {
			errCh <- err
			return
		}
		done <- f
	}()

	require.NoError(t, tx.WriteFrame(OpReqReset, []byte{1, 2, 3}))

	select {
	case f := <-done:
		assert.Equal(t, OpReqReset, f.Opcode)
		assert.Equal(t, []byte{1, 2, 3}, f.Body)
	case err := <-errCh:
		t.Fatalf("ReadFrame failed: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestClientOnResetRejectsAPITooOld(t *testing.T) {
	pair := newPipePair()
	c := NewClient(NewTransport(pair.a), nil)
	defer c.Close()

	other := NewTransport(pair.b)
	d := NewEncoder()
	d.PutStr("v1")
	d.PutStr("1.0.0")
	d.PutStr("1.9.9")
	require.NoError(t, other.WriteFrame(OpIndReset, d.Bytes()))

	var delivered int
	select {
	case <-waitClosed(c, &delivered):
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for read loop to end")
	}
	assert.Zero(t, delivered, "a too-old api version must not be delivered as an indication")
	require.Error(t, c.Err())
	assert.ErrorIs(t, c.Err(), ErrAPITooOld)
}

func TestClientOnResetReappliesConfig(t *testing.T) {
	pair := newPipePair()
	reapplied := make(chan struct{}, 1)
	c := NewClient(NewTransport(pair.a), func(_ *Client) error {
		reapplied <- struct{}{}
		return nil
	})
	defer c.Close()

	other := NewTransport(pair.b)
	e := NewEncoder()
	e.PutStr("v1")
	e.PutStr("2.1.0")
	e.PutStr("2.0.0")
	require.NoError(t, other.WriteFrame(OpIndReset, e.Bytes()))

	select {
	case <-reapplied:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reapply callback")
	}

	ind := <-c.Indications()
	require.NotNil(t, ind.IndReset)
	assert.Equal(t, "2.0.0", ind.IndReset.APIVersion)
}

// waitClosed drains c's indication channel, counting deliveries into
// *delivered, and returns a channel that reports closure (ok == false)
// once the read loop ends.
func waitClosed(c *Client, delivered *int) <-chan bool {
	done := make(chan bool)
	go func() {
		for range c.Indications() {
			*delivered++
		}
		done <- false
	}()
	return done
}
