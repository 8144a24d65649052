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
	"encoding/binary"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// frameHeaderSize is the 2-byte length prefix plus 1-byte opcode that
// precedes every frame body on the wire.
const frameHeaderSize = 3

const maxFrameBody = 4096

// rawFrame is one undecoded frame read off the transport.
type rawFrame struct {
	Opcode Opcode
	Body   []byte
}

// Transport is a length-prefixed, typed-opcode byte stream to the
// radio co-processor, reachable over UART or any other
// io.ReadWriteCloser. Its lifecycle (Open/Close) and buffered read
// loop follow the serial port handling in sa53fw/mac/mac.go; the frame
// shape itself is this daemon's own, since spec.md §4.3 leaves wire
// layout unpinned.
type Transport struct {
	port io.ReadWriteCloser

	// Trace, when non-nil, receives a copy of every raw frame (length
	// prefix, opcode, body) in both directions, for --capture.
	Trace io.Writer
}

// OpenSerial opens device at baud and wraps it as a Transport, the way
// mac.Init opens the SA53's serial port.
func OpenSerial(device string, baud int) (*Transport, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("rcp: open %s: %w", device, err)
	}
	return &Transport{port: port}, nil
}

// NewTransport wraps an already-open stream (a CPC shared-memory
// endpoint, a test pipe) as a Transport.
func NewTransport(rw io.ReadWriteCloser) *Transport { return &Transport{port: rw} }

// Close closes the underlying stream.
func (t *Transport) Close() error { return t.port.Close() }

// WriteFrame writes opcode and body as one length-prefixed frame.
func (t *Transport) WriteFrame(opcode Opcode, body []byte) error {
	if len(body) > maxFrameBody {
		return fmt.Errorf("rcp: frame body %d bytes exceeds %d", len(body), maxFrameBody)
	}
	buf := make([]byte, frameHeaderSize+len(body))
	binary.LittleEndian.PutUint16(buf, uint16(1+len(body)))
	buf[2] = byte(opcode)
	copy(buf[frameHeaderSize:], body)
	_, err := t.port.Write(buf)
	if err == nil && t.Trace != nil {
		t.Trace.Write(buf)
	}
	return err
}

// ReadFrame blocks until one full frame has been read, or returns the
// underlying read error (wrapped ErrClosed on io.EOF).
func (t *Transport) ReadFrame() (rawFrame, error) {
	var lenBuf [2]byte
	if err := t.readFull(lenBuf[:]); err != nil {
		return rawFrame{}, err
	}
	n := int(binary.LittleEndian.Uint16(lenBuf[:]))
	if n < 1 {
		return rawFrame{}, fmt.Errorf("%w: zero-length frame", ErrMalformed)
	}
	if n-1 > maxFrameBody {
		return rawFrame{}, fmt.Errorf("%w: frame body %d bytes exceeds %d", ErrMalformed, n-1, maxFrameBody)
	}
	body := make([]byte, n-1)
	var opcodeBuf [1]byte
	if err := t.readFull(opcodeBuf[:]); err != nil {
		return rawFrame{}, err
	}
	if len(body) > 0 {
		if err := t.readFull(body); err != nil {
			return rawFrame{}, err
		}
	}
	if t.Trace != nil {
		t.Trace.Write(lenBuf[:])
		t.Trace.Write(opcodeBuf[:])
		t.Trace.Write(body)
	}
	return rawFrame{Opcode: Opcode(opcodeBuf[0]), Body: body}, nil
}

func (t *Transport) readFull(b []byte) error {
	_, err := io.ReadFull(t.port, b)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}
