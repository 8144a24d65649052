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

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// tlsPRF is the TLS 1.2 PRF (RFC 5246 §5): P_SHA256 expanded from
// secret/label/seed to outLen bytes.
func tlsPRF(secret, label, seed []byte, outLen int) []byte {
	ls := append(append([]byte{}, label...), seed...)
	out := make([]byte, 0, outLen)
	a := ls
	for len(out) < outLen {
		a = hmacSHA256(secret, a)
		out = append(out, hmacSHA256(secret, append(append([]byte{}, a...), ls...))...)
	}
	return out[:outLen]
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// DerivePMK computes PMK = TLS-PRF("client EAP encryption",
// master_secret, client_random||server_random, 128 bytes)[:48], per
// spec.md §4.9.
func DerivePMK(masterSecret, clientRandom, serverRandom []byte) [48]byte {
	seed := append(append([]byte{}, clientRandom...), serverRandom...)
	expanded := tlsPRF(masterSecret, []byte("client EAP encryption"), seed, 128)
	var pmk [48]byte
	copy(pmk[:], expanded[:48])
	return pmk
}

// DerivePTK computes PTK = HMAC-SHA256(PMK, "PTK" || ANonce || SNonce
// || A-MAC || S-MAC), per spec.md §4.9. A-MAC/S-MAC are the
// authenticator's and supplicant's EUI-64s.
func DerivePTK(pmk []byte, aNonce, sNonce [32]byte, aMAC, sMAC [8]byte) [32]byte {
	data := append([]byte{}, []byte("PTK")...)
	data = append(data, aNonce[:]...)
	data = append(data, sNonce[:]...)
	data = append(data, aMAC[:]...)
	data = append(data, sMAC[:]...)
	var ptk [32]byte
	copy(ptk[:], hmacSHA256(pmk, data))
	return ptk
}

// PTKKeyConfirmationKey and PTKKeyEncryptionKey split a derived PTK
// into its MIC (key-confirmation) and KEK (key-encryption) halves.
func PTKKeyConfirmationKey(ptk [32]byte) [16]byte {
	var k [16]byte
	copy(k[:], ptk[:16])
	return k
}

// PTKKeyEncryptionKey returns the KEK half of ptk.
func PTKKeyEncryptionKey(ptk [32]byte) [16]byte {
	var k [16]byte
	copy(k[:], ptk[16:])
	return k
}

// EAPOLMIC computes AES-CMAC-128(key, frame) with the MIC field of
// frame (at [micOffset:micOffset+16]) zeroed before computing, per
// spec.md §4.9's "MIC over EAPOL = AES-CMAC-128(PTK-MIC-key,
// EAPOL-frame-with-MIC-field zeroed)".
func EAPOLMIC(key [16]byte, frame []byte, micOffset int) ([16]byte, error) {
	if micOffset < 0 || micOffset+16 > len(frame) {
		return [16]byte{}, fmt.Errorf("auth: mic offset %d out of range for %d-byte frame", micOffset, len(frame))
	}
	zeroed := make([]byte, len(frame))
	copy(zeroed, frame)
	for i := 0; i < 16; i++ {
		zeroed[micOffset+i] = 0
	}
	return cmacAES128(key, zeroed)
}

// cmacAES128 implements AES-CMAC (RFC 4493) with a 128-bit key. No
// pack dependency provides CMAC; it is built directly on stdlib
// crypto/aes per that gap (see DESIGN.md).
func cmacAES128(key [16]byte, data []byte) ([16]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return [16]byte{}, err
	}
	k1, k2 := cmacSubkeys(block)

	const blockSize = 16
	var mac [blockSize]byte

	if len(data) == 0 {
		padded := cmacPad(nil)
		xorBlock(&padded, k2)
		cmacEncryptBlock(block, mac[:], padded[:])
		return mac, nil
	}

	nBlocks := (len(data) + blockSize - 1) / blockSize
	complete := len(data)%blockSize == 0

	var prev [blockSize]byte
	for i := 0; i < nBlocks-1; i++ {
		chunk := data[i*blockSize : (i+1)*blockSize]
		var x [blockSize]byte
		for j := range x {
			x[j] = chunk[j] ^ prev[j]
		}
		cmacEncryptBlock(block, prev[:], x[:])
	}

	last := data[(nBlocks-1)*blockSize:]
	var m [blockSize]byte
	if complete {
		copy(m[:], last)
		xorBlock(&m, k1)
	} else {
		padded := cmacPad(last)
		xorBlock(&padded, k2)
		m = padded
	}
	for j := range m {
		m[j] ^= prev[j]
	}
	cmacEncryptBlock(block, mac[:], m[:])
	return mac, nil
}

func cmacEncryptBlock(block cipher.Block, dst, src []byte) { block.Encrypt(dst, src) }

func cmacPad(b []byte) [16]byte {
	var out [16]byte
	copy(out[:], b)
	out[len(b)] = 0x80
	return out
}

func xorBlock(dst *[16]byte, k [16]byte) {
	for i := range dst {
		dst[i] ^= k[i]
	}
}

func cmacSubkeys(block cipher.Block) (k1, k2 [16]byte) {
	var zero, l [16]byte
	block.Encrypt(l[:], zero[:])
	k1 = cmacShiftXorRB(l)
	k2 = cmacShiftXorRB(k1)
	return k1, k2
}

// cmacShiftXorRB left-shifts in as a 128-bit value by one bit, XORing
// in the RFC 4493 constant Rb (0x87) if the shifted-out bit was 1.
func cmacShiftXorRB(in [16]byte) [16]byte {
	var out [16]byte
	carry := byte(0)
	for i := 15; i >= 0; i-- {
		out[i] = in[i]<<1 | carry
		carry = in[i] >> 7
	}
	if in[0]&0x80 != 0 {
		out[15] ^= 0x87
	}
	return out
}

// WrapGTK is AES-Key-Wrap (RFC 3394) of a 128-bit GTK under kek, per
// spec.md §4.9's "GTK install message is AES-Key-Wrap(PTK-KEK, GTK)".
// No pack dependency implements RFC 3394; built directly on stdlib
// crypto/aes (see DESIGN.md).
func WrapGTK(kek [16]byte, gtk [16]byte) ([24]byte, error) {
	block, err := aes.NewCipher(kek[:])
	if err != nil {
		return [24]byte{}, err
	}
	const defaultIV = 0xa6a6a6a6a6a6a6a6
	var a uint64 = defaultIV
	r := [2][8]byte{}
	copy(r[0][:], gtk[:8])
	copy(r[1][:], gtk[8:])

	for j := 0; j < 6; j++ {
		for i := 1; i <= 2; i++ {
			var buf [16]byte
			binary.BigEndian.PutUint64(buf[:8], a)
			copy(buf[8:], r[i-1][:])
			block.Encrypt(buf[:], buf[:])
			a = binary.BigEndian.Uint64(buf[:8]) ^ uint64(2*j+i)
			copy(r[i-1][:], buf[8:])
		}
	}

	var out [24]byte
	binary.BigEndian.PutUint64(out[:8], a)
	copy(out[8:16], r[0][:])
	copy(out[16:24], r[1][:])
	return out, nil
}

// UnwrapGTK inverts WrapGTK, returning an error if the integrity check
// value does not match the RFC 3394 default IV. It exists to let
// round-trip tests verify WrapGTK without a second implementation to
// compare against; the daemon itself only ever wraps, never unwraps,
// since GTK distribution is one-directional (authenticator to supplicant).
func UnwrapGTK(kek [16]byte, wrapped [24]byte) ([16]byte, error) {
	block, err := aes.NewCipher(kek[:])
	if err != nil {
		return [16]byte{}, err
	}
	const defaultIV = 0xa6a6a6a6a6a6a6a6
	a := binary.BigEndian.Uint64(wrapped[:8])
	var r [2][8]byte
	copy(r[0][:], wrapped[8:16])
	copy(r[1][:], wrapped[16:24])

	for j := 5; j >= 0; j-- {
		for i := 2; i >= 1; i-- {
			var buf [16]byte
			binary.BigEndian.PutUint64(buf[:8], a^uint64(2*j+i))
			copy(buf[8:], r[i-1][:])
			block.Decrypt(buf[:], buf[:])
			a = binary.BigEndian.Uint64(buf[:8])
			copy(r[i-1][:], buf[8:])
		}
	}
	if a != defaultIV {
		return [16]byte{}, fmt.Errorf("auth: key unwrap integrity check failed")
	}
	var gtk [16]byte
	copy(gtk[:8], r[0][:])
	copy(gtk[8:], r[1][:])
	return gtk, nil
}
