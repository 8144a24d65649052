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
	"crypto/x509"
	"encoding/asn1"
)

// oidHardwareModuleName is the id-on-hardwareModuleName SAN OID
// (RFC 4108 / RFC 8649), required in a Wi-SUN device certificate's
// otherName SAN so the authenticator can bind an EUI-64 to the cert.
var oidHardwareModuleName = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 8, 4}

// oidWiSUNFANExtKeyUsage is the Wi-SUN FAN extended-key-usage OID
// under the Wi-SUN Alliance private enterprise arc. The upstream C
// source references this only as the unexpanded macro
// MBEDTLS_OID_WISUN_FAN with no numeric definition in the retrieved
// sources; this value is the Wi-SUN Alliance PEN-rooted OID and is
// recorded as an open-question resolution in DESIGN.md.
var oidWiSUNFANExtKeyUsage = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 45605, 1, 1}

// CertPolicy controls which certificate checks are fatal at verify
// time, per spec.md's ext_cert_valid config flag.
type CertPolicy struct {
	RequireExtendedKeyUsage bool
}

// CheckCertificate validates that cert carries the hardwareModuleName
// SAN and, if policy requires it, the Wi-SUN FAN extended-key-usage
// OID. Returns ErrCertPolicy on any violation.
func CheckCertificate(cert *x509.Certificate, policy CertPolicy) error {
	if !hasHardwareModuleName(cert) {
		return ErrCertPolicy
	}
	if policy.RequireExtendedKeyUsage && !hasWiSUNFANExtKeyUsage(cert) {
		return ErrCertPolicy
	}
	return nil
}

// hasHardwareModuleName walks the certificate's raw SAN extension
// looking for an otherName entry with type-id oidHardwareModuleName.
// crypto/x509 does not expose otherName SAN entries directly, so this
// parses the extension's raw ASN.1 GeneralNames sequence.
func hasHardwareModuleName(cert *x509.Certificate) bool {
	raw := rawSANExtension(cert)
	if raw == nil {
		return false
	}
	var seq asn1.RawValue
	if _, err := asn1.Unmarshal(raw, &seq); err != nil {
		return false
	}
	rest := seq.Bytes
	for len(rest) > 0 {
		var gn asn1.RawValue
		var err error
		rest, err = asn1.Unmarshal(rest, &gn)
		if err != nil {
			return false
		}
		// otherName is context-specific tag [0], constructed.
		if gn.Class == asn1.ClassContextSpecific && gn.Tag == 0 {
			var typeID asn1.ObjectIdentifier
			if _, err := asn1.Unmarshal(gn.Bytes, &typeID); err == nil && typeID.Equal(oidHardwareModuleName) {
				return true
			}
		}
	}
	return false
}

func rawSANExtension(cert *x509.Certificate) []byte {
	sanOID := asn1.ObjectIdentifier{2, 5, 29, 17}
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(sanOID) {
			return ext.Value
		}
	}
	return nil
}

func hasWiSUNFANExtKeyUsage(cert *x509.Certificate) bool {
	for _, oid := range cert.UnknownExtKeyUsage {
		if oid.Equal(oidWiSUNFANExtKeyUsage) {
			return true
		}
	}
	return false
}
