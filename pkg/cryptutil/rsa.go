package cryptutil

import (
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// ParsePublicKey accepts the RSA public key bytes a SEND_PUBLIC_KEY
// request carries, either PEM-encoded or raw DER, in PKIX or PKCS#1
// form, and returns the parsed key.
func ParsePublicKey(raw []byte) (*rsa.PublicKey, error) {
	der := raw
	if block, _ := pem.Decode(raw); block != nil {
		der = block.Bytes
	}

	if pub, err := x509.ParsePKIXPublicKey(der); err == nil {
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("cryptutil: key is not RSA")
		}
		return rsaPub, nil
	}

	if pub, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return pub, nil
	}

	return nil, fmt.Errorf("cryptutil: could not parse RSA public key")
}

// EncryptAESKeyForClient wraps a 16-byte AES key under the client's RSA
// public key using RSA-OAEP with SHA-1 as both the hash and MGF1
// function, empty label, PKCS#1 v2 — the envelope SEND_PUBLIC_KEY and
// RECONNECT both use to hand back the symmetric key.
func EncryptAESKeyForClient(pub *rsa.PublicKey, aesKey [16]byte) ([]byte, error) {
	return rsa.EncryptOAEP(sha1.New(), secureRandom, pub, aesKey[:], nil)
}
