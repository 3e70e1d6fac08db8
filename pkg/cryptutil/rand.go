package cryptutil

import (
	"io"

	ctrdrbg "github.com/sixafter/aes-ctr-drbg"
)

// secureRandom is the entropy source used for client ids, AES-128
// keys, and CBC initialization vectors. It is backed by the pack's
// NIST SP 800-90A AES-CTR-DRBG rather than a bare crypto/rand.Read
// call: every byte of key material in this protocol traces back to
// one audited, pool-backed generator.
var secureRandom io.Reader = ctrdrbg.Reader

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(secureRandom, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// NewClientID returns a fresh 16-byte opaque client identifier.
func NewClientID() ([16]byte, error) {
	var id [16]byte
	if _, err := io.ReadFull(secureRandom, id[:]); err != nil {
		return id, err
	}
	return id, nil
}

// NewAESKey returns a fresh AES-128 key.
func NewAESKey() ([16]byte, error) {
	var key [16]byte
	if _, err := io.ReadFull(secureRandom, key[:]); err != nil {
		return key, err
	}
	return key, nil
}
