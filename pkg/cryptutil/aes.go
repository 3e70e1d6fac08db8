package cryptutil

import (
	"crypto/aes"
	"crypto/cipher"
)

const blockSize = aes.BlockSize // 16

// pkcs7Pad appends PKCS#7 padding so that len(data)+padLen is a
// multiple of blockSize.
func pkcs7Pad(data []byte) []byte {
	padLen := blockSize - (len(data) % blockSize)
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// pkcs7Unpad validates and strips PKCS#7 padding.
func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrBadPadding
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-padLen], nil
}

// EncryptCBC encrypts plaintext under key with a freshly generated IV,
// returning iv || ciphertext. It is used by tests to produce the same
// envelope shape a real client would send in SEND_FILE.
func EncryptCBC(key [16]byte, plaintext []byte) ([]byte, error) {
	iv, err := RandomBytes(blockSize)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return append(iv, ciphertext...), nil
}

// DecryptCBC decrypts an envelope shaped iv(16B) || ciphertext under
// key and strips PKCS#7 padding. This is the server side of SEND_FILE:
// the first 16 bytes of the payload's ciphertext field are the IV, the
// remainder is AES-128-CBC ciphertext (spec.md §9 resolves the
// cross-variant ambiguity in favor of raw bytes, not hex-ASCII).
func DecryptCBC(key [16]byte, envelope []byte) ([]byte, error) {
	if len(envelope) < blockSize+blockSize {
		return nil, ErrCiphertextTooShort
	}
	iv := envelope[:blockSize]
	ciphertext := envelope[blockSize:]
	if len(ciphertext)%blockSize != 0 {
		return nil, ErrNotBlockAligned
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext)
}
