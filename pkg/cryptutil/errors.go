package cryptutil

import "errors"

var (
	// ErrBadPadding is returned when PKCS#7 unpadding finds the trailing
	// bytes inconsistent with any valid padding length.
	ErrBadPadding = errors.New("cryptutil: invalid PKCS#7 padding")

	// ErrCiphertextTooShort is returned when a CBC envelope is shorter
	// than one IV plus one cipher block.
	ErrCiphertextTooShort = errors.New("cryptutil: ciphertext shorter than IV + one block")

	// ErrNotBlockAligned is returned when CBC ciphertext length is not a
	// multiple of the AES block size.
	ErrNotBlockAligned = errors.New("cryptutil: ciphertext is not block aligned")
)
