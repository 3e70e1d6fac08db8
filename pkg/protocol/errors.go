package protocol

import "errors"

var (
	// ErrDisconnected is returned when the peer closes the connection
	// mid-frame: the header or payload could not be read in full.
	ErrDisconnected = errors.New("peer disconnected mid-frame")

	// ErrPayloadTooLarge guards against a declared payload_size that
	// would force an unbounded allocation.
	ErrPayloadTooLarge = errors.New("declared payload size exceeds maximum frame size")
)

// MaxPayloadSize bounds the payload_size a request frame may declare.
// The wire format allows up to 2^32-1 per spec, but a file-submission
// server has no legitimate reason to buffer more than this in one frame.
const MaxPayloadSize = 64 << 20
