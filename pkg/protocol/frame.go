package protocol

import (
	"encoding/binary"
	"io"
	"strings"
)

// Request is one decoded request frame:
//
//	client_id (16B) | version (1B) | code (2B BE) | payload_size (4B BE) | payload
type Request struct {
	ClientID [ClientIDSize]byte
	Version  byte
	Code     RequestCode
	Payload  []byte
}

// DecodeRequest reads exactly one request frame from r. A peer that
// closes the connection before the 23-byte header is fully read, or
// before payload_size additional bytes arrive, yields ErrDisconnected.
// Reading zero bytes on the header read returns io.EOF, which callers
// should treat as a clean session end, not an error.
func DecodeRequest(r io.Reader) (Request, error) {
	var header [RequestHeaderSize]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil {
		if n == 0 && err == io.ErrUnexpectedEOF {
			return Request{}, io.EOF
		}
		if err == io.EOF {
			return Request{}, io.EOF
		}
		return Request{}, ErrDisconnected
	}

	var req Request
	copy(req.ClientID[:], header[0:ClientIDSize])
	req.Version = header[ClientIDSize]
	req.Code = RequestCode(binary.BigEndian.Uint16(header[ClientIDSize+1 : ClientIDSize+3]))
	payloadSize := binary.BigEndian.Uint32(header[ClientIDSize+3 : ClientIDSize+7])

	if payloadSize > MaxPayloadSize {
		return Request{}, ErrPayloadTooLarge
	}
	if payloadSize == 0 {
		return req, nil
	}

	req.Payload = make([]byte, payloadSize)
	if _, err := io.ReadFull(r, req.Payload); err != nil {
		return Request{}, ErrDisconnected
	}
	return req, nil
}

// EncodeResponse writes version || code (2B BE) || payload_size (4B BE) || payload to w.
func EncodeResponse(w io.Writer, code ResponseCode, payload []byte) error {
	header := make([]byte, ResponseHeaderSize)
	header[0] = ServerVersion
	binary.BigEndian.PutUint16(header[1:3], uint16(code))
	binary.BigEndian.PutUint32(header[3:7], uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// EncodeResponseBytes is EncodeResponse rendered into a single buffer,
// used by tests exercising the round-trip law directly.
func EncodeResponseBytes(code ResponseCode, payload []byte) []byte {
	buf := make([]byte, 0, ResponseHeaderSize+len(payload))
	buf = append(buf, ServerVersion)
	var codeBuf [2]byte
	binary.BigEndian.PutUint16(codeBuf[:], uint16(code))
	buf = append(buf, codeBuf[:]...)
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(payload)))
	buf = append(buf, sizeBuf[:]...)
	buf = append(buf, payload...)
	return buf
}

// DecodeResponse parses a response frame previously built with
// EncodeResponse/EncodeResponseBytes. It exists principally so the
// round-trip law in the test suite can be stated as
// DecodeResponse(EncodeResponseBytes(code, payload)) == (version, code, payload).
func DecodeResponse(data []byte) (version byte, code ResponseCode, payload []byte, err error) {
	if len(data) < ResponseHeaderSize {
		return 0, 0, nil, ErrDisconnected
	}
	version = data[0]
	code = ResponseCode(binary.BigEndian.Uint16(data[1:3]))
	size := binary.BigEndian.Uint32(data[3:7])
	if uint32(len(data)-ResponseHeaderSize) != size {
		return 0, 0, nil, ErrDisconnected
	}
	payload = data[ResponseHeaderSize:]
	return version, code, payload, nil
}

// TrimName strips trailing NUL padding then surrounding whitespace from
// a fixed-width name field, per spec.
func TrimName(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return strings.TrimSpace(string(raw[:end]))
}

// PadName NUL-pads name to width bytes, truncating if it is already
// longer (callers are expected to validate length beforehand).
func PadName(name string, width int) []byte {
	out := make([]byte, width)
	copy(out, name)
	return out
}

