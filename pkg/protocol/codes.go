// Package protocol defines the wire format of the file-submission
// protocol: request/response codes, fixed field widths, and the frame
// codec used to move them over a TCP connection.
package protocol

// ServerVersion is the single ASCII-digit version byte carried by every
// response frame. Request versions are read but never compared against
// it; see the session engine for details.
const ServerVersion byte = '3'

// Fixed field widths, in bytes, dictated by the wire format.
const (
	ClientIDSize = 16
	NameSize     = 255
	// RequestHeaderSize is client_id(16) + version(1) + code(2) + payload_size(4).
	RequestHeaderSize = ClientIDSize + 1 + 2 + 4
	// ResponseHeaderSize is version(1) + code(2) + payload_size(4).
	ResponseHeaderSize = 1 + 2 + 4
)

// RequestCode identifies the operation a client frame is asking the
// server to perform.
type RequestCode uint16

const (
	Registration       RequestCode = 1025
	SendPublicKey      RequestCode = 1026
	Reconnect          RequestCode = 1027
	SendFile           RequestCode = 1028
	CRCCorrect         RequestCode = 1029
	CRCIncorrectResend RequestCode = 1030
	CRCIncorrectDone   RequestCode = 1031
)

var requestNames = map[RequestCode]string{
	Registration:       "REGISTRATION",
	SendPublicKey:      "SEND_PUBLIC_KEY",
	Reconnect:          "RECONNECT",
	SendFile:           "SEND_FILE",
	CRCCorrect:         "CRC_CORRECT",
	CRCIncorrectResend: "CRC_INCORRECT_RESEND",
	CRCIncorrectDone:   "CRC_INCORRECT_DONE",
}

// String renders the request code name, or "UNKNOWN" for any value
// outside the closed set the protocol defines.
func (c RequestCode) String() string {
	if name, ok := requestNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// ResponseCode identifies what the server is telling the client in a
// response frame.
type ResponseCode uint16

const (
	RegistrationSuccess    ResponseCode = 2100
	RegistrationFailed     ResponseCode = 2101
	ReceivedPublicKeySendAES ResponseCode = 2102
	FileReceivedCRCOK      ResponseCode = 2103
	ConfirmMsg             ResponseCode = 2104
	ApproveReconnectSendAES ResponseCode = 2105
	ReconnectRejected      ResponseCode = 2106
	GeneralError           ResponseCode = 2107
)

var responseNames = map[ResponseCode]string{
	RegistrationSuccess:      "REGISTRATION_SUCCESS",
	RegistrationFailed:       "REGISTRATION_FAILED",
	ReceivedPublicKeySendAES: "RECEIVED_PUBLIC_KEY_SEND_AES",
	FileReceivedCRCOK:        "FILE_RECEIVED_CRC_OK",
	ConfirmMsg:               "CONFIRM_MSG",
	ApproveReconnectSendAES:  "APPROVE_RECONNECT_SEND_AES",
	ReconnectRejected:        "RECONNECT_REJECTED",
	GeneralError:             "GENERAL_ERROR",
}

func (c ResponseCode) String() string {
	if name, ok := responseNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
