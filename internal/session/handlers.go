package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/samsamfire/securedrop/pkg/blobstore"
	"github.com/samsamfire/securedrop/pkg/catalog"
	"github.com/samsamfire/securedrop/pkg/cryptutil"
	"github.com/samsamfire/securedrop/pkg/protocol"
)

// handleRegistration implements spec.md §4.4.1.
func handleRegistration(e *Engine, req protocol.Request) (protocol.ResponseCode, []byte) {
	name := protocol.TrimName(req.Payload)

	if _, exists := e.Catalog.LookupClientByName(name); exists {
		return protocol.RegistrationFailed, nil
	}

	id, err := cryptutil.NewClientID()
	if err != nil {
		return generalError("could not generate client id")
	}

	err = e.Catalog.InsertClient(catalog.Client{
		ID:       catalog.ClientID(id),
		Name:     name,
		LastSeen: time.Now(),
	})
	if errors.Is(err, catalog.ErrDuplicateName) {
		// Lost a registration race on this name between the lookup
		// above and the insert; same observable outcome either way.
		return protocol.RegistrationFailed, nil
	}
	if err != nil {
		return generalError("catalog insert failed")
	}

	return protocol.RegistrationSuccess, id[:]
}

// handleSendPublicKey implements spec.md §4.4.2.
func handleSendPublicKey(e *Engine, req protocol.Request) (protocol.ResponseCode, []byte) {
	if len(req.Payload) < protocol.NameSize {
		return generalError("payload too short for SEND_PUBLIC_KEY")
	}
	publicKeyBytes := req.Payload[protocol.NameSize:]
	clientID := catalog.ClientID(req.ClientID)

	pub, err := cryptutil.ParsePublicKey(publicKeyBytes)
	if err != nil {
		return generalError("could not parse RSA public key")
	}

	aesKey, err := cryptutil.NewAESKey()
	if err != nil {
		return generalError("could not generate AES key")
	}

	if err := e.Catalog.SetKeys(clientID, publicKeyBytes, aesKey[:]); err != nil {
		if errors.Is(err, catalog.ErrUnknownClient) {
			return generalError("unknown client")
		}
		return generalError("could not persist key material")
	}

	encrypted, err := cryptutil.EncryptAESKeyForClient(pub, aesKey)
	if err != nil {
		return generalError("could not wrap AES key")
	}

	payload := append(append([]byte{}, req.ClientID[:]...), encrypted...)
	return protocol.ReceivedPublicKeySendAES, payload
}

// handleReconnect implements spec.md §4.4.3. The AES key is reused, not
// rotated: this is a reaffirmation of an existing session, not a fresh
// key exchange.
func handleReconnect(e *Engine, req protocol.Request) (protocol.ResponseCode, []byte) {
	name := protocol.TrimName(req.Payload)

	client, exists := e.Catalog.LookupClientByName(name)
	if !exists || !client.HasKeys() {
		return protocol.ReconnectRejected, []byte("Restart as new client")
	}

	var aesKey [16]byte
	copy(aesKey[:], client.AESKey)

	pub, err := cryptutil.ParsePublicKey(client.PublicKey)
	if err != nil {
		return generalError("stored public key is invalid")
	}

	encrypted, err := cryptutil.EncryptAESKeyForClient(pub, aesKey)
	if err != nil {
		return generalError("could not wrap AES key")
	}

	payload := append(append([]byte{}, client.ID[:]...), encrypted...)
	return protocol.ApproveReconnectSendAES, payload
}

// handleSendFile implements spec.md §4.4.4. The ciphertext field is
// raw bytes (spec.md §9's open question resolved in favor of the
// non-hex variant): the first 16 bytes are the CBC IV, the rest is
// AES-128-CBC ciphertext with PKCS#7 padding. A content_size of zero
// is the documented boundary case (spec.md §8): no IV/ciphertext is
// present at all, and the stored file is simply empty.
func handleSendFile(e *Engine, req protocol.Request) (protocol.ResponseCode, []byte) {
	const headerLen = 4 + protocol.NameSize
	if len(req.Payload) < headerLen {
		return generalError("payload too short for SEND_FILE")
	}

	contentSize := binary.BigEndian.Uint32(req.Payload[0:4])
	fileNameField := req.Payload[4:headerLen]
	fileName := protocol.TrimName(fileNameField)
	ciphertext := req.Payload[headerLen:]

	if uint32(len(ciphertext)) != contentSize {
		return generalError("content_size does not match payload")
	}

	clientID := catalog.ClientID(req.ClientID)
	aesKeyBytes, err := e.Catalog.GetAESKey(clientID)
	if err != nil {
		return generalError("client has no AES key; send public key first")
	}
	var aesKey [16]byte
	copy(aesKey[:], aesKeyBytes)

	var plaintext []byte
	if contentSize > 0 {
		plaintext, err = cryptutil.DecryptCBC(aesKey, ciphertext)
		if err != nil {
			return generalError("could not decrypt file contents")
		}
	}

	path, err := e.Blobs.Write(fileName, plaintext)
	if err != nil {
		return generalError("could not write file to storage")
	}

	if err := e.Catalog.InsertFile(catalog.File{
		OwnerID:  clientID,
		FileName: fileName,
		PathName: path,
	}); err != nil {
		return generalError("could not record file")
	}

	crc, err := blobstore.CRC32(path)
	if err != nil {
		return generalError("could not checksum stored file")
	}

	payload := make([]byte, 0, protocol.ClientIDSize+4+protocol.NameSize+4)
	payload = append(payload, clientID[:]...)
	var sizeField [4]byte
	binary.BigEndian.PutUint32(sizeField[:], contentSize)
	payload = append(payload, sizeField[:]...)
	payload = append(payload, fileNameField...)
	var crcField [4]byte
	binary.BigEndian.PutUint32(crcField[:], crc)
	payload = append(payload, crcField[:]...)

	return protocol.FileReceivedCRCOK, payload
}

// handleCRCCorrect implements spec.md §4.4.5.
func handleCRCCorrect(e *Engine, req protocol.Request) (protocol.ResponseCode, []byte) {
	fileName := protocol.TrimName(req.Payload)
	clientID := catalog.ClientID(req.ClientID)

	if err := e.Catalog.MarkFileVerified(clientID, fileName, true); err != nil {
		if errors.Is(err, catalog.ErrUnknownFile) {
			return generalError(fmt.Sprintf("unknown file %q", fileName))
		}
		return generalError("could not persist verification state")
	}
	return protocol.ConfirmMsg, clientID[:]
}

// handleCRCIncorrectResend implements spec.md §4.4.6's first half. The
// source protocol leaves this unanswered (spec.md §9); this expansion
// resolves it by echoing CONFIRM_MSG, giving every request exactly one
// response.
func handleCRCIncorrectResend(e *Engine, req protocol.Request) (protocol.ResponseCode, []byte) {
	clientID := catalog.ClientID(req.ClientID)
	return protocol.ConfirmMsg, clientID[:]
}

// handleCRCIncorrectDone implements spec.md §4.4.6's terminal half: the
// file-transfer exchange ends unsuccessfully, verified stays false.
func handleCRCIncorrectDone(e *Engine, req protocol.Request) (protocol.ResponseCode, []byte) {
	clientID := catalog.ClientID(req.ClientID)
	return protocol.ConfirmMsg, clientID[:]
}
