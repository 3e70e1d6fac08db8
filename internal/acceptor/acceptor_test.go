package acceptor

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/samsamfire/securedrop/pkg/blobstore"
	"github.com/samsamfire/securedrop/pkg/catalog"
	"github.com/samsamfire/securedrop/pkg/protocol"
	"github.com/samsamfire/securedrop/internal/session"
)

func TestAcceptorServesRegistration(t *testing.T) {
	cat := catalog.New()
	blobs, err := blobstore.New(t.TempDir())
	require.NoError(t, err)
	engine := session.New(cat, blobs)

	logger := log.New()
	logger.SetLevel(log.ErrorLevel)

	a, err := Bind("127.0.0.1:0", engine, time.Second, logger)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	conn, err := net.Dial("tcp", a.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	var clientID [16]byte
	header := make([]byte, 0, protocol.RequestHeaderSize)
	header = append(header, clientID[:]...)
	header = append(header, '3')
	var codeBuf [2]byte
	binary.BigEndian.PutUint16(codeBuf[:], uint16(protocol.Registration))
	header = append(header, codeBuf[:]...)
	payload := []byte("erin")
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(payload)))
	header = append(header, sizeBuf[:]...)

	_, err = conn.Write(header)
	require.NoError(t, err)
	_, err = conn.Write(payload)
	require.NoError(t, err)

	respHeader := make([]byte, protocol.ResponseHeaderSize)
	_, err = readFull(conn, respHeader)
	require.NoError(t, err)
	code := protocol.ResponseCode(binary.BigEndian.Uint16(respHeader[1:3]))
	require.Equal(t, protocol.RegistrationSuccess, code)

	require.NoError(t, a.Close())
	require.NoError(t, <-done)
}

func TestAcceptorCloseStopsRun(t *testing.T) {
	cat := catalog.New()
	blobs, err := blobstore.New(t.TempDir())
	require.NoError(t, err)
	engine := session.New(cat, blobs)
	logger := log.New()
	logger.SetLevel(log.ErrorLevel)

	a, err := Bind("127.0.0.1:0", engine, 0, logger)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	require.NoError(t, a.Close())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
