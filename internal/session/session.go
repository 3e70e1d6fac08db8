// Package session implements the per-connection session engine (C4):
// it reads one request frame, dispatches by code against a plain table
// built once at construction (the original source's class-level
// decorator registry becomes this table, per spec.md §9 "Design Notes"), mutates
// the catalog and blob store, and writes exactly one response frame,
// looping until the peer disconnects or an unrecoverable error occurs.
package session

import (
	"errors"
	"io"
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/samsamfire/securedrop/pkg/blobstore"
	"github.com/samsamfire/securedrop/pkg/catalog"
	"github.com/samsamfire/securedrop/pkg/protocol"
)

// handlerFunc is the shape of every dispatch table entry: given the
// engine's collaborators and the decoded request, produce exactly one
// response code and payload. Handlers never return a Go error to their
// caller — a handler failure is itself a GENERAL_ERROR response, per
// spec.md §7 ("the only fatal class is bind failure; everything else
// is per-session").
type handlerFunc func(e *Engine, req protocol.Request) (protocol.ResponseCode, []byte)

// dispatchTable is built once and shared read-only by every Engine
// instance; it never mutates after init().
var dispatchTable map[protocol.RequestCode]handlerFunc

func init() {
	dispatchTable = map[protocol.RequestCode]handlerFunc{
		protocol.Registration:       handleRegistration,
		protocol.SendPublicKey:      handleSendPublicKey,
		protocol.Reconnect:          handleReconnect,
		protocol.SendFile:           handleSendFile,
		protocol.CRCCorrect:         handleCRCCorrect,
		protocol.CRCIncorrectResend: handleCRCIncorrectResend,
		protocol.CRCIncorrectDone:   handleCRCIncorrectDone,
	}
}

// Engine owns the collaborators a dispatched request needs: the
// catalog, the blob store, and the dispatch table above. One Engine is
// shared across all connections; Serve is what's per-connection.
type Engine struct {
	Catalog  *catalog.Catalog
	Blobs    *blobstore.Store
	dispatch map[protocol.RequestCode]handlerFunc
}

// New builds a session engine against the given catalog and blob store.
func New(cat *catalog.Catalog, blobs *blobstore.Store) *Engine {
	return &Engine{
		Catalog:  cat,
		Blobs:    blobs,
		dispatch: dispatchTable,
	}
}

// Serve runs the read-dispatch-write loop for one connection until the
// peer disconnects, idles out, or a framing error closes the session.
// logger should already carry this session's trace id (see
// internal/acceptor).
func (e *Engine) Serve(conn net.Conn, idleTimeout time.Duration, logger *log.Entry) {
	for {
		if idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
				logger.WithError(err).Warn("failed to set read deadline")
				return
			}
		}

		req, err := protocol.DecodeRequest(conn)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				logger.Debug("peer disconnected")
				return
			case errors.Is(err, protocol.ErrDisconnected):
				// Covers both a genuinely malformed frame and an idle
				// read timeout (conn.SetReadDeadline expiring surfaces
				// here too) — spec.md §5 directs both to be treated as
				// a plain disconnect, with no response written.
				logger.Debug("peer disconnected or session idle timeout")
				return
			case errors.Is(err, protocol.ErrPayloadTooLarge):
				logger.Warn("rejected oversized payload_size")
				e.respond(conn, logger, protocol.GeneralError, []byte("payload_size exceeds maximum frame size"))
				continue
			default:
				logger.WithError(err).Warn("failed to decode request frame")
				return
			}
		}

		fields := log.Fields{"code": req.Code.String(), "version": req.Version}
		code, payload := e.dispatchRequest(req)
		fields["response"] = code.String()
		logger.WithFields(fields).Debug("dispatched request")

		if !e.respond(conn, logger, code, payload) {
			return
		}

		clientID := catalog.ClientID(req.ClientID)
		if err := e.Catalog.UpdateLastSeen(clientID); err != nil {
			logger.WithError(err).Debug("last-seen update skipped")
		}
	}
}

func (e *Engine) respond(conn net.Conn, logger *log.Entry, code protocol.ResponseCode, payload []byte) bool {
	if err := protocol.EncodeResponse(conn, code, payload); err != nil {
		logger.WithError(err).Warn("failed to write response; closing session")
		return false
	}
	return true
}

func (e *Engine) dispatchRequest(req protocol.Request) (protocol.ResponseCode, []byte) {
	handler, ok := e.dispatch[req.Code]
	if !ok {
		return protocol.GeneralError, []byte("unsupported request code")
	}
	return handler(e, req)
}

func generalError(msg string) (protocol.ResponseCode, []byte) {
	return protocol.GeneralError, []byte(msg)
}
