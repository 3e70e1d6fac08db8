// Package acceptor implements the TCP front door (C5): it binds a
// listener, accepts connections in a loop, and hands each one to a
// session engine on its own goroutine, mirroring the
// launchNodeProcess/wgProcess goroutine-per-unit-of-work pattern the
// teacher uses for per-node background processing.
package acceptor

import (
	"encoding/hex"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	prng "github.com/sixafter/prng-chacha"

	"github.com/samsamfire/securedrop/internal/session"
)

// Acceptor owns the listening socket and the goroutine pool serving
// connections accepted from it.
type Acceptor struct {
	listener    net.Listener
	engine      *session.Engine
	idleTimeout time.Duration
	logger      *log.Logger
	trace       io.Reader

	wg sync.WaitGroup
}

// Bind opens a TCP listener on addr. Backlog is left to the platform
// default: net.Listen gives no portable handle on SOMAXCONN short of
// raw syscalls, and the platform default comfortably clears the "at
// least 5 pending connections" floor a submission server needs (see
// DESIGN.md).
func Bind(addr string, engine *session.Engine, idleTimeout time.Duration, logger *log.Logger) (*Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	trace, err := prng.NewReader()
	if err != nil {
		ln.Close()
		return nil, err
	}

	return &Acceptor{
		listener:    ln,
		engine:      engine,
		idleTimeout: idleTimeout,
		logger:      logger,
		trace:       trace,
	}, nil
}

// Addr returns the address the listener is bound to.
func (a *Acceptor) Addr() net.Addr {
	return a.listener.Addr()
}

// Run accepts connections until the listener is closed, serving each
// one on its own goroutine. It returns nil on a clean shutdown (the
// listener having been closed by Close) and any other accept error
// otherwise.
func (a *Acceptor) Run() error {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.wg.Wait()
				return nil
			}
			return err
		}

		entry := a.logger.WithFields(log.Fields{
			"session":     a.newTraceID(),
			"remote_addr": conn.RemoteAddr().String(),
		})
		entry.Info("accepted connection")

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			defer conn.Close()
			a.engine.Serve(conn, a.idleTimeout, entry)
			entry.Debug("session closed")
		}()
	}
}

// Close stops accepting new connections. In-flight sessions are left
// to finish on their own; Run's return signals once they have.
func (a *Acceptor) Close() error {
	return a.listener.Close()
}

// newTraceID derives a short, non-secret correlation id for log lines
// belonging to one connection. It has no bearing on cryptographic
// material, so the faster ChaCha8-backed generator is used here rather
// than the AES-CTR-DRBG reserved for key material (see
// pkg/cryptutil/rand.go).
func (a *Acceptor) newTraceID() string {
	var buf [4]byte
	if _, err := a.trace.Read(buf[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf[:])
}
