// Package catalog is the durable mapping of clients and files (C1). It
// is modeled as a value type with interior synchronization, shared
// immutably across session goroutines — the same shape as the
// teacher's BusManager: one mutex, plain maps, methods that copy data
// out before releasing the lock so no caller ever holds a pointer into
// locked state. The in-memory maps are the read path; every mutation
// also flushes a gob-encoded snapshot to disk before the call returns,
// so the tables survive a process restart (see persist.go).
package catalog

import (
	"sync"
	"time"
)

// ClientID is the 16-byte opaque identifier assigned at registration.
type ClientID [16]byte

// Client is one row of the clients table.
type Client struct {
	ID        ClientID
	Name      string
	PublicKey []byte // nil until SEND_PUBLIC_KEY
	LastSeen  time.Time
	AESKey    []byte // nil until SEND_PUBLIC_KEY
}

// HasKeys reports whether this client has completed key exchange.
func (c Client) HasKeys() bool {
	return len(c.PublicKey) > 0 && len(c.AESKey) > 0
}

// FileKey identifies one files-table row.
type FileKey struct {
	OwnerID  ClientID
	FileName string
}

// File is one row of the files table.
type File struct {
	OwnerID  ClientID
	FileName string
	PathName string
	Verified bool
}

// Catalog is the in-process, concurrency-safe client/file store, backed
// by a flat file on disk. The retrieval pack carries no third-party
// database driver (no database/sql driver, no embedded KV store) for
// any protocol in this spec's domain, so the storage engine itself is
// built on the standard library (encoding/gob); see DESIGN.md for why
// that is the one part of this component built directly on the
// standard library rather than an ecosystem package.
type Catalog struct {
	mu          sync.RWMutex
	clients     map[ClientID]Client
	byName      map[string]ClientID
	files       map[FileKey]File
	persistPath string // empty: in-memory only, no flush-to-disk
}

// New returns an empty, purely in-memory Catalog with no backing file —
// used by tests and by anything embedding the catalog without needing
// it to survive a restart. Servers that need durability call Open.
func New() *Catalog {
	return &Catalog{
		clients: make(map[ClientID]Client),
		byName:  make(map[string]ClientID),
		files:   make(map[FileKey]File),
	}
}

// LookupClientByName returns the client registered under name, if any.
func (c *Catalog) LookupClientByName(name string) (Client, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[name]
	if !ok {
		return Client{}, false
	}
	return c.clients[id], true
}

// InsertClient adds a new client row. It fails with ErrDuplicateName if
// the name is already registered to a different client, or with a
// wrapped I/O error if the row could not be made durable (spec.md
// §4.1: an unreachable backing store fails the request rather than
// silently accepting an unpersisted write).
func (c *Catalog) InsertClient(client Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[client.Name]; exists {
		return ErrDuplicateName
	}
	c.clients[client.ID] = client
	c.byName[client.Name] = client.ID
	if err := c.persistLocked(); err != nil {
		delete(c.clients, client.ID)
		delete(c.byName, client.Name)
		return err
	}
	return nil
}

// SetKeys atomically updates a client's public key and AES key together
// with last_seen — no observer ever sees one field updated without the
// other, because both writes happen under the same critical section.
func (c *Catalog) SetKeys(id ClientID, publicKey, aesKey []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous, ok := c.clients[id]
	if !ok {
		return ErrUnknownClient
	}
	client := previous
	client.PublicKey = append([]byte(nil), publicKey...)
	client.AESKey = append([]byte(nil), aesKey...)
	client.LastSeen = time.Now()
	c.clients[id] = client
	if err := c.persistLocked(); err != nil {
		c.clients[id] = previous
		return err
	}
	return nil
}

// GetAESKey returns the client's current AES key.
func (c *Catalog) GetAESKey(id ClientID) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	client, ok := c.clients[id]
	if !ok || len(client.AESKey) == 0 {
		return nil, ErrUnknownClient
	}
	return client.AESKey, nil
}

// GetClient returns a client by id.
func (c *Catalog) GetClient(id ClientID) (Client, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	client, ok := c.clients[id]
	return client, ok
}

// UpdateLastSeen is best-effort bookkeeping invoked after every
// successfully dispatched request (spec.md §9 disposition): failures
// here are diagnostic only and never gate a protocol response.
func (c *Catalog) UpdateLastSeen(id ClientID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous, ok := c.clients[id]
	if !ok {
		return ErrUnknownClient
	}
	client := previous
	client.LastSeen = time.Now()
	c.clients[id] = client
	if err := c.persistLocked(); err != nil {
		c.clients[id] = previous
		return err
	}
	return nil
}

// InsertFile is idempotent on (owner_id, file_name): inserting a
// second time is a silent no-op, never an error.
func (c *Catalog) InsertFile(file File) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := FileKey{OwnerID: file.OwnerID, FileName: file.FileName}
	if _, exists := c.files[key]; exists {
		return nil
	}
	c.files[key] = file
	if err := c.persistLocked(); err != nil {
		delete(c.files, key)
		return err
	}
	return nil
}

// MarkFileVerified sets verified for (owner_id, file_name). It fails
// with ErrUnknownFile if no matching row exists.
func (c *Catalog) MarkFileVerified(ownerID ClientID, fileName string, verified bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := FileKey{OwnerID: ownerID, FileName: fileName}
	previous, ok := c.files[key]
	if !ok {
		return ErrUnknownFile
	}
	file := previous
	file.Verified = verified
	c.files[key] = file
	if err := c.persistLocked(); err != nil {
		c.files[key] = previous
		return err
	}
	return nil
}

// Snapshot returns every client and file row currently held — the
// state Open already warmed from disk, plus anything mutated since.
// Used by the -dump-catalog startup diagnostic to print real, durable
// state rather than an empty table.
func (c *Catalog) Snapshot() ([]Client, []File) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clients := make([]Client, 0, len(c.clients))
	for _, client := range c.clients {
		clients = append(clients, client)
	}
	files := make([]File, 0, len(c.files))
	for _, file := range c.files {
		files = append(files, file)
	}
	return clients, files
}
