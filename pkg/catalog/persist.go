package catalog

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// persistedState is the on-disk shape of a Catalog: every client and
// file row, gob-encoded as a whole rather than record-by-record. The
// retrieval pack carries no database/sql driver or embedded KV store
// for this protocol's domain (see the Catalog doc comment), so this is
// the stdlib's own answer — encoding/gob round-trips Go structs
// directly, with no schema or driver to stand up for two small tables.
type persistedState struct {
	Clients []Client
	Files   []File
}

// Open returns a Catalog backed by the flat file at path, warming its
// in-memory tables from whatever was last durably written there. A
// missing file is a fresh catalog, not an error (spec.md §4.1). Any
// other failure to read or decode path is handled the same way: Open
// still returns a usable, empty Catalog rather than refusing to start.
// Mutating calls then fail for as long as persistLocked cannot write
// path (for example while a directory sits there). Where path is
// writable, the first successful mutation replaces the unreadable file
// with the current in-memory tables; the rows that file held are not
// recovered.
//
// path == "" returns a purely in-memory Catalog equivalent to New(),
// for callers (tests, embedders) that do not want durability at all.
func Open(path string) *Catalog {
	c := &Catalog{
		clients:     make(map[ClientID]Client),
		byName:      make(map[string]ClientID),
		files:       make(map[FileKey]File),
		persistPath: path,
	}
	if path == "" {
		return c
	}

	f, err := os.Open(path)
	if err != nil {
		return c
	}
	defer f.Close()

	var state persistedState
	if err := gob.NewDecoder(f).Decode(&state); err != nil {
		return c
	}

	for _, client := range state.Clients {
		c.clients[client.ID] = client
		c.byName[client.Name] = client.ID
	}
	for _, file := range state.Files {
		c.files[FileKey{OwnerID: file.OwnerID, FileName: file.FileName}] = file
	}
	return c
}

// persistLocked flushes the current client and file tables to
// c.persistPath. Callers must already hold c.mu for writing. It writes
// to a sibling temp file and renames it over persistPath, so a crash
// mid-write never leaves a truncated catalog on disk — the same
// write-temp-then-rename shape used to replace a data file safely in
// the pack's other file-backed stores.
func (c *Catalog) persistLocked() error {
	if c.persistPath == "" {
		return nil
	}

	state := persistedState{
		Clients: make([]Client, 0, len(c.clients)),
		Files:   make([]File, 0, len(c.files)),
	}
	for _, client := range c.clients {
		state.Clients = append(state.Clients, client)
	}
	for _, file := range c.files {
		state.Files = append(state.Files, file)
	}

	dir := filepath.Dir(c.persistPath)
	tmp, err := os.CreateTemp(dir, ".catalog-*.tmp")
	if err != nil {
		return fmt.Errorf("catalog: persist: %w", err)
	}
	tmpName := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(state); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("catalog: persist: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("catalog: persist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog: persist: %w", err)
	}
	if err := os.Rename(tmpName, c.persistPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog: persist: %w", err)
	}
	return nil
}
