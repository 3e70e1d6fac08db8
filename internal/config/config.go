// Package config loads process configuration the way the teacher's
// od_parser.go loads an EDS file: through gopkg.in/ini.v1, with typed
// accessors and sane fallbacks rather than hand-rolled line parsing.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

const (
	DefaultPort        = 1357
	DefaultStorageRoot = "./storage"
	DefaultCatalogPath = "./storage/catalog.gob"
	DefaultIdleTimeout = 5 * time.Minute
	DefaultLogLevel    = "info"
)

// Config is the server's process-level configuration. There is no
// Backlog setting: net.Listen gives no portable handle on the kernel's
// accept backlog short of raw syscalls (see internal/acceptor), so a
// config key for it would document a value nothing reads.
type Config struct {
	Port        int
	StorageRoot string
	CatalogPath string
	IdleTimeout time.Duration
	LogLevel    string
}

// Default returns the configuration used when no file is present,
// matching spec.md §6 ("Port read from a single-line text file (default
// 1357 if missing)").
func Default() Config {
	return Config{
		Port:        DefaultPort,
		StorageRoot: DefaultStorageRoot,
		CatalogPath: DefaultCatalogPath,
		IdleTimeout: DefaultIdleTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

// Load reads path as either a bare single-line port file (spec.md §6's
// literal description) or an ini file with a [server] section (this
// expansion's superset, §AMBIENT STACK of SPEC_FULL.md). A missing file
// yields Default() unchanged — the server still starts.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if port, ok := parseBarePort(raw); ok {
		cfg.Port = port
		return cfg, nil
	}

	file, err := ini.Load(raw)
	if err != nil {
		return cfg, err
	}

	section := file.Section("server")
	cfg.Port = section.Key("port").MustInt(DefaultPort)
	cfg.StorageRoot = section.Key("storage_root").MustString(DefaultStorageRoot)
	cfg.CatalogPath = section.Key("catalog_path").MustString(DefaultCatalogPath)
	cfg.LogLevel = section.Key("log_level").MustString(DefaultLogLevel)

	idleSeconds := section.Key("idle_timeout_seconds").MustInt(int(DefaultIdleTimeout.Seconds()))
	cfg.IdleTimeout = time.Duration(idleSeconds) * time.Second

	return cfg, nil
}

// parseBarePort recognizes a file containing nothing but a port number,
// the exact shape spec.md §6 describes, so existing deployments that
// only ever wrote a port file keep working unmodified.
func parseBarePort(raw []byte) (int, bool) {
	line := strings.TrimSpace(string(raw))
	if line == "" || strings.ContainsAny(line, "[=\n") {
		return 0, false
	}
	port, err := strconv.Atoi(line)
	if err != nil {
		return 0, false
	}
	return port, true
}
