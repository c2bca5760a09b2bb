// Package engineconfig loads engine defaults from a TOML file, the ambient config-loading
// concern the command-line flags in cmd/brindle don't otherwise cover (a single file a deployed
// engine can ship with, instead of a long flag invocation).
package engineconfig

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/jprovost/brindle/pkg/engine"
)

// Config holds the subset of engine.Options plus the protocol-adapter settings that make sense
// to pin in a file rather than pass on the command line every time.
type Config struct {
	Hash    uint `toml:"hash"`    // transposition table size in MB; 0 disables it
	Noise   uint `toml:"noise"`   // evaluation noise in millipawns; 0 is deterministic
	Workers int  `toml:"workers"` // search worker goroutines sharing the table

	Book     string `toml:"book"`      // path to a Polyglot (.bin) opening book; empty disables it
	BookSeed int64  `toml:"book_seed"` // random seed for weighted book-move selection

	Persist string `toml:"persist"` // directory for the durable root-result cache; empty disables it

	Livebridge LivebridgeConfig `toml:"livebridge"`
}

// LivebridgeConfig configures the optional websocket protocol adapter.
type LivebridgeConfig struct {
	Addr string `toml:"addr"` // listen address, e.g. ":8080"; empty disables the adapter
}

// Default returns the engine's built-in defaults, matching cmd/brindle's flag defaults.
func Default() Config {
	return Config{Hash: 64, Workers: 1}
}

// Load reads and decodes a TOML config file, starting from Default and overriding any field
// the file sets explicitly. A missing or empty path is not an error: the caller gets the
// defaults back unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading engine config %v: %w", path, err)
	}
	return cfg, nil
}

// EngineOptions adapts cfg to engine.Options for engine.WithOptions.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{Hash: c.Hash, Noise: c.Noise, Workers: c.Workers}
}
