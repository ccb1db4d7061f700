// Package config loads the ambient write-transaction settings (auto-commit
// thresholds, hash mode, the durable backing's data directory) from YAML,
// following the usual load-a-YAML-document-into-a-typed-struct idiom.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// HashMode mirrors hashing.Mode as a YAML-friendly string so config files
// read "none"/"rolling"/"postorder" instead of small integers.
type HashMode string

const (
	HashNone      HashMode = "none"
	HashRolling   HashMode = "rolling"
	HashPostorder HashMode = "postorder"
)

// Options is the full set of tunables a write transaction and its owning
// resource manager need: the construction parameters plus the
// durable-backend choice.
type Options struct {
	// MaxNodeCount is the auto-commit threshold: commit() runs
	// automatically once the modification counter exceeds this many
	// edits. 0 disables size-based auto-commit.
	MaxNodeCount uint64 `yaml:"max_node_count"`

	// MaxTimeSeconds is the auto-commit period in seconds. 0 disables
	// time-based auto-commit (and the re-entrant lock is not installed).
	MaxTimeSeconds uint64 `yaml:"max_time_seconds"`

	// HashMode selects hash maintenance.
	HashMode HashMode `yaml:"hash_mode"`

	// DeweyIDsEnabled turns on hierarchical order-key maintenance.
	DeweyIDsEnabled bool `yaml:"dewey_ids_enabled"`

	// BadgerDir, if non-empty, selects the durable badger-backed PageTx
	// instead of the default in-memory one.
	BadgerDir string `yaml:"badger_dir"`
}

// Default returns the options a freshly bootstrapped resource uses absent
// an explicit config file: no auto-commit, rolling hashes, DeweyIDs on,
// in-memory backing.
func Default() Options {
	return Options{
		MaxNodeCount:    0,
		MaxTimeSeconds:  0,
		HashMode:        HashRolling,
		DeweyIDsEnabled: true,
	}
}

// Load reads and parses a YAML options file, starting from Default() so an
// omitted field keeps its default.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
