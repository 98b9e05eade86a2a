// Package buildcache records what was true when a schema module was last
// generated, so an unchanged input and config can skip the rebuild.
//
// The cache is conservative: if any check fails the whole unit is compiled
// again. Per-declaration reuse within a process is the driver's memo.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// SchemaVersion is bumped when the cache format or the generated output
// changes shape. A mismatch forces a full rebuild.
const SchemaVersion = 1

// FileName is the cache file written next to the generated module.
const FileName = ".tszod-cache"

// Cache represents the on-disk build cache.
type Cache struct {
	// V must match SchemaVersion.
	V int `json:"v"`

	// InputHash is the fingerprint of the compiled unit.
	InputHash string `json:"inputHash"`

	// ConfigHash is the SHA-256 hex digest of the effective config, after
	// flags are applied.
	ConfigHash string `json:"configHash"`

	// Outputs lists files that must still exist for the cache to be valid.
	Outputs []string `json:"outputs"`
}

// CachePath returns the cache file for the module written to output:
// "src/schemas.zod.ts" caches in "src/.tszod-cache". An empty output falls
// back to a sibling of the input named after it.
func CachePath(output, input string) string {
	if output != "" {
		return filepath.Join(filepath.Dir(output), FileName)
	}
	dir := filepath.Dir(input)
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, name+FileName)
}

// Load reads a cache file. It returns nil when the file is missing or
// unreadable; callers treat nil as a miss.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	return &c
}

// Save writes the cache atomically.
func Save(path string, cache *Cache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Delete removes the cache file. A missing file is not an error.
func Delete(path string) {
	os.Remove(path)
}

// IsValid reports whether a rebuild can be skipped. All of these must
// hold:
//
//  1. the schema version matches
//  2. the input fingerprint matches
//  3. the config hash matches
//  4. every recorded output still exists
func (c *Cache) IsValid(inputHash, configHash string) bool {
	if c == nil {
		return false
	}
	if c.V != SchemaVersion {
		return false
	}
	if c.InputHash != inputHash || c.ConfigHash != configHash {
		return false
	}
	for _, path := range c.Outputs {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// HashConfig returns the SHA-256 hex digest of v's JSON encoding. Map keys
// are sorted, so equal configs hash equally.
func HashConfig(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hashing config: %w", err)
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}

// New creates a cache at the current schema version.
func New(inputHash, configHash string, outputs []string) *Cache {
	return &Cache{
		V:          SchemaVersion,
		InputHash:  inputHash,
		ConfigHash: configHash,
		Outputs:    outputs,
	}
}
