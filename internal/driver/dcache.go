package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"lunar/internal/diag"
	"lunar/internal/project"
	"lunar/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит диагностики разобранных файлов на диске, ключ —
// хеш содержимого и опций разбора. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached parse outcome.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path string
	// Hash is the sha256 of the file content the diagnostics belong to.
	Hash project.Digest

	// Spans are stored with File = 0 and rebound on load.
	Diagnostics []diag.Diagnostic
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens (creating if needed) a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache %s: %w", dir, err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key CacheKey) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "diags", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key CacheKey, payload *DiskPayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. A payload
// written by another schema version counts as a miss.
func (c *DiskCache) Get(key CacheKey, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименовываем, чтобы параллельные читатели не видели полуудалённый каталог
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func newDiskPayload(file *source.File, diags []diag.Diagnostic) *DiskPayload {
	return &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        file.Path,
		Hash:        project.Digest(file.Hash),
		Diagnostics: rebind(diags, 0),
	}
}

// matches guards against key collisions and stale entries.
func (p *DiskPayload) matches(file *source.File) bool {
	return p.Schema == diskCacheSchemaVersion && p.Hash == project.Digest(file.Hash)
}

func (p *DiskPayload) diagnostics(id source.FileID) []diag.Diagnostic {
	return rebind(p.Diagnostics, id)
}

// rebind копирует диагностики, переписывая FileID во всех спанах.
func rebind(diags []diag.Diagnostic, id source.FileID) []diag.Diagnostic {
	if len(diags) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, len(diags))
	for i, d := range diags {
		d.Primary.File = id
		if len(d.Notes) > 0 {
			notes := make([]diag.Note, len(d.Notes))
			for j, n := range d.Notes {
				n.Span.File = id
				notes[j] = n
			}
			d.Notes = notes
		}
		if len(d.Fixes) > 0 {
			fixes := make([]diag.Fix, len(d.Fixes))
			for j, fx := range d.Fixes {
				edits := make([]diag.FixEdit, len(fx.Edits))
				for k, e := range fx.Edits {
					e.Span.File = id
					edits[k] = e
				}
				fx.Edits = edits
				fixes[j] = fx
			}
			d.Fixes = fixes
		}
		out[i] = d
	}
	return out
}
