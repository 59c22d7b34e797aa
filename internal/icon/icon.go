// Package icon resolves small per-file icons and caches them for the lifetime
// of a session. Icons of ordinary files are shared per extension; executables
// and launchers are cached per path because their icons differ per file.
package icon

import (
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/atomicstack/quicklaunch/internal/metrics"
)

// Bitmap is the small image shown next to a menu entry. A Bitmap returned by
// the cache is shared between many menu entries and must not be released by
// any of them.
type Bitmap struct {
	// Key is the cache key the bitmap was extracted for.
	Key string
	// Name is a freedesktop icon name.
	Name string
	// Glyph is the single-cell rendering used by the terminal menu.
	Glyph string

	released atomic.Bool
}

// Release marks the bitmap as disposed. Only the cache calls this.
func (b *Bitmap) Release() {
	if b != nil {
		b.released.Store(true)
	}
}

// Released reports whether the bitmap has been disposed.
func (b *Bitmap) Released() bool {
	return b != nil && b.released.Load()
}

// Extractor performs the OS-level icon lookup for a single file.
type Extractor interface {
	Extract(path string) (*Bitmap, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string) (*Bitmap, error)

func (f ExtractorFunc) Extract(path string) (*Bitmap, error) { return f(path) }

var perFileExtensions = map[string]struct{}{
	".exe":     {},
	".lnk":     {},
	".desktop": {},
}

// CacheKey returns the key under which the icon for path is cached: the full
// path for executables, shortcuts and extensionless files (which may be
// executables), the extension otherwise. Keys are case-insensitive.
func CacheKey(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := perFileExtensions[ext]; ok || ext == "" {
		return strings.ToLower(path)
	}
	return ext
}

// Cache deduplicates icon extraction. It is safe for concurrent use from
// scan goroutines and the UI loop.
type Cache struct {
	extractor Extractor
	metrics   *metrics.Metrics

	defaultFile *Bitmap
	folder      *Bitmap

	mu      sync.RWMutex
	entries map[string]*Bitmap
}

// Option customises a Cache.
type Option func(*Cache)

// WithMetrics records extraction and hit counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// NewCache builds an icon cache around extractor.
func NewCache(extractor Extractor, opts ...Option) *Cache {
	if extractor == nil {
		extractor = SystemExtractor{}
	}
	c := &Cache{
		extractor:   extractor,
		defaultFile: &Bitmap{Key: "default", Name: "application-x-executable", Glyph: "•"},
		folder:      &Bitmap{Key: "folder", Name: "folder", Glyph: "▸"},
		entries:     make(map[string]*Bitmap),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns the shared fallback bitmap.
func (c *Cache) Default() *Bitmap { return c.defaultFile }

// Folder returns the shared folder bitmap.
func (c *Cache) Folder() *Bitmap { return c.folder }

// Resolve returns the bitmap for filePath. Extraction failures yield the
// default bitmap and are not cached, so a later call for another file with
// the same extension retries.
func (c *Cache) Resolve(filePath string) *Bitmap {
	if filePath == "" {
		return c.defaultFile
	}
	key := CacheKey(filePath)

	c.mu.RLock()
	bmp, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.metrics.IconCacheHit()
		return bmp
	}

	c.metrics.IconExtracted()
	extracted, err := c.extractor.Extract(filePath)
	if err != nil || extracted == nil {
		return c.defaultFile
	}
	extracted.Key = key

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		// Lost a race with a concurrent extraction of the same key.
		extracted.Release()
		return existing
	}
	c.entries[key] = extracted
	return extracted
}

// Len reports the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge releases every cached bitmap once and empties the cache. The default
// and folder sentinels are skipped; they stay valid until Close.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[*Bitmap]struct{}, len(c.entries))
	for _, bmp := range c.entries {
		if bmp == nil || bmp == c.defaultFile || bmp == c.folder {
			continue
		}
		if _, dup := seen[bmp]; dup {
			continue
		}
		seen[bmp] = struct{}{}
		bmp.Release()
	}
	c.entries = make(map[string]*Bitmap)
	return len(seen)
}

// Close purges the cache and then releases the sentinels.
func (c *Cache) Close() int {
	released := c.Purge()
	c.defaultFile.Release()
	c.folder.Release()
	return released
}
