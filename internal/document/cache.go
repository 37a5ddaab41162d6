// Package document provides the cached source document for retrieval.
//
// The cache lazily extracts and normalizes the résumé text and
// invalidates on the file's modification time. Reloads are coordinated
// so concurrent callers trigger at most one extraction per timestamp
// change; readers always observe a complete snapshot, never a partial
// one.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/askresume/askresume/internal/extract"
)

// ErrNotFound is returned when the source document does not exist.
var ErrNotFound = errors.New("document not found")

// Info is lightweight metadata about the cached document, used by the
// debug surface.
type Info struct {
	Path    string    `json:"path"`
	Exists  bool      `json:"exists"`
	Pages   int       `json:"pages"`
	Chars   int       `json:"chars"`
	ModTime time.Time `json:"mtime"`
	Preview string    `json:"preview"`
}

// snapshot is one complete load result. Snapshots are immutable once
// published.
type snapshot struct {
	text    string
	hash    string
	modTime time.Time
	pages   int
}

// Cache is a thread-safe, lazily loaded document cache with
// modification-time invalidation.
type Cache struct {
	path      string
	extractor extract.Extractor

	mu    sync.RWMutex
	snap  *snapshot
	group singleflight.Group
}

// NewCache creates a document cache over the given file path.
func NewCache(path string, extractor extract.Extractor) *Cache {
	return &Cache{path: path, extractor: extractor}
}

// Load returns the normalized document text, extracting it when the
// cache is cold, the file's modification time changed, or force is set.
// Returns ErrNotFound when the source file does not exist.
func (c *Cache) Load(force bool) (string, error) {
	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, c.path)
		}
		return "", fmt.Errorf("stat %s: %w", c.path, err)
	}
	modTime := stat.ModTime()

	if !force {
		c.mu.RLock()
		snap := c.snap
		c.mu.RUnlock()
		if snap != nil && snap.modTime.Equal(modTime) {
			return snap.text, nil
		}
	}

	// Coalesce concurrent reloads for the same timestamp into a single
	// extraction. Forced reloads use a distinct key so they always run.
	key := strconv.FormatInt(modTime.UnixNano(), 10)
	if force {
		key = "force:" + key
	}
	text, err, _ := c.group.Do(key, func() (any, error) {
		return c.reload(modTime, force)
	})
	if err != nil {
		return "", err
	}
	return text.(string), nil
}

// reload extracts, normalizes and publishes a new snapshot.
func (c *Cache) reload(modTime time.Time, force bool) (string, error) {
	if !force {
		// Another caller may have completed a load for this timestamp
		// while we waited on the flight group.
		c.mu.RLock()
		snap := c.snap
		c.mu.RUnlock()
		if snap != nil && snap.modTime.Equal(modTime) {
			return snap.text, nil
		}
	}

	pages, err := c.extractor.Extract(c.path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, c.path)
		}
		return "", fmt.Errorf("extracting %s: %w", c.path, err)
	}

	var parts []string
	for _, page := range pages {
		if page.Err != nil {
			// Unreadable pages are skipped, same as empty ones, but the
			// failure is logged so the two stay distinguishable.
			slog.Warn("page extraction failed",
				slog.Int("page", page.Number),
				slog.String("error", page.Err.Error()))
			continue
		}
		if page.Text != "" {
			parts = append(parts, page.Text)
		}
	}

	cleaned := NormalizeWhitespace(strings.Join(parts, "\n\n"))
	hash := HashText(cleaned)

	c.mu.Lock()
	c.snap = &snapshot{
		text:    cleaned,
		hash:    hash,
		modTime: modTime,
		pages:   len(pages),
	}
	c.mu.Unlock()

	slog.Debug("document loaded",
		slog.String("path", c.path),
		slog.Int("pages", len(pages)),
		slog.Int("chars", len(cleaned)))
	return cleaned, nil
}

// Hash returns the content hash of the current document text, loading
// it if necessary.
func (c *Cache) Hash() (string, error) {
	if _, err := c.Load(false); err != nil {
		return "", err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.hash, nil
}

// Path returns the source file path.
func (c *Cache) Path() string {
	return c.path
}

// Info returns metadata about the cached document, lazily loading it
// when the cache is cold.
func (c *Cache) Info() (Info, error) {
	text, err := c.Load(false)
	if err != nil {
		return Info{}, err
	}

	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	preview := text
	if len(preview) > 500 {
		preview = preview[:500]
	}
	return Info{
		Path:    c.path,
		Exists:  true,
		Pages:   snap.pages,
		Chars:   len(text),
		ModTime: snap.modTime,
		Preview: preview,
	}, nil
}

// HashText returns the stable content hash used for change detection.
func HashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

var (
	hyphenBreakRe = regexp.MustCompile(`-\n(\S)`)
	blankRunsRe   = regexp.MustCompile(`\n{3,}`)
	hspaceRunsRe  = regexp.MustCompile(`[ \t]{2,}`)
)

// NormalizeWhitespace cleans extracted text: line endings are unified,
// non-breaking spaces become spaces, line-break hyphenation is joined,
// runs of blank lines collapse to one, and runs of horizontal
// whitespace collapse to a single space.
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = hyphenBreakRe.ReplaceAllString(text, "$1")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	text = hspaceRunsRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
