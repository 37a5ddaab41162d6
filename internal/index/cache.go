package index

import (
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/askresume/askresume/internal/chunk"
	"github.com/askresume/askresume/internal/document"
)

// Cache holds the current Index snapshot, rebuilding it only when the
// document's content hash changes.
//
// The snapshot lives behind an atomically swapped pointer: readers
// never block on a rebuild beyond the very first build, and a caller
// holding an old snapshot can keep using it safely while a rebuild
// completes.
type Cache struct {
	docs     *document.Cache
	splitter *chunk.Splitter
	opts     Options

	current  atomic.Pointer[Index]
	group    singleflight.Group
	rebuilds atomic.Int64
}

// NewCache creates an index cache over the document cache.
//
// An invalid chunk config degrades rather than fails: the cache logs
// the error and serves the single sentinel chunk, keeping queries
// available.
func NewCache(docs *document.Cache, chunkCfg chunk.Config, opts Options) *Cache {
	splitter, err := chunk.NewSplitter(chunkCfg)
	if err != nil {
		slog.Error("invalid chunk config, falling back to sentinel index",
			slog.String("error", err.Error()))
		splitter = nil
	}
	return &Cache{docs: docs, splitter: splitter, opts: opts}
}

// Ensure returns the current Index, building it if the cache is cold
// or the document's content hash changed. Concurrent callers needing
// the same rebuild coordinate so at most one build runs; the rest wait
// and share its result.
func (c *Cache) Ensure() (*Index, error) {
	hash, err := c.docs.Hash()
	if err != nil {
		return nil, err
	}

	// Unlocked fast path: repeated queries against an unchanged
	// document never rebuild.
	if ix := c.current.Load(); ix != nil && ix.BuiltFromHash == hash {
		return ix, nil
	}

	v, err, _ := c.group.Do(hash, func() (any, error) {
		// A build for this hash may have finished while we waited.
		if ix := c.current.Load(); ix != nil && ix.BuiltFromHash == hash {
			return ix, nil
		}
		return c.rebuild(hash)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Index), nil
}

// rebuild constructs a new Index off to the side and publishes it with
// a single atomic swap.
func (c *Cache) rebuild(hash string) (*Index, error) {
	text, err := c.docs.Load(false)
	if err != nil {
		return nil, err
	}

	var chunks []string
	if c.splitter != nil {
		chunks = c.splitter.Split(text)
	}
	if len(chunks) == 0 {
		chunks = []string{SentinelChunk}
	}

	ix := Build(chunks, hash, c.opts)
	c.current.Store(ix)
	c.rebuilds.Add(1)

	slog.Debug("index built",
		slog.Int("chunks", len(chunks)),
		slog.Int("vocabulary", len(ix.Vocabulary)))
	return ix, nil
}

// Rebuilds returns how many index builds have run. Used by tests to
// assert the rebuild-on-change-only property.
func (c *Cache) Rebuilds() int64 {
	return c.rebuilds.Load()
}
