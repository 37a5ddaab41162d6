package index

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askresume/askresume/internal/chunk"
	"github.com/askresume/askresume/internal/document"
	"github.com/askresume/askresume/internal/extract"
)

func newTestCache(t *testing.T, content string) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	docs := document.NewCache(path, extract.NewPlainTextExtractor())
	cache := NewCache(docs, chunk.Config{Size: 40, Overlap: 8, BoundaryWindow: 10}, defaultOpts())
	return cache, path
}

func TestEnsure_BuildsOnce(t *testing.T) {
	cache, _ := newTestCache(t, "Built distributed search systems in Go and operated them in production.")

	for i := 0; i < 5; i++ {
		ix, err := cache.Ensure()
		require.NoError(t, err)
		require.NotNil(t, ix)
	}
	assert.Equal(t, int64(1), cache.Rebuilds())
}

func TestEnsure_RebuildsWhenContentChanges(t *testing.T) {
	cache, path := newTestCache(t, "original resume content about golang")

	first, err := cache.Ensure()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("rewritten resume content about kubernetes"), 0o644))
	newMod := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, newMod, newMod))

	second, err := cache.Ensure()
	require.NoError(t, err)

	assert.NotEqual(t, first.BuiltFromHash, second.BuiltFromHash)
	assert.Equal(t, int64(2), cache.Rebuilds())
}

func TestEnsure_TouchWithoutContentChangeKeepsIndex(t *testing.T) {
	cache, path := newTestCache(t, "stable resume content")

	first, err := cache.Ensure()
	require.NoError(t, err)

	// A bumped mtime forces re-extraction, but the hash is unchanged so
	// the same index snapshot survives.
	newMod := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, newMod, newMod))

	second, err := cache.Ensure()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), cache.Rebuilds())
}

func TestEnsure_MissingDocument(t *testing.T) {
	docs := document.NewCache(filepath.Join(t.TempDir(), "absent.txt"), extract.NewPlainTextExtractor())
	cache := NewCache(docs, chunk.Config{Size: 40, Overlap: 8, BoundaryWindow: 10}, defaultOpts())

	_, err := cache.Ensure()
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrNotFound)
}

func TestEnsure_SentinelForEmptyDocument(t *testing.T) {
	cache, _ := newTestCache(t, "   \n\n  ")

	ix, err := cache.Ensure()
	require.NoError(t, err)
	require.Len(t, ix.Chunks, 1)
	assert.Equal(t, SentinelChunk, ix.Chunks[0])
}

func TestEnsure_SentinelForInvalidChunkConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("real resume text"), 0o644))

	docs := document.NewCache(path, extract.NewPlainTextExtractor())
	cache := NewCache(docs, chunk.Config{Size: 0, Overlap: 0, BoundaryWindow: 0}, defaultOpts())

	ix, err := cache.Ensure()
	require.NoError(t, err)
	require.Len(t, ix.Chunks, 1)
	assert.Equal(t, SentinelChunk, ix.Chunks[0])
}

func TestEnsure_ConcurrentCallersShareOneBuild(t *testing.T) {
	cache, _ := newTestCache(t, "concurrently indexed resume text about backend engineering")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ix, err := cache.Ensure()
			assert.NoError(t, err)
			assert.NotNil(t, ix)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), cache.Rebuilds())
}
