package cmd

import (
	"fmt"

	"github.com/askresume/askresume/internal/chunk"
	"github.com/askresume/askresume/internal/config"
	"github.com/askresume/askresume/internal/document"
	"github.com/askresume/askresume/internal/extract"
	"github.com/askresume/askresume/internal/index"
	"github.com/askresume/askresume/internal/search"
)

// stack wires the retrieval pipeline: extractor, document cache, index
// cache and query engine.
type stack struct {
	docs   *document.Cache
	index  *index.Cache
	engine *search.Engine
}

// buildStack constructs the retrieval pipeline from configuration.
func buildStack(cfg *config.Config) (*stack, error) {
	extractor, err := extract.ForPath(cfg.Document.Path)
	if err != nil {
		return nil, fmt.Errorf("selecting extractor: %w", err)
	}

	docs := document.NewCache(cfg.Document.Path, extractor)
	idx := index.NewCache(docs,
		chunk.Config{
			Size:           cfg.Retrieve.ChunkSize,
			Overlap:        cfg.Retrieve.ChunkOverlap,
			BoundaryWindow: cfg.Retrieve.BoundaryWindow,
		},
		index.Options{
			NgramMin:   cfg.Retrieve.NgramMin,
			NgramMax:   cfg.Retrieve.NgramMax,
			MinDocFreq: cfg.Retrieve.MinDocFreq,
			MaxDocFreq: cfg.Retrieve.MaxDocFreq,
		})

	engine, err := search.NewEngine(idx)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	return &stack{docs: docs, index: idx, engine: engine}, nil
}
