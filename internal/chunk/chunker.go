// Package chunk splits document text into overlapping, boundary-aware
// segments for indexing.
package chunk

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidConfig is returned when chunking parameters violate their
// constraints.
var ErrInvalidConfig = errors.New("invalid chunker config")

// Config holds the chunking parameters.
type Config struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters consecutive chunks share.
	// Must be smaller than Size.
	Overlap int

	// BoundaryWindow is how far the splitter walks backward from a
	// tentative cut point looking for whitespace before accepting a
	// mid-word break.
	BoundaryWindow int
}

// Splitter produces overlapping chunks from text.
type Splitter struct {
	cfg Config
}

// NewSplitter validates the config and creates a splitter.
// Invalid parameters are rejected here, never at split time.
func NewSplitter(cfg Config) (*Splitter, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, cfg.Size)
	}
	if cfg.Overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidConfig, cfg.Overlap)
	}
	if cfg.Overlap >= cfg.Size {
		return nil, fmt.Errorf("%w: overlap (%d) must be smaller than size (%d)",
			ErrInvalidConfig, cfg.Overlap, cfg.Size)
	}
	if cfg.BoundaryWindow < 0 {
		return nil, fmt.Errorf("%w: boundary window must be non-negative, got %d",
			ErrInvalidConfig, cfg.BoundaryWindow)
	}
	return &Splitter{cfg: cfg}, nil
}

// Split cuts the trimmed text into chunks of at most Size characters,
// pulling cut points back to the nearest whitespace within
// BoundaryWindow so words stay whole. Consecutive chunks overlap by
// Overlap characters; every character of the input belongs to at least
// one chunk. An empty input yields no chunks.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)

	var chunks []string
	start := 0
	for start < n {
		end := start + s.cfg.Size
		if end > n {
			end = n
		}

		// Avoid cutting inside a word when a nearby boundary exists.
		if end < n && !unicode.IsSpace(runes[end]) {
			back := end
			for back > start && end-back < s.cfg.BoundaryWindow && !unicode.IsSpace(runes[back]) {
				back--
			}
			if back > start && unicode.IsSpace(runes[back]) {
				end = back
			}
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == n {
			break
		}

		start = end - s.cfg.Overlap
		if start < 0 {
			start = 0
		}
	}

	return chunks
}
