// Package config provides configuration loading and validation for askresume.
//
// Configuration is resolved in three layers, later layers winning:
//  1. Built-in defaults
//  2. An optional YAML config file
//  3. Environment variables
//
// Validation runs once at startup; the engine never accepts traffic
// with an invalid configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete askresume configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Document DocumentConfig `yaml:"document"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	Contact  ContactConfig  `yaml:"contact"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `yaml:"port"`

	// AllowedOrigins is the comma-separated list of CORS origins.
	AllowedOrigins string `yaml:"allowed_origins"`

	// EnableDebugRoutes gates the /debug/* introspection endpoints.
	EnableDebugRoutes bool `yaml:"enable_debug_routes"`
}

// DocumentConfig configures the source document.
type DocumentConfig struct {
	// Path is the résumé file location.
	Path string `yaml:"path"`

	// WatchDebounce is the delay before a file event triggers a warm
	// reload, as a duration string (e.g. "500ms").
	WatchDebounce string `yaml:"watch_debounce"`
}

// RetrieveConfig configures chunking, indexing and ranking.
type RetrieveConfig struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int `yaml:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive chunks in
	// characters. Must be smaller than ChunkSize.
	ChunkOverlap int `yaml:"chunk_overlap"`

	// BoundaryWindow is the maximum backward search distance for a
	// word-boundary cut when splitting.
	BoundaryWindow int `yaml:"boundary_window"`

	// TopK is the default number of ranked chunks returned per query.
	TopK int `yaml:"top_k"`

	// NgramMin and NgramMax bound the n-gram sizes included in the
	// vocabulary (inclusive).
	NgramMin int `yaml:"ngram_min"`
	NgramMax int `yaml:"ngram_max"`

	// MinDocFreq and MaxDocFreq prune the vocabulary. Values in (0,1)
	// are fractions of the chunk count; values >= 1 are absolute
	// counts, except MaxDocFreq == 1.0 which means "all chunks"
	// (no upper pruning), mirroring the fitted behavior of the
	// original system.
	MinDocFreq float64 `yaml:"min_doc_freq"`
	MaxDocFreq float64 `yaml:"max_doc_freq"`

	// SimilarityThreshold is the score above which a chat reply is
	// considered handled.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// ContactConfig configures contact message persistence.
type ContactConfig struct {
	// DBPath is the sqlite database file for contact messages.
	DBPath string `yaml:"db_path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	FilePath string `yaml:"file_path"`
}

// Default returns the built-in default configuration.
// Retrieval defaults mirror the original deployment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8000,
			AllowedOrigins:    "",
			EnableDebugRoutes: true,
		},
		Document: DocumentConfig{
			Path:          "resume/resume.pdf",
			WatchDebounce: "500ms",
		},
		Retrieve: RetrieveConfig{
			ChunkSize:           1200,
			ChunkOverlap:        200,
			BoundaryWindow:      50,
			TopK:                3,
			NgramMin:            1,
			NgramMax:            1,
			MinDocFreq:          1,
			MaxDocFreq:          1.0,
			SimilarityThreshold: 0.25,
		},
		Contact: ContactConfig{
			DBPath: "askresume.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and applies
// environment overrides. An empty path or a missing file yields the
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides using the
// flat names the original deployment honors.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = v
	}
	if v := os.Getenv("ENABLE_DEBUG_ROUTES"); v != "" {
		c.Server.EnableDebugRoutes = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("RESUME_PATH"); v != "" {
		c.Document.Path = v
	}
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Retrieve.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("CONTACT_DB_PATH"); v != "" {
		c.Contact.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	envInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	envFloat := func(name string, dst *float64) {
		if v := os.Getenv(name); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	envInt("RETRIEVE_CHUNK_SIZE", &c.Retrieve.ChunkSize)
	envInt("RETRIEVE_CHUNK_OVERLAP", &c.Retrieve.ChunkOverlap)
	envInt("RETRIEVE_TOP_K", &c.Retrieve.TopK)
	envInt("RETRIEVE_BOUNDARY_WINDOW", &c.Retrieve.BoundaryWindow)
	envInt("RETRIEVE_TFIDF_NGRAM_MIN", &c.Retrieve.NgramMin)
	envInt("RETRIEVE_TFIDF_NGRAM_MAX", &c.Retrieve.NgramMax)
	envFloat("RETRIEVE_TFIDF_MIN_DF", &c.Retrieve.MinDocFreq)
	envFloat("RETRIEVE_TFIDF_MAX_DF", &c.Retrieve.MaxDocFreq)
}

// Validate checks the configuration for constraint violations.
// Violations surface here, before the engine accepts traffic, never on
// the first query.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Document.Path == "" {
		return fmt.Errorf("document.path must not be empty")
	}

	r := c.Retrieve
	if r.ChunkSize <= 0 {
		return fmt.Errorf("retrieve.chunk_size must be positive, got %d", r.ChunkSize)
	}
	if r.ChunkOverlap < 0 {
		return fmt.Errorf("retrieve.chunk_overlap must be non-negative, got %d", r.ChunkOverlap)
	}
	if r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("retrieve.chunk_overlap (%d) must be smaller than retrieve.chunk_size (%d)",
			r.ChunkOverlap, r.ChunkSize)
	}
	if r.BoundaryWindow < 0 {
		return fmt.Errorf("retrieve.boundary_window must be non-negative, got %d", r.BoundaryWindow)
	}
	if r.TopK < 1 {
		return fmt.Errorf("retrieve.top_k must be at least 1, got %d", r.TopK)
	}
	if r.NgramMin < 1 {
		return fmt.Errorf("retrieve.ngram_min must be at least 1, got %d", r.NgramMin)
	}
	if r.NgramMax < r.NgramMin {
		return fmt.Errorf("retrieve.ngram_max (%d) must be >= retrieve.ngram_min (%d)",
			r.NgramMax, r.NgramMin)
	}
	if r.MinDocFreq <= 0 {
		return fmt.Errorf("retrieve.min_doc_freq must be positive, got %g", r.MinDocFreq)
	}
	if r.MaxDocFreq <= 0 {
		return fmt.Errorf("retrieve.max_doc_freq must be positive, got %g", r.MaxDocFreq)
	}
	if r.SimilarityThreshold < 0 || r.SimilarityThreshold > 1 {
		return fmt.Errorf("retrieve.similarity_threshold must be in [0, 1], got %g", r.SimilarityThreshold)
	}
	return nil
}

// Origins returns the parsed CORS origin list.
func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
