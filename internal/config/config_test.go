package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 1200, cfg.Retrieve.ChunkSize)
	assert.Equal(t, 200, cfg.Retrieve.ChunkOverlap)
	assert.Equal(t, 3, cfg.Retrieve.TopK)
	assert.Equal(t, 0.25, cfg.Retrieve.SimilarityThreshold)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9001
  allowed_origins: "https://a.example,https://b.example"
retrieve:
  chunk_size: 800
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 800, cfg.Retrieve.ChunkSize)
	assert.Equal(t, 5, cfg.Retrieve.TopK)
	// Untouched fields keep their defaults.
	assert.Equal(t, 200, cfg.Retrieve.ChunkOverlap)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesWinOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o644))

	t.Setenv("PORT", "9002")
	t.Setenv("SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("RETRIEVE_TOP_K", "7")
	t.Setenv("ENABLE_DEBUG_ROUTES", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9002, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Retrieve.SimilarityThreshold)
	assert.Equal(t, 7, cfg.Retrieve.TopK)
	assert.False(t, cfg.Server.EnableDebugRoutes)
}

func TestLoad_InvalidEnvValueIgnored(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too small", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty document path", func(c *Config) { c.Document.Path = "" }},
		{"zero chunk size", func(c *Config) { c.Retrieve.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.Retrieve.ChunkOverlap = -1 }},
		{"overlap >= size", func(c *Config) { c.Retrieve.ChunkOverlap = c.Retrieve.ChunkSize }},
		{"negative boundary window", func(c *Config) { c.Retrieve.BoundaryWindow = -1 }},
		{"zero top_k", func(c *Config) { c.Retrieve.TopK = 0 }},
		{"zero ngram min", func(c *Config) { c.Retrieve.NgramMin = 0 }},
		{"ngram max below min", func(c *Config) { c.Retrieve.NgramMin = 2; c.Retrieve.NgramMax = 1 }},
		{"zero min_df", func(c *Config) { c.Retrieve.MinDocFreq = 0 }},
		{"zero max_df", func(c *Config) { c.Retrieve.MaxDocFreq = 0 }},
		{"threshold below range", func(c *Config) { c.Retrieve.SimilarityThreshold = -0.1 }},
		{"threshold above range", func(c *Config) { c.Retrieve.SimilarityThreshold = 1.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestOrigins_Parsing(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"https://a.example", []string{"https://a.example"}},
		{"https://a.example, https://b.example", []string{"https://a.example", "https://b.example"}},
		{" , https://a.example , ", []string{"https://a.example"}},
	}
	for _, tt := range tests {
		sc := ServerConfig{AllowedOrigins: tt.in}
		assert.Equal(t, tt.want, sc.Origins())
	}
}
