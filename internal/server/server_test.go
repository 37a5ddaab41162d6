package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askresume/askresume/internal/chunk"
	"github.com/askresume/askresume/internal/config"
	"github.com/askresume/askresume/internal/contact"
	"github.com/askresume/askresume/internal/document"
	"github.com/askresume/askresume/internal/extract"
	"github.com/askresume/askresume/internal/index"
	"github.com/askresume/askresume/internal/search"
)

const testResume = "Led kubernetes platform migration for payments\n" +
	"Designed postgres storage schemas and indexes\n" +
	"Taught university courses on compiler construction"

type serverOption func(cfg *config.Config)

func withMissingResume() serverOption {
	return func(cfg *config.Config) {
		cfg.Document.Path = filepath.Join(filepath.Dir(cfg.Document.Path), "absent.txt")
	}
}

func withDebugRoutes(enabled bool) serverOption {
	return func(cfg *config.Config) {
		cfg.Server.EnableDebugRoutes = enabled
	}
}

func withOrigins(origins string) serverOption {
	return func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = origins
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *Server {
	t.Helper()
	dir := t.TempDir()
	resumePath := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte(testResume), 0o644))

	cfg := config.Default()
	cfg.Document.Path = resumePath
	cfg.Retrieve.ChunkSize = 60
	cfg.Retrieve.ChunkOverlap = 0
	cfg.Retrieve.BoundaryWindow = 10
	for _, opt := range opts {
		opt(cfg)
	}

	docs := document.NewCache(cfg.Document.Path, extract.NewPlainTextExtractor())
	cache := index.NewCache(docs,
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
	engine, err := search.NewEngine(cache)
	require.NoError(t, err)

	contacts, err := contact.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = contacts.Close() })

	return New(cfg, engine, docs, contacts)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestChat_AnswersFromResume(t *testing.T) {
	h := newTestServer(t).Handler()

	w := postJSON(t, h, "/chat", ChatRequest{Message: "tell me about kubernetes"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[ChatResponse](t, w)
	assert.Contains(t, resp.Reply, "kubernetes")
	assert.True(t, resp.Handled)
}

func TestChat_EmptyMessage(t *testing.T) {
	h := newTestServer(t).Handler()

	w := postJSON(t, h, "/chat", ChatRequest{Message: "   "})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[ChatResponse](t, w)
	assert.Equal(t, emptyMessageReply, resp.Reply)
	assert.False(t, resp.Handled)
}

func TestChat_UnrelatedQueryNotHandled(t *testing.T) {
	h := newTestServer(t).Handler()

	w := postJSON(t, h, "/chat", ChatRequest{Message: "astrophysics telescope"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[ChatResponse](t, w)
	assert.False(t, resp.Handled)
}

func TestChat_MissingResumeDegrades(t *testing.T) {
	h := newTestServer(t, withMissingResume()).Handler()

	w := postJSON(t, h, "/chat", ChatRequest{Message: "kubernetes"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[ChatResponse](t, w)
	assert.Equal(t, unavailableReply, resp.Reply)
	assert.False(t, resp.Handled)
}

func TestChat_MalformedBody(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody[map[string]string](t, w)
	assert.NotEmpty(t, body["detail"])
}

func TestContact_SavesMessage(t *testing.T) {
	h := newTestServer(t).Handler()

	w := postJSON(t, h, "/contact", ContactRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Message: "Are you available for consulting?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[ContactResponse](t, w)
	assert.True(t, resp.Success)
}

func TestContact_InvalidSubmission(t *testing.T) {
	h := newTestServer(t).Handler()

	w := postJSON(t, h, "/contact", ContactRequest{Name: "Ada", Email: "not-an-email", Message: "hi"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBody[map[string]string](t, w)
	assert.NotEmpty(t, body["detail"])
}

func TestDebugResume_ReportsMetadata(t *testing.T) {
	h := newTestServer(t).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/resume", nil))
	require.Equal(t, http.StatusOK, w.Code)

	info := decodeBody[document.Info](t, w)
	assert.True(t, info.Exists)
	assert.Equal(t, 1, info.Pages)
	assert.Greater(t, info.Chars, 0)
}

func TestDebugReload_ForcesReload(t *testing.T) {
	h := newTestServer(t).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/debug/reload-resume", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, true, body["ok"])
	assert.Greater(t, body["chars"].(float64), 0.0)
}

func TestDebugRetrieve(t *testing.T) {
	h := newTestServer(t).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/retrieve?q=kubernetes&k=2", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[RetrieveResponse](t, w)
	assert.Equal(t, "kubernetes", resp.Query)
	assert.Equal(t, 2, resp.TopK)
	require.Len(t, resp.Results, 2)
	assert.Contains(t, resp.Results[0].Preview, "kubernetes")
	assert.Greater(t, resp.Confidence, 0.0)
	assert.NotEmpty(t, resp.Config)
}

func TestDebugRetrieve_EmptyQuery(t *testing.T) {
	h := newTestServer(t).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/retrieve?q=+", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDebugRetrieve_MissingResume(t *testing.T) {
	h := newTestServer(t, withMissingResume()).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/retrieve?q=kubernetes", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDebugRetrieve_PreviewTruncation(t *testing.T) {
	h := newTestServer(t).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/retrieve?q=kubernetes&k=1&preview_len=10", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[RetrieveResponse](t, w)
	require.Len(t, resp.Results, 1)
	assert.Len(t, resp.Results[0].Preview, 10)
}

func TestDebugRoutes_DisabledReturn404(t *testing.T) {
	h := newTestServer(t, withDebugRoutes(false)).Handler()

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/debug/resume"},
		{http.MethodPost, "/debug/reload-resume"},
		{http.MethodGet, "/debug/retrieve?q=x"},
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	h := newTestServer(t, withOrigins("https://example.com")).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_Preflight(t *testing.T) {
	h := newTestServer(t, withOrigins("https://example.com")).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	h := newTestServer(t, withOrigins("https://example.com")).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
