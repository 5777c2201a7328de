package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docpipe/internal/chunk"
	"docpipe/internal/domain"
	"docpipe/internal/extract"
	"docpipe/internal/metrics"
	"docpipe/internal/repository"
	"docpipe/internal/service"
	"docpipe/internal/tokens"
)

// newTestRouter wires the real pipeline over in-memory storage.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := NewMockHandlerLogger()
	m := metrics.New()
	meter := tokens.NewMeter(nil, logger)
	extractor := extract.New(extract.Config{}, logger, extract.WithObserver(m))
	store := repository.NewTieredStore(repository.NewMemoryStore(), nil, 0, logger, repository.WithLookupObserver(m))
	pipeline := service.NewPipeline(extractor, meter, chunk.New(meter), store, service.PipelineConfig{}, logger,
		service.WithPipelineObserver(m))

	return NewRouter(
		NewDocumentHandler(pipeline, 1<<20, logger),
		NewModelHandler(meter, tokens.DefaultModel),
		RouterConfig{CORSOrigins: []string{"http://localhost:5173"}, Metrics: m.Handler(), Logger: logger},
	)
}

func TestNewRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestNewRouter_Models(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/models", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp struct {
		DefaultModel string             `json:"defaultModel"`
		Models       []domain.ModelInfo `json:"models"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DefaultModel != tokens.DefaultModel {
		t.Fatalf("expected default model %s, got %s", tokens.DefaultModel, resp.DefaultModel)
	}
	if len(resp.Models) == 0 {
		t.Fatalf("expected at least one model")
	}
}

func TestNewRouter_ProcessThenReoptimize(t *testing.T) {
	router := newTestRouter(t)

	var text strings.Builder
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&text, "Paragraph %d explains the ingestion pipeline. It has a second sentence.\n\n", i)
	}

	body, contentType := multipartBody(t, "guide.txt", text.String(), map[string]string{
		"model":             "llama-3-8b",
		"maxTokensPerChunk": "100",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var processed domain.ProcessingResult
	if err := json.Unmarshal(rr.Body.Bytes(), &processed); err != nil {
		t.Fatalf("decode process response: %v", err)
	}
	if !processed.Success || processed.FileHash == "" {
		t.Fatalf("unexpected result %+v", processed)
	}
	if len(processed.Chunks) < 2 {
		t.Fatalf("expected several chunks at a 100 token budget, got %d", len(processed.Chunks))
	}

	reoptimize := fmt.Sprintf(`{"fileHash":%q,"targetModel":"claude-3-opus"}`, processed.FileHash)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/documents/reoptimize", strings.NewReader(reoptimize)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var reopt domain.ReoptimizeResult
	if err := json.Unmarshal(rr.Body.Bytes(), &reopt); err != nil {
		t.Fatalf("decode reoptimize response: %v", err)
	}
	if !reopt.ExtractionSkipped || reopt.TotalChunks != 1 {
		t.Fatalf("expected a single chunk without extraction, got %+v", reopt)
	}
}

func TestNewRouter_UnsupportedFormat(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "photo.png", "\x89PNG\r\n\x1a\n", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status %d, got %d: %s", http.StatusUnsupportedMediaType, rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"type":"unsupported_format"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestNewRouter_Metrics(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "docpipe_inflight_extractions") {
		t.Fatalf("expected docpipe metrics in exposition")
	}
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/documents/process", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}
