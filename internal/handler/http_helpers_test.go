package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "docpipe/pkg/errors"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, apperrors.NewValidationError("nope"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content type application/json, got %s", ct)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"error":"nope","type":"validation"}` {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestWriteError_Wrapped(t *testing.T) {
	rr := httptest.NewRecorder()
	err := apperrors.NewOverloadedError("too many extractions in flight", errors.New("busy"))
	writeError(rr, errors.Join(errors.New("outer"), err))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"type":"overloaded"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestWriteError_HidesUnclassifiedErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "10.0.0.3") {
		t.Fatalf("internal detail leaked: %s", body)
	}
	if !strings.Contains(body, `"type":"internal"`) {
		t.Fatalf("unexpected response body: %s", body)
	}
}
