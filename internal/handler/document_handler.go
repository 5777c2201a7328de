// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"docpipe/internal/domain"
	"docpipe/internal/service"
	apperrors "docpipe/pkg/errors"
)

const (
	// multipartMemory is how much of an upload is kept in memory before
	// spilling to temp files.
	multipartMemory = 8 << 20
	// multipartOverhead leaves room for form fields and boundaries on top
	// of the file size limit.
	multipartOverhead = 1 << 20
	maxJSONBody       = 1 << 20
)

// DocumentPipeline is the part of service.Pipeline the handlers call.
type DocumentPipeline interface {
	Process(ctx context.Context, req service.ProcessRequest) (*domain.ProcessingResult, error)
	Reoptimize(ctx context.Context, req service.ReoptimizeRequest) (*domain.ReoptimizeResult, error)
}

// DocumentHandler handles document processing requests
type DocumentHandler struct {
	pipeline    DocumentPipeline
	maxFileSize int64
	logger      domain.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(pipeline DocumentPipeline, maxFileSize int64, logger domain.Logger) *DocumentHandler {
	return &DocumentHandler{
		pipeline:    pipeline,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// ProcessDocument handles a multipart upload with fields file, model and
// maxTokensPerChunk.
func (h *DocumentHandler) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if r.MultipartForm != nil {
		defer func() {
			if rmErr := r.MultipartForm.RemoveAll(); rmErr != nil {
				h.logger.Warn("Failed to remove multipart temp files", "error", rmErr)
			}
		}()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, apperrors.NewValidationError("file exceeds the maximum upload size"))
			return
		}
		writeError(w, apperrors.NewValidationError("invalid multipart form", err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.NewValidationError("file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperrors.NewValidationError("failed to read upload", err.Error()))
		return
	}

	maxTokens := 0
	if raw := strings.TrimSpace(r.FormValue("maxTokensPerChunk")); raw != "" {
		maxTokens, err = strconv.Atoi(raw)
		if err != nil || maxTokens < 0 {
			writeError(w, apperrors.NewValidationError("maxTokensPerChunk must be a non-negative integer"))
			return
		}
	}

	// Strip any path components the client sent.
	name := strings.TrimSpace(filepath.Base(header.Filename))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}

	result, err := h.pipeline.Process(r.Context(), service.ProcessRequest{
		Data:              data,
		FileName:          name,
		DeclaredMIME:      header.Header.Get("Content-Type"),
		Model:             r.FormValue("model"),
		MaxTokensPerChunk: maxTokens,
	})
	if err != nil {
		h.logFailure("Document processing failed", err, "file", name)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ReoptimizeDocument re-chunks a previously processed file for another model.
func (h *DocumentHandler) ReoptimizeDocument(w http.ResponseWriter, r *http.Request) {
	var req service.ReoptimizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("invalid JSON body", err.Error()))
		return
	}

	result, err := h.pipeline.Reoptimize(r.Context(), req)
	if err != nil {
		h.logFailure("Reoptimization failed", err, "hash", req.FileHash)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// logFailure keeps client mistakes out of the error log.
func (h *DocumentHandler) logFailure(msg string, err error, fields ...interface{}) {
	if apperrors.GetStatusCode(err) >= http.StatusInternalServerError {
		h.logger.Error(msg, err, fields...)
		return
	}
	h.logger.Debug(msg, append(fields, "error", err)...)
}
