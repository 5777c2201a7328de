package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"docpipe/internal/chunk"
	"docpipe/internal/domain"
	"docpipe/internal/repository"
	"docpipe/internal/tokens"
	apperrors "docpipe/pkg/errors"
)

// Extractor turns uploaded bytes into normalized text. Implementations call
// doc.Done exactly once, when no decoder is running for doc any more.
type Extractor interface {
	Extract(ctx context.Context, doc domain.SourceDocument) (*domain.ExtractedContent, error)
}

// TokenMeter is the part of tokens.Meter the pipeline uses.
type TokenMeter interface {
	Resolve(modelID string) tokens.ModelProfile
	Analyze(text, modelID string) domain.TokenProfile
	RecommendedChunkSize(modelID string, bufferRatio float64) int
}

// Chunker splits text into budgeted chunks.
type Chunker interface {
	Chunk(ctx context.Context, text string, opts chunk.Options) (*chunk.Result, error)
}

// PipelineObserver receives admission and output events.
type PipelineObserver interface {
	ExtractionStarted()
	ExtractionFinished()
	Rejected()
	AddChunks(n int)
}

type noopObserver struct{}

func (noopObserver) ExtractionStarted()  {}
func (noopObserver) ExtractionFinished() {}
func (noopObserver) Rejected()           {}
func (noopObserver) AddChunks(int)       {}

// PipelineConfig holds the request limits and record lifetimes.
type PipelineConfig struct {
	MaxFileSize              int64
	MaxConcurrentExtractions int
	DefaultModel             string
	DefaultMaxTokens         int
	StoreTTL                 time.Duration
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 << 20
	}
	if c.MaxConcurrentExtractions <= 0 {
		c.MaxConcurrentExtractions = 4
	}
	if strings.TrimSpace(c.DefaultModel) == "" {
		c.DefaultModel = tokens.DefaultModel
	}
	if c.DefaultMaxTokens <= 0 {
		c.DefaultMaxTokens = chunk.DefaultMaxTokens
	}
	if c.StoreTTL <= 0 {
		c.StoreTTL = 7 * 24 * time.Hour
	}
	return c
}

// ProcessRequest is one upload as handed over by the transport.
type ProcessRequest struct {
	Data              []byte
	FileName          string
	DeclaredMIME      string
	Model             string
	MaxTokensPerChunk int
}

// ReoptimizeRequest re-chunks a processed file for another model.
type ReoptimizeRequest struct {
	FileHash         string `json:"fileHash"`
	TargetModel      string `json:"targetModel"`
	MaxContextTokens int    `json:"maxContextTokens"`
}

// Pipeline composes extraction, metering and chunking behind a
// content-addressed store.
type Pipeline struct {
	extractor Extractor
	meter     TokenMeter
	chunker   Chunker
	store     domain.ContentStore
	admission *semaphore.Weighted
	cfg       PipelineConfig
	logger    domain.Logger
	observer  PipelineObserver
	now       func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineObserver reports admission and chunk counts.
func WithPipelineObserver(o PipelineObserver) PipelineOption {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

func NewPipeline(
	extractor Extractor,
	meter TokenMeter,
	chunker Chunker,
	store domain.ContentStore,
	cfg PipelineConfig,
	logger domain.Logger,
	opts ...PipelineOption,
) *Pipeline {
	cfg = cfg.withDefaults()
	p := &Pipeline{
		extractor: extractor,
		meter:     meter,
		chunker:   chunker,
		store:     store,
		admission: semaphore.NewWeighted(int64(cfg.MaxConcurrentExtractions)),
		cfg:       cfg,
		logger:    logger,
		observer:  noopObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HashContent returns the hex SHA-256 of data.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Process returns the chunked analysis of an upload, from the store when an
// identical request was served before.
func (p *Pipeline) Process(ctx context.Context, req ProcessRequest) (*domain.ProcessingResult, error) {
	start := p.now()

	if len(req.Data) == 0 {
		return nil, apperrors.NewValidationError("file is empty")
	}
	if int64(len(req.Data)) > p.cfg.MaxFileSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("file exceeds the maximum size of %d bytes", p.cfg.MaxFileSize),
			fmt.Sprintf("size=%d", len(req.Data)))
	}
	if strings.TrimSpace(req.FileName) == "" {
		return nil, apperrors.NewValidationError("file name is required")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.cfg.DefaultModel
	}
	budget := req.MaxTokensPerChunk
	if budget <= 0 {
		budget = p.cfg.DefaultMaxTokens
	}

	hash := HashContent(req.Data)
	profile := p.meter.Resolve(model)
	resultKey := repository.ResultKey(hash, profile.ID, budget)

	var cached domain.ProcessingResult
	if p.load(ctx, resultKey, &cached) {
		// The stored record belongs to whoever computed it; timing and the
		// requested model id describe this call.
		cached.Cached = true
		cached.TokenAnalysis.ModelID = model
		cached.Processing.ProcessingTimeMs = p.now().Sub(start).Milliseconds()
		p.logger.Info("Serving cached result", "file", req.FileName, "hash", hash, "model", profile.ID)
		return &cached, nil
	}

	record, err := p.extraction(ctx, req, hash)
	if err != nil {
		return nil, err
	}
	content := record.Content

	analysis := p.meter.Analyze(content.Text, model)
	chunked, err := p.chunker.Chunk(ctx, content.Text, chunk.Options{
		MaxTokens:    budget,
		ModelID:      model,
		ContextLimit: analysis.ContextLimit,
	})
	if err != nil {
		return nil, apperrors.NewProcessingError("chunking failed", err)
	}
	p.observer.AddChunks(len(chunked.Chunks))

	approach := domain.ApproachDirect
	if analysis.TotalTokens > analysis.RecommendedChunkSize {
		approach = domain.ApproachChunked
	}

	result := &domain.ProcessingResult{
		Success:           true,
		RecordID:          uuid.New().String(),
		OriginalFileName:  req.FileName,
		FileSize:          int64(len(req.Data)),
		MimeType:          content.MimeType,
		FileHash:          hash,
		Model:             profile.ID,
		MaxTokensPerChunk: budget,
		ExtractedContent:  content,
		TokenAnalysis:     analysis,
		Chunks:            chunked.Chunks,
		OptimalChunks:     domain.FittingChunks(chunked.Chunks),
		Processing: domain.ProcessingInfo{
			RecommendedApproach: approach,
			ChunkCount:          len(chunked.Chunks),
			ProcessingTimeMs:    p.now().Sub(start).Milliseconds(),
			ChunkingStats:       chunked.Stats,
		},
		ExpiresAt: start.Add(p.cfg.StoreTTL).UTC(),
	}

	p.save(ctx, resultKey, result)
	p.logger.Info("Document processed",
		"file", req.FileName,
		"hash", hash,
		"model", profile.ID,
		"tokens", analysis.TotalTokens,
		"chunks", len(chunked.Chunks),
		"elapsed_ms", result.Processing.ProcessingTimeMs,
	)
	return result, nil
}

// extraction reuses a stored extraction of the same bytes or runs the
// extractor under admission control.
func (p *Pipeline) extraction(ctx context.Context, req ProcessRequest, hash string) (*domain.ExtractionRecord, error) {
	key := repository.ExtractionKey(hash)

	var record domain.ExtractionRecord
	if p.load(ctx, key, &record) {
		p.logger.Debug("Reusing stored extraction", "hash", hash)
		return &record, nil
	}

	if !p.admission.TryAcquire(1) {
		p.observer.Rejected()
		p.logger.Warn("Extraction rejected, all slots busy", "file", req.FileName, "limit", p.cfg.MaxConcurrentExtractions)
		return nil, apperrors.NewOverloadedError(
			"too many documents are being processed, retry shortly", domain.ErrOverloaded)
	}
	p.observer.ExtractionStarted()
	// The slot is held until the decoder itself stops, not until Extract
	// returns: a timed-out decoder still occupies a worker.
	release := sync.OnceFunc(func() {
		p.observer.ExtractionFinished()
		p.admission.Release(1)
	})
	content, err := p.extractor.Extract(ctx, domain.SourceDocument{
		Data:         req.Data,
		FileName:     req.FileName,
		DeclaredMIME: req.DeclaredMIME,
		Hash:         hash,
		Release:      release,
	})
	if err != nil {
		return nil, err
	}

	record = domain.ExtractionRecord{
		FileHash:         hash,
		OriginalFileName: req.FileName,
		FileSize:         int64(len(req.Data)),
		MimeType:         content.MimeType,
		Content:          *content,
		ExtractedAt:      p.now().UTC(),
	}
	p.save(ctx, key, &record)
	return &record, nil
}

// Reoptimize re-chunks the stored text of a processed file without
// extracting it again. MaxContextTokens overrides the target model's context
// window; chunks are sized to leave the usual buffer free.
func (p *Pipeline) Reoptimize(ctx context.Context, req ReoptimizeRequest) (*domain.ReoptimizeResult, error) {
	start := p.now()

	hash := strings.ToLower(strings.TrimSpace(req.FileHash))
	if hash == "" {
		return nil, apperrors.NewValidationError("fileHash is required")
	}
	if req.MaxContextTokens < 0 {
		return nil, apperrors.NewValidationError("maxContextTokens must not be negative")
	}
	model := strings.TrimSpace(req.TargetModel)
	if model == "" {
		model = p.cfg.DefaultModel
	}

	var record domain.ExtractionRecord
	if !p.load(ctx, repository.ExtractionKey(hash), &record) {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewProcessingError("reoptimize cancelled", err)
		}
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("no stored extraction for file hash %s; process the file again", hash), domain.ErrNotFound)
	}

	text := record.Content.Text
	analysis := p.meter.Analyze(text, model)

	contextLimit := analysis.ContextLimit
	budget := p.meter.RecommendedChunkSize(model, tokens.DefaultBufferRatio)
	if req.MaxContextTokens > 0 {
		contextLimit = req.MaxContextTokens
		budget = max(1, int(math.Floor(float64(req.MaxContextTokens)*(1-tokens.DefaultBufferRatio))))
	}

	chunked, err := p.chunker.Chunk(ctx, text, chunk.Options{
		MaxTokens:    budget,
		ModelID:      model,
		ContextLimit: contextLimit,
	})
	if err != nil {
		return nil, apperrors.NewProcessingError("chunking failed", err)
	}
	p.observer.AddChunks(len(chunked.Chunks))

	result := &domain.ReoptimizeResult{
		Success:           true,
		FileHash:          hash,
		TargetModel:       analysis.CanonicalModel,
		MaxContextTokens:  contextLimit,
		TokenAnalysis:     analysis,
		Chunks:            domain.FittingChunks(chunked.Chunks),
		TotalChunks:       len(chunked.Chunks),
		ChunkingStats:     chunked.Stats,
		ProcessingTimeMs:  p.now().Sub(start).Milliseconds(),
		ExtractionSkipped: true,
	}
	p.logger.Info("Document reoptimized",
		"hash", hash,
		"model", analysis.CanonicalModel,
		"budget", budget,
		"chunks", len(chunked.Chunks),
	)
	return result, nil
}

// load decodes the stored value for key into v. Store failures and
// undecodable records count as misses.
func (p *Pipeline) load(ctx context.Context, key string, v interface{}) bool {
	if p.store == nil {
		return false
	}
	data, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			p.logger.Warn("Store lookup failed, continuing without it", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		p.logger.Warn("Discarding undecodable stored record", "key", key, "error", err)
		return false
	}
	return true
}

// save writes v through the store. Failures are logged only.
func (p *Pipeline) save(ctx context.Context, key string, v interface{}) {
	if p.store == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("Failed to encode record", err, "key", key)
		return
	}
	// A client that hangs up after the work is done should not lose it.
	if err := p.store.Set(context.WithoutCancel(ctx), key, data, p.cfg.StoreTTL); err != nil {
		p.logger.Debug("Record not fully persisted", "key", key, "error", err)
	}
}
