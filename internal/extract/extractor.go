package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docpipe/internal/domain"
	apperrors "docpipe/pkg/errors"
)

const (
	DefaultTimeout       = 120 * time.Second
	DefaultMaxTextLength = 10_000_000
	DefaultPDFMaxPages   = 500
	DefaultXLSXMaxRows   = 10_000
	DefaultXLSXMaxSheets = 50

	// MinPDFTextLength is the shortest text accepted from a PDF with pages
	// before it is treated as image-only.
	MinPDFTextLength = 50
)

// Warnings recorded in ExtractionMetadata.
const (
	WarnPageCapReached    = "page_cap_reached"
	WarnNoExtractableText = "no_extractable_text"
	WarnSheetCapReached   = "sheet_cap_reached"
	WarnRowCapReached     = "row_cap_reached"
	WarnXMLBudgetExceeded = "xml_budget_exceeded"
	WarnCSVParseFailed    = "csv_parse_failed"
	WarnTruncated         = "truncated"
	WarnPageUnreadable    = "page_unreadable"
)

// Extraction outcomes reported to the Observer.
const (
	OutcomeSuccess     = "success"
	OutcomeUnsupported = "unsupported"
	OutcomeCorrupt     = "corrupt"
	OutcomeTimeout     = "timeout"
	OutcomeCancelled   = "cancelled"
	OutcomeLeakage     = "leakage"
	OutcomeFailed      = "failed"
)

// Config bounds the work a single extraction may do.
type Config struct {
	Timeout       time.Duration
	MaxTextLength int
	PDFMaxPages   int
	XLSXMaxRows   int
	XLSXMaxSheets int
	MaxXMLDepth   int
	MaxXMLNodes   int
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		Timeout:       DefaultTimeout,
		MaxTextLength: DefaultMaxTextLength,
		PDFMaxPages:   DefaultPDFMaxPages,
		XLSXMaxRows:   DefaultXLSXMaxRows,
		XLSXMaxSheets: DefaultXLSXMaxSheets,
		MaxXMLDepth:   DefaultMaxXMLDepth,
		MaxXMLNodes:   DefaultMaxXMLNodes,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxTextLength <= 0 {
		c.MaxTextLength = d.MaxTextLength
	}
	if c.PDFMaxPages <= 0 {
		c.PDFMaxPages = d.PDFMaxPages
	}
	if c.XLSXMaxRows <= 0 {
		c.XLSXMaxRows = d.XLSXMaxRows
	}
	if c.XLSXMaxSheets <= 0 {
		c.XLSXMaxSheets = d.XLSXMaxSheets
	}
	if c.MaxXMLDepth <= 0 {
		c.MaxXMLDepth = d.MaxXMLDepth
	}
	if c.MaxXMLNodes <= 0 {
		c.MaxXMLNodes = d.MaxXMLNodes
	}
	return c
}

// Observer receives one call per extraction attempt.
type Observer interface {
	ObserveExtraction(format, outcome string, elapsed time.Duration)
}

// decoded is what a per-format decoder hands back before normalization.
type decoded struct {
	text      string
	pageCount int
	title     string
	author    string
	meta      domain.ExtractionMetadata
}

type decodeFunc func(ctx context.Context, data []byte) (*decoded, error)

// Extractor turns uploaded bytes into validated, normalized text.
type Extractor struct {
	cfg      Config
	logger   domain.Logger
	openPDF  PDFOpener
	observer Observer
	handlers map[Format]decodeFunc
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithPDFOpener replaces the MuPDF-backed PDF opener.
func WithPDFOpener(o PDFOpener) Option {
	return func(e *Extractor) {
		e.openPDF = o
	}
}

// WithObserver reports every extraction attempt to o.
func WithObserver(o Observer) Option {
	return func(e *Extractor) {
		e.observer = o
	}
}

// New creates an Extractor.
func New(cfg Config, logger domain.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		cfg:     cfg.withDefaults(),
		logger:  logger,
		openPDF: OpenFitz,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = map[Format]decodeFunc{
		FormatPDF:  e.decodePDF,
		FormatDOCX: e.decodeDOCX,
		FormatXLSX: e.decodeXLSX,
		FormatPPTX: e.decodePPTX,
		FormatTXT:  e.decodeTXT,
		FormatCSV:  e.decodeCSV,
		FormatRTF:  e.decodeRTF,
	}
	return e
}

// Extract decodes doc into normalized text. Errors are *apperrors.AppError
// values whose Cause is one of the domain sentinels.
func (e *Extractor) Extract(ctx context.Context, doc domain.SourceDocument) (*domain.ExtractedContent, error) {
	if err := doc.Validate(); err != nil {
		doc.Done()
		return nil, apperrors.NewValidationError(err.Error())
	}

	format, err := DetectFormat(doc.FileName, doc.DeclaredMIME)
	if err != nil {
		doc.Done()
		e.observe(format, OutcomeUnsupported, 0)
		return nil, apperrors.NewUnsupportedFormatError(
			fmt.Sprintf("unsupported file type: %s", doc.FileName), err)
	}

	start := time.Now()
	out, err := e.run(ctx, format, doc.Data, doc.Done)
	if err != nil {
		appErr, outcome := e.classify(format, doc, err)
		e.observe(format, outcome, time.Since(start))
		return nil, appErr
	}

	content, err := e.finish(format, out)
	if err != nil {
		appErr, outcome := e.classify(format, doc, err)
		e.observe(format, outcome, time.Since(start))
		return nil, appErr
	}

	e.observe(format, OutcomeSuccess, time.Since(start))
	e.logger.Debug("Extraction finished",
		"file", doc.FileName,
		"format", format.String(),
		"pages", content.PageCount,
		"chars", content.CharacterCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// run executes the decoder off the caller's goroutine under the extraction
// timeout. done is called when the decoder goroutine exits, which on timeout
// is later than run returning.
func (e *Extractor) run(ctx context.Context, format Format, data []byte, done func()) (*decoded, error) {
	handler, ok := e.handlers[format]
	if !ok {
		done()
		return nil, fmt.Errorf("%w: no decoder for %s", domain.ErrUnsupportedFormat, format)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	type result struct {
		out *decoded
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		var res result
		// Released before the result is published, so a caller that got
		// its answer never finds its own slot still taken.
		defer func() {
			done()
			resultCh <- res
		}()
		defer func() {
			if r := recover(); r != nil {
				res = result{err: fmt.Errorf("%w: decoder panic: %v", domain.ErrExtractionFailed, r)}
			}
		}()
		res.out, res.err = handler(ctx, data)
	}()

	select {
	case res := <-resultCh:
		return res.out, res.err
	case <-ctx.Done():
		// The decoder notices cancellation at its next checkpoint; the
		// buffered channel lets it exit without a reader.
		return nil, ctx.Err()
	}
}

// finish normalizes decoder output and passes it through the validator.
func (e *Extractor) finish(format Format, out *decoded) (*domain.ExtractedContent, error) {
	if out == nil {
		return nil, fmt.Errorf("%w: decoder returned no output", domain.ErrExtractionFailed)
	}

	meta := out.meta
	text, truncated, originalLen := normalizeText(out.text, e.cfg.MaxTextLength)
	if truncated {
		meta.AddWarning(WarnTruncated)
		meta.Truncated = true
		meta.OriginalLength = originalLen
	}

	if err := validateText(format, out.text, text); err != nil {
		return nil, err
	}

	content := &domain.ExtractedContent{
		Text:      text,
		Format:    format.String(),
		MimeType:  format.MIMEType(),
		PageCount: out.pageCount,
		Title:     cleanMetaValue(out.title),
		Author:    cleanMetaValue(out.author),
		Metadata:  meta,
	}
	content.ComputeCounts()
	return content, nil
}

// classify maps a decoder failure onto the caller-facing taxonomy.
func (e *Extractor) classify(format Format, doc domain.SourceDocument, err error) (*apperrors.AppError, string) {
	switch {
	case errors.Is(err, domain.ErrBinaryLeakage):
		e.logger.Error("Binary content reached the text stream", err,
			"event", "binary_leakage_detected",
			"file", doc.FileName,
			"format", format.String(),
			"hash", doc.Hash,
			"size", doc.Size(),
		)
		return apperrors.NewProcessingError("extraction failed", domain.ErrExtractionFailed), OutcomeLeakage
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return apperrors.NewUnsupportedFormatError(err.Error(), err), OutcomeUnsupported
	case errors.Is(err, domain.ErrCorruptSignature):
		return apperrors.NewCorruptSignatureError(
			fmt.Sprintf("%s does not look like a valid %s file", doc.FileName, format), err), OutcomeCorrupt
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrExtractionTimeout):
		e.logger.Warn("Extraction timed out", "file", doc.FileName, "format", format.String(), "timeout", e.cfg.Timeout)
		return apperrors.NewTimeoutError(
			fmt.Sprintf("extraction of %s timed out after %s", doc.FileName, e.cfg.Timeout),
			fmt.Errorf("%w: %w", domain.ErrExtractionTimeout, err)), OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return apperrors.NewProcessingError("extraction cancelled", err), OutcomeCancelled
	default:
		e.logger.Warn("Extraction failed", "file", doc.FileName, "format", format.String(), "error", err)
		return apperrors.NewProcessingError(
			fmt.Sprintf("failed to extract text from %s", doc.FileName),
			fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)), OutcomeFailed
	}
}

func (e *Extractor) observe(format Format, outcome string, elapsed time.Duration) {
	if e.observer != nil {
		e.observer.ObserveExtraction(format.String(), outcome, elapsed)
	}
}

func (e *Extractor) xmlLimits() xmlLimits {
	return xmlLimits{maxDepth: e.cfg.MaxXMLDepth, maxNodes: e.cfg.MaxXMLNodes}
}
