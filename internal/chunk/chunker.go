package chunk

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"docpipe/internal/domain"
)

const (
	DefaultMaxTokens      = 6000
	DefaultOverlapTokens  = 200
	DefaultMaxClauseChars = 400
	DefaultPreviewChars   = 200
	DefaultContextMargin  = 0.2

	// Starting window size per token of budget.
	charsPerToken = 4
)

// TokenCounter is the part of the token meter the chunker relies on.
type TokenCounter interface {
	CountTokens(text, modelID string) int
	ContextLimit(modelID string) int
}

// Chunker splits text into token-budgeted chunks along the coarsest
// boundary that fits: sections, then sentences, clauses, and finally
// character windows.
type Chunker struct {
	counter        TokenCounter
	overlapTokens  int
	maxClauseChars int
	previewChars   int
	contextMargin  float64
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithOverlapTokens sets how much trailing sentence content is carried into the next chunk.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapTokens = n
		}
	}
}

// WithMaxClauseChars caps clause length before falling back to windows.
func WithMaxClauseChars(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxClauseChars = n
		}
	}
}

// WithPreviewChars sets the preview length in characters.
func WithPreviewChars(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.previewChars = n
		}
	}
}

// WithContextMargin sets the share of the context window a chunk must leave free to fit.
func WithContextMargin(m float64) Option {
	return func(c *Chunker) {
		if m >= 0 && m < 1 {
			c.contextMargin = m
		}
	}
}

// New creates a Chunker counting tokens with counter.
func New(counter TokenCounter, opts ...Option) *Chunker {
	c := &Chunker{
		counter:        counter,
		overlapTokens:  DefaultOverlapTokens,
		maxClauseChars: DefaultMaxClauseChars,
		previewChars:   DefaultPreviewChars,
		contextMargin:  DefaultContextMargin,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Options are the per-call chunking parameters.
type Options struct {
	MaxTokens    int
	ModelID      string
	ContextLimit int
}

// Result is an ordered chunk set and its statistics.
type Result struct {
	Chunks []domain.Chunk
	Stats  domain.ChunkingStats
}

// atom is the smallest unit the packer places. joiner separates it from the
// preceding atom inside a chunk.
type atom struct {
	text      string
	joiner    string
	tokens    int
	sentences int
}

// run holds the state of one Chunk call.
type run struct {
	c       *Chunker
	ctx     context.Context
	model   string
	budget  int
	overlap int
	stats   domain.ChunkingStats
}

func (r *run) count(s string) int {
	return r.c.counter.CountTokens(s, r.model)
}

// Chunk splits text. Empty text yields an empty result. Every chunk stays
// within MaxTokens unless it consists of a single unit that cannot be split
// further; such chunks are flagged Oversized.
func (c *Chunker) Chunk(ctx context.Context, text string, opts Options) (*Result, error) {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	contextLimit := opts.ContextLimit
	if contextLimit <= 0 {
		contextLimit = c.counter.ContextLimit(opts.ModelID)
	}

	r := &run{
		c:       c,
		ctx:     ctx,
		model:   opts.ModelID,
		budget:  opts.MaxTokens,
		overlap: min(c.overlapTokens, opts.MaxTokens/4),
	}

	res := &Result{Chunks: []domain.Chunk{}}
	if strings.TrimSpace(text) == "" {
		return res, nil
	}

	atoms, err := r.atomize(text)
	if err != nil {
		return nil, err
	}
	chunks, err := r.pack(atoms)
	if err != nil {
		return nil, err
	}

	fitLimit := int(math.Floor(float64(contextLimit) * (1 - c.contextMargin)))
	for i := range chunks {
		chunks[i].Index = i + 1
		chunks[i].TotalChunks = len(chunks)
		chunks[i].FitsInContext = chunks[i].TokenCount <= fitLimit
	}
	res.Chunks = chunks
	res.Stats = r.finishStats(chunks)
	return res, nil
}

// atomize performs the boundary descent, producing atoms that each fit the
// budget except single-rune windows.
func (r *run) atomize(text string) ([]atom, error) {
	var atoms []atom
	sections := splitSections(text)
	r.stats.Sections = len(sections)

	for _, section := range sections {
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}
		if n := r.count(section); n <= r.budget {
			atoms = append(atoms, atom{text: section, joiner: "\n\n", tokens: n, sentences: len(splitSentences(section))})
			continue
		}

		for si, sent := range splitSentences(section) {
			joiner := sent.sep
			if si == 0 {
				joiner = "\n\n"
			}
			if n := r.count(sent.text); n <= r.budget {
				r.stats.Sentences++
				atoms = append(atoms, atom{text: sent.text, joiner: joiner, tokens: n, sentences: 1})
				continue
			}

			clauses := splitClauses(sent.text, r.c.maxClauseChars)
			for ci, clause := range clauses {
				if ci > 0 {
					joiner = " "
				}
				lastClause := ci == len(clauses)-1
				if n := r.count(clause); n <= r.budget {
					r.stats.Clauses++
					a := atom{text: clause, joiner: joiner, tokens: n}
					if lastClause {
						a.sentences = 1
					}
					atoms = append(atoms, a)
					continue
				}

				windows := r.windows(clause, joiner)
				if lastClause && len(windows) > 0 {
					windows[len(windows)-1].sentences = 1
				}
				atoms = append(atoms, windows...)
			}
		}
	}

	// The first atom never needs a joiner.
	if len(atoms) > 0 {
		atoms[0].joiner = ""
	}
	return atoms, nil
}

// windows cuts text into character windows that fit the budget. Windows
// start at budget*4 characters, snap back to whitespace and halve until the
// exact count fits; a single rune is always accepted.
func (r *run) windows(text, joiner string) []atom {
	var out []atom
	start := 0
	for start < len(text) {
		size := max(r.budget*charsPerToken, 1)
		var piece string
		var cut, n int
		for {
			end := runeOffset(text, start, size)
			cut = snapToSpace(text, start, end)
			piece = text[start:cut]
			n = r.count(piece)
			if n <= r.budget || size == 1 {
				break
			}
			size /= 2
		}
		r.stats.Windows++
		out = append(out, atom{text: piece, joiner: joiner, tokens: n})

		next, _ := skipSpace(text, cut)
		if next == cut {
			joiner = ""
		} else {
			joiner = " "
		}
		start = next
	}
	return out
}

// pack places atoms into chunks in one pass. The running total is an
// estimate; each chunk is counted exactly when it closes and atoms are
// pushed back until it fits.
func (r *run) pack(atoms []atom) ([]domain.Chunk, error) {
	var (
		chunks      []domain.Chunk
		cur         []atom
		curTokens   int
		overlapText string
		overlapSep  string
		prevText    string
	)

	reset := func() {
		cur = cur[:0]
		curTokens = 0
		overlapText, overlapSep = "", ""
	}

	joined := func(parts []atom) string {
		if overlapText == "" {
			return joinAtoms(parts)
		}
		return overlapText + overlapSep + joinAtoms(parts)
	}

	// closeChunk emits the current chunk and returns how many atoms were
	// pushed back for the next one.
	closeChunk := func() int {
		pushed := 0
		text := joined(cur)
		n := r.count(text)
		for n > r.budget && len(cur) > 1 {
			cur = cur[:len(cur)-1]
			pushed++
			text = joined(cur)
			n = r.count(text)
		}
		if n > r.budget && overlapText != "" {
			overlapText, overlapSep = "", ""
			text = joined(cur)
			n = r.count(text)
		}

		chunk := r.c.describe(text, n, cur)
		if overlapText != "" {
			chunk.Sentences += len(splitSentences(overlapText))
			chunk.OverlapChars = utf8.RuneCountInString(overlapText + overlapSep)
			r.stats.OverlapTokens += r.count(overlapText)
		}
		chunk.Oversized = n > r.budget
		chunks = append(chunks, chunk)
		prevText = joinAtoms(cur)
		reset()
		return pushed
	}

	for i := 0; i < len(atoms) || len(cur) > 0; {
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}
		// The tail goes through the same pushback as every other chunk.
		if i == len(atoms) {
			i -= closeChunk()
			continue
		}
		a := atoms[i]

		if len(cur) == 0 {
			if prevText != "" && r.overlap > 0 {
				r.startWithOverlap(prevText, a, &overlapText, &overlapSep, &curTokens)
			}
			cur = append(cur, a)
			curTokens += a.tokens
			i++
			continue
		}

		if curTokens+a.tokens <= r.budget {
			cur = append(cur, a)
			curTokens += a.tokens
			i++
			continue
		}
		i -= closeChunk()
	}
	return chunks, nil
}

// startWithOverlap seeds a new chunk with the trailing sentences of the
// previous one when they fit alongside the chunk's first atom.
func (r *run) startWithOverlap(prevText string, first atom, overlapText, overlapSep *string, curTokens *int) {
	tail := r.trailingSentences(prevText)
	if tail == "" {
		return
	}
	sep := first.joiner
	if sep == "" {
		sep = " "
	}
	if r.count(tail+sep+first.text) > r.budget {
		return
	}
	*overlapText = tail
	*overlapSep = sep
	*curTokens = r.count(tail)
}

// trailingSentences returns the longest run of whole sentences ending text
// whose token count stays within the overlap allowance.
func (r *run) trailingSentences(text string) string {
	sections := splitSections(text)
	if len(sections) == 0 {
		return ""
	}
	sentences := splitSentences(sections[len(sections)-1])

	taken := 0
	best := ""
	for i := len(sentences) - 1; i >= 0; i-- {
		candidate := sentences[i].text
		if best != "" {
			candidate += sentences[i+1].sep + best
		}
		if r.count(candidate) > r.overlap {
			break
		}
		best = candidate
		taken++
	}
	if taken == len(sentences) && len(sections) == 1 {
		// The whole previous chunk would be repeated.
		return ""
	}
	return best
}

func joinAtoms(parts []atom) string {
	var sb strings.Builder
	for i, a := range parts {
		if i > 0 {
			sb.WriteString(a.joiner)
		}
		sb.WriteString(a.text)
	}
	return sb.String()
}

// describe builds the chunk metadata for text.
func (c *Chunker) describe(text string, tokens int, atoms []atom) domain.Chunk {
	sentences := 0
	for _, a := range atoms {
		sentences += a.sentences
	}
	return domain.Chunk{
		Text:           text,
		TokenCount:     tokens,
		CharacterCount: utf8.RuneCountInString(text),
		WordCount:      len(strings.Fields(text)),
		Preview:        preview(text, c.previewChars),
		Sentences:      sentences,
	}
}

func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return strings.TrimSpace(text[:runeOffset(text, 0, n)]) + "..."
}

func (r *run) finishStats(chunks []domain.Chunk) domain.ChunkingStats {
	s := r.stats
	s.TotalChunks = len(chunks)
	if len(chunks) == 0 {
		return s
	}
	s.MinTokens = chunks[0].TokenCount
	for _, ch := range chunks {
		s.TotalTokens += ch.TokenCount
		s.MinTokens = min(s.MinTokens, ch.TokenCount)
		s.MaxTokens = max(s.MaxTokens, ch.TokenCount)
		if ch.Oversized {
			s.OversizedChunks++
		}
	}
	s.AvgTokens = math.Round(float64(s.TotalTokens)/float64(len(chunks))*100) / 100
	return s
}
