package braindump

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/christianacho/espresso/internal/profile"
	"github.com/christianacho/espresso/plugin/ai"
	"github.com/christianacho/espresso/plugin/ai/timeout"
)

// Extractor runs the brain-dump pipeline against an injected oracle.
// It holds no per-request state and is safe for concurrent use.
type Extractor struct {
	llm         ai.LLMService
	timeout     time.Duration
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout bounds each oracle call.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithSampling sets the oracle temperature and output token cap. Zero is a
// valid temperature; a negative one keeps the default.
func WithSampling(temperature float32, maxTokens int) Option {
	return func(e *Extractor) {
		if temperature >= 0 {
			e.temperature = temperature
		}
		if maxTokens > 0 {
			e.maxTokens = maxTokens
		}
	}
}

// WithLogger sets the logger used for fallback triage.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor. A nil llm sends every request to the
// unavailable-oracle fallback.
func NewExtractor(llm ai.LLMService, opts ...Option) *Extractor {
	e := &Extractor{
		llm:         llm,
		timeout:     timeout.OracleTimeout,
		temperature: profile.DefaultAITemperature,
		maxTokens:   1500,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the full outcome of one extraction, for callers that need more
// than the events.
type Result struct {
	Events []NormalizedEvent
	Dates  DateTable
	// Reason is empty when the oracle answer was used.
	Reason FailureReason
	// Raw is the oracle response text, if any.
	Raw string
}

// ExtractEvents converts text into events relative to now.
// The only error is ErrEmptyInput; every other failure falls back.
func (e *Extractor) ExtractEvents(ctx context.Context, text string, now time.Time) ([]NormalizedEvent, error) {
	res, err := e.Extract(ctx, text, now)
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// Extract is ExtractEvents plus the resolved dates and failure reason.
func (e *Extractor) Extract(ctx context.Context, text string, now time.Time) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	table := ResolveDates(now)
	res := &Result{Dates: table}

	raw, err := e.ask(ctx, text, table)
	res.Raw = raw
	if err != nil {
		return e.fallback(res, text, now, err), nil
	}

	candidates, err := ParseResponse(raw)
	if err != nil {
		return e.fallback(res, text, now, err), nil
	}

	candidates = enforceClassification(text, candidates, now)
	res.Events = NormalizeEvents(candidates, now)
	e.logger.Debug("brain dump extracted",
		slog.Int("events", len(res.Events)),
		slog.Int("input_length", len(text)),
	)
	return res, nil
}

func (e *Extractor) ask(ctx context.Context, text string, table DateTable) (string, error) {
	if e.llm == nil {
		return "", newFailure(ReasonOracleUnavailable, errors.New("no LLM service configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.llm.Chat(ctx, BuildRequest(text, table, e.temperature, e.maxTokens))
	if err != nil {
		return "", newFailure(ReasonOracleUnavailable, err)
	}
	return raw, nil
}

func (e *Extractor) fallback(res *Result, text string, now time.Time, err error) *Result {
	res.Reason = ReasonOf(err)
	res.Events = Fallback(text, now, res.Reason)

	e.logger.Warn("brain dump fell back",
		slog.String("reason", string(res.Reason)),
		slog.String("error", err.Error()),
		slog.String("input", truncate(text)),
		slog.String("raw", truncate(res.Raw)),
		slog.Int("events", len(res.Events)),
	)
	return res
}

func truncate(s string) string {
	if len([]rune(s)) <= timeout.MaxTruncateLength {
		return s
	}
	return prefix(s, timeout.MaxTruncateLength) + ellipsis
}

// NewFromConfig wires an Extractor to the configured provider. A disabled
// config yields an Extractor that always takes the unavailable-oracle
// fallback.
func NewFromConfig(cfg *ai.Config, opts ...Option) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	temperature := float32(-1)
	if cfg.LLM.Temperature != nil {
		temperature = *cfg.LLM.Temperature
	}
	base := []Option{
		WithTimeout(cfg.LLM.Timeout),
		WithSampling(temperature, cfg.LLM.MaxTokens),
	}
	if !cfg.Enabled {
		return NewExtractor(nil, append(base, opts...)...), nil
	}
	llm, err := ai.NewLLMService(&cfg.LLM)
	if err != nil {
		return nil, err
	}
	return NewExtractor(llm, append(base, opts...)...), nil
}
