// Package fallback implements the paid extraction tier. It asks a generative
// backend for required fields the cheap tier did not find, and nothing else.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"roofio/internal/domain"
	"roofio/internal/port"
	"roofio/internal/schema"
)

// DefaultConfidence is the trust assigned to every paid-tier field. It is below
// every cheap-tier rule.
const DefaultConfidence = 0.80

// ErrNoGenerator is returned when the engine has no backend to call.
var ErrNoGenerator = errors.New("no generator configured")

// Options tunes an Engine. Zero values use the defaults.
type Options struct {
	MaxPromptChars int
	Confidence     float64
}

// Engine is a single paid-tier instance. Its token counter lives as long as the
// instance; create a new Engine to reset it.
type Engine struct {
	gen    port.Generator
	opts   Options
	tokens atomic.Int64
	calls  atomic.Int64
}

// NewEngine creates an Engine that calls gen.
func NewEngine(gen port.Generator, opts Options) *Engine {
	if opts.MaxPromptChars <= 0 {
		opts.MaxPromptChars = DefaultMaxPromptChars
	}
	if opts.Confidence <= 0 || opts.Confidence > 1 {
		opts.Confidence = DefaultConfidence
	}
	return &Engine{gen: gen, opts: opts}
}

// Missing returns required fields not already named in existing, in required order.
func Missing(required []string, existing []domain.ExtractedField) []string {
	have := domain.FieldNames(existing)
	var missing []string
	for _, name := range required {
		if have[name] {
			continue
		}
		have[name] = true
		missing = append(missing, name)
	}
	return missing
}

// ExtractMissing requests only the required fields absent from existing. When none
// are missing the backend is not called. Malformed backend output yields no fields;
// a backend failure is returned as an error.
func (e *Engine) ExtractMissing(ctx context.Context, text string, docType domain.DocumentType,
	existing []domain.ExtractedField, required []string) ([]domain.ExtractedField, error) {
	missing := Missing(required, existing)
	if len(missing) == 0 {
		return nil, nil
	}
	if e.gen == nil {
		return nil, fmt.Errorf("fallback: %w", ErrNoGenerator)
	}

	prompt := BuildPrompt(docType, missing, text, e.opts.MaxPromptChars)
	e.calls.Add(1)
	out, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("fallback: generate: %w", err)
	}
	if out == nil {
		out = &port.GenerateOutput{}
	}
	e.tokens.Add(usage(prompt, out))

	data, err := decodeFlat(out.Text)
	if err != nil {
		log.Warn().Err(err).Str("document_type", string(docType)).Str("model", out.Model).
			Msg("fallback: discarding malformed response")
		return nil, nil
	}

	var fields []domain.ExtractedField
	for _, name := range missing {
		raw, ok := data[name]
		if !ok || raw == nil {
			continue
		}
		value, ok := coerce(schema.Spec(name), raw)
		if !ok {
			log.Debug().Str("field", name).Interface("value", raw).Msg("fallback: value did not convert")
			continue
		}
		fields = append(fields, domain.ExtractedField{
			Name:       name,
			Value:      value,
			Confidence: e.opts.Confidence,
			Tier:       domain.TierPaidModel,
		})
	}
	return fields, nil
}

// TokensUsed reports the tokens spent by this instance so far.
func (e *Engine) TokensUsed() int64 {
	return e.tokens.Load()
}

// Calls reports how many backend calls this instance has made.
func (e *Engine) Calls() int64 {
	return e.calls.Load()
}

// usage prefers the backend's own accounting and estimates four characters per
// token when the backend reports none.
func usage(prompt string, out *port.GenerateOutput) int64 {
	if n := out.InputTokens + out.OutputTokens; n > 0 {
		return int64(n)
	}
	return int64((len(prompt) + len(out.Text) + 3) / 4)
}
