package generator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"roofio/internal/metrics"
	"roofio/internal/port"
)

var tracer = otel.Tracer("roofio/internal/generator")

// Instrumented records latency, outcome and a trace span for every call to the
// wrapped generator.
type Instrumented struct {
	next     port.Generator
	provider string
	model    string
}

// NewInstrumented wraps next. model labels metrics until the backend reports its own.
func NewInstrumented(next port.Generator, provider, model string) *Instrumented {
	return &Instrumented{next: next, provider: provider, model: model}
}

func (g *Instrumented) Generate(ctx context.Context, prompt string) (*port.GenerateOutput, error) {
	ctx, span := tracer.Start(ctx, "generator.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("generator.provider", g.provider),
		attribute.Int("generator.prompt_chars", len(prompt)),
	)

	start := time.Now()
	out, err := g.next.Generate(ctx, prompt)
	dur := time.Since(start)

	model := g.model
	if out != nil && out.Model != "" {
		model = out.Model
	}

	result := "success"
	var rlErr *RateLimitError
	switch {
	case errors.As(err, &rlErr):
		result = "rate_limited"
	case err != nil:
		result = "error"
	}
	metrics.ObserveGenerator(g.provider, model, result, dur)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	span.SetAttributes(
		attribute.String("generator.model", model),
		attribute.Int("generator.input_tokens", out.InputTokens),
		attribute.Int("generator.output_tokens", out.OutputTokens),
	)
	return out, nil
}
