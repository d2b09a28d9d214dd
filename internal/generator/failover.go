package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"roofio/internal/metrics"
	"roofio/internal/port"
)

// FailoverGenerator tries generators in order, skipping those with open circuits.
// It implements port.Generator.
type FailoverGenerator struct {
	generators []port.Generator
	names      []string
	circuits   CircuitStore
}

// NewFailoverGenerator creates a FailoverGenerator from an ordered list of generators
// and their names. A nil store keeps circuits in memory.
func NewFailoverGenerator(generators []port.Generator, names []string, circuits CircuitStore) *FailoverGenerator {
	if circuits == nil {
		circuits = NewMemoryCircuits()
	}
	return &FailoverGenerator{
		generators: generators,
		names:      names,
		circuits:   circuits,
	}
}

func (f *FailoverGenerator) Generate(ctx context.Context, prompt string) (*port.GenerateOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, g := range f.generators {
		name := f.names[i]
		if resetAt, open := f.circuits.OpenUntil(ctx, name); open {
			log.Debug().Str("provider", name).Time("until", resetAt).Msg("generator.Failover: skipping, circuit open")
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := g.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}

		log.Warn().Err(err).Str("provider", name).Msg("generator.Failover: provider failed")
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits.Open(ctx, name, resetAt)
			metrics.BreakerOpened(name)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("all generators failed: %w", ctx.Err())
		}
	}

	// Either every provider was skipped or every attempt was rate limited.
	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all generators rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all generators failed: %w", lastErr)
}
