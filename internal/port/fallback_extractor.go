package port

import (
	"context"

	"roofio/internal/domain"
)

// FallbackExtractor is the paid extraction tier. An instance accumulates the
// cost of every call made through it.
type FallbackExtractor interface {
	ExtractMissing(ctx context.Context, text string, docType domain.DocumentType,
		existing []domain.ExtractedField, required []string) ([]domain.ExtractedField, error)
	TokensUsed() int64
}
