package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"roofio/internal/domain"
)

// MockFallbackExtractor is a mock implementation of port.FallbackExtractor.
type MockFallbackExtractor struct {
	mock.Mock
}

func (m *MockFallbackExtractor) ExtractMissing(ctx context.Context, text string, docType domain.DocumentType,
	existing []domain.ExtractedField, required []string) ([]domain.ExtractedField, error) {
	args := m.Called(ctx, text, docType, existing, required)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractedField), args.Error(1)
}

func (m *MockFallbackExtractor) TokensUsed() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}
