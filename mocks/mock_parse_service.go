package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"roofio/internal/domain"
	"roofio/internal/schema"
	"roofio/internal/service"
)

// MockParseService is a mock implementation of service.ParseService.
type MockParseService struct {
	mock.Mock
}

func (m *MockParseService) Parse(ctx context.Context, input service.ParseInput) *domain.ParseResult {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.ParseResult)
}

func (m *MockParseService) ParseText(ctx context.Context, text string, docType domain.DocumentType, documentID string) *domain.ParseResult {
	args := m.Called(ctx, text, docType, documentID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.ParseResult)
}

func (m *MockParseService) RequiredFields() *schema.RequiredFields {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*schema.RequiredFields)
}

func (m *MockParseService) CheapFields(docType domain.DocumentType) []string {
	args := m.Called(docType)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
