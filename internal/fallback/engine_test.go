package fallback_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roofio/internal/domain"
	"roofio/internal/fallback"
	"roofio/internal/port"
	"roofio/mocks"
)

func cheap(name string, value any) domain.ExtractedField {
	return domain.ExtractedField{Name: name, Value: value, Confidence: 0.95, Tier: domain.TierCheapRule}
}

func TestMissing(t *testing.T) {
	existing := []domain.ExtractedField{cheap("co_number", 7)}

	got := fallback.Missing([]string{"co_number", "amount", "description", "amount"}, existing)

	assert.Equal(t, []string{"amount", "description"}, got)
	assert.Empty(t, fallback.Missing([]string{"co_number"}, existing))
	assert.Empty(t, fallback.Missing(nil, existing))
}

func TestExtractMissing_NothingMissing_NoBackendCall(t *testing.T) {
	gen := new(mocks.MockGenerator)
	e := fallback.NewEngine(gen, fallback.Options{})

	fields, err := e.ExtractMissing(context.Background(), "CO #7", domain.DocTypeChangeOrder,
		[]domain.ExtractedField{cheap("co_number", 7)}, []string{"co_number"})

	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.Equal(t, int64(0), e.TokensUsed())
	assert.Equal(t, int64(0), e.Calls())
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtractMissing_RequestsOnlyResidual(t *testing.T) {
	gen := new(mocks.MockGenerator)
	var prompt string
	gen.On("Generate", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return(&port.GenerateOutput{
			Text:         `{"amount": "$12,500.00", "description": "Add tapered insulation", "co_number": 99}`,
			Model:        "test-model",
			InputTokens:  120,
			OutputTokens: 30,
		}, nil)

	e := fallback.NewEngine(gen, fallback.Options{})
	fields, err := e.ExtractMissing(context.Background(), "Change Order #7 ...", domain.DocTypeChangeOrder,
		[]domain.ExtractedField{cheap("co_number", 7)}, []string{"co_number", "amount", "description"})

	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "amount", fields[0].Name)
	assert.Equal(t, 12500.0, fields[0].Value)
	assert.Equal(t, "description", fields[1].Name)
	assert.Equal(t, "Add tapered insulation", fields[1].Value)
	for _, f := range fields {
		assert.Equal(t, domain.TierPaidModel, f.Tier)
		assert.Equal(t, fallback.DefaultConfidence, f.Confidence)
	}

	assert.Contains(t, prompt, "- amount")
	assert.Contains(t, prompt, "- description")
	assert.NotContains(t, prompt, "- co_number")
	assert.Contains(t, prompt, "change_order")
	assert.Equal(t, int64(150), e.TokensUsed())
	assert.Equal(t, int64(1), e.Calls())
}

func TestExtractMissing_NullAndUnconvertibleValuesSkipped(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(&port.GenerateOutput{
		Text: "```json\n{\"application_number\": \"three\", \"total_completed_stored\": null, \"current_payment_due\": 45210.5}\n```",
	}, nil)

	e := fallback.NewEngine(gen, fallback.Options{})
	fields, err := e.ExtractMissing(context.Background(), "pay app", domain.DocTypePayApplication, nil,
		[]string{"application_number", "total_completed_stored", "current_payment_due"})

	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "current_payment_due", fields[0].Name)
	assert.Equal(t, 45210.5, fields[0].Value)
}

func TestExtractMissing_MalformedResponse(t *testing.T) {
	tests := map[string]string{
		"not json":     "I could not find those fields.",
		"array":        `[{"amount": 5}]`,
		"nested value": `{"amount": {"value": 5000}}`,
		"empty":        "",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			gen := new(mocks.MockGenerator)
			gen.On("Generate", mock.Anything, mock.Anything).Return(&port.GenerateOutput{Text: body}, nil)

			e := fallback.NewEngine(gen, fallback.Options{})
			fields, err := e.ExtractMissing(context.Background(), "text", domain.DocTypeChangeOrder, nil, []string{"amount"})

			assert.NoError(t, err)
			assert.Empty(t, fields)
			assert.Equal(t, int64(1), e.Calls())
		})
	}
}

func TestExtractMissing_BackendError(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	e := fallback.NewEngine(gen, fallback.Options{})
	fields, err := e.ExtractMissing(context.Background(), "text", domain.DocTypeContract, nil, []string{"contract_sum"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, fields)
	assert.Equal(t, int64(0), e.TokensUsed())
}

func TestExtractMissing_NoGenerator(t *testing.T) {
	e := fallback.NewEngine(nil, fallback.Options{})

	_, err := e.ExtractMissing(context.Background(), "text", domain.DocTypeContract, nil, []string{"contract_sum"})

	assert.ErrorIs(t, err, fallback.ErrNoGenerator)
}

func TestExtractMissing_TokensAccumulateAndEstimate(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(&port.GenerateOutput{Text: "{}"}, nil)

	e := fallback.NewEngine(gen, fallback.Options{})
	_, err := e.ExtractMissing(context.Background(), "text", domain.DocTypeDrawing, nil, []string{"scale"})
	require.NoError(t, err)
	first := e.TokensUsed()
	assert.Positive(t, first)

	_, err = e.ExtractMissing(context.Background(), "text", domain.DocTypeDrawing, nil, []string{"scale"})
	require.NoError(t, err)
	assert.Equal(t, 2*first, e.TokensUsed())

	fresh := fallback.NewEngine(gen, fallback.Options{})
	assert.Equal(t, int64(0), fresh.TokensUsed())
}

func TestExtractMissing_CustomConfidence(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(&port.GenerateOutput{Text: `{"revision": "B"}`}, nil)

	e := fallback.NewEngine(gen, fallback.Options{Confidence: 0.6})
	fields, err := e.ExtractMissing(context.Background(), "text", domain.DocTypeDrawing, nil, []string{"revision"})

	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, 0.6, fields[0].Confidence)
}

func TestExtractMissing_CoercesKinds(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(&port.GenerateOutput{
		Text: `Here you go: {"contract_date": "March 4, 2025", "retainage_percent": "10%", "contract_sum": 1250000}`,
	}, nil)

	e := fallback.NewEngine(gen, fallback.Options{})
	fields, err := e.ExtractMissing(context.Background(), "text", domain.DocTypeContract, nil,
		[]string{"contract_sum", "contract_date", "retainage_percent"})

	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, 1250000.0, fields[0].Value)
	assert.Equal(t, "2025-03-04", fields[1].Value)
	assert.Equal(t, 10.0, fields[2].Value)
}

func TestBuildPrompt_TruncatesText(t *testing.T) {
	text := strings.Repeat("é", 5000)

	prompt := fallback.BuildPrompt(domain.DocTypeScope, []string{"roof_type"}, text, 4000)

	assert.Equal(t, 4000, strings.Count(prompt, "é"))
	assert.Contains(t, prompt, "- roof_type (one of: TPO")
	assert.Contains(t, prompt, "scope document")
	assert.True(t, strings.HasSuffix(prompt, "JSON OUTPUT:"))
}

func TestBuildPrompt_DefaultCap(t *testing.T) {
	prompt := fallback.BuildPrompt(domain.DocTypeScope, []string{"roof_type"}, strings.Repeat("§", 9000), 0)

	assert.Equal(t, fallback.DefaultMaxPromptChars, strings.Count(prompt, "§"))
}

func TestExtractMissing_RejectsNonFiniteAndOverflow(t *testing.T) {
	tests := map[string]string{
		"infinity string":  `{"amount": "Infinity", "co_number": "1e300"}`,
		"nan string":       `{"amount": "NaN", "co_number": "-Inf"}`,
		"overflow numbers": `{"amount": "-Infinity", "co_number": 1e300}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			gen := new(mocks.MockGenerator)
			gen.On("Generate", mock.Anything, mock.Anything).Return(&port.GenerateOutput{Text: body}, nil)

			e := fallback.NewEngine(gen, fallback.Options{})
			fields, err := e.ExtractMissing(context.Background(), "Change Order", domain.DocTypeChangeOrder, nil,
				[]string{"co_number", "amount"})

			require.NoError(t, err)
			assert.Empty(t, fields)
			_, err = json.Marshal(fields)
			assert.NoError(t, err)
		})
	}
}

func TestExtractMissing_LargeButRepresentableValuesKept(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(&port.GenerateOutput{
		Text: `{"amount": "1e12", "co_number": 4096}`,
	}, nil)

	e := fallback.NewEngine(gen, fallback.Options{})
	fields, err := e.ExtractMissing(context.Background(), "Change Order", domain.DocTypeChangeOrder, nil,
		[]string{"co_number", "amount"})

	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, 4096, fields[0].Value)
	assert.Equal(t, 1e12, fields[1].Value)
}

func TestExtractMissing_CanonicalizesRoofType(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(&port.GenerateOutput{
		Text: `{"roof_type": "modified  bit"}`,
	}, nil)

	e := fallback.NewEngine(gen, fallback.Options{})
	fields, err := e.ExtractMissing(context.Background(), "scope", domain.DocTypeScope, nil, []string{"roof_type"})

	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "MODIFIED BITUMEN", fields[0].Value)
}
