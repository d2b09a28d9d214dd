package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"roofio/internal/domain"
	"roofio/internal/fallback"
	"roofio/internal/metrics"
	"roofio/internal/port"
	"roofio/internal/rules"
	"roofio/internal/schema"
)

var tracer = otel.Tracer("roofio/internal/service")

// ParseInput identifies one document to parse.
type ParseInput struct {
	Path         string
	DocumentType domain.DocumentType
	DocumentID   string
}

// FallbackFactory creates a fresh paid-tier instance. It is called once per
// parse that needs the paid tier, so token counts never leak across parses.
type FallbackFactory func() port.FallbackExtractor

// NewFallbackFactory returns a factory building fallback engines over gen.
func NewFallbackFactory(gen port.Generator, opts fallback.Options) FallbackFactory {
	return func() port.FallbackExtractor {
		return fallback.NewEngine(gen, opts)
	}
}

// ParseService runs the cheap tier, then the paid tier only for required
// fields the cheap tier missed.
type ParseService interface {
	Parse(ctx context.Context, input ParseInput) *domain.ParseResult
	ParseText(ctx context.Context, text string, docType domain.DocumentType, documentID string) *domain.ParseResult
	RequiredFields() *schema.RequiredFields
	// CheapFields lists the fields the pattern tier can produce for docType.
	CheapFields(docType domain.DocumentType) []string
}

type parseService struct {
	extractor   port.TextExtractor
	rules       *rules.Engine
	required    *schema.RequiredFields
	newFallback FallbackFactory
}

// NewParseService creates a new ParseService. A nil rule engine or schema uses
// the built-in tables.
func NewParseService(
	extractor port.TextExtractor,
	ruleEngine *rules.Engine,
	required *schema.RequiredFields,
	newFallback FallbackFactory,
) ParseService {
	if ruleEngine == nil {
		ruleEngine = rules.NewEngine(nil)
	}
	if required == nil {
		required = schema.Default()
	}
	return &parseService{
		extractor:   extractor,
		rules:       ruleEngine,
		required:    required,
		newFallback: newFallback,
	}
}

func (s *parseService) RequiredFields() *schema.RequiredFields {
	return s.required
}

func (s *parseService) CheapFields(docType domain.DocumentType) []string {
	return s.rules.Registry().FieldsFor(docType)
}

// Parse never returns an error: every failure is recorded on the result.
func (s *parseService) Parse(ctx context.Context, input ParseInput) (result *domain.ParseResult) {
	start := time.Now()
	result = domain.NewParseResult(input.DocumentID, input.DocumentType)

	ctx, span := tracer.Start(ctx, "parse.Parse", trace.WithAttributes(
		attribute.String("document.id", input.DocumentID),
		attribute.String("document.type", string(input.DocumentType)),
	))
	defer func() { s.finish(span, result, start) }()
	defer recoverInto(result)

	doc, err := s.extractText(ctx, input.Path)
	if err != nil {
		result.AddError(err.Error())
		return result
	}
	result.PageCount = doc.PageCount
	s.runTiers(ctx, result, doc)
	return result
}

// ParseText runs the tiers over already-extracted text.
func (s *parseService) ParseText(ctx context.Context, text string, docType domain.DocumentType, documentID string) (result *domain.ParseResult) {
	start := time.Now()
	result = domain.NewParseResult(documentID, docType)

	ctx, span := tracer.Start(ctx, "parse.ParseText", trace.WithAttributes(
		attribute.String("document.id", documentID),
		attribute.String("document.type", string(docType)),
	))
	defer func() { s.finish(span, result, start) }()
	defer recoverInto(result)

	if strings.TrimSpace(text) == "" {
		result.AddError(domain.ErrNoText.Error())
		return result
	}
	doc := &port.ExtractedText{
		Text:      text,
		PageCount: 1,
		Pages:     []port.PageSpan{{Number: 1, Start: 0, End: len(text)}},
	}
	result.PageCount = 1
	s.runTiers(ctx, result, doc)
	return result
}

func (s *parseService) extractText(ctx context.Context, path string) (*port.ExtractedText, error) {
	ctx, span := tracer.Start(ctx, "parse.ExtractText")
	defer span.End()

	doc, err := s.extractor.Extract(ctx, path)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	if doc == nil || strings.TrimSpace(doc.Text) == "" {
		return nil, domain.ErrNoText
	}
	span.SetAttributes(attribute.Int("document.pages", doc.PageCount))
	return doc, nil
}

// runTiers is the cheap pass, the gap check and the conditional paid pass.
// Success is set only when every tier that ran completed.
func (s *parseService) runTiers(ctx context.Context, result *domain.ParseResult, doc *port.ExtractedText) {
	docType := result.DocumentType

	_, cheapSpan := tracer.Start(ctx, "parse.CheapTier")
	cheap := s.rules.ExtractDocument(doc, docType)
	cheapSpan.SetAttributes(attribute.Int("fields", len(cheap)))
	cheapSpan.End()

	result.Fields = append(result.Fields, cheap...)
	result.CheapCount = len(cheap)

	required := s.required.For(docType)
	residual := fallback.Missing(required, result.Fields)

	if len(residual) == 0 {
		result.PaidTierSkipped = true
		metrics.PaidTierSkipped(string(docType))
		log.Debug().Str("document_id", result.DocumentID).Str("document_type", string(docType)).
			Int("cheap_fields", len(cheap)).Msg("parse: paid tier skipped")
		result.Success = true
		return
	}

	metrics.PaidTierInvoked(string(docType))
	if err := s.runPaidTier(ctx, result, doc.Text, residual); err != nil {
		result.AddError("paid tier: " + err.Error())
		return
	}
	result.Success = true
}

func (s *parseService) runPaidTier(ctx context.Context, result *domain.ParseResult, text string, residual []string) error {
	ctx, span := tracer.Start(ctx, "parse.PaidTier", trace.WithAttributes(
		attribute.StringSlice("fields.requested", residual),
	))
	defer span.End()

	if s.newFallback == nil {
		err := fallback.ErrNoGenerator
		span.RecordError(err)
		return err
	}
	engine := s.newFallback()

	log.Debug().Str("document_id", result.DocumentID).Strs("fields", residual).Msg("parse: invoking paid tier")
	paid, err := engine.ExtractMissing(ctx, text, result.DocumentType, result.Fields, residual)
	result.TokensUsed = engine.TokensUsed()
	span.SetAttributes(attribute.Int64("tokens", result.TokensUsed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "paid tier failed")
		return err
	}

	have := domain.FieldNames(result.Fields)
	for _, f := range paid {
		if have[f.Name] {
			log.Warn().Str("field", f.Name).Msg("parse: dropping paid field already found by cheap tier")
			continue
		}
		have[f.Name] = true
		result.Fields = append(result.Fields, f)
		result.PaidCount++
	}
	span.SetAttributes(attribute.Int("fields", result.PaidCount))
	return nil
}

// finish fills the derived fields, records metrics and closes the root span.
func (s *parseService) finish(span trace.Span, result *domain.ParseResult, start time.Time) {
	result.Duration = time.Since(start)

	have := domain.FieldNames(result.Fields)
	for _, name := range s.required.For(result.DocumentType) {
		if !have[name] {
			result.Warnings = append(result.Warnings, "required field not found: "+name)
		}
	}
	result.OverallConfidence = overallConfidence(result.Fields)

	docType := string(result.DocumentType)
	outcome := "success"
	if !result.Success {
		outcome = "failed"
	}
	metrics.ObserveParse(docType, outcome, result.Duration)
	metrics.AddFields(string(domain.TierCheapRule), docType, result.CheapCount)
	metrics.AddFields(string(domain.TierPaidModel), docType, result.PaidCount)
	metrics.AddTokens(docType, result.TokensUsed)

	span.SetAttributes(
		attribute.Bool("parse.success", result.Success),
		attribute.Int("parse.cheap_count", result.CheapCount),
		attribute.Int("parse.paid_count", result.PaidCount),
	)
	if !result.Success {
		span.SetStatus(codes.Error, strings.Join(result.Errors, "; "))
	}
	span.End()

	event := log.Info()
	if !result.Success {
		event = log.Warn().Strs("errors", result.Errors)
	}
	event.Str("document_id", result.DocumentID).
		Str("document_type", docType).
		Int("cheap", result.CheapCount).
		Int("paid", result.PaidCount).
		Int64("tokens", result.TokensUsed).
		Dur("duration", result.Duration).
		Msg("parse: complete")
}

// recoverInto turns a panic in either tier into a result error.
func recoverInto(result *domain.ParseResult) {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Str("document_id", result.DocumentID).Msg("parse: recovered panic")
		result.AddError(fmt.Sprintf("unexpected: %v", r))
		result.Success = false
	}
}

func overallConfidence(fields []domain.ExtractedField) float64 {
	if len(fields) == 0 {
		return 0
	}
	var sum float64
	for _, f := range fields {
		sum += f.Confidence
	}
	return sum / float64(len(fields))
}
