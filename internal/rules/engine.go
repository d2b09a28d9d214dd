// Package rules implements the cheap extraction tier: a declarative table of
// case-insensitive patterns applied per document type. First match wins.
package rules

import (
	"roofio/internal/domain"
	"roofio/internal/port"
)

// Engine applies a Registry to document text. It holds no per-call state.
type Engine struct {
	registry *Registry
}

// NewEngine creates an Engine over reg. A nil registry uses Default().
func NewEngine(reg *Registry) *Engine {
	if reg == nil {
		reg = Default()
	}
	return &Engine{registry: reg}
}

// Registry exposes the rules the engine evaluates.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// ExtractAll runs every rule applicable to docType against text.
func (e *Engine) ExtractAll(text string, docType domain.DocumentType) []domain.ExtractedField {
	return e.extract(text, docType, nil)
}

// ExtractDocument is ExtractAll plus source pages taken from the document's page spans.
func (e *Engine) ExtractDocument(doc *port.ExtractedText, docType domain.DocumentType) []domain.ExtractedField {
	if doc == nil {
		return []domain.ExtractedField{}
	}
	return e.extract(doc.Text, docType, doc.PageAt)
}

func (e *Engine) extract(text string, docType domain.DocumentType, pageAt func(int) int) []domain.ExtractedField {
	fields := []domain.ExtractedField{}
	seen := make(map[string]bool)
	if text == "" {
		return fields
	}

	for _, rule := range e.registry.ForType(docType) {
		field, offset, ok := rule.Match(text)
		if !ok || seen[field.Name] {
			continue
		}
		if pageAt != nil {
			if page := pageAt(offset); page > 0 {
				field.SourcePage = &page
			}
		}
		seen[field.Name] = true
		fields = append(fields, field)
	}
	return fields
}
