package domain

import "time"

// ParseResult is the outcome of one tiered parse. Fields are in extraction order,
// cheap tier first. It is fully populated before being handed to the caller.
type ParseResult struct {
	DocumentID        string           `json:"document_id"`
	DocumentType      DocumentType     `json:"document_type"`
	Success           bool             `json:"success"`
	PageCount         int              `json:"page_count"`
	Fields            []ExtractedField `json:"fields"`
	CheapCount        int              `json:"cheap_count"`
	PaidCount         int              `json:"paid_count"`
	PaidTierSkipped   bool             `json:"paid_tier_skipped"`
	TokensUsed        int64            `json:"tokens_used"`
	OverallConfidence float64          `json:"overall_confidence"`
	Errors            []string         `json:"errors"`
	Warnings          []string         `json:"warnings"`
	Duration          time.Duration    `json:"duration_ns"`
}

// NewParseResult creates an empty, unsuccessful result for a document.
func NewParseResult(documentID string, docType DocumentType) *ParseResult {
	return &ParseResult{
		DocumentID:   documentID,
		DocumentType: docType,
		Fields:       []ExtractedField{},
		Errors:       []string{},
		Warnings:     []string{},
	}
}

// Field returns the first field with the given name.
func (r *ParseResult) Field(name string) (ExtractedField, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ExtractedField{}, false
}

// FieldsByTier returns the fields produced by a single tier, in order.
func (r *ParseResult) FieldsByTier(tier ParseTier) []ExtractedField {
	var out []ExtractedField
	for _, f := range r.Fields {
		if f.Tier == tier {
			out = append(out, f)
		}
	}
	return out
}

// AddError records a textual error against the result.
func (r *ParseResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}
