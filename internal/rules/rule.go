package rules

import (
	"regexp"

	"roofio/internal/domain"
)

// Converter turns the capture groups of a match into a typed value.
// It reports false when the captured text cannot be normalized.
type Converter func(groups []string) (any, bool)

// Candidate is one pattern a rule may match, and the field it yields.
type Candidate struct {
	Field   string
	Pattern *regexp.Regexp
	// Convert overrides the rule's converter for this candidate.
	Convert Converter
}

// Rule is a declarative cheap-tier extraction rule. Rules are immutable once
// registered and safe to share between goroutines.
type Rule struct {
	Key        string
	Candidates []Candidate
	Convert    Converter
	Confidence float64
	// AppliesTo lists the document types the rule serves. Empty means every type.
	AppliesTo []domain.DocumentType
}

// Applies reports whether the rule runs for docType.
func (r *Rule) Applies(docType domain.DocumentType) bool {
	if r.Universal() {
		return true
	}
	for _, t := range r.AppliesTo {
		if t == docType {
			return true
		}
	}
	return false
}

// Universal reports whether the rule runs for every document type.
func (r *Rule) Universal() bool {
	return len(r.AppliesTo) == 0
}

// Match tries each candidate in order against the first occurrence of its pattern.
// It returns the field and the byte offset of the match.
func (r *Rule) Match(text string) (domain.ExtractedField, int, bool) {
	for _, c := range r.Candidates {
		loc := c.Pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		groups := make([]string, 0, len(loc)/2-1)
		for i := 2; i+1 < len(loc); i += 2 {
			if loc[i] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, text[loc[i]:loc[i+1]])
		}

		convert := c.Convert
		if convert == nil {
			convert = r.Convert
		}
		value, ok := convert(groups)
		if !ok {
			continue
		}
		return domain.ExtractedField{
			Name:       c.Field,
			Value:      value,
			Confidence: r.Confidence,
			Tier:       domain.TierCheapRule,
		}, loc[0], true
	}
	return domain.ExtractedField{}, -1, false
}

// Fields lists every field name the rule can emit.
func (r *Rule) Fields() []string {
	seen := make(map[string]bool, len(r.Candidates))
	var out []string
	for _, c := range r.Candidates {
		if !seen[c.Field] {
			seen[c.Field] = true
			out = append(out, c.Field)
		}
	}
	return out
}
