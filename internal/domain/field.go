package domain

// ExtractedField is a single typed value pulled out of a document.
// Value is an int, float64 or string; dates are strings in YYYY-MM-DD form.
type ExtractedField struct {
	Name       string    `json:"name"`
	Value      any       `json:"value"`
	Confidence float64   `json:"confidence"`
	SourcePage *int      `json:"source_page,omitempty"`
	Tier       ParseTier `json:"tier"`
}

// FieldNames returns the set of names present in fields.
func FieldNames(fields []ExtractedField) map[string]bool {
	names := make(map[string]bool, len(fields))
	for i := range fields {
		names[fields[i].Name] = true
	}
	return names
}
