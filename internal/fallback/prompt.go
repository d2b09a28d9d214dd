package fallback

import (
	"fmt"
	"strings"

	"roofio/internal/domain"
	"roofio/internal/schema"
)

// DefaultMaxPromptChars caps how much document text is sent to the backend.
const DefaultMaxPromptChars = 4000

// BuildPrompt asks for exactly the listed fields as a flat JSON object.
// Only the first maxChars characters of text are included.
func BuildPrompt(docType domain.DocumentType, fields []string, text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxPromptChars
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Extract ONLY these specific fields from the %s document.\n", docType)
	b.WriteString("Return a flat JSON object: {\"field_name\": value, ...}\n")
	b.WriteString("If a field is not found, use null. Do not add other keys.\n\n")
	b.WriteString("FIELDS NEEDED:\n")
	for _, name := range fields {
		fmt.Fprintf(&b, "- %s (%s)\n", name, kindHint(schema.Spec(name)))
	}
	b.WriteString("\nDOCUMENT TEXT (truncated):\n")
	b.WriteString(truncateRunes(text, maxChars))
	b.WriteString("\n\nJSON OUTPUT:")
	return b.String()
}

func kindHint(spec schema.FieldSpec) string {
	switch spec.Kind {
	case schema.KindInteger:
		return "integer"
	case schema.KindCurrency:
		return "number, US dollars"
	case schema.KindPercentage:
		return "number, percent"
	case schema.KindDate:
		return "date, YYYY-MM-DD"
	case schema.KindEnum:
		return "one of: " + strings.Join(spec.Values, ", ")
	default:
		return "text"
	}
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
