package report

import (
	"encoding/json"
	"io"

	"roofio/internal/domain"
)

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []*domain.ParseResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
