package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"roofio/internal/domain"
)

// WriteFile picks the format from path's extension: .csv, .xlsx or .json.
func WriteFile(path string, results []*domain.ParseResult) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".xlsx", ".json":
	default:
		return fmt.Errorf("unsupported report format %q (want .csv, .xlsx or .json)", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	switch ext {
	case ".csv":
		return WriteCSV(f, results, true)
	case ".xlsx":
		return WriteXLSX(f, results)
	default:
		return WriteJSON(f, results)
	}
}

// Summary holds batch-level counts for a set of results.
type Summary struct {
	Documents   int
	Succeeded   int
	PaidInvoked int
	TokensUsed  int64
}

// Summarize counts results. A document counts toward PaidInvoked only when the
// paid tier produced fields or consumed tokens.
func Summarize(results []*domain.ParseResult) Summary {
	s := Summary{Documents: len(results)}
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Success {
			s.Succeeded++
		}
		if r.PaidCount > 0 || r.TokensUsed > 0 {
			s.PaidInvoked++
		}
		s.TokensUsed += r.TokensUsed
	}
	return s
}
