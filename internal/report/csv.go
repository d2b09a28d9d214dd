// Package report renders parse results as CSV, XLSX or JSON.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"roofio/internal/domain"
)

// BOM is the UTF-8 byte order mark, for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the field-row header shared by CSV and the XLSX Fields sheet.
var columns = []string{
	"document_id",
	"document_type",
	"success",
	"field",
	"value",
	"confidence",
	"tier",
	"source_page",
}

// CSVWriter wraps csv.Writer for exporting one row per extracted field.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w, preceded by a BOM when bom is set.
func NewCSVWriter(w io.Writer, bom bool) (*CSVWriter, error) {
	if bom {
		if _, err := w.Write(BOM); err != nil {
			return nil, fmt.Errorf("writing BOM: %w", err)
		}
	}
	return &CSVWriter{csv: csv.NewWriter(w)}, nil
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResults writes every field of every result. A result without fields
// still gets one row so failed documents show up in the report.
func (w *CSVWriter) WriteResults(results []*domain.ParseResult) error {
	for _, r := range results {
		for _, row := range resultRows(r) {
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV writes header and results to w in one call.
func WriteCSV(w io.Writer, results []*domain.ParseResult, bom bool) error {
	cw, err := NewCSVWriter(w, bom)
	if err != nil {
		return err
	}
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteResults(results); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func resultRows(r *domain.ParseResult) [][]string {
	if len(r.Fields) == 0 {
		return [][]string{{r.DocumentID, string(r.DocumentType), formatBool(r.Success), "", "", "", "", ""}}
	}
	rows := make([][]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		rows = append(rows, []string{
			r.DocumentID,
			string(r.DocumentType),
			formatBool(r.Success),
			f.Name,
			FormatValue(f.Value),
			strconv.FormatFloat(f.Confidence, 'f', 2, 64),
			string(f.Tier),
			formatPage(f.SourcePage),
		})
	}
	return rows
}

// FormatValue renders a field value without exponent notation for large numbers.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func formatPage(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func joinMessages(msgs []string) string {
	return strings.Join(msgs, "; ")
}
