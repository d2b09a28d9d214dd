package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"roofio/internal/domain"
)

const (
	fieldsSheet  = "Fields"
	summarySheet = "Summary"
)

var summaryColumns = []string{
	"document_id",
	"document_type",
	"success",
	"pages",
	"cheap_count",
	"paid_count",
	"paid_tier_skipped",
	"tokens_used",
	"overall_confidence",
	"errors",
	"warnings",
}

// WriteXLSX writes a workbook with a Fields sheet (one row per field) and a
// Summary sheet (one row per document).
func WriteXLSX(w io.Writer, results []*domain.ParseResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with "Sheet1"; rename it rather than leaving it empty.
	if err := f.SetSheetName("Sheet1", fieldsSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(fieldsSheet)
	f.SetActiveSheet(activeIndex)

	writeHeader(f, fieldsSheet, columns)
	row := 2
	for _, r := range results {
		if len(r.Fields) == 0 {
			writeRow(f, fieldsSheet, row, []any{r.DocumentID, string(r.DocumentType), r.Success})
			row++
			continue
		}
		for _, fld := range r.Fields {
			values := []any{
				r.DocumentID,
				string(r.DocumentType),
				r.Success,
				fld.Name,
				fld.Value,
				fld.Confidence,
				string(fld.Tier),
			}
			if fld.SourcePage != nil {
				values = append(values, *fld.SourcePage)
			}
			writeRow(f, fieldsSheet, row, values)
			row++
		}
	}

	writeHeader(f, summarySheet, summaryColumns)
	for i, r := range results {
		writeRow(f, summarySheet, i+2, []any{
			r.DocumentID,
			string(r.DocumentType),
			r.Success,
			r.PageCount,
			r.CheapCount,
			r.PaidCount,
			r.PaidTierSkipped,
			r.TokensUsed,
			r.OverallConfidence,
			joinMessages(r.Errors),
			joinMessages(r.Warnings),
		})
	}

	_ = f.SetColWidth(fieldsSheet, "A", "A", 24)
	_ = f.SetColWidth(fieldsSheet, "D", "E", 28)
	_ = f.SetColWidth(summarySheet, "A", "A", 24)
	_ = f.SetColWidth(summarySheet, "J", "K", 60)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
