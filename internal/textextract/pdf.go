package textextract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"

	"roofio/internal/port"
)

// extractPDF reads text page by page. Null and unreadable pages are skipped;
// kept pages are joined with a blank line and their spans recorded.
func extractPDF(path string, content []byte) (out *port.ExtractedText, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var text strings.Builder
	var spans []port.PageSpan
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Debug().Err(err).Int("page", i).Msg("textextract: skipping unreadable page")
			continue
		}
		pageText = strings.TrimSpace(normalize(pageText))
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		start := text.Len()
		text.WriteString(pageText)
		spans = append(spans, port.PageSpan{Number: i, Start: start, End: text.Len()})
	}

	return &port.ExtractedText{
		Text:      text.String(),
		PageCount: pageCount(path, r.NumPage()),
		Pages:     spans,
	}, nil
}

// pageCount prefers pdfcpu's count and falls back to the text reader's.
func pageCount(path string, fallback int) int {
	n, err := api.PageCountFile(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("textextract: pdfcpu page count failed, using reader count")
		return fallback
	}
	return n
}
