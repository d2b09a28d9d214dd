package port

import "context"

// PageSpan locates one page's text inside ExtractedText.Text as a byte range.
type PageSpan struct {
	Number int
	Start  int
	End    int
}

// ExtractedText is the text layer of a document plus its page layout.
type ExtractedText struct {
	Text      string
	PageCount int
	Pages     []PageSpan
}

// PageAt returns the 1-based page containing byte offset, or 0 when unknown.
func (e *ExtractedText) PageAt(offset int) int {
	for _, p := range e.Pages {
		if offset >= p.Start && offset < p.End {
			return p.Number
		}
	}
	return 0
}

// TextExtractor converts a document reference (path, file://, s3://, http(s)://)
// into its text layer.
type TextExtractor interface {
	Extract(ctx context.Context, ref string) (*ExtractedText, error)
}
