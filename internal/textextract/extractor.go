// Package textextract turns a document reference into a normalized text blob
// with page spans.
package textextract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"

	"roofio/internal/domain"
	"roofio/internal/port"
)

// Options configures an Extractor.
type Options struct {
	// MaxFileSizeMB bounds the accepted source size. Zero disables the check.
	MaxFileSizeMB int64
	// Storage resolves s3:// references. Nil rejects them.
	Storage port.ObjectStorage
	// HTTPClient fetches http(s) references. Nil uses a client with a 60s timeout.
	HTTPClient *http.Client
}

// Extractor implements port.TextExtractor for PDF and plain-text sources.
type Extractor struct {
	maxBytes   int64
	storage    port.ObjectStorage
	httpClient *http.Client
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Extractor{
		maxBytes:   opts.MaxFileSizeMB << 20,
		storage:    opts.Storage,
		httpClient: client,
	}
}

// Extract resolves ref (path, file://, s3:// or http(s)://), sniffs its
// content type and returns the normalized text.
func (e *Extractor) Extract(ctx context.Context, ref string) (*port.ExtractedText, error) {
	path, cleanup, err := e.localize(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if e.maxBytes > 0 && info.Size() > e.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return e.extractContent(path, content)
}

func (e *Extractor) extractContent(path string, content []byte) (*port.ExtractedText, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return plainText(""), nil
	}
	mtype := mimetype.Detect(content)
	switch {
	case mtype.Is("application/pdf"):
		return extractPDF(path, content)
	case isText(mtype):
		return plainText(string(content)), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, mtype.String())
	}
}

// isText accepts text/plain and its descendants (csv, json, html are still text).
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func plainText(s string) *port.ExtractedText {
	s = strings.TrimSpace(normalize(s))
	out := &port.ExtractedText{Text: s, PageCount: 1}
	if s != "" {
		out.Pages = []port.PageSpan{{Number: 1, Start: 0, End: len(s)}}
	}
	return out
}

// normalize folds compatibility characters (PDF ligatures, full-width digits)
// so the rule patterns see plain ASCII where possible.
func normalize(s string) string {
	return norm.NFKC.String(s)
}

// Sniff reports the detected MIME type of head and whether Extract accepts it.
// Blank input is accepted; it extracts to empty text.
func Sniff(head []byte) (string, bool) {
	if len(bytes.TrimSpace(head)) == 0 {
		return "text/plain", true
	}
	mtype := mimetype.Detect(head)
	return mtype.String(), mtype.Is("application/pdf") || isText(mtype)
}
