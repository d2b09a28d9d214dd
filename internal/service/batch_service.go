package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"roofio/internal/domain"
)

// BatchItem is one document of a batch run.
type BatchItem struct {
	Path         string
	DocumentType domain.DocumentType
	DocumentID   string
}

// BatchService parses independent documents concurrently.
type BatchService struct {
	parser      ParseService
	concurrency int
	archive     *ArchiveService
}

// NewBatchService creates a BatchService running at most concurrency parses at once.
// archive may be nil.
func NewBatchService(parser ParseService, concurrency int, archive *ArchiveService) *BatchService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchService{parser: parser, concurrency: concurrency, archive: archive}
}

// Run parses every item and returns results in input order. Items not started
// before ctx is canceled get a result carrying the "canceled" error.
func (b *BatchService) Run(ctx context.Context, items []BatchItem) []*domain.ParseResult {
	results := make([]*domain.ParseResult, len(items))

	g := new(errgroup.Group)
	g.SetLimit(b.concurrency)

	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		i, item := i, item
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			result := b.parser.Parse(ctx, ParseInput{
				Path:         item.Path,
				DocumentType: item.DocumentType,
				DocumentID:   item.DocumentID,
			})
			if b.archive != nil {
				if err := b.archive.Archive(ctx, result); err != nil {
					log.Warn().Err(err).Str("document_id", item.DocumentID).Msg("batch: archive failed")
				}
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if r == nil {
			results[i] = canceledResult(items[i])
		}
	}
	return results
}

func canceledResult(item BatchItem) *domain.ParseResult {
	r := domain.NewParseResult(item.DocumentID, item.DocumentType)
	r.AddError("canceled")
	return r
}

// ItemsFromDir lists *.pdf and *.txt files in dir (not recursive), sorted by name.
// The document ID is the file name without its extension.
func ItemsFromDir(dir string, docType domain.DocumentType) ([]BatchItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var items []BatchItem
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		item, ok := ItemForPath(filepath.Join(dir, e.Name()), docType)
		if ok {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

// ItemForPath builds a BatchItem for path when its extension is supported.
func ItemForPath(path string, docType domain.DocumentType) (BatchItem, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" && ext != ".txt" {
		return BatchItem{}, false
	}
	base := filepath.Base(path)
	return BatchItem{
		Path:         path,
		DocumentType: docType,
		DocumentID:   strings.TrimSuffix(base, filepath.Ext(base)),
	}, true
}
