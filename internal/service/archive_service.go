package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/rs/zerolog/log"

	"roofio/internal/domain"
	"roofio/internal/port"
)

// ArchiveService stores parse results as JSON objects.
type ArchiveService struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
}

// NewArchiveService creates an ArchiveService. An empty prefix defaults to "results".
func NewArchiveService(storage port.ObjectStorage, bucket, prefix string) *ArchiveService {
	if prefix == "" {
		prefix = "results"
	}
	return &ArchiveService{storage: storage, bucket: bucket, prefix: prefix}
}

// Key returns the object key a result is archived under.
func (a *ArchiveService) Key(result *domain.ParseResult) string {
	docType := string(result.DocumentType)
	if docType == "" {
		docType = "unknown"
	}
	return path.Join(a.prefix, docType, result.DocumentID+".json")
}

// Archive uploads result to <prefix>/<document_type>/<document_id>.json.
func (a *ArchiveService) Archive(ctx context.Context, result *domain.ParseResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	key := a.Key(result)
	out, err := a.storage.Upload(ctx, port.UploadInput{
		Bucket:      a.bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
		Size:        int64(len(body)),
	})
	if err != nil {
		return fmt.Errorf("archiving %s: %w", key, err)
	}
	log.Debug().Str("key", key).Str("location", out.Location).Msg("archive: result stored")
	return nil
}
