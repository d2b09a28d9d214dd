package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"roofio/internal/domain"
)

// localize turns ref into a readable local path. The returned cleanup removes
// any temp file created for a remote source and is never nil.
func (e *Extractor) localize(ctx context.Context, ref string) (string, func(), error) {
	noop := func() {}

	switch {
	case strings.HasPrefix(ref, "s3://"):
		path, err := e.downloadS3ToTemp(ctx, ref)
		if err != nil {
			return "", noop, err
		}
		return path, func() { _ = os.Remove(path) }, nil
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		u, err := url.Parse(ref)
		if err != nil {
			return "", noop, fmt.Errorf("invalid url %s: %w", ref, err)
		}
		// A #page fragment addresses a viewer, not the resource.
		u.Fragment = ""
		u.RawFragment = ""
		path, err := e.downloadHTTPToTemp(ctx, u.String())
		if err != nil {
			return "", noop, err
		}
		return path, func() { _ = os.Remove(path) }, nil
	case strings.HasPrefix(ref, "file://"):
		ref = strings.TrimPrefix(ref, "file://")
	}

	if _, err := os.Stat(ref); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", noop, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, ref)
		}
		return "", noop, fmt.Errorf("stat %s: %w", ref, err)
	}
	return ref, noop, nil
}

func (e *Extractor) downloadHTTPToTemp(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", domain.ErrSourceNotFound, rawURL)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("fetching %s: http %d", rawURL, resp.StatusCode)
	}
	return e.writeTemp(resp.Body)
}

func (e *Extractor) downloadS3ToTemp(ctx context.Context, s3url string) (string, error) {
	if e.storage == nil {
		return "", fmt.Errorf("s3 source %s: object storage not configured", s3url)
	}
	// s3://bucket/key
	path := strings.TrimPrefix(s3url, "s3://")
	slash := strings.Index(path, "/")
	if slash <= 0 || slash == len(path)-1 {
		return "", fmt.Errorf("invalid s3 url: %s", s3url)
	}
	bucket, key := path[:slash], path[slash+1:]

	data, err := e.storage.Download(ctx, bucket, key)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", s3url, err)
	}
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return "", domain.ErrFileTooLarge
	}
	tmp, err := e.writeTemp(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	log.Debug().Str("bucket", bucket).Str("key", key).Msg("textextract: downloaded s3 object to temp")
	return tmp, nil
}

// writeTemp copies at most maxBytes+1 bytes so oversized remote bodies are
// caught without buffering them fully.
func (e *Extractor) writeTemp(r io.Reader) (string, error) {
	f, err := os.CreateTemp("", "roofio-src-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if e.maxBytes > 0 {
		r = io.LimitReader(r, e.maxBytes+1)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if e.maxBytes > 0 && n > e.maxBytes {
		_ = os.Remove(f.Name())
		return "", domain.ErrFileTooLarge
	}
	return f.Name(), nil
}
