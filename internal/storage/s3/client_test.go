package s3_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofio/internal/config"
	"roofio/internal/domain"
	"roofio/internal/port"
	s3store "roofio/internal/storage/s3"
)

// fakeS3 serves path-style GET and PUT for a single in-memory bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
			return
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T) (*s3store.Client, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	c, err := s3store.NewClient(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Endpoint:  server.URL,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return c, fake
}

func TestClient_UploadAndDownload(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	out, err := c.Upload(ctx, port.UploadInput{
		Bucket:      "roofio",
		Key:         "results/scope/doc-1.json",
		Body:        strings.NewReader(`{"document_id":"doc-1"}`),
		ContentType: "application/json",
	})
	require.NoError(t, err)
	assert.Equal(t, `"etag-1"`, out.ETag)
	assert.Contains(t, fake.objects, "/roofio/results/scope/doc-1.json")

	data, err := c.Download(ctx, "roofio", "results/scope/doc-1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"document_id":"doc-1"}`, string(data))
}

func TestClient_DownloadMissing(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Download(context.Background(), "roofio", "nope.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceNotFound), err.Error())
}
