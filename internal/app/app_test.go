package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofio/internal/app"
	"roofio/internal/config"
	"roofio/internal/domain"
	"roofio/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Generator: config.GeneratorConfig{CircuitStore: "memory"},
		Extract:   config.ExtractConfig{MaxPromptChars: 4000, MaxFileSizeMB: 5, FallbackConfidence: 0.8},
		S3:        config.S3Config{Region: "us-east-1", Bucket: "docs", AccessKey: "k", SecretKey: "s"},
	}
}

func TestNew_ParsesWithStaticBackend(t *testing.T) {
	a, err := app.New(context.Background(), testConfig())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	assert.Nil(t, a.Archive)
	require.NotNil(t, a.Parser)

	path := filepath.Join(t.TempDir(), "co.txt")
	require.NoError(t, os.WriteFile(path, []byte("Change Order #7\nAmount: $4,250.00"), 0o600))

	result := a.Parser.Parse(context.Background(), service.ParseInput{
		Path:         path,
		DocumentType: domain.DocTypeChangeOrder,
		DocumentID:   "co-7",
	})
	require.NotNil(t, result)
	assert.True(t, result.Success)
	f, ok := result.Field("co_number")
	require.True(t, ok)
	assert.Equal(t, domain.TierCheapRule, f.Tier)
}

func TestNew_ArchiveEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Archive = config.ArchiveConfig{Enabled: true, Prefix: "results"}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, a.Archive)

	r := &domain.ParseResult{DocumentID: "d1", DocumentType: domain.DocTypeScope}
	assert.Equal(t, "results/scope/d1.json", a.Archive.Key(r))
}

func TestNew_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.Generator.CircuitStore = "etcd"
	_, err := app.New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown circuit store")

	cfg = testConfig()
	cfg.Generator.Primary = config.GeneratorProviderConfig{Provider: "nope"}
	_, err = app.New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown generator provider")

	cfg = testConfig()
	cfg.Extract.RequiredFieldsFile = filepath.Join(t.TempDir(), "missing.toml")
	_, err = app.New(context.Background(), cfg)
	assert.ErrorContains(t, err, "loading required fields")
}
