// Package app assembles the parse pipeline from configuration. Both binaries
// share it so the HTTP service and the batch CLI extract identically.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"roofio/internal/config"
	"roofio/internal/fallback"
	"roofio/internal/generator"
	"roofio/internal/port"
	"roofio/internal/rules"
	"roofio/internal/schema"
	"roofio/internal/service"
	s3storage "roofio/internal/storage/s3"
	"roofio/internal/textextract"

	// Register generative backends with the provider factory.
	_ "roofio/internal/generator/claude"
	_ "roofio/internal/generator/gemini"
	_ "roofio/internal/generator/openai"
)

// App holds the wired pipeline.
type App struct {
	Parser  service.ParseService
	Archive *service.ArchiveService
	Storage port.ObjectStorage

	closers []func() error
}

// New wires the pipeline described by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	required, err := schema.LoadFile(cfg.Extract.RequiredFieldsFile)
	if err != nil {
		return nil, fmt.Errorf("loading required fields: %w", err)
	}

	circuits, err := a.circuitStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gen, err := generator.Build(&cfg.Generator, circuits)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("building generator: %w", err)
	}

	storage, err := s3storage.NewClient(ctx, &cfg.S3)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("initializing S3 client: %w", err)
	}
	a.Storage = storage

	if cfg.Archive.Enabled {
		bucket := cfg.Archive.Bucket
		if bucket == "" {
			bucket = cfg.S3.Bucket
		}
		a.Archive = service.NewArchiveService(storage, bucket, cfg.Archive.Prefix)
	}

	extractor := textextract.New(textextract.Options{
		MaxFileSizeMB: cfg.Extract.MaxFileSizeMB,
		Storage:       storage,
	})
	newFallback := service.NewFallbackFactory(gen, fallback.Options{
		MaxPromptChars: cfg.Extract.MaxPromptChars,
		Confidence:     cfg.Extract.FallbackConfidence,
	})
	a.Parser = service.NewParseService(extractor, rules.NewEngine(nil), required, newFallback)

	log.Info().
		Int("providers", len(cfg.Generator.Providers())).
		Str("circuit_store", cfg.Generator.CircuitStore).
		Bool("archive", a.Archive != nil).
		Msg("app: pipeline ready")
	return a, nil
}

func (a *App) circuitStore(ctx context.Context, cfg *config.Config) (generator.CircuitStore, error) {
	switch cfg.Generator.CircuitStore {
	case "", "memory":
		return generator.NewMemoryCircuits(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			// Circuit state degrades to closed on Redis errors; keep serving.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("app: redis unreachable, circuits fail open")
		}
		a.closers = append(a.closers, client.Close)
		return generator.NewRedisCircuits(client, ""), nil
	default:
		return nil, fmt.Errorf("unknown circuit store: %s", cfg.Generator.CircuitStore)
	}
}

// Close releases connections opened by New.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
