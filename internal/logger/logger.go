// Package logger configures the global zerolog logger: console or JSON output,
// optional file rotation and optional Axiom forwarding.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"roofio/internal/config"
)

// Init installs the global logger described by cfg and returns a function
// that flushes buffered sinks. service tags every event forwarded to Axiom.
func Init(cfg *config.LogConfig, service string) (func(), error) {
	return initWith(cfg, service, os.Stdout)
}

func initWith(cfg *config.LogConfig, service string, stdout io.Writer) (func(), error) {
	var writers []io.Writer
	closeFn := func() {}

	if strings.EqualFold(cfg.Format, "console") {
		writers = append(writers, zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.RFC3339})
	} else {
		writers = append(writers, stdout)
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return closeFn, fmt.Errorf("create logs dir: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}

	if cfg.AxiomToken != "" {
		client, err := newAxiomClient(cfg.AxiomToken, cfg.AxiomOrgID, cfg.AxiomDataset, 10*time.Second)
		if err != nil {
			// Keep logging locally without Axiom.
			fmt.Fprintf(os.Stderr, "axiom disabled: %v\n", err)
		} else {
			writers = append(writers, &axiomWriter{sink: client, service: service})
			closeFn = func() { _ = client.Close() }
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	return closeFn, nil
}
