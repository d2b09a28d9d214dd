package logger

import (
	"io"

	"github.com/axiomhq/axiom-go/axiom"

	"roofio/internal/config"
)

// Test hooks for the external logger_test package.

func InitWith(cfg *config.LogConfig, service string, stdout io.Writer) (func(), error) {
	return initWith(cfg, service, stdout)
}

type SinkFunc func(ev axiom.Event)

func (f SinkFunc) Send(ev axiom.Event) { f(ev) }

func NewAxiomWriter(sink SinkFunc, service string) io.Writer {
	return &axiomWriter{sink: sink, service: service}
}
