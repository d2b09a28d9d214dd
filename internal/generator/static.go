package generator

import (
	"context"

	"roofio/internal/port"
)

// Static answers every prompt with a fixed body. It stands in for a real backend
// when no provider is configured, so the paid tier runs but finds nothing.
type Static struct {
	body string
}

// NewStatic creates a Static generator. An empty body answers "{}".
func NewStatic(body string) *Static {
	if body == "" {
		body = "{}"
	}
	return &Static{body: body}
}

func (s *Static) Generate(_ context.Context, _ string) (*port.GenerateOutput, error) {
	return &port.GenerateOutput{Text: s.body, Model: "static"}, nil
}
