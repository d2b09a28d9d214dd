package port

import "context"

// GenerateOutput is the raw text answer of a generative backend plus its usage.
type GenerateOutput struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Generator abstracts a generative text backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*GenerateOutput, error)
}
