// Package generator sends prompts to a text-generation backend and decodes
// the reply into a candidate report.
package generator

import "context"

// Backend is one text-generation service. Generate returns the raw reply
// text for prompt and must honor ctx cancellation.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, prompt string) (string, error)

// Name implements Backend.
func (f BackendFunc) Name() string { return "func" }

// Generate implements Backend.
func (f BackendFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
