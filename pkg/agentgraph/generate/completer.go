package generate

import "context"

// Completer sends one prompt to a language model and returns its text.
//
// Implementations translate provider failures into the categorized errors
// of the errors package (HTTPError for non-2xx responses) so the Generator
// can decide what to retry.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
