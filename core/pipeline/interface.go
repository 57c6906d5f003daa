package pipeline

import "context"

// EmbedFunc is a function that generates a fixed-dimension embedding for text.
// The embedding and generation model services are consumed as opaque
// functions; the pipeline does not know what runs behind them.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// GenerateFunc is a function that produces answer text for a prompt.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)
