package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/apotheon-labs/siteindex"
)

// Ensure LoggingEmbedder implements siteindex.Embedder.
var _ siteindex.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with structured logging. Backend names
// distinguish chain members in the logs.
type LoggingEmbedder struct {
	next    siteindex.Embedder
	backend string
	logger  *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next siteindex.Embedder, backend string, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, backend: backend, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the outcome.
func (e *LoggingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	begin := time.Now()
	vec, err := e.next.Embed(ctx, text)
	if err != nil {
		e.logger.Warn("embed",
			"backend", e.backend,
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err.Error(),
		)
		return nil, err
	}
	e.logger.Debug("embed",
		"backend", e.backend,
		"chars", len(text),
		"dims", len(vec),
		"duration", time.Since(begin),
	)
	return vec, nil
}
