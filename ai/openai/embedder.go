package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/lyricseeker/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder      embeddings.Embedder
	dimensions    int
	timeout       time.Duration
	maxInputChars int
	logger        *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// "none" keeps local OpenAI-compatible services happy; they accept any
	// token. Real providers require a key from the config.
	token := config.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:      embedder,
		dimensions:    config.Dimensions,
		timeout:       config.Timeout,
		maxInputChars: config.MaxInputChars,
		logger:        slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	text, err := e.prepare(text)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrProviderFailure, err)
	}
	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return nil, fmt.Errorf("%w: provider returned no embeddings", ai.ErrProviderFailure)
	}

	return e.checkDimensions(vectors[0])
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	prepared := make([]string, len(texts))
	for i, text := range texts {
		p, err := e.prepare(text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		prepared[i] = p
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.logger.Debug("generating embeddings for texts", "count", len(prepared))

	vectors, err := e.embedder.EmbedDocuments(ctx, prepared)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(prepared), "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrProviderFailure, err)
	}
	if len(vectors) != len(prepared) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ai.ErrProviderFailure, len(vectors), len(prepared))
	}

	for i, vector := range vectors {
		if _, err := e.checkDimensions(vector); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}

	return vectors, nil
}

func (e *Embedder) prepare(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ai.ErrEmptyText
	}
	return ai.TruncateText(text, e.maxInputChars), nil
}

func (e *Embedder) checkDimensions(vector []float32) ([]float32, error) {
	if len(vector) != e.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ai.ErrDimensionMismatch, len(vector), e.dimensions)
	}
	return vector, nil
}
