package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/lyricseeker/ai"
	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/storage"
)

// BatchProcessor embeds batches of songs and stores the vectors.
type BatchProcessor struct {
	songs          storage.SongRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(songs storage.SongRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		songs:          songs,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds one batch of songs from their full text and stores the
// vectors in a single transaction. The embedding call is retried with
// exponential backoff; the store write is not, a failed transaction leaves
// the whole batch pending for the next run.
func (bp *BatchProcessor) Process(ctx context.Context, songs []*core.Song) error {
	if len(songs) == 0 {
		return nil
	}

	texts := make([]string, len(songs))
	for i, song := range songs {
		texts[i] = song.FullText
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(songs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(songs), len(embeddings))
	}

	updates := make([]storage.EmbeddingUpdate, len(songs))
	for i, song := range songs {
		updates[i] = storage.EmbeddingUpdate{SongId: song.Id, Embedding: embeddings[i]}
	}

	if err := bp.songs.UpdateEmbeddings(ctx, updates...); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}

	return nil
}
