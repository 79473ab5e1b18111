// Package backfill generates embeddings for songs that do not have one
// yet, typically after a fresh catalog load or an embedding model change.
//
// Pending songs are walked in id order through a cursor, embedded in
// batches on a worker pool, and written back transactionally. Embedding
// calls are retried with exponential backoff; progress is reported to a
// configurable writer.
package backfill
