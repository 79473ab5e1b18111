// Package ingest loads song catalogs from CSV exports.
//
// The Loader type reads a CSV with a header row, cleans each row's text,
// drops rows that fail the keep rules, deduplicates on (artist, title)
// keeping the first occurrence, and inserts the survivors in batches.
// Embeddings are not generated here; see the backfill package.
package ingest
