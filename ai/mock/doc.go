// Package mock provides test double implementations of the ai.Embedder interface.
//
// Two doubles cover the two kinds of tests in this repository:
//
//   - MockEmbedder: behavior injection via function fields plus call
//     counting, for tests that assert on whether and how the embedder was
//     invoked (for example: validation failures must never reach it).
//   - TokenEmbedder: a deterministic bag-of-words embedder whose cosine
//     similarities track token overlap, for tests that assert on ranking
//     and threshold behavior end to end without a live provider.
//
// Both are safe for concurrent use.
package mock
