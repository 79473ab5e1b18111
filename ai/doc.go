// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides the embedding abstraction used by LyricSeeker.
//
// The search path and the embedding backfill both depend on the single
// Embedder interface; the concrete provider is injected at startup. This
// keeps the core domain and business logic decoupled from any particular
// embedding vendor.
//
// # Implementation Packages
//
// The ai package includes three implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/cached: A Badger-backed decorator that caches query embeddings
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// openai.NewEmbedder returns the INTERFACE type to enforce abstraction and
// prevent accidental coupling to the concrete implementation.
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// cached.NewEmbedder returns its CONCRETE type because callers own the
// cache lifecycle and must be able to call Close. Test utility
// constructors (mock.NewMockEmbedder, mock.NewTokenEmbedder) likewise
// return concrete types to enable assertions and behavior injection via
// the mock's public surface (CallCount, EmbedTextFunc, Reset).
//
//	mockEmbed := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	mockEmbed.EmbedTextFunc = ...        // needs concrete type
//	count := mockEmbed.CallCount()       // test assertion
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vector, err := embedder.EmbedText(ctx, "songs about heartbreak")
package ai
