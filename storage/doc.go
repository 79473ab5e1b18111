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


// Package storage provides the storage abstraction layer for LyricSeeker.
//
// This package defines the SongRepository interface that decouples the
// search service, the ingest pipeline, and the API from any particular
// storage backend.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the interface
// type to enforce abstraction:
//
//	repo, err := sqlite.NewRepository(path, dims)  // returns storage.SongRepository
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Implementations
//
//   - storage/sqlite: the production backend. A single songs table with
//     embeddings stored as little-endian float32 blobs and an exact
//     nearest-neighbor scan through a registered cosine-distance SQL
//     function.
//
// Use in tests with in-memory storage:
//
//	repo, err := sqlite.NewMemoryRepository(dims)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
