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


// Package search provides semantic similarity search over the song catalog.
//
// The Searcher type embeds the query text, fetches nearest-neighbor
// candidates from the song store, and ranks them:
//   - Cosine distance converts to a similarity score in [0, 1]
//   - Candidates below the request threshold are dropped
//   - Survivors order by similarity descending, ties by ascending id
//
// Candidates are over-fetched relative to the requested limit so that
// threshold filtering still fills the page. A SearchMonitor can observe
// each stage of the pipeline.
package search
