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


package cached

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
)

// cacheEntry is the value stored per cache key. The model tag guards
// against ever serving a vector produced by a different embedding model.
type cacheEntry struct {
	Model  string
	Vector []float32
}

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

// marshalEntry serializes a cacheEntry to bytes.
func marshalEntry(entry cacheEntry) []byte {
	buf := make([]byte, ord.String.Size(entry.Model)+vectorMUS.Size(entry.Vector))
	n := ord.String.Marshal(entry.Model, buf)
	vectorMUS.Marshal(entry.Vector, buf[n:])
	return buf
}

// unmarshalEntry deserializes a cacheEntry from bytes.
func unmarshalEntry(data []byte) (cacheEntry, error) {
	var entry cacheEntry

	model, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return entry, fmt.Errorf("cache entry model: %w", err)
	}

	vector, _, err := vectorMUS.Unmarshal(data[n:])
	if err != nil {
		return entry, fmt.Errorf("cache entry vector: %w", err)
	}

	entry.Model = model
	entry.Vector = vector
	return entry, nil
}
