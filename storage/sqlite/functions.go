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


package sqlite

import (
	"database/sql/driver"
	"fmt"
	"math"
	"sync"

	"github.com/poiesic/lyricseeker/storage"

	"modernc.org/sqlite"
)

// CosineDistanceFunc is the SQL scalar function used by nearest-neighbor
// queries: vec_cosine_distance(a, b) where both arguments are embedding
// BLOBs of equal width. It returns 1 - cosine similarity, a float in
// [0, 2], or NULL when either argument is NULL.
const CosineDistanceFunc = "vec_cosine_distance"

var registerOnce sync.Once

// registerFunctions installs the distance function into the driver.
// Registration is process-global and must happen before any connection
// that wants to call the function is opened.
func registerFunctions() {
	registerOnce.Do(func() {
		_ = sqlite.RegisterDeterministicScalarFunction(CosineDistanceFunc, 2, cosineDistanceImpl)
	})
}

func cosineDistanceImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected 2 arguments, got %d", CosineDistanceFunc, len(args))
	}
	a, err := asVector(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asVector(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	return cosineDistance(a, b)
}

func asVector(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return DecodeVector(v, 0)
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", CosineDistanceFunc, arg)
	}
}

// cosineDistance computes 1 - cosine similarity in float64. A
// zero-magnitude vector has no direction, so its distance to anything is
// reported as 1.0 rather than aborting the enclosing scan.
func cosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch: %d vs %d", storage.ErrInvalidVector, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 1.0, nil
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}
