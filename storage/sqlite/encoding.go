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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/poiesic/lyricseeker/storage"
)

// EncodeVector packs an embedding into the BLOB representation stored in
// the songs table: consecutive little-endian IEEE-754 float32 values with
// no length prefix. An empty vector encodes to nil.
func EncodeVector(vector []float32) []byte {
	if len(vector) == 0 {
		return nil
	}
	data := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

// DecodeVector unpacks a BLOB produced by EncodeVector. When dimensions is
// positive the decoded width must match it exactly. Nil or empty input
// decodes to nil.
func DecodeVector(data []byte, dimensions int) ([]float32, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: blob length %d is not a multiple of 4", storage.ErrInvalidVector, len(data))
	}
	n := len(data) / 4
	if dimensions > 0 && n != dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", storage.ErrInvalidVector, dimensions, n)
	}
	vector := make([]float32, n)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vector, nil
}
