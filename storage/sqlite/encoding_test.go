package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lyricseeker/storage"
)

func TestVectorRoundTrip(t *testing.T) {
	original := []float32{0.5, -1.25, 3.75, 0}

	data := EncodeVector(original)
	require.Len(t, data, len(original)*4)

	decoded, err := DecodeVector(data, len(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEncodeVectorEmpty(t *testing.T) {
	assert.Nil(t, EncodeVector(nil))
	assert.Nil(t, EncodeVector([]float32{}))
}

func TestDecodeVectorErrors(t *testing.T) {
	t.Run("nil decodes to nil", func(t *testing.T) {
		decoded, err := DecodeVector(nil, 0)
		require.NoError(t, err)
		assert.Nil(t, decoded)
	})

	t.Run("truncated blob", func(t *testing.T) {
		_, err := DecodeVector([]byte{1, 2, 3}, 0)
		assert.ErrorIs(t, err, storage.ErrInvalidVector)
	})

	t.Run("wrong width", func(t *testing.T) {
		data := EncodeVector([]float32{1, 2})
		_, err := DecodeVector(data, 3)
		assert.ErrorIs(t, err, storage.ErrInvalidVector)
	})

	t.Run("unchecked width", func(t *testing.T) {
		data := EncodeVector([]float32{1, 2})
		decoded, err := DecodeVector(data, 0)
		require.NoError(t, err)
		assert.Len(t, decoded, 2)
	})
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled copy", []float32{1, 0, 0}, []float32{5, 0, 0}, 0},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 1},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, 2},
		{"zero magnitude", []float32{0, 0, 0}, []float32{1, 2, 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cosineDistance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := cosineDistance([]float32{1, 0}, []float32{1, 0, 0})
		assert.ErrorIs(t, err, storage.ErrInvalidVector)
	})
}
