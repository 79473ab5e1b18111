package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// defaultDimensions matches the production embedding width so mock vectors
// can round-trip through the same store schema.
const defaultDimensions = 1536

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu        sync.Mutex
	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.record()

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return generateDeterministicVector(text, defaultDimensions), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.record()

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = generateDeterministicVector(text, defaultDimensions)
	}
	return embeddings, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

func (m *MockEmbedder) record() {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()
}

// TokenEmbedder is a deterministic bag-of-words embedder: each lower-cased
// whitespace-separated token adds weight to one dimension and the result is
// L2-normalized. Texts that share tokens therefore get proportionally high
// cosine similarity, which gives ranking assertions in tests something real
// to bite on.
type TokenEmbedder struct {
	dims int

	mu        sync.Mutex
	callCount int
}

// NewTokenEmbedder creates a token-overlap embedder producing vectors of
// the given width. Returns concrete type to allow CallCount assertions.
func NewTokenEmbedder(dims int) *TokenEmbedder {
	if dims <= 0 {
		dims = defaultDimensions
	}
	return &TokenEmbedder{dims: dims}
}

// EmbedText generates a bag-of-words vector for a single text.
func (t *TokenEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	t.record()
	return tokenVector(text, t.dims), nil
}

// EmbedTexts generates bag-of-words vectors for multiple texts.
func (t *TokenEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	t.record()

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = tokenVector(text, t.dims)
	}
	return embeddings, nil
}

// CallCount returns the number of times any method was called.
func (t *TokenEmbedder) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.callCount
}

func (t *TokenEmbedder) record() {
	t.mu.Lock()
	t.callCount++
	t.mu.Unlock()
}

func tokenVector(text string, dims int) []float32 {
	vector := make([]float32, dims)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[h.Sum32()%uint32(dims)] += 1.0
	}
	normalize(vector)
	return vector
}

// generateDeterministicVector creates a deterministic embedding vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
func generateDeterministicVector(text string, dims int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dims)
	for i := 0; i < dims; i++ {
		// Simple pseudo-random generation based on seed and index
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	normalize(vector)
	return vector
}

func normalize(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] *= inv
	}
}
