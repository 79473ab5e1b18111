package cached

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/lyricseeker/ai"
)

// DefaultTTL is how long a cached query embedding stays valid. Stale
// entries are evicted by Badger itself.
const DefaultTTL = 24 * time.Hour

// errStaleEntry marks a cache entry written by a different embedding model.
var errStaleEntry = errors.New("cache entry from different model")

// Embedder decorates an ai.Embedder with a persistent Badger cache keyed
// by (model, text). Repeated queries skip the provider entirely. Cache
// read or write failures degrade to the inner embedder and are logged,
// never surfaced: a sick cache must not fail a search.
type Embedder struct {
	inner  ai.Embedder
	db     *badger.DB
	model  string
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a cached Embedder.
type Option func(*Embedder)

// WithTTL overrides DefaultTTL for newly written entries.
func WithTTL(ttl time.Duration) Option {
	return func(e *Embedder) {
		e.ttl = ttl
	}
}

// WithLogger overrides the default component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) {
		e.logger = logger
	}
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// NewEmbedder opens (or creates) the cache at filePath and wraps inner
// with it. An empty filePath opens an in-memory cache, which tests use.
// The model identifier scopes cache keys so a model switch never serves
// stale vectors.
//
// Returns the concrete type: callers own the cache lifecycle via Close.
func NewEmbedder(filePath string, model string, inner ai.Embedder, opts ...Option) (*Embedder, error) {
	if inner == nil {
		return nil, errors.New("cached: inner embedder is required")
	}
	if model == "" {
		return nil, errors.New("cached: model identifier is required")
	}

	var badgerOpts badger.Options
	if filePath == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		badgerOpts = badger.DefaultOptions(filePath)
	}

	logger := slog.Default().With("component", "embedding-cache")
	badgerOpts.Logger = &badgerLoggerAdapter{logger: logger}
	badgerOpts.Compression = options.None

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	e := &Embedder{
		inner:  inner,
		db:     db,
		model:  model,
		ttl:    DefaultTTL,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the underlying cache store. The inner embedder is not
// owned by the cache and stays usable.
func (e *Embedder) Close() error {
	return e.db.Close()
}

// EmbedText returns the cached vector for text when present, otherwise
// delegates to the inner embedder and stores the result.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key, ok := e.cacheKey(text)
	if ok {
		if vector, hit := e.lookup(key); hit {
			e.logger.Debug("embedding cache hit", "length", len(text))
			return vector, nil
		}
	}

	vector, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	if ok {
		e.store(key, vector)
	}
	return vector, nil
}

// EmbedTexts delegates straight to the inner embedder. Batch callers embed
// each text exactly once (catalog backfill), so caching them would only
// grow the store without ever hitting.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.inner.EmbedTexts(ctx, texts)
}

// cacheKey derives the BLAKE2b key for text, scoped by model. The text is
// trimmed the same way the inner embedder trims it, so padded variants of
// one query share an entry. Returns ok=false for input the inner embedder
// will reject anyway.
func (e *Embedder) cacheKey(text string) ([]byte, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	h, err := blake2b.New(32, nil)
	if err != nil {
		return nil, false
	}
	h.Write([]byte(e.model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return h.Sum(nil), true
}

func (e *Embedder) lookup(key []byte) ([]float32, bool) {
	var vector []float32
	err := e.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err := unmarshalEntry(val)
			if err != nil {
				return err
			}
			if entry.Model != e.model {
				return errStaleEntry
			}
			vector = entry.Vector
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) && !errors.Is(err, errStaleEntry) {
			e.logger.Warn("embedding cache read failed", "err", err)
		}
		return nil, false
	}
	return vector, true
}

func (e *Embedder) store(key []byte, vector []float32) {
	val := marshalEntry(cacheEntry{Model: e.model, Vector: vector})
	err := e.db.Update(func(tx *badger.Txn) error {
		return tx.SetEntry(badger.NewEntry(key, val).WithTTL(e.ttl))
	})
	if err != nil {
		e.logger.Warn("embedding cache write failed", "err", err)
	}
}
