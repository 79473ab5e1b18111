package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/lyricseeker/storage"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// memoryDSN opens a private in-memory database, used by tests.
const memoryDSN = ":memory:"

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

const schema = `
CREATE TABLE IF NOT EXISTS songs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	artist     TEXT NOT NULL,
	title      TEXT NOT NULL,
	album      TEXT NOT NULL DEFAULT '',
	year       INTEGER,
	lyrics     TEXT NOT NULL,
	full_text  TEXT NOT NULL,
	embedding  BLOB,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(artist);
CREATE INDEX IF NOT EXISTS idx_songs_year ON songs(year);
`

// Store implements storage.SongRepository on a SQLite database using the
// pure-Go modernc.org/sqlite driver. Embeddings live in a BLOB column and
// nearest-neighbor queries run as an exact scan through the registered
// cosine-distance SQL function.
type Store struct {
	db         *sql.DB
	dimensions int
	logger     *slog.Logger
}

var _ storage.SongRepository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the default component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewRepository opens (or creates) the database at path. The dimensions
// argument fixes the embedding width the store accepts; it must match the
// embedding client configuration and is enforced on every write.
//
// Returns storage.SongRepository interface to enforce abstraction.
func NewRepository(path string, dimensions int, opts ...Option) (storage.SongRepository, error) {
	return newStore(path, dimensions, opts...)
}

// NewMemoryRepository creates an in-memory repository for testing.
func NewMemoryRepository(dimensions int, opts ...Option) (storage.SongRepository, error) {
	return newStore(memoryDSN, dimensions, opts...)
}

func newStore(path string, dimensions int, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: database path is required")
	}
	if dimensions <= 0 {
		return nil, errors.New("sqlite: dimensions must be positive")
	}

	registerFunctions()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == memoryDSN {
		// A second pooled connection would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma failed: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema failed: %w", err)
	}

	store := &Store{
		db:         db,
		dimensions: dimensions,
		logger:     slog.Default().With("component", "sqlite-store"),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Dimensions returns the embedding width the store was opened with.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Ping verifies store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.wrap("ping", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// wrap tags an infrastructure failure with storage.ErrUnavailable so
// callers can classify it without parsing driver messages.
func (s *Store) wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", storage.ErrUnavailable, op, err)
}
