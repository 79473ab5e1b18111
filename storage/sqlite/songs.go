package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/storage"
)

const defaultPageSize = 50

const insertSongSQL = `
INSERT INTO songs (artist, title, album, year, lyrics, full_text, embedding, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

const songColumns = "id, artist, title, album, year, lyrics, full_text, embedding, created_at"

// AddSongs inserts the given songs in a single transaction and assigns
// their database ids. A song with a zero CreatedAt gets the current time.
// Either all songs are inserted or none are.
func (s *Store) AddSongs(ctx context.Context, songs ...*core.Song) error {
	if len(songs) == 0 {
		return nil
	}
	for _, song := range songs {
		if err := core.ValidateSong(song); err != nil {
			return err
		}
		if song.HasEmbedding() && len(song.Embedding) != s.dimensions {
			return fmt.Errorf("%w: expected %d dimensions, got %d", storage.ErrInvalidVector, s.dimensions, len(song.Embedding))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap("begin insert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSongSQL)
	if err != nil {
		return s.wrap("prepare insert", err)
	}
	defer stmt.Close()

	for _, song := range songs {
		if song.CreatedAt.IsZero() {
			song.CreatedAt = time.Now().UTC()
		}
		res, err := stmt.ExecContext(ctx,
			song.Artist, song.Title, song.Album, nullableYear(song.Year),
			song.Lyrics, song.FullText, EncodeVector(song.Embedding), song.CreatedAt.Unix())
		if err != nil {
			return s.wrap("insert song", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return s.wrap("read insert id", err)
		}
		song.Id = id
	}

	if err := tx.Commit(); err != nil {
		return s.wrap("commit insert", err)
	}
	return nil
}

// GetSong fetches a single song by id, including its embedding.
func (s *Store) GetSong(ctx context.Context, id int64) (*core.Song, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE id = ?", id)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, s.wrap("get song", err)
	}
	return song, nil
}

// ListSongs returns a page of songs ordered by ascending id, plus the
// total count matching the filter. Embeddings are omitted from the
// returned songs to keep pages cheap.
func (s *Store) ListSongs(ctx context.Context, filter storage.SongFilter) ([]*core.Song, int64, error) {
	var conds []string
	var args []any

	if filter.Artist != "" {
		conds = append(conds, "artist LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filter.Artist+"%")
	}
	if filter.Year > 0 {
		conds = append(conds, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.HasEmbedding != nil {
		if *filter.HasEmbedding {
			conds = append(conds, "embedding IS NOT NULL")
		} else {
			conds = append(conds, "embedding IS NULL")
		}
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM songs"+where, args...).Scan(&total); err != nil {
		return nil, 0, s.wrap("count songs", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := "SELECT id, artist, title, album, year, lyrics, full_text, created_at FROM songs" +
		where + " ORDER BY id ASC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, s.wrap("list songs", err)
	}
	defer rows.Close()

	var songs []*core.Song
	for rows.Next() {
		song, err := scanSongLite(rows)
		if err != nil {
			return nil, 0, s.wrap("scan song", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, s.wrap("list songs", err)
	}
	return songs, total, nil
}

// ListArtists returns artists with their song counts, most prolific
// first, ties broken alphabetically.
func (s *Store) ListArtists(ctx context.Context, limit int) ([]core.ArtistCount, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT artist, COUNT(*) AS songs FROM songs GROUP BY artist ORDER BY songs DESC, artist ASC LIMIT ?", limit)
	if err != nil {
		return nil, s.wrap("list artists", err)
	}
	defer rows.Close()

	var artists []core.ArtistCount
	for rows.Next() {
		var ac core.ArtistCount
		if err := rows.Scan(&ac.Artist, &ac.Songs); err != nil {
			return nil, s.wrap("scan artist", err)
		}
		artists = append(artists, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list artists", err)
	}
	return artists, nil
}

// NearestNeighbors runs an exact cosine-distance scan over all songs that
// carry an embedding and returns the k closest, ordered by ascending
// distance with ties broken by ascending id.
func (s *Store) NearestNeighbors(ctx context.Context, vector []float32, k int) ([]storage.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", storage.ErrInvalidVector, s.dimensions, len(vector))
	}

	query := "SELECT " + songColumns + ", " + CosineDistanceFunc + "(embedding, ?) AS distance" +
		" FROM songs WHERE embedding IS NOT NULL ORDER BY distance ASC, id ASC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, query, EncodeVector(vector), k)
	if err != nil {
		return nil, s.wrap("nearest neighbors", err)
	}
	defer rows.Close()

	var neighbors []storage.Neighbor
	for rows.Next() {
		song := &core.Song{}
		var album sql.NullString
		var year sql.NullInt64
		var embedding []byte
		var createdAt int64
		var distance float64
		if err := rows.Scan(&song.Id, &song.Artist, &song.Title, &album, &year,
			&song.Lyrics, &song.FullText, &embedding, &createdAt, &distance); err != nil {
			return nil, s.wrap("scan neighbor", err)
		}
		song.Album = album.String
		song.Year = int(year.Int64)
		song.CreatedAt = time.Unix(createdAt, 0).UTC()
		if song.Embedding, err = DecodeVector(embedding, s.dimensions); err != nil {
			return nil, err
		}
		neighbors = append(neighbors, storage.Neighbor{Song: song, Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("nearest neighbors", err)
	}
	return neighbors, nil
}

// ListMissingEmbeddings returns up to limit songs without an embedding
// whose id is greater than afterId, ordered by ascending id. Iterating
// with the last returned id as the next afterId walks the whole backlog.
func (s *Store) ListMissingEmbeddings(ctx context.Context, afterId int64, limit int) ([]*core.Song, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, artist, title, album, year, lyrics, full_text, created_at FROM songs"+
			" WHERE embedding IS NULL AND id > ? ORDER BY id ASC LIMIT ?", afterId, limit)
	if err != nil {
		return nil, s.wrap("list missing embeddings", err)
	}
	defer rows.Close()

	var songs []*core.Song
	for rows.Next() {
		song, err := scanSongLite(rows)
		if err != nil {
			return nil, s.wrap("scan song", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list missing embeddings", err)
	}
	return songs, nil
}

// CountMissingEmbeddings reports how many songs still lack an embedding.
func (s *Store) CountMissingEmbeddings(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM songs WHERE embedding IS NULL").Scan(&count); err != nil {
		return 0, s.wrap("count missing embeddings", err)
	}
	return count, nil
}

// UpdateEmbeddings writes the given embeddings in a single transaction.
// Every referenced song must exist; otherwise the whole batch is rolled
// back with storage.ErrNotFound.
func (s *Store) UpdateEmbeddings(ctx context.Context, updates ...storage.EmbeddingUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if len(u.Embedding) != s.dimensions {
			return fmt.Errorf("%w: song %d: expected %d dimensions, got %d",
				storage.ErrInvalidVector, u.SongId, s.dimensions, len(u.Embedding))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap("begin update", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE songs SET embedding = ? WHERE id = ?")
	if err != nil {
		return s.wrap("prepare update", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, EncodeVector(u.Embedding), u.SongId)
		if err != nil {
			return s.wrap("update embedding", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return s.wrap("read update result", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: id %d", storage.ErrNotFound, u.SongId)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.wrap("commit update", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (*core.Song, error) {
	song := &core.Song{}
	var album sql.NullString
	var year sql.NullInt64
	var embedding []byte
	var createdAt int64
	if err := row.Scan(&song.Id, &song.Artist, &song.Title, &album, &year,
		&song.Lyrics, &song.FullText, &embedding, &createdAt); err != nil {
		return nil, err
	}
	song.Album = album.String
	song.Year = int(year.Int64)
	song.CreatedAt = time.Unix(createdAt, 0).UTC()
	vector, err := DecodeVector(embedding, 0)
	if err != nil {
		return nil, err
	}
	song.Embedding = vector
	return song, nil
}

// scanSongLite scans the embedding-free column set used by listings.
func scanSongLite(row rowScanner) (*core.Song, error) {
	song := &core.Song{}
	var album sql.NullString
	var year sql.NullInt64
	var createdAt int64
	if err := row.Scan(&song.Id, &song.Artist, &song.Title, &album, &year,
		&song.Lyrics, &song.FullText, &createdAt); err != nil {
		return nil, err
	}
	song.Album = album.String
	song.Year = int(year.Int64)
	song.CreatedAt = time.Unix(createdAt, 0).UTC()
	return song, nil
}

// nullableYear maps the zero year to NULL so unknown years stay out of
// year aggregates.
func nullableYear(year int) any {
	if year <= 0 {
		return nil
	}
	return year
}
