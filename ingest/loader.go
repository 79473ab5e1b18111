package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/storage"
)

// Loading defaults.
const (
	// DefaultBatchSize is how many songs are inserted per transaction.
	DefaultBatchSize = 100

	// minLyricsRunes is the shortest lyrics field worth keeping. Shorter
	// values are placeholder junk ("...", "N/A") in every dump seen so far.
	minLyricsRunes = 10
)

// Required CSV columns; Album, Year and Date are optional.
const (
	columnArtist = "Artist"
	columnTitle  = "Title"
	columnLyric  = "Lyric"
	columnAlbum  = "Album"
	columnYear   = "Year"
	columnDate   = "Date"
)

// Loader reads a lyrics CSV export and fills the song catalog.
type Loader struct {
	songs     storage.SongRepository
	batchSize int
	maxRows   int
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithBatchSize sets how many songs are inserted per transaction.
func WithBatchSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", size)
		}
		l.batchSize = size
		return nil
	}
}

// WithMaxRows caps how many data rows are read, for sampling a large
// dump. Zero means no cap.
func WithMaxRows(rows int) Option {
	return func(l *Loader) error {
		if rows < 0 {
			return fmt.Errorf("max rows must not be negative, got %d", rows)
		}
		l.maxRows = rows
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a new catalog loader.
func NewLoader(songs storage.SongRepository, opts ...Option) (*Loader, error) {
	if songs == nil {
		return nil, ErrRepositoryRequired
	}

	l := &Loader{
		songs:     songs,
		batchSize: DefaultBatchSize,
		logger:    slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// LoadReport summarizes one load run.
type LoadReport struct {
	Inserted   int           // songs written to the store
	Skipped    int           // rows dropped by cleaning rules
	Duplicates int           // rows dropped as (artist, title) repeats
	Elapsed    time.Duration
}

// LoadFile loads the CSV file at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	l.logger.Info("loading catalog", "path", path)
	return l.Load(ctx, f)
}

// Load reads a CSV export with a header row and inserts the cleaned songs
// in batches. Rows failing the cleaning rules are counted and skipped,
// never fatal; a malformed CSV stream or a store failure is.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*LoadReport, error) {
	start := time.Now()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	report := &LoadReport{}
	seen := make(map[string]struct{})
	batch := make([]*core.Song, 0, l.batchSize)
	rows := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if l.maxRows > 0 && rows >= l.maxRows {
			break
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows++

		song, ok := buildSong(columns, row)
		if !ok {
			report.Skipped++
			continue
		}

		key := song.Artist + "\x00" + song.Title
		if _, dup := seen[key]; dup {
			report.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		batch = append(batch, song)
		if len(batch) >= l.batchSize {
			if err := l.flush(ctx, batch, report); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := l.flush(ctx, batch, report); err != nil {
			return nil, err
		}
	}

	report.Elapsed = time.Since(start)
	l.logger.Info("load finished",
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"duplicates", report.Duplicates,
		"elapsed", report.Elapsed,
	)
	return report, nil
}

func (l *Loader) flush(ctx context.Context, batch []*core.Song, report *LoadReport) error {
	if err := l.songs.AddSongs(ctx, batch...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	report.Inserted += len(batch)
	l.logger.Info("batch saved", "inserted", report.Inserted)
	return nil
}

// columnIndexes maps the known columns to their positions; -1 means the
// column is absent.
type columnIndexes struct {
	artist, title, lyric int
	album, year, date    int
}

func resolveColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{artist: -1, title: -1, lyric: -1, album: -1, year: -1, date: -1}
	for i, name := range header {
		// Tolerate a UTF-8 BOM on the first cell and stray whitespace.
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, columnArtist):
			cols.artist = i
		case strings.EqualFold(name, columnTitle):
			cols.title = i
		case strings.EqualFold(name, columnLyric):
			cols.lyric = i
		case strings.EqualFold(name, columnAlbum):
			cols.album = i
		case strings.EqualFold(name, columnYear):
			cols.year = i
		case strings.EqualFold(name, columnDate):
			cols.date = i
		}
	}

	var missing []string
	if cols.artist == -1 {
		missing = append(missing, columnArtist)
	}
	if cols.title == -1 {
		missing = append(missing, columnTitle)
	}
	if cols.lyric == -1 {
		missing = append(missing, columnLyric)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

// buildSong cleans one CSV row into a Song. Returns false when the row
// fails the keep rules: empty artist or title after cleaning, or lyrics
// of minLyricsRunes runes or fewer.
func buildSong(cols columnIndexes, row []string) (*core.Song, bool) {
	artist := core.CleanText(cell(row, cols.artist))
	title := core.CleanText(cell(row, cols.title))
	lyrics := core.CleanText(cell(row, cols.lyric))

	if artist == "" || title == "" || utf8.RuneCountInString(lyrics) <= minLyricsRunes {
		return nil, false
	}

	song := &core.Song{
		Artist:   artist,
		Title:    title,
		Album:    core.CleanText(cell(row, cols.album)),
		Year:     parseYear(cell(row, cols.year), cell(row, cols.date)),
		Lyrics:   lyrics,
		FullText: core.BuildFullText(title, artist, lyrics),
	}
	return song, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

var leadingYearRE = regexp.MustCompile(`^\d{4}`)

// parseYear reads the Year column, falling back to a leading YYYY in the
// Date column. Spreadsheet exports write integer years as floats
// ("2019.0"), so float syntax is accepted too.
func parseYear(yearField, dateField string) int {
	yearField = strings.TrimSpace(yearField)
	if yearField != "" {
		if y, err := strconv.Atoi(yearField); err == nil && y > 0 {
			return y
		}
		if f, err := strconv.ParseFloat(yearField, 64); err == nil && f > 0 {
			return int(f)
		}
	}
	if m := leadingYearRE.FindString(strings.TrimSpace(dateField)); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	return 0
}
