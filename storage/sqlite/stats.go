package sqlite

import (
	"context"
	"database/sql"
	"math"

	"github.com/poiesic/lyricseeker/core"
)

const topArtistCount = 10

// Stats aggregates catalog-wide counters in a single pass over the songs
// table. An empty catalog yields zero values rather than an error.
func (s *Store) Stats(ctx context.Context) (*core.CatalogStats, error) {
	stats := &core.CatalogStats{}

	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COUNT(DISTINCT artist),
       COUNT(embedding),
       COALESCE(AVG(LENGTH(lyrics)), 0)
FROM songs`)
	if err := row.Scan(&stats.TotalSongs, &stats.TotalArtists, &stats.SongsWithEmbeddings, &stats.AvgLyricsLength); err != nil {
		return nil, s.wrap("catalog stats", err)
	}
	stats.AvgLyricsLength = math.Round(stats.AvgLyricsLength*10) / 10
	if stats.TotalSongs > 0 {
		coverage := float64(stats.SongsWithEmbeddings) / float64(stats.TotalSongs) * 100
		stats.EmbeddingCoverage = math.Round(coverage*100) / 100
	}

	var minYear, maxYear, uniqueYears sql.NullInt64
	row = s.db.QueryRowContext(ctx,
		"SELECT MIN(year), MAX(year), COUNT(DISTINCT year) FROM songs WHERE year IS NOT NULL")
	if err := row.Scan(&minYear, &maxYear, &uniqueYears); err != nil {
		return nil, s.wrap("year stats", err)
	}
	stats.Years = core.YearRange{
		Min:         int(minYear.Int64),
		Max:         int(maxYear.Int64),
		UniqueYears: int(uniqueYears.Int64),
	}

	topArtists, err := s.ListArtists(ctx, topArtistCount)
	if err != nil {
		return nil, err
	}
	stats.TopArtists = topArtists

	return stats, nil
}

// YearCounts returns per-year song counts in ascending year order. Songs
// without a year are excluded.
func (s *Store) YearCounts(ctx context.Context) ([]core.YearCount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT year, COUNT(*) FROM songs WHERE year IS NOT NULL GROUP BY year ORDER BY year ASC")
	if err != nil {
		return nil, s.wrap("year counts", err)
	}
	defer rows.Close()

	var counts []core.YearCount
	for rows.Next() {
		var yc core.YearCount
		if err := rows.Scan(&yc.Year, &yc.Songs); err != nil {
			return nil, s.wrap("scan year count", err)
		}
		counts = append(counts, yc)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("year counts", err)
	}
	return counts, nil
}
