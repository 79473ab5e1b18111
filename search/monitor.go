package search

import (
	"log/slog"
	"time"

	"github.com/poiesic/lyricseeker/core"
)

// Stage identifies the pipeline phase a monitor callback refers to.
type Stage string

const (
	// StageEmbed is the query embedding phase.
	StageEmbed Stage = "embed"

	// StageFetch is the nearest-neighbor store query phase.
	StageFetch Stage = "fetch"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	QueryReceived(query string)
	QueryEmbedded(dimensions int, elapsed time.Duration)
	CandidatesFetched(count int, elapsed time.Duration)
	SearchCompleted(results []core.SearchResult, elapsed time.Duration)
	SearchFailed(stage Stage, err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) QueryReceived(_ string)                                 {}
func (n *noopMonitor) QueryEmbedded(_ int, _ time.Duration)                   {}
func (n *noopMonitor) CandidatesFetched(_ int, _ time.Duration)               {}
func (n *noopMonitor) SearchCompleted(_ []core.SearchResult, _ time.Duration) {}
func (n *noopMonitor) SearchFailed(_ Stage, _ error)                          {}

// LogMonitor logs each search stage through slog. Stage events log at
// debug level, failures at warn.
type LogMonitor struct {
	logger *slog.Logger
}

var _ SearchMonitor = (*LogMonitor)(nil)

// NewLogMonitor creates a monitor that logs to the given logger, or
// slog.Default() when nil.
func NewLogMonitor(logger *slog.Logger) *LogMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMonitor{logger: logger}
}

func (m *LogMonitor) QueryReceived(query string) {
	m.logger.Debug("search started", "query", query)
}

func (m *LogMonitor) QueryEmbedded(dimensions int, elapsed time.Duration) {
	m.logger.Debug("query embedded", "dimensions", dimensions, "elapsed", elapsed)
}

func (m *LogMonitor) CandidatesFetched(count int, elapsed time.Duration) {
	m.logger.Debug("candidates fetched", "count", count, "elapsed", elapsed)
}

func (m *LogMonitor) SearchCompleted(results []core.SearchResult, elapsed time.Duration) {
	m.logger.Debug("search completed", "results", len(results), "elapsed", elapsed)
}

func (m *LogMonitor) SearchFailed(stage Stage, err error) {
	m.logger.Warn("search failed", "stage", string(stage), "err", err)
}
