package writer

import (
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// StatsTracker tracks min/max statistics for pruning columns during a
// partition build. Timestamps compare lexicographically, which matches
// chronological order for well-formed values.
type StatsTracker struct {
	rowCount int64

	minTimestamp *string
	maxTimestamp *string

	minUserID *string
	maxUserID *string
}

// NewStatsTracker creates a new statistics tracker.
func NewStatsTracker() *StatsTracker {
	return &StatsTracker{}
}

// Update folds one row into the statistics.
func (s *StatsTracker) Update(row types.SequencedEvent) {
	s.rowCount++

	if s.minTimestamp == nil || row.Timestamp < *s.minTimestamp {
		ts := row.Timestamp
		s.minTimestamp = &ts
	}
	if s.maxTimestamp == nil || row.Timestamp > *s.maxTimestamp {
		ts := row.Timestamp
		s.maxTimestamp = &ts
	}

	if s.minUserID == nil || row.UserID < *s.minUserID {
		uid := row.UserID
		s.minUserID = &uid
	}
	if s.maxUserID == nil || row.UserID > *s.maxUserID {
		uid := row.UserID
		s.maxUserID = &uid
	}
}

// RowCount returns the number of rows tracked.
func (s *StatsTracker) RowCount() int64 { return s.rowCount }

// MinTimestamp returns the minimum event timestamp.
func (s *StatsTracker) MinTimestamp() *string { return s.minTimestamp }

// MaxTimestamp returns the maximum event timestamp.
func (s *StatsTracker) MaxTimestamp() *string { return s.maxTimestamp }

// MinUserID returns the minimum user_id value.
func (s *StatsTracker) MinUserID() *string { return s.minUserID }

// MaxUserID returns the maximum user_id value.
func (s *StatsTracker) MaxUserID() *string { return s.maxUserID }
