// Package session implements the session sequencer stage: per-session
// event ordering and session-start markers.
package session

import (
	"sort"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// Sequencer assigns event_sequence and is_session_start.
type Sequencer struct{}

// New creates a Sequencer.
func New() *Sequencer {
	return &Sequencer{}
}

// Sequence partitions events by session_id, orders each partition by
// timestamp ascending (lexicographic order on well-formed ISO-8601
// strings is chronological), and assigns 1-based ranks. The sort is
// stable, so equal timestamps keep their ingestion order; that is the
// deterministic tie-break, making reruns on identical input reproduce
// identical output. Events with a null session_id each form their own
// single-row partition and rank 1.
//
// Output preserves the overall ingestion order of the input.
func (s *Sequencer) Sequence(events []types.EnrichedEvent) []types.SequencedEvent {
	out := make([]types.SequencedEvent, len(events))
	for i, ev := range events {
		out[i] = types.SequencedEvent{EnrichedEvent: ev}
	}

	// Group row indexes by session key; nil sessions are not grouped.
	groups := make(map[string][]int)
	for i, ev := range events {
		if ev.SessionID == nil {
			out[i].EventSequence = 1
			out[i].IsSessionStart = true
			continue
		}
		groups[*ev.SessionID] = append(groups[*ev.SessionID], i)
	}

	for _, idxs := range groups {
		// idxs is in ingestion order; a stable sort by timestamp keeps
		// that order for ties.
		sort.SliceStable(idxs, func(a, b int) bool {
			return events[idxs[a]].Timestamp < events[idxs[b]].Timestamp
		})
		for rank, i := range idxs {
			out[i].EventSequence = rank + 1
			out[i].IsSessionStart = rank == 0
		}
	}

	return out
}
