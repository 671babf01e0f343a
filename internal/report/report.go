// Package report accumulates run diagnostics through the pipeline and
// renders them once at the end, keeping reporting out of the transform
// stages themselves. Counts are always reported, explicitly zero when a
// run had no corrupt or invalid records.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/validate"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// EventTypeCount is one histogram bucket.
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int    `json:"count"`
}

// PartitionSummary describes one written partition in the summary.
type PartitionSummary struct {
	PartitionID string `json:"partition_id"`
	ObjectPath  string `json:"object_path"`
	RowCount    int64  `json:"row_count"`
}

// RunReport is the structured diagnostics object for one pipeline run.
type RunReport struct {
	mu sync.Mutex

	JobName    string    `json:"job_name"`
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	ObjectsRead    int `json:"objects_read"`
	TotalRecords   int `json:"total_records"`
	CorruptRecords int `json:"corrupt_records"`
	ValidRecords   int `json:"valid_records"`

	// NullFieldCounts lists, in check order, how many rows each
	// required-field check dropped.
	NullFieldCounts []validate.FieldNullCount `json:"null_field_counts"`

	OutputRows       int `json:"output_rows"`
	DistinctUsers    int `json:"distinct_users"`
	DistinctSessions int `json:"distinct_sessions"`

	EventTypes []EventTypeCount `json:"event_types"`

	Partitions       []PartitionSummary `json:"partitions"`
	QuarantineObject string             `json:"quarantine_object,omitempty"`
	CatalogObject    string             `json:"catalog_object,omitempty"`
}

// New creates a report for one run.
func New(jobName, runID string) *RunReport {
	return &RunReport{
		JobName:   jobName,
		RunID:     runID,
		StartedAt: time.Now(),
	}
}

// RecordRead records the schema reader outcome. Total records is the sum
// of parsed and corrupt records, so corrupt + valid-parse always equals
// the input record count.
func (r *RunReport) RecordRead(objects, parsed, corrupt int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ObjectsRead = objects
	r.TotalRecords = parsed + corrupt
	r.CorruptRecords = corrupt
}

// RecordValidation records the validator outcome.
func (r *RunReport) RecordValidation(counts []validate.FieldNullCount, surviving int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.NullFieldCounts = counts
	r.ValidRecords = surviving
}

// RecordOutput computes the summary aggregates over the final output set:
// total rows, distinct users, distinct sessions (null session IDs do not
// join the distinct set) and the event-type histogram.
func (r *RunReport) RecordOutput(events []types.SequencedEvent) {
	users := make(map[string]struct{})
	sessions := make(map[string]struct{})
	histogram := make(map[string]int)
	for _, ev := range events {
		users[ev.UserID] = struct{}{}
		if ev.SessionID != nil {
			sessions[*ev.SessionID] = struct{}{}
		}
		histogram[ev.EventType]++
	}

	eventTypes := make([]EventTypeCount, 0, len(histogram))
	for et, n := range histogram {
		eventTypes = append(eventTypes, EventTypeCount{EventType: et, Count: n})
	}
	sort.Slice(eventTypes, func(i, j int) bool {
		if eventTypes[i].Count != eventTypes[j].Count {
			return eventTypes[i].Count > eventTypes[j].Count
		}
		return eventTypes[i].EventType < eventTypes[j].EventType
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.OutputRows = len(events)
	r.DistinctUsers = len(users)
	r.DistinctSessions = len(sessions)
	r.EventTypes = eventTypes
}

// RecordPartition records one written partition.
func (r *RunReport) RecordPartition(partitionID, objectPath string, rowCount int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Partitions = append(r.Partitions, PartitionSummary{
		PartitionID: partitionID,
		ObjectPath:  objectPath,
		RowCount:    rowCount,
	})
}

// SetQuarantineObject records the quarantine object path, if any.
func (r *RunReport) SetQuarantineObject(objectPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.QuarantineObject = objectPath
}

// SetCatalogObject records the uploaded catalog manifest path.
func (r *RunReport) SetCatalogObject(objectPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CatalogObject = objectPath
}

// Finish stamps the completion time.
func (r *RunReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now()
}

// JSON renders the report as one JSON document.
func (r *RunReport) JSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.MarshalIndent(r, "", "  ")
}

// String renders the operator-facing summary.
func (r *RunReport) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	bar := strings.Repeat("=", 60)

	fmt.Fprintln(&sb, bar)
	fmt.Fprintln(&sb, "TRANSFORMATION SUMMARY")
	fmt.Fprintln(&sb, bar)
	fmt.Fprintf(&sb, "Job:                 %s (run %s)\n", r.JobName, r.RunID)
	fmt.Fprintf(&sb, "Source objects read: %d\n", r.ObjectsRead)
	fmt.Fprintf(&sb, "Total records read:  %d\n", r.TotalRecords)
	fmt.Fprintf(&sb, "Corrupt records:     %d\n", r.CorruptRecords)
	for _, c := range r.NullFieldCounts {
		fmt.Fprintf(&sb, "Dropped (null %s): %d\n", c.Field, c.Dropped)
	}
	fmt.Fprintf(&sb, "Valid records:       %d\n", r.ValidRecords)
	fmt.Fprintf(&sb, "Rows written:        %d\n", r.OutputRows)
	fmt.Fprintf(&sb, "Distinct users:      %d\n", r.DistinctUsers)
	fmt.Fprintf(&sb, "Distinct sessions:   %d\n", r.DistinctSessions)

	fmt.Fprintln(&sb, "\nEvent type distribution:")
	if len(r.EventTypes) == 0 {
		fmt.Fprintln(&sb, "  (none)")
	}
	for _, et := range r.EventTypes {
		fmt.Fprintf(&sb, "  %s: %d\n", et.EventType, et.Count)
	}

	fmt.Fprintln(&sb, "\nPartitions written:")
	if len(r.Partitions) == 0 {
		fmt.Fprintln(&sb, "  (none)")
	}
	for _, p := range r.Partitions {
		fmt.Fprintf(&sb, "  %s (%d rows) -> %s\n", p.PartitionID, p.RowCount, p.ObjectPath)
	}

	if r.QuarantineObject != "" {
		fmt.Fprintf(&sb, "\nQuarantine object: %s\n", r.QuarantineObject)
	} else {
		fmt.Fprintln(&sb, "\nQuarantine object: none (no corrupt records)")
	}
	if r.CatalogObject != "" {
		fmt.Fprintf(&sb, "Catalog manifest:  %s\n", r.CatalogObject)
	}

	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&sb, "Elapsed:           %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintln(&sb, bar)

	return sb.String()
}
