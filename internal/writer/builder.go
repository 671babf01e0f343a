// Package writer persists sequenced events as date-partitioned SQLite
// micro-partitions in object storage, with metadata sidecars for
// partition-pruned reads.
package writer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// DateKey identifies one (year, month, day) output partition. Rows whose
// timestamp failed to parse carry the unknown key: they are retained, not
// dropped, but cannot be date-partitioned.
type DateKey struct {
	Year  string
	Month string
	Day   string
}

// UnknownDateKey is the partition for rows with null derived date fields.
var UnknownDateKey = DateKey{Year: "unknown", Month: "unknown", Day: "unknown"}

// Value returns the compact yyyymmdd form used in partition IDs.
func (k DateKey) Value() string {
	if k == UnknownDateKey {
		return "unknown"
	}
	return k.Year + k.Month + k.Day
}

// Path returns the hive-style partition path fragment. Downstream
// consumers prune reads on it, and it is the only place the year, month
// and day columns live: the partition files themselves do not repeat them.
func (k DateKey) Path() string {
	return fmt.Sprintf("year=%s/month=%s/day=%s", k.Year, k.Month, k.Day)
}

// KeyFor returns the DateKey of one enriched event.
func KeyFor(ev types.EnrichedEvent) DateKey {
	if ev.Year == nil || ev.Month == nil || ev.Day == nil {
		return UnknownDateKey
	}
	return DateKey{
		Year:  fmt.Sprintf("%d", *ev.Year),
		Month: *ev.Month,
		Day:   *ev.Day,
	}
}

// PartitionInfo contains metadata about a built partition file.
type PartitionInfo struct {
	PartitionID string
	Key         DateKey
	SQLitePath  string
	RowCount    int64
	SizeBytes   int64
	Stats       *StatsTracker
	CreatedAt   time.Time
}

// Builder creates SQLite micro-partitions from sequenced events.
type Builder struct {
	outputDir string
}

// NewBuilder creates a partition builder writing scratch files under
// outputDir.
func NewBuilder(outputDir string) *Builder {
	return &Builder{outputDir: outputDir}
}

// Build creates one partition file from rows sharing a date key.
func (b *Builder) Build(ctx context.Context, rows []types.SequencedEvent, key DateKey) (*PartitionInfo, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("writer: cannot build partition with empty rows")
	}

	partitionID := fmt.Sprintf("clickstream:%s:%s", key.Value(), uuid.New().String()[:8])
	createdAt := time.Now()

	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("writer: failed to create output directory: %w", err)
	}

	sqlitePath := filepath.Clean(filepath.Join(b.outputDir, fmt.Sprintf("%s.sqlite", partitionID)))

	db, err := sql.Open("sqlite3", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("writer: failed to create SQLite database: %w", err)
	}
	defer db.Close()

	// WAL during the build, checkpointed to DELETE below so the shipped
	// file is a single immutable object.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("writer: failed to set journal mode: %w", err)
	}

	// year, month and day are not columns: they are encoded in the object
	// path, the same way a partitioned columnar writer drops partition
	// columns from the files.
	createTableSQL := `
		CREATE TABLE clickstream_events (
			event_id            TEXT NOT NULL,
			user_id             TEXT NOT NULL,
			session_id          TEXT,
			event_type          TEXT NOT NULL,
			timestamp           TEXT NOT NULL,
			page_url            TEXT,
			product_id          TEXT,
			product_name        TEXT,
			product_category    TEXT,
			price               REAL,
			quantity            INTEGER,
			device_type         TEXT,
			referrer            TEXT,
			processed_timestamp TEXT NOT NULL,
			event_date          TEXT,
			hour                INTEGER,
			event_category      TEXT NOT NULL,
			has_product_data    INTEGER NOT NULL,
			has_price_data      INTEGER NOT NULL,
			event_sequence      INTEGER NOT NULL,
			is_session_start    INTEGER NOT NULL
		)
	`
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("writer: failed to create events table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX idx_events_session_time ON clickstream_events(session_id, timestamp)",
		"CREATE INDEX idx_events_user_time ON clickstream_events(user_id, timestamp)",
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return nil, fmt.Errorf("writer: failed to create index: %w", err)
		}
	}

	insertSQL := `INSERT INTO clickstream_events (
		event_id, user_id, session_id, event_type, timestamp,
		page_url, product_id, product_name, product_category, price, quantity,
		device_type, referrer,
		processed_timestamp, event_date, hour, event_category,
		has_product_data, has_price_data, event_sequence, is_session_start
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.PrepareContext(ctx, insertSQL)
	if err != nil {
		return nil, fmt.Errorf("writer: failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	stats := NewStatsTracker()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			row.EventID, row.UserID, row.SessionID, row.EventType, row.Timestamp,
			row.PageURL, row.ProductID, row.ProductName, row.ProductCategory, row.Price, row.Quantity,
			row.DeviceType, row.Referrer,
			row.ProcessedTimestamp.UTC().Format(time.RFC3339Nano),
			row.EventDate, row.Hour, string(row.EventCategory),
			boolToInt(row.HasProductData), boolToInt(row.HasPriceData),
			row.EventSequence, boolToInt(row.IsSessionStart),
		); err != nil {
			return nil, fmt.Errorf("writer: failed to insert row: %w", err)
		}

		stats.Update(row)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("writer: failed to checkpoint WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=DELETE"); err != nil {
		return nil, fmt.Errorf("writer: failed to set journal mode to DELETE: %w", err)
	}

	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("writer: failed to close database: %w", err)
	}

	fileInfo, err := os.Stat(sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("writer: failed to stat SQLite file: %w", err)
	}

	return &PartitionInfo{
		PartitionID: partitionID,
		Key:         key,
		SQLitePath:  sqlitePath,
		RowCount:    int64(len(rows)),
		SizeBytes:   fileInfo.Size(),
		Stats:       stats,
		CreatedAt:   createdAt,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
