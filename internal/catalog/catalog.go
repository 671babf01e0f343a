// Package catalog maintains the partition manifest for the configured
// database name. The transform registers every partition it writes and
// uploads the manifest next to the dataset; external cataloging and query
// collaborators read it, this job never does.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/writer"
)

// Catalog records written partitions.
type Catalog interface {
	// RegisterPartition adds a newly written partition to the manifest.
	RegisterPartition(ctx context.Context, info *writer.PartitionInfo, objectPath string) error

	// ListPartitions returns all registered partitions, newest first.
	ListPartitions(ctx context.Context) ([]*PartitionRecord, error)

	// GetPartition retrieves a single partition by ID.
	GetPartition(ctx context.Context, partitionID string) (*PartitionRecord, error)

	// Close closes the manifest database.
	Close() error
}

// PartitionRecord represents one partition in the manifest.
type PartitionRecord struct {
	PartitionID  string
	Year         string
	Month        string
	Day          string
	ObjectPath   string
	RowCount     int64
	SizeBytes    int64
	MinTimestamp *string
	MaxTimestamp *string
	CreatedAt    time.Time
}

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db     *sql.DB
	dbPath string
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS partitions (
		partition_id  TEXT PRIMARY KEY,
		year          TEXT NOT NULL,
		month         TEXT NOT NULL,
		day           TEXT NOT NULL,
		object_path   TEXT NOT NULL,
		row_count     INTEGER NOT NULL,
		size_bytes    INTEGER NOT NULL,
		min_timestamp TEXT,
		max_timestamp TEXT,
		created_at    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_partitions_date ON partitions(year, month, day);
`

// NewCatalog opens (or creates) the manifest database at dbPath.
func NewCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: failed to initialize schema: %w", err)
	}

	return &SQLiteCatalog{db: db, dbPath: dbPath}, nil
}

// RegisterPartition adds a newly written partition to the manifest.
func (c *SQLiteCatalog) RegisterPartition(ctx context.Context, info *writer.PartitionInfo, objectPath string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO partitions (
			partition_id, year, month, day, object_path,
			row_count, size_bytes, min_timestamp, max_timestamp, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.PartitionID, info.Key.Year, info.Key.Month, info.Key.Day, objectPath,
		info.RowCount, info.SizeBytes, info.Stats.MinTimestamp(), info.Stats.MaxTimestamp(),
		info.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("catalog: failed to register partition %s: %w", info.PartitionID, err)
	}
	return nil
}

// ListPartitions returns all registered partitions, newest first.
func (c *SQLiteCatalog) ListPartitions(ctx context.Context) ([]*PartitionRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT partition_id, year, month, day, object_path,
		       row_count, size_bytes, min_timestamp, max_timestamp, created_at
		FROM partitions
		ORDER BY created_at DESC, partition_id`)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to list partitions: %w", err)
	}
	defer rows.Close()

	var records []*PartitionRecord
	for rows.Next() {
		rec, err := scanPartition(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: failed to iterate partitions: %w", err)
	}

	return records, nil
}

// GetPartition retrieves a single partition by ID. Returns sql.ErrNoRows
// wrapped when the partition is unknown.
func (c *SQLiteCatalog) GetPartition(ctx context.Context, partitionID string) (*PartitionRecord, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT partition_id, year, month, day, object_path,
		       row_count, size_bytes, min_timestamp, max_timestamp, created_at
		FROM partitions
		WHERE partition_id = ?`, partitionID)

	rec, err := scanPartition(row)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to get partition %s: %w", partitionID, err)
	}
	return rec, nil
}

// Close closes the manifest database.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// Path returns the filesystem path of the manifest database.
func (c *SQLiteCatalog) Path() string {
	return c.dbPath
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPartition(s scanner) (*PartitionRecord, error) {
	var rec PartitionRecord
	var createdAt int64
	if err := s.Scan(
		&rec.PartitionID, &rec.Year, &rec.Month, &rec.Day, &rec.ObjectPath,
		&rec.RowCount, &rec.SizeBytes, &rec.MinTimestamp, &rec.MaxTimestamp, &createdAt,
	); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}
