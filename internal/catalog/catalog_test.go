package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/writer"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

func testPartitionInfo(t *testing.T, tmpDir, user, timestamp string) *writer.PartitionInfo {
	t.Helper()

	ev := types.EnrichedEvent{
		EventID:       "e1",
		UserID:        user,
		EventType:     "purchase",
		Timestamp:     timestamp,
		EventCategory: types.CategoryConversion,
	}
	date := "2024-03-15"
	year := 2024
	month, day := "03", "15"
	ev.EventDate = &date
	ev.Year = &year
	ev.Month = &month
	ev.Day = &day

	rows := []types.SequencedEvent{{EnrichedEvent: ev, EventSequence: 1, IsSessionStart: true}}
	info, err := writer.NewBuilder(tmpDir).Build(context.Background(), rows,
		writer.DateKey{Year: "2024", Month: "03", Day: "15"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return info
}

func newTestCatalog(t *testing.T) (*SQLiteCatalog, string) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "catalog-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	cat, err := NewCatalog(filepath.Join(tmpDir, "manifest.db"))
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	return cat, tmpDir
}

func TestCatalog_RegisterAndGet(t *testing.T) {
	cat, tmpDir := newTestCatalog(t)
	info := testPartitionInfo(t, tmpDir, "u1", "2024-03-15T10:30:00Z")

	objectPath := "transformed/year=2024/month=03/day=15/" + info.PartitionID + ".sqlite"
	if err := cat.RegisterPartition(context.Background(), info, objectPath); err != nil {
		t.Fatalf("RegisterPartition failed: %v", err)
	}

	rec, err := cat.GetPartition(context.Background(), info.PartitionID)
	if err != nil {
		t.Fatalf("GetPartition failed: %v", err)
	}

	if rec.PartitionID != info.PartitionID {
		t.Errorf("expected partition ID %s, got %s", info.PartitionID, rec.PartitionID)
	}
	if rec.Year != "2024" || rec.Month != "03" || rec.Day != "15" {
		t.Errorf("expected date 2024-03-15, got %s-%s-%s", rec.Year, rec.Month, rec.Day)
	}
	if rec.ObjectPath != objectPath {
		t.Errorf("expected object path %s, got %s", objectPath, rec.ObjectPath)
	}
	if rec.RowCount != 1 {
		t.Errorf("expected row count 1, got %d", rec.RowCount)
	}
	if rec.MinTimestamp == nil || *rec.MinTimestamp != "2024-03-15T10:30:00Z" {
		t.Errorf("expected min timestamp, got %v", rec.MinTimestamp)
	}
	if rec.CreatedAt.After(time.Now().Add(time.Minute)) {
		t.Errorf("created_at in the future: %v", rec.CreatedAt)
	}
}

func TestCatalog_GetUnknownPartition(t *testing.T) {
	cat, _ := newTestCatalog(t)

	if _, err := cat.GetPartition(context.Background(), "clickstream:missing:00000000"); err == nil {
		t.Fatal("expected error for unknown partition")
	}
}

func TestCatalog_ListPartitions(t *testing.T) {
	cat, tmpDir := newTestCatalog(t)

	for i, user := range []string{"u1", "u2"} {
		info := testPartitionInfo(t, tmpDir, user, "2024-03-15T10:30:00Z")
		info.CreatedAt = time.Unix(int64(1710500000+i), 0)
		if err := cat.RegisterPartition(context.Background(), info,
			"transformed/"+info.PartitionID+".sqlite"); err != nil {
			t.Fatalf("RegisterPartition failed: %v", err)
		}
	}

	records, err := cat.ListPartitions(context.Background())
	if err != nil {
		t.Fatalf("ListPartitions failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 partitions, got %d", len(records))
	}
	// Newest first.
	if records[0].CreatedAt.Before(records[1].CreatedAt) {
		t.Errorf("expected newest-first ordering, got %v then %v",
			records[0].CreatedAt, records[1].CreatedAt)
	}
}

func TestCatalog_RejectsDuplicateRegistration(t *testing.T) {
	cat, tmpDir := newTestCatalog(t)
	info := testPartitionInfo(t, tmpDir, "u1", "2024-03-15T10:30:00Z")

	if err := cat.RegisterPartition(context.Background(), info, "transformed/a.sqlite"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := cat.RegisterPartition(context.Background(), info, "transformed/b.sqlite"); err == nil {
		t.Fatal("expected duplicate partition ID to be rejected")
	}
}

func TestCatalog_ReopenPreservesRecords(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "catalog-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "manifest.db")
	cat, err := NewCatalog(dbPath)
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}

	info := testPartitionInfo(t, tmpDir, "u1", "2024-03-15T10:30:00Z")
	if err := cat.RegisterPartition(context.Background(), info, "transformed/a.sqlite"); err != nil {
		t.Fatalf("RegisterPartition failed: %v", err)
	}
	if err := cat.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewCatalog(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen catalog: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.ListPartitions(context.Background())
	if err != nil {
		t.Fatalf("ListPartitions failed: %v", err)
	}
	if len(records) != 1 || records[0].PartitionID != info.PartitionID {
		t.Fatalf("expected 1 preserved record, got %d", len(records))
	}
}
