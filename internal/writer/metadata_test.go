package writer

import (
	"context"
	"os"
	"testing"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

func TestMetadataGenerator_Generate(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "writer-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	rows := []types.SequencedEvent{
		sequencedRow("e1", "u1", "s1", "2024-03-15T10:30:00Z", 1),
		sequencedRow("e2", "u2", "s2", "2024-03-15T10:31:00Z", 1),
		sequencedRow("e3", "u3", "", "2024-03-15T10:32:00Z", 1),
	}
	key := DateKey{Year: "2024", Month: "03", Day: "15"}

	info, err := NewBuilder(tmpDir).Build(context.Background(), rows, key)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	sidecar, err := NewMetadataGenerator().Generate(info, rows)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if sidecar.PartitionID != info.PartitionID {
		t.Errorf("expected partition ID %s, got %s", info.PartitionID, sidecar.PartitionID)
	}
	if sidecar.Year != "2024" || sidecar.Month != "03" || sidecar.Day != "15" {
		t.Errorf("expected date 2024-03-15, got %s-%s-%s", sidecar.Year, sidecar.Month, sidecar.Day)
	}
	if sidecar.Stats.RowCount != 3 {
		t.Errorf("expected row count 3, got %d", sidecar.Stats.RowCount)
	}
	if sidecar.Stats.MinTimestamp == nil || *sidecar.Stats.MinTimestamp != "2024-03-15T10:30:00Z" {
		t.Errorf("expected min timestamp 10:30, got %v", sidecar.Stats.MinTimestamp)
	}

	// user_id filter matches every written user; session filter skips nulls.
	userFilter, err := sidecar.BloomFilters["user_id"].Filter()
	if err != nil {
		t.Fatalf("failed to deserialize user filter: %v", err)
	}
	for _, u := range []string{"u1", "u2", "u3"} {
		if !userFilter.ContainsString(u) {
			t.Errorf("expected user filter to contain %s", u)
		}
	}

	sessionFilter, err := sidecar.BloomFilters["session_id"].Filter()
	if err != nil {
		t.Fatalf("failed to deserialize session filter: %v", err)
	}
	if !sessionFilter.ContainsString("s1") || !sessionFilter.ContainsString("s2") {
		t.Error("expected session filter to contain s1 and s2")
	}
	if sessionFilter.Count() != 2 {
		t.Errorf("expected 2 session entries (nulls skipped), got %d", sessionFilter.Count())
	}
}

func TestMetadataSidecar_FileRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "writer-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	rows := []types.SequencedEvent{sequencedRow("e1", "u1", "s1", "2024-03-15T10:30:00Z", 1)}
	info, err := NewBuilder(tmpDir).Build(context.Background(), rows, DateKey{Year: "2024", Month: "03", Day: "15"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	sidecar, err := NewMetadataGenerator().Generate(info, rows)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	metaPath := MetadataPath(info.SQLitePath)
	if err := sidecar.WriteToFile(metaPath); err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}

	loaded, err := ReadMetadataFromFile(metaPath)
	if err != nil {
		t.Fatalf("ReadMetadataFromFile failed: %v", err)
	}
	if loaded.PartitionID != sidecar.PartitionID {
		t.Errorf("expected partition ID %s, got %s", sidecar.PartitionID, loaded.PartitionID)
	}

	filter, err := loaded.BloomFilters["user_id"].Filter()
	if err != nil {
		t.Fatalf("failed to deserialize filter after round trip: %v", err)
	}
	if !filter.ContainsString("u1") {
		t.Error("expected reloaded filter to contain u1")
	}
}

func TestMetadataPath(t *testing.T) {
	got := MetadataPath("/tmp/parts/clickstream:20240315:abcd1234.sqlite")
	want := "/tmp/parts/clickstream:20240315:abcd1234.meta.json"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
