package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/bloom"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// MetadataSidecar is the .meta.json file written next to every partition.
// It carries enough statistics for downstream consumers to prune
// partitions without opening them.
type MetadataSidecar struct {
	PartitionID  string                      `json:"partition_id"`
	Year         string                      `json:"year"`
	Month        string                      `json:"month"`
	Day          string                      `json:"day"`
	Stats        PartitionStats              `json:"stats"`
	BloomFilters map[string]*BloomFilterMeta `json:"bloom_filters"`
	CreatedAt    int64                       `json:"created_at"`
}

// PartitionStats holds partition-level statistics.
type PartitionStats struct {
	RowCount     int64   `json:"row_count"`
	SizeBytes    int64   `json:"size_bytes"`
	MinTimestamp *string `json:"min_timestamp,omitempty"`
	MaxTimestamp *string `json:"max_timestamp,omitempty"`
	MinUserID    *string `json:"min_user_id,omitempty"`
	MaxUserID    *string `json:"max_user_id,omitempty"`
}

// BloomFilterMeta holds one serialized bloom filter.
type BloomFilterMeta struct {
	Algorithm  string `json:"algorithm"`
	NumBits    int    `json:"num_bits"`
	NumHashes  int    `json:"num_hashes"`
	Count      uint64 `json:"count"`
	Base64Data string `json:"base64_data"`
}

// MetadataGenerator generates metadata sidecars for partitions.
type MetadataGenerator struct {
	targetFPR float64
}

// NewMetadataGenerator creates a metadata generator with a 1% bloom filter
// false positive rate.
func NewMetadataGenerator() *MetadataGenerator {
	return &MetadataGenerator{targetFPR: 0.01}
}

// Generate creates a metadata sidecar for the given partition and its rows.
func (g *MetadataGenerator) Generate(info *PartitionInfo, rows []types.SequencedEvent) (*MetadataSidecar, error) {
	filters, err := g.buildBloomFilters(rows)
	if err != nil {
		return nil, fmt.Errorf("writer: failed to build bloom filters: %w", err)
	}

	return &MetadataSidecar{
		PartitionID: info.PartitionID,
		Year:        info.Key.Year,
		Month:       info.Key.Month,
		Day:         info.Key.Day,
		Stats: PartitionStats{
			RowCount:     info.RowCount,
			SizeBytes:    info.SizeBytes,
			MinTimestamp: info.Stats.MinTimestamp(),
			MaxTimestamp: info.Stats.MaxTimestamp(),
			MinUserID:    info.Stats.MinUserID(),
			MaxUserID:    info.Stats.MaxUserID(),
		},
		BloomFilters: filters,
		CreatedAt:    info.CreatedAt.Unix(),
	}, nil
}

// buildBloomFilters creates filters for the user_id and session_id
// columns. Null session IDs contribute nothing to the session filter.
func (g *MetadataGenerator) buildBloomFilters(rows []types.SequencedEvent) (map[string]*BloomFilterMeta, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	userFilter := bloom.NewWithEstimates(len(rows), g.targetFPR)
	sessionFilter := bloom.NewWithEstimates(len(rows), g.targetFPR)
	for _, row := range rows {
		userFilter.AddString(row.UserID)
		if row.SessionID != nil {
			sessionFilter.AddString(*row.SessionID)
		}
	}

	filters := make(map[string]*BloomFilterMeta)
	userMeta, err := serializeFilter(userFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize user_id bloom filter: %w", err)
	}
	filters["user_id"] = userMeta

	sessionMeta, err := serializeFilter(sessionFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize session_id bloom filter: %w", err)
	}
	filters["session_id"] = sessionMeta

	return filters, nil
}

func serializeFilter(f *bloom.Filter) (*BloomFilterMeta, error) {
	base64Data, err := f.SerializeToBase64()
	if err != nil {
		return nil, err
	}

	return &BloomFilterMeta{
		Algorithm:  "murmur3_128",
		NumBits:    f.NumBits(),
		NumHashes:  f.NumHashes(),
		Count:      f.Count(),
		Base64Data: base64Data,
	}, nil
}

// Filter reconstructs the bloom filter embedded in the metadata.
func (m *BloomFilterMeta) Filter() (*bloom.Filter, error) {
	return bloom.DeserializeFromBase64(m.Base64Data)
}

// WriteToFile writes the metadata sidecar to a JSON file.
func (s *MetadataSidecar) WriteToFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("writer: failed to marshal sidecar: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writer: failed to write sidecar file: %w", err)
	}

	return nil
}

// ReadMetadataFromFile reads a metadata sidecar from a JSON file.
func ReadMetadataFromFile(path string) (*MetadataSidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("writer: failed to read sidecar file: %w", err)
	}

	var sidecar MetadataSidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return nil, fmt.Errorf("writer: failed to unmarshal sidecar: %w", err)
	}

	return &sidecar, nil
}

// MetadataPath returns the sidecar path for a given SQLite path.
func MetadataPath(sqlitePath string) string {
	dir := filepath.Dir(sqlitePath)
	base := filepath.Base(sqlitePath)
	name := base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(dir, name+".meta.json")
}
