package writer

import (
	"context"
	"fmt"
	"path"
	"sort"

	pperrors "github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/errors"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/storage"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// Writer groups sequenced events by date, builds one SQLite partition per
// group, and uploads partition plus sidecar to the target prefix. Write
// mode is append: every run uploads uniquely named objects, and nothing
// existing is overwritten or deduped. Rerunning over overlapping input
// therefore duplicates rows, a documented property of this stage.
type Writer struct {
	builder      *Builder
	metaGen      *MetadataGenerator
	store        storage.ObjectStorage
	targetPrefix string
}

// PartitionResult describes one uploaded partition.
type PartitionResult struct {
	Info           *PartitionInfo
	ObjectPath     string
	MetaObjectPath string
}

// New creates a Writer.
func New(builder *Builder, metaGen *MetadataGenerator, store storage.ObjectStorage, targetPrefix string) *Writer {
	return &Writer{
		builder:      builder,
		metaGen:      metaGen,
		store:        store,
		targetPrefix: targetPrefix,
	}
}

// Write persists the full sequenced set. Partitions are built and
// uploaded in ascending date-key order so reruns produce the same upload
// sequence. An upload failure aborts the run; partitions already uploaded
// stay in place (append-only, no rollback).
func (w *Writer) Write(ctx context.Context, events []types.SequencedEvent) ([]PartitionResult, error) {
	groups := make(map[DateKey][]types.SequencedEvent)
	for _, ev := range events {
		key := KeyFor(ev.EnrichedEvent)
		groups[key] = append(groups[key], ev)
	}

	keys := make([]DateKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Value() < keys[j].Value() })

	results := make([]PartitionResult, 0, len(keys))
	for _, key := range keys {
		result, err := w.writePartition(ctx, groups[key], key)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	return results, nil
}

func (w *Writer) writePartition(ctx context.Context, rows []types.SequencedEvent, key DateKey) (*PartitionResult, error) {
	info, err := w.builder.Build(ctx, rows, key)
	if err != nil {
		return nil, pperrors.NewWriterError(pperrors.CodePartitionBuildFailed,
			fmt.Sprintf("failed to build partition for %s", key.Path()), err)
	}

	sidecar, err := w.metaGen.Generate(info, rows)
	if err != nil {
		return nil, pperrors.NewWriterError(pperrors.CodePartitionBuildFailed,
			fmt.Sprintf("failed to generate metadata for %s", info.PartitionID), err)
	}

	metaPath := MetadataPath(info.SQLitePath)
	if err := sidecar.WriteToFile(metaPath); err != nil {
		return nil, pperrors.NewWriterError(pperrors.CodePartitionBuildFailed,
			fmt.Sprintf("failed to write metadata for %s", info.PartitionID), err)
	}

	objectPath := path.Join(w.targetPrefix, key.Path(), path.Base(info.SQLitePath))
	if err := w.store.UploadMultipart(ctx, info.SQLitePath, objectPath); err != nil {
		return nil, pperrors.NewStorageError(pperrors.CodeUploadFailed,
			fmt.Sprintf("failed to upload partition %s", info.PartitionID), err)
	}

	metaObjectPath := path.Join(w.targetPrefix, key.Path(), path.Base(metaPath))
	if err := w.store.Upload(ctx, metaPath, metaObjectPath); err != nil {
		return nil, pperrors.NewStorageError(pperrors.CodeUploadFailed,
			fmt.Sprintf("failed to upload metadata for %s", info.PartitionID), err)
	}

	return &PartitionResult{
		Info:           info,
		ObjectPath:     objectPath,
		MetaObjectPath: metaObjectPath,
	}, nil
}
