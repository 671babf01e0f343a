// Package job composes the five pipeline stages into one batch run:
// read, validate, enrich, sequence, write. Data flows strictly forward;
// each stage consumes the previous stage's immutable output set.
package job

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/catalog"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/config"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/enrich"
	pperrors "github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/errors"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/quarantine"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/reader"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/report"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/session"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/storage"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/validate"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/writer"
)

// Job is one configured transform run.
type Job struct {
	cfg    *config.Config
	source storage.ObjectStorage
	target storage.ObjectStorage
}

// New creates a Job, opening storage for the source and target buckets
// per the configuration.
func New(ctx context.Context, cfg *config.Config) (*Job, error) {
	source, err := openStorage(ctx, cfg, cfg.SourceBucket)
	if err != nil {
		return nil, err
	}
	target, err := openStorage(ctx, cfg, cfg.TargetBucket)
	if err != nil {
		return nil, err
	}
	return NewWithStorage(cfg, source, target), nil
}

// NewWithStorage creates a Job over pre-opened storage. Used by tests and
// callers that manage storage clients themselves.
func NewWithStorage(cfg *config.Config, source, target storage.ObjectStorage) *Job {
	return &Job{cfg: cfg, source: source, target: target}
}

func openStorage(ctx context.Context, cfg *config.Config, bucket string) (storage.ObjectStorage, error) {
	switch cfg.Storage.Type {
	case "s3":
		s3cfg := storage.DefaultS3Config()
		s3cfg.Region = cfg.Storage.S3.Region
		s3cfg.Endpoint = cfg.Storage.S3.Endpoint
		s3cfg.UsePathStyle = cfg.Storage.S3.UsePathStyle
		store, err := storage.NewS3Storage(ctx, bucket, s3cfg)
		if err != nil {
			return nil, pperrors.NewStorageError(pperrors.CodeUploadFailed,
				fmt.Sprintf("failed to open S3 bucket %s", bucket), err)
		}
		return store, nil
	default:
		store, err := storage.NewLocalStorage(filepath.Join(cfg.Storage.Path, bucket))
		if err != nil {
			return nil, pperrors.NewStorageError(pperrors.CodeUploadFailed,
				fmt.Sprintf("failed to open local bucket %s", bucket), err)
		}
		return store, nil
	}
}

// Run executes the batch. Per-record problems (corrupt input, validation
// drops, unparseable timestamps) are recovered locally and surface only
// in the report; a non-nil error means a resource-level failure aborted
// the run. The returned report is complete on success.
func (j *Job) Run(ctx context.Context) (*report.RunReport, error) {
	runID := uuid.New().String()[:8]
	rep := report.New(j.cfg.JobName, runID)

	log.Printf("Starting transformation job %s (run %s)", j.cfg.JobName, runID)
	log.Printf("Source: %s/%s", j.cfg.SourceBucket, j.cfg.SourcePrefix)
	log.Printf("Target: %s/%s", j.cfg.TargetBucket, j.cfg.TargetPrefix)

	// Stage 1: schema reader
	rd := reader.New(j.source, j.cfg.SourcePrefix, j.cfg.DownloadDir())
	readResult, err := rd.Read(ctx)
	if err != nil {
		return nil, err
	}
	rep.RecordRead(readResult.ObjectCount, len(readResult.Events), len(readResult.Corrupt))
	log.Printf("Read %d records from %d objects (%d corrupt)",
		len(readResult.Events)+len(readResult.Corrupt), readResult.ObjectCount, len(readResult.Corrupt))

	// Corrupt rows leave the flow here, preserved for analysis.
	sink := quarantine.New(j.source, j.cfg.QuarantinePrefix, j.cfg.WorkDir)
	quarantinePath, err := sink.Write(ctx, runID, readResult.Corrupt)
	if err != nil {
		return nil, err
	}
	rep.SetQuarantineObject(quarantinePath)

	// Stage 2: validator
	valid, nullCounts := validate.New().Apply(readResult.Events)
	rep.RecordValidation(nullCounts, len(valid))
	for _, c := range nullCounts {
		if c.Dropped > 0 {
			log.Printf("Warning: %d records have null %s", c.Dropped, c.Field)
		}
	}
	log.Printf("Valid records after filtering: %d", len(valid))

	// Stage 3: enricher
	enriched := enrich.New(time.Now()).EnrichAll(valid)

	// Stage 4: session sequencer
	sequenced := session.New().Sequence(enriched)

	// Stage 5: writer and reporter
	builder := writer.NewBuilder(j.cfg.PartitionDir())
	w := writer.New(builder, writer.NewMetadataGenerator(), j.target, j.cfg.TargetPrefix)
	partitions, err := w.Write(ctx, sequenced)
	if err != nil {
		return nil, err
	}
	for _, p := range partitions {
		rep.RecordPartition(p.Info.PartitionID, p.ObjectPath, p.Info.RowCount)
		log.Printf("Wrote partition %s (%d rows)", p.Info.PartitionID, p.Info.RowCount)
	}
	rep.RecordOutput(sequenced)

	if err := j.registerPartitions(ctx, partitions, rep); err != nil {
		return nil, err
	}

	rep.Finish()
	return rep, nil
}

// registerPartitions records the run's partitions in the catalog manifest
// and uploads the manifest next to the dataset for the external crawler.
func (j *Job) registerPartitions(ctx context.Context, partitions []writer.PartitionResult, rep *report.RunReport) error {
	if len(partitions) == 0 {
		return nil
	}

	cat, err := catalog.NewCatalog(j.cfg.CatalogPath())
	if err != nil {
		return pperrors.NewCatalogError(pperrors.CodeRegisterFailed, "failed to open catalog manifest", err)
	}

	for _, p := range partitions {
		if err := cat.RegisterPartition(ctx, p.Info, p.ObjectPath); err != nil {
			cat.Close()
			return pperrors.NewCatalogError(pperrors.CodeRegisterFailed,
				fmt.Sprintf("failed to register partition %s", p.Info.PartitionID), err)
		}
	}

	if err := cat.Close(); err != nil {
		return pperrors.NewCatalogError(pperrors.CodeRegisterFailed, "failed to close catalog manifest", err)
	}

	catalogObject := path.Join(j.cfg.TargetPrefix, "_catalog", j.cfg.DatabaseName+".db")
	if err := j.target.Upload(ctx, j.cfg.CatalogPath(), catalogObject); err != nil {
		return pperrors.NewStorageError(pperrors.CodeUploadFailed, "failed to upload catalog manifest", err)
	}
	rep.SetCatalogObject(catalogObject)
	log.Printf("Registered %d partitions in catalog %s", len(partitions), j.cfg.DatabaseName)

	return nil
}
