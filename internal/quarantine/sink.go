// Package quarantine persists corrupt input records for later inspection
// instead of discarding them.
package quarantine

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	pperrors "github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/errors"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/storage"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// Sink writes corrupt records to an append-only location in the source
// bucket. Object storage has no append, so append-only here means one
// uniquely named object per run; prior runs' objects are never touched.
type Sink struct {
	store   storage.ObjectStorage
	prefix  string
	workDir string
}

// New creates a quarantine sink under the given prefix.
func New(store storage.ObjectStorage, prefix, workDir string) *Sink {
	return &Sink{store: store, prefix: prefix, workDir: workDir}
}

// Write persists the corrupt records of one run and returns the object
// path. When the batch has no corrupt records no object is written and
// the returned path is empty: the absence still shows up in the run
// summary as an explicit zero.
func (s *Sink) Write(ctx context.Context, runID string, records []types.CorruptRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(s.workDir, 0755); err != nil {
		return "", pperrors.NewStorageError(pperrors.CodeUploadFailed,
			"failed to create quarantine work directory", err)
	}

	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(rec.Raw)
		sb.WriteByte('\n')
	}

	localPath := filepath.Join(s.workDir, fmt.Sprintf("corrupt-%s.txt", runID))
	if err := os.WriteFile(localPath, []byte(sb.String()), 0644); err != nil {
		return "", pperrors.NewStorageError(pperrors.CodeUploadFailed,
			"failed to write quarantine file", err)
	}

	objectPath := path.Join(s.prefix, runID+".txt")
	if err := s.store.Upload(ctx, localPath, objectPath); err != nil {
		return "", pperrors.NewStorageError(pperrors.CodeUploadFailed,
			fmt.Sprintf("failed to upload quarantine object %s", objectPath), err)
	}

	return objectPath, nil
}
