// Package reader implements the schema reader stage: it pulls raw JSON
// documents from the source prefix and produces two disjoint sets, typed
// RawEvents and CorruptRecords. No input text is ever silently dropped.
package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pperrors "github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/errors"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/storage"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// Reader reads raw clickstream events from object storage.
type Reader struct {
	store        storage.ObjectStorage
	sourcePrefix string
	downloadDir  string
}

// Result is the outcome of one read pass over the source prefix.
// len(Events) + len(Corrupt) equals the total record count of the batch.
type Result struct {
	Events  []types.RawEvent
	Corrupt []types.CorruptRecord

	// ObjectCount is the number of source objects read.
	ObjectCount int
}

// New creates a schema reader over the given storage bucket.
func New(store storage.ObjectStorage, sourcePrefix, downloadDir string) *Reader {
	return &Reader{
		store:        store,
		sourcePrefix: sourcePrefix,
		downloadDir:  downloadDir,
	}
}

// Read lists the source prefix, downloads every object, and decodes its
// documents. Listing or download failures are fatal; malformed documents
// are not, they become CorruptRecords.
func (r *Reader) Read(ctx context.Context) (*Result, error) {
	objects, err := r.store.ListObjects(ctx, r.sourcePrefix)
	if err != nil {
		return nil, pperrors.NewReaderError(pperrors.CodeSourceUnavailable,
			fmt.Sprintf("failed to list source prefix %s", r.sourcePrefix), err)
	}

	if err := os.MkdirAll(r.downloadDir, 0755); err != nil {
		return nil, pperrors.NewReaderError(pperrors.CodeSourceUnavailable,
			"failed to create download directory", err)
	}

	result := &Result{}
	for i, objectPath := range objects {
		localPath := filepath.Join(r.downloadDir, fmt.Sprintf("%04d-%s", i, filepath.Base(objectPath)))
		if err := r.store.Download(ctx, objectPath, localPath); err != nil {
			return nil, pperrors.NewStorageError(pperrors.CodeDownloadFailed,
				fmt.Sprintf("failed to download %s", objectPath), err)
		}

		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, pperrors.NewStorageError(pperrors.CodeDownloadFailed,
				fmt.Sprintf("failed to read downloaded object %s", objectPath), err)
		}

		r.decodeObject(objectPath, data, result)
		result.ObjectCount++
	}

	return result, nil
}

// decodeObject splits one object into JSON documents. Documents may be
// newline-delimited or span multiple lines; the decoder consumes them
// sequentially. When a syntax error makes further document boundaries
// unknowable, the undecodable remainder of the object becomes a single
// corrupt record with its text preserved verbatim.
func (r *Reader) decodeObject(objectPath string, data []byte, result *Result) {
	dec := json.NewDecoder(bytes.NewReader(data))

	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if err == io.EOF {
			return
		}
		if err != nil {
			rest := string(data[clampOffset(dec.InputOffset(), len(data)):])
			if strings.TrimSpace(rest) != "" {
				result.Corrupt = append(result.Corrupt, types.CorruptRecord{
					Raw:    strings.TrimSpace(rest),
					Object: objectPath,
				})
			}
			return
		}

		r.decodeDocument(objectPath, raw, result)
	}
}

// decodeDocument turns one well-formed JSON value into events. Objects are
// coerced against the schema; arrays contribute one document per element;
// any other value is corrupt.
func (r *Reader) decodeDocument(objectPath string, raw json.RawMessage, result *Result) {
	switch firstByte(raw) {
	case '{':
		if ev, ok := coerceEvent(raw); ok {
			result.Events = append(result.Events, ev)
		} else {
			result.Corrupt = append(result.Corrupt, types.CorruptRecord{Raw: string(raw), Object: objectPath})
		}
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			result.Corrupt = append(result.Corrupt, types.CorruptRecord{Raw: string(raw), Object: objectPath})
			return
		}
		for _, elem := range elems {
			r.decodeDocument(objectPath, elem, result)
		}
	default:
		// Scalars are valid JSON but can never match the event schema.
		result.Corrupt = append(result.Corrupt, types.CorruptRecord{Raw: string(raw), Object: objectPath})
	}
}

// coerceEvent decodes a JSON object into a RawEvent. Parsing is
// permissive: unknown fields are ignored and type-coercible values are
// coerced (numeric strings to numbers, numbers to strings, integral
// floats to integers). An uncoercible value leaves the field null rather
// than rejecting the record.
func coerceEvent(raw json.RawMessage) (types.RawEvent, bool) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return types.RawEvent{}, false
	}

	return types.RawEvent{
		EventID:         asString(doc["event_id"]),
		UserID:          asString(doc["user_id"]),
		SessionID:       asString(doc["session_id"]),
		EventType:       asString(doc["event_type"]),
		Timestamp:       asString(doc["timestamp"]),
		PageURL:         asString(doc["page_url"]),
		ProductID:       asString(doc["product_id"]),
		ProductName:     asString(doc["product_name"]),
		ProductCategory: asString(doc["product_category"]),
		Price:           asFloat(doc["price"]),
		Quantity:        asInt(doc["quantity"]),
		UserAgent:       asString(doc["user_agent"]),
		IPAddress:       asString(doc["ip_address"]),
		DeviceType:      asString(doc["device_type"]),
		Referrer:        asString(doc["referrer"]),
		AdditionalData:  asString(doc["additional_data"]),
	}, true
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b
	}
	return 0
}

func clampOffset(offset int64, max int) int {
	if offset < 0 {
		return 0
	}
	if offset > int64(max) {
		return max
	}
	return int(offset)
}
