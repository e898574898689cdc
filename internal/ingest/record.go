package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yasminekh/trendgate/internal/blobstore"
	"github.com/yasminekh/trendgate/internal/tagger"
)

// MetaPrefix is where metadata records live in the blob store. One JSON
// document per ingested report, keyed by content hash.
const MetaPrefix = "trend-library/meta/"

// ErrRecordNotFound is returned when no metadata record exists for a hash.
var ErrRecordNotFound = errors.New("record not found")

// Record describes one unique ingested document. Records are written once at
// ingestion and never mutated; tags are fixed at creation.
type Record struct {
	Hash           string      `json:"hash"`
	Filename       string      `json:"filename"`
	Pathname       string      `json:"pathname,omitempty"`
	StorageKey     string      `json:"storageKey,omitempty"`
	BlobURL        string      `json:"blobUrl,omitempty"`
	Size           int64       `json:"size"`
	Pages          int         `json:"pages,omitempty"`
	AddedAt        time.Time   `json:"addedAt"`
	Tags           tagger.Tags `json:"tags"`
	IndexFileID    string      `json:"vsFileId,omitempty"`
	ExternalFileID string      `json:"openaiFileId,omitempty"`
}

// MetaStore persists metadata records as JSON documents at content-addressed
// blob paths. The Put of a record is the publication point: only after it
// completes is the document "known" for duplicate detection.
type MetaStore struct {
	blobs blobstore.Store
}

// NewMetaStore creates a MetaStore over the given blob store.
func NewMetaStore(blobs blobstore.Store) *MetaStore {
	return &MetaStore{blobs: blobs}
}

// Key returns the blob key for a hash.
func (m *MetaStore) Key(hash string) string {
	return MetaPrefix + hash + ".json"
}

// Exists reports whether a record for the hash has been published.
func (m *MetaStore) Exists(ctx context.Context, hash string) (bool, error) {
	objects, err := m.blobs.List(ctx, m.Key(hash))
	if err != nil {
		return false, fmt.Errorf("checking for record %s: %w", hash, err)
	}
	return len(objects) > 0, nil
}

// Get loads the record for a hash.
func (m *MetaStore) Get(ctx context.Context, hash string) (*Record, error) {
	data, err := m.blobs.Get(ctx, m.Key(hash))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading record %s: %w", hash, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", hash, err)
	}
	return &rec, nil
}

// Put publishes the record.
func (m *MetaStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.Hash, err)
	}
	if err := m.blobs.Put(ctx, m.Key(rec.Hash), data, "application/json"); err != nil {
		return fmt.Errorf("storing record %s: %w", rec.Hash, err)
	}
	return nil
}

// Delete removes the record.
func (m *MetaStore) Delete(ctx context.Context, hash string) error {
	if err := m.blobs.Delete(ctx, m.Key(hash)); err != nil {
		return fmt.Errorf("deleting record %s: %w", hash, err)
	}
	return nil
}

// List returns every record, newest first. Records that fail to decode are
// skipped rather than failing the whole listing.
func (m *MetaStore) List(ctx context.Context) ([]Record, error) {
	objects, err := m.blobs.List(ctx, MetaPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	records := make([]Record, 0, len(objects))
	for _, obj := range objects {
		data, err := m.blobs.Get(ctx, obj.Key)
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].AddedAt.After(records[j].AddedAt)
	})
	return records, nil
}
