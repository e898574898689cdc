package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/yasminekh/trendgate/internal/blobstore"
	"github.com/yasminekh/trendgate/internal/retrieval"
	"github.com/yasminekh/trendgate/internal/tagger"
)

// ComputeIdentity returns the content identity of a document: the SHA-256 of
// the exact byte sequence as lowercase hex. Byte-identical uploads collide,
// nothing else does; there is deliberately no normalization or near-duplicate
// detection.
func ComputeIdentity(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ErrNotPDF marks bytes that failed PDF validation. It is a caller mistake,
// not a pipeline failure.
var ErrNotPDF = errors.New("not a readable PDF")

// Request carries one ingestion. Exactly one of BlobKey and BlobURL locates
// the uploaded bytes.
type Request struct {
	BlobKey  string       `json:"blobKey,omitempty"`
	BlobURL  string       `json:"blobUrl,omitempty"`
	Filename string       `json:"filename"`
	Pathname string       `json:"pathname,omitempty"`
	Size     int64        `json:"size,omitempty"`
	Tags     *tagger.Tags `json:"tags,omitempty"`
}

// Result reports the outcome of an ingestion.
type Result struct {
	Hash      string       `json:"hash"`
	Duplicate bool         `json:"duplicate"`
	Tags      *tagger.Tags `json:"tags,omitempty"`
}

// Pipeline turns uploaded report bytes into a searchable, tagged, deduped
// library entry: identity, duplicate check, upstream upload, index
// attachment, tagging, metadata publication — in that order per document.
type Pipeline struct {
	blobs       blobstore.Store
	meta        *MetaStore
	index       retrieval.Index
	refiner     *tagger.Refiner
	baseIndexID string
	client      *http.Client
	pages       func([]byte) (int, error)
}

// NewPipeline wires a Pipeline. refiner may be nil to disable model-assisted
// tagging.
func NewPipeline(blobs blobstore.Store, meta *MetaStore, index retrieval.Index, refiner *tagger.Refiner, baseIndexID string) *Pipeline {
	return &Pipeline{
		blobs:       blobs,
		meta:        meta,
		index:       index,
		refiner:     refiner,
		baseIndexID: baseIndexID,
		client:      &http.Client{Timeout: 30 * time.Second},
		pages:       pageCount,
	}
}

// Ingest runs the full pipeline for one document. A second ingestion of
// identical bytes short-circuits after the duplicate check and reports
// Duplicate without re-uploading, re-tagging, or overwriting the record.
//
// The duplicate check and the final record publication are not atomic as a
// pair: two concurrent ingestions of the same bytes can race past the check.
// Dedup here is best-effort; the blob store offers no conditional write.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (*Result, error) {
	data, err := p.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	pages, err := p.pages(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	hash := ComputeIdentity(data)

	exists, err := p.meta.Exists(ctx, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return &Result{Hash: hash, Duplicate: true}, nil
	}

	fileID, err := p.index.UploadFile(ctx, req.Filename, data)
	if err != nil {
		return nil, fmt.Errorf("uploading to retrieval service: %w", err)
	}

	// A failure between here and record publication leaves the uploaded file
	// orphaned upstream. There is no compensating transaction.
	indexFileID, err := p.index.AttachFile(ctx, p.baseIndexID, fileID)
	if err != nil {
		return nil, fmt.Errorf("attaching to index: %w", err)
	}

	base := tagger.FromFilename(req.Filename)
	refined := p.refiner.Refine(ctx, req.Filename, base)

	var manual tagger.Tags
	if req.Tags != nil {
		manual = *req.Tags
	}
	final := tagger.Merge(manual, refined, base)

	size := req.Size
	if size == 0 {
		size = int64(len(data))
	}

	rec := &Record{
		Hash:           hash,
		Filename:       req.Filename,
		Pathname:       req.Pathname,
		StorageKey:     req.BlobKey,
		BlobURL:        req.BlobURL,
		Size:           size,
		Pages:          pages,
		AddedAt:        time.Now().UTC(),
		Tags:           final,
		IndexFileID:    indexFileID,
		ExternalFileID: fileID,
	}
	if err := p.meta.Put(ctx, rec); err != nil {
		return nil, err
	}

	return &Result{Hash: hash, Duplicate: false, Tags: &final}, nil
}

// Delete removes a document everywhere it lives: index attachment, upstream
// file, stored blob, then the metadata record. Only the record deletion has
// to succeed; the rest is opportunistic cleanup.
func (p *Pipeline) Delete(ctx context.Context, hash string) error {
	rec, err := p.meta.Get(ctx, hash)
	if err != nil {
		return err
	}

	if rec.IndexFileID != "" {
		p.index.DetachFile(ctx, p.baseIndexID, rec.IndexFileID)
	}
	if rec.ExternalFileID != "" {
		p.index.DeleteFile(ctx, rec.ExternalFileID)
	}
	if rec.StorageKey != "" {
		p.blobs.Delete(ctx, rec.StorageKey)
	}

	return p.meta.Delete(ctx, hash)
}

// Library lists every record, newest first.
func (p *Pipeline) Library(ctx context.Context) ([]Record, error) {
	return p.meta.List(ctx)
}

func (p *Pipeline) fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.BlobKey != "" {
		data, err := p.blobs.Get(ctx, req.BlobKey)
		if err != nil {
			return nil, fmt.Errorf("fetching blob %s: %w", req.BlobKey, err)
		}
		return data, nil
	}

	if req.BlobURL != "" {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.BlobURL, nil)
		if err != nil {
			return nil, fmt.Errorf("building blob request: %w", err)
		}
		resp, err := p.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("fetching blob: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("could not fetch blob: status %d", resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading blob: %w", err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("missing blobKey or blobUrl")
}

func pageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}
