package retrieval

import (
	"context"

	"github.com/yasminekh/trendgate/internal/llm"
)

// Index is the contract the gateway needs from the managed document-retrieval
// service: create and destroy retrieval indexes, move files in and out of
// them, and answer questions grounded in an index's documents.
type Index interface {
	// CreateIndex provisions a new retrieval index and returns its id.
	CreateIndex(ctx context.Context, name string) (string, error)

	// DeleteIndex destroys an index and everything attached to it.
	DeleteIndex(ctx context.Context, indexID string) error

	// UploadFile stores raw document bytes with the upstream file store and
	// returns the file id. The file is not searchable until attached.
	UploadFile(ctx context.Context, filename string, data []byte) (string, error)

	// AttachFile links an uploaded file into an index and returns the
	// attachment id used for later detachment.
	AttachFile(ctx context.Context, indexID, fileID string) (string, error)

	// DetachFile removes a file from an index without deleting the file.
	DetachFile(ctx context.Context, indexID, indexFileID string) error

	// DeleteFile removes a file from the upstream file store.
	DeleteFile(ctx context.Context, fileID string) error

	// Answer responds to a question using only the documents in the index.
	Answer(ctx context.Context, indexID, question string, history []llm.Message) (string, error)
}
