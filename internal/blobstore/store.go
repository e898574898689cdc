package blobstore

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("blob not found")

// Object describes a stored blob without its contents.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the narrow contract the gateway needs from its object storage:
// enough to keep PDF blobs and content-addressed metadata documents, and to
// hand browsers presigned upload URLs. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, key string) error

	// PresignPut returns a URL a client can PUT the object to directly.
	PresignPut(ctx context.Context, key string, contentType string) (string, error)
	// PresignGet returns a URL the object can be fetched from.
	PresignGet(ctx context.Context, key string) (string, error)
}

// ReportKey builds a collision-free storage key for an uploaded report.
func ReportKey(filename string) string {
	return path.Join("trend-library/reports", uuid.New().String()+"-"+sanitize(filename))
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "report.pdf"
	}
	return b.String()
}

// presignExpiry bounds how long a presigned URL stays usable.
const presignExpiry = 15 * time.Minute
