package retrieval

import (
	"context"
	"fmt"
	"sync"

	"github.com/yasminekh/trendgate/internal/llm"
)

// Fake is an in-memory Index for tests. It records every call and can
// inject failures per operation.
type Fake struct {
	mu sync.Mutex

	created  int
	Indexes  map[string]bool
	Files    map[string]string   // fileID -> filename
	Attached map[string][]string // indexID -> indexFileIDs

	UploadCalls int
	AttachCalls int

	// AnswerFunc overrides Answer; default echoes the question.
	AnswerFunc func(indexID, question string) (string, error)

	// Error injection, one per operation.
	CreateErr, DeleteErr, UploadErr, AttachErr, DetachErr, DeleteFileErr, AnswerErr error
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{
		Indexes:  map[string]bool{},
		Files:    map[string]string{},
		Attached: map[string][]string{},
	}
}

func (f *Fake) CreateIndex(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	f.created++
	id := fmt.Sprintf("vs_fake_%d", f.created)
	f.Indexes[id] = true
	return id, nil
}

func (f *Fake) DeleteIndex(_ context.Context, indexID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.Indexes, indexID)
	return nil
}

func (f *Fake) UploadFile(_ context.Context, filename string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UploadErr != nil {
		return "", f.UploadErr
	}
	f.UploadCalls++
	id := fmt.Sprintf("file_fake_%d", f.UploadCalls)
	f.Files[id] = filename
	return id, nil
}

func (f *Fake) AttachFile(_ context.Context, indexID, fileID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AttachErr != nil {
		return "", f.AttachErr
	}
	f.AttachCalls++
	id := "vsf_" + fileID
	f.Attached[indexID] = append(f.Attached[indexID], id)
	return id, nil
}

func (f *Fake) DetachFile(_ context.Context, indexID, indexFileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DetachErr != nil {
		return f.DetachErr
	}
	attached := f.Attached[indexID]
	for i, id := range attached {
		if id == indexFileID {
			f.Attached[indexID] = append(attached[:i], attached[i+1:]...)
			break
		}
	}
	return nil
}

func (f *Fake) DeleteFile(_ context.Context, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteFileErr != nil {
		return f.DeleteFileErr
	}
	delete(f.Files, fileID)
	return nil
}

func (f *Fake) Answer(_ context.Context, indexID, question string, _ []llm.Message) (string, error) {
	f.mu.Lock()
	fn := f.AnswerFunc
	err := f.AnswerErr
	f.mu.Unlock()

	if err != nil {
		return "", err
	}
	if fn != nil {
		return fn(indexID, question)
	}
	return "answer to: " + question, nil
}
