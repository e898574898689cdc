package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yasminekh/trendgate/internal/llm"
)

const answerInstructions = `You are a helpful assistant for trend reports.
Answer ONLY using the uploaded documents when possible.
If the answer is not in the documents, say so and ask what to upload next.
Be concise and structured.`

// OpenAIIndex implements Index on the OpenAI vector store, file, and
// assistant APIs.
type OpenAIIndex struct {
	client       *openai.Client
	model        string
	pollInterval time.Duration
}

// NewOpenAIIndex creates an OpenAIIndex answering with the given model.
func NewOpenAIIndex(apiKey, model string) *OpenAIIndex {
	return &OpenAIIndex{
		client:       openai.NewClient(apiKey),
		model:        model,
		pollInterval: time.Second,
	}
}

func (o *OpenAIIndex) CreateIndex(ctx context.Context, name string) (string, error) {
	vs, err := o.client.CreateVectorStore(ctx, openai.VectorStoreRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("creating vector store: %w", err)
	}
	return vs.ID, nil
}

func (o *OpenAIIndex) DeleteIndex(ctx context.Context, indexID string) error {
	if _, err := o.client.DeleteVectorStore(ctx, indexID); err != nil {
		return fmt.Errorf("deleting vector store %s: %w", indexID, err)
	}
	return nil
}

func (o *OpenAIIndex) UploadFile(ctx context.Context, filename string, data []byte) (string, error) {
	f, err := o.client.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    filename,
		Bytes:   data,
		Purpose: openai.PurposeAssistants,
	})
	if err != nil {
		return "", fmt.Errorf("uploading file %s: %w", filename, err)
	}
	return f.ID, nil
}

func (o *OpenAIIndex) AttachFile(ctx context.Context, indexID, fileID string) (string, error) {
	vf, err := o.client.CreateVectorStoreFile(ctx, indexID, openai.VectorStoreFileRequest{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("attaching file %s to %s: %w", fileID, indexID, err)
	}
	return vf.ID, nil
}

func (o *OpenAIIndex) DetachFile(ctx context.Context, indexID, indexFileID string) error {
	if err := o.client.DeleteVectorStoreFile(ctx, indexID, indexFileID); err != nil {
		return fmt.Errorf("detaching file %s from %s: %w", indexFileID, indexID, err)
	}
	return nil
}

func (o *OpenAIIndex) DeleteFile(ctx context.Context, fileID string) error {
	if err := o.client.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("deleting file %s: %w", fileID, err)
	}
	return nil
}

// Answer runs a file_search-grounded completion against the index: an
// ephemeral assistant is bound to the vector store, the conversation is
// replayed into a thread, and the run is polled to completion. The assistant
// is removed afterwards on a best-effort basis.
func (o *OpenAIIndex) Answer(ctx context.Context, indexID, question string, history []llm.Message) (string, error) {
	name := "trendgate-session"
	instructions := answerInstructions

	assistant, err := o.client.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        o.model,
		Name:         &name,
		Instructions: &instructions,
		Tools:        []openai.AssistantTool{{Type: openai.AssistantToolTypeFileSearch}},
		ToolResources: &openai.AssistantToolResource{
			FileSearch: &openai.AssistantToolFileSearch{
				VectorStoreIDs: []string{indexID},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating assistant: %w", err)
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		o.client.DeleteAssistant(cleanupCtx, assistant.ID)
	}()

	messages := make([]openai.ThreadMessage, 0, len(history)+1)
	for _, m := range history {
		role := openai.ThreadMessageRoleUser
		if m.Role == llm.RoleAssistant {
			role = openai.ThreadMessageRoleAssistant
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, openai.ThreadMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ThreadMessage{
		Role:    openai.ThreadMessageRoleUser,
		Content: question,
	})

	run, err := o.client.CreateThreadAndRun(ctx, openai.CreateThreadAndRunRequest{
		RunRequest: openai.RunRequest{AssistantID: assistant.ID},
		Thread:     openai.ThreadRequest{Messages: messages},
	})
	if err != nil {
		return "", fmt.Errorf("starting run: %w", err)
	}

	run, err = o.waitForRun(ctx, run)
	if err != nil {
		return "", err
	}

	return o.latestAssistantMessage(ctx, run.ThreadID, run.ID)
}

func (o *OpenAIIndex) waitForRun(ctx context.Context, run openai.Run) (openai.Run, error) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		switch run.Status {
		case openai.RunStatusCompleted:
			return run, nil
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired:
			msg := string(run.Status)
			if run.LastError != nil {
				msg = run.LastError.Message
			}
			return run, fmt.Errorf("run %s ended: %s", run.ID, msg)
		case openai.RunStatusRequiresAction:
			return run, fmt.Errorf("run %s requires unsupported tool action", run.ID)
		}

		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-ticker.C:
		}

		var err error
		run, err = o.client.RetrieveRun(ctx, run.ThreadID, run.ID)
		if err != nil {
			return run, fmt.Errorf("polling run %s: %w", run.ID, err)
		}
	}
}

func (o *OpenAIIndex) latestAssistantMessage(ctx context.Context, threadID, runID string) (string, error) {
	limit := 1
	order := "desc"
	list, err := o.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, &runID)
	if err != nil {
		return "", fmt.Errorf("listing thread messages: %w", err)
	}

	for _, msg := range list.Messages {
		if msg.Role != "assistant" {
			continue
		}
		var parts []string
		for _, c := range msg.Content {
			if c.Text != nil {
				parts = append(parts, c.Text.Value)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n"), nil
		}
	}
	return "", nil
}
