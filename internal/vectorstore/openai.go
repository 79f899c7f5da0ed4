package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"helpcenter-sync/internal/contextutil"
	"helpcenter-sync/internal/service"
)

// OpenAIIndex stores chunk files in an OpenAI vector store using the Files
// and vector store file batch APIs.
type OpenAIIndex struct {
	client *openai.Client
}

// NewOpenAIIndex creates an OpenAI-backed index. An empty baseURL uses the
// public API endpoint.
func NewOpenAIIndex(baseURL, apiKey string) *OpenAIIndex {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIIndex{client: openai.NewClientWithConfig(cfg)}
}

// EnsureStore implements Index.
func (o *OpenAIIndex) EnsureStore(ctx context.Context, storeID, name string) (string, error) {
	if storeID != "" {
		return storeID, nil
	}

	logger := contextutil.LoggerFromContext(ctx)
	vs, err := o.client.CreateVectorStore(ctx, openai.VectorStoreRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to create vector store: %w", wrapAPIError(err))
	}
	logger.InfoContext(ctx, "created vector store", "vector_store_id", vs.ID, "name", name)
	return vs.ID, nil
}

// UploadFile implements Index.
func (o *OpenAIIndex) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := o.client.CreateFile(ctx, openai.FileRequest{
		FilePath: path,
		Purpose:  "assistants",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, wrapAPIError(err))
	}
	return f.ID, nil
}

// CreateFileBatch implements Index.
func (o *OpenAIIndex) CreateFileBatch(ctx context.Context, storeID string, fileIDs []string) (FileBatch, error) {
	b, err := o.client.CreateVectorStoreFileBatch(ctx, storeID, openai.VectorStoreFileBatchRequest{FileIDs: fileIDs})
	if err != nil {
		return FileBatch{}, fmt.Errorf("failed to create file batch: %w", wrapAPIError(err))
	}
	return toFileBatch(b), nil
}

// GetFileBatch implements Index.
func (o *OpenAIIndex) GetFileBatch(ctx context.Context, storeID, batchID string) (FileBatch, error) {
	b, err := o.client.RetrieveVectorStoreFileBatch(ctx, storeID, batchID)
	if err != nil {
		return FileBatch{}, fmt.Errorf("failed to get file batch %s: %w", batchID, wrapAPIError(err))
	}
	return toFileBatch(b), nil
}

// RemoveFile implements Index. A 404 from the API counts as removed.
func (o *OpenAIIndex) RemoveFile(ctx context.Context, storeID, fileID string) error {
	err := o.client.DeleteVectorStoreFile(ctx, storeID, fileID)
	if err == nil || statusCode(err) == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("failed to remove file %s: %w", fileID, wrapAPIError(err))
}

func toFileBatch(b openai.VectorStoreFileBatch) FileBatch {
	return FileBatch{
		ID:     b.ID,
		Status: b.Status,
		Counts: FileCounts{
			InProgress: b.FileCounts.InProgress,
			Completed:  b.FileCounts.Completed,
			Failed:     b.FileCounts.Failed,
			Cancelled:  b.FileCounts.Cancelled,
			Total:      b.FileCounts.Total,
		},
	}
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// wrapAPIError keeps the client error and adds a StatusError so callers can
// match service.ErrExternalService.
func wrapAPIError(err error) error {
	code := statusCode(err)
	if code == 0 {
		return err
	}
	return fmt.Errorf("%w: %w", err, &service.StatusError{Service: "openai", StatusCode: code, Body: err.Error()})
}
