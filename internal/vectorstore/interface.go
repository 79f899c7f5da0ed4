package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index.go -package=mocks helpcenter-sync/internal/vectorstore Index

import "context"

// Batch statuses reported by an Index.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// FileCounts tallies the files of a batch by status.
type FileCounts struct {
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Cancelled  int `json:"cancelled"`
	Total      int `json:"total"`
}

// FileBatch is a group of uploaded files being attached to a store.
type FileBatch struct {
	ID     string
	Status string
	Counts FileCounts
}

// Terminal reports whether the batch reached a final status.
func (b FileBatch) Terminal() bool {
	switch b.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Index is a remote store of uploaded chunk files that serves retrieval.
type Index interface {
	// EnsureStore returns storeID when set, otherwise creates a store named name and returns its id.
	EnsureStore(ctx context.Context, storeID, name string) (string, error)

	// UploadFile uploads one chunk file and returns its file id.
	UploadFile(ctx context.Context, path string) (string, error)

	// CreateFileBatch attaches uploaded files to a store.
	CreateFileBatch(ctx context.Context, storeID string, fileIDs []string) (FileBatch, error)

	// GetFileBatch returns the current state of a batch.
	GetFileBatch(ctx context.Context, storeID, batchID string) (FileBatch, error)

	// RemoveFile detaches a file from a store. Removing an unknown file is not an error.
	RemoveFile(ctx context.Context, storeID, fileID string) error
}
