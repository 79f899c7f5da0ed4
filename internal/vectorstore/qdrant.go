package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"helpcenter-sync/internal/contextutil"
	"helpcenter-sync/internal/service"
)

// pointNamespace scopes the deterministic point ids derived from chunk files.
var pointNamespace = uuid.MustParse("7f1d3c52-4a1e-4b8e-9a57-2d7c3c9b0f11")

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// qdrantAPI is the subset of *qdrant.Client used by QdrantIndex.
type qdrantAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
}

// QdrantIndex implements Index on a Qdrant collection. Uploaded chunk files
// are embedded and staged in memory, then written as points when a batch is
// created. The store id is the collection name.
type QdrantIndex struct {
	client     qdrantAPI
	embedder   Embedder
	vectorSize int

	mu         sync.Mutex
	staged     map[string]*qdrant.PointStruct
	batches    map[string]FileBatch
	batchOrder []string
}

// maxTrackedBatches bounds the finished batches kept for GetFileBatch.
const maxTrackedBatches = 32

// NewQdrantIndex creates a Qdrant-backed index.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantIndex(urlStr string, embedder Embedder, vectorSize int) (*QdrantIndex, error) {
	host, port, err := grpcAddress(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return newQdrantIndex(client, embedder, vectorSize), nil
}

func newQdrantIndex(client qdrantAPI, embedder Embedder, vectorSize int) *QdrantIndex {
	return &QdrantIndex{
		client:     client,
		embedder:   embedder,
		vectorSize: vectorSize,
		staged:     make(map[string]*qdrant.PointStruct),
		batches:    make(map[string]FileBatch),
	}
}

func grpcAddress(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC port is typically HTTP port + 1
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}
	return host, port, nil
}

// EnsureStore implements Index. It creates the collection when missing and
// validates the vector size otherwise.
func (s *QdrantIndex) EnsureStore(ctx context.Context, storeID, name string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	collection := storeID
	if collection == "" {
		collection = name
	}

	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return "", fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", s.vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(s.vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return "", fmt.Errorf("failed to create collection: %w", err)
		}
		return collection, nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return "", fmt.Errorf("failed to get collection info: %w", err)
	}

	var actualSize uint64
	if config := info.GetConfig(); config != nil && config.GetParams() != nil {
		if params := config.GetParams().GetVectorsConfig().GetParams(); params != nil {
			actualSize = params.GetSize()
		}
	}
	if actualSize == 0 {
		return "", fmt.Errorf("could not determine collection vector size")
	}
	if int(actualSize) != s.vectorSize {
		return "", fmt.Errorf("collection vector size mismatch: expected %d, got %d", s.vectorSize, actualSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", s.vectorSize)
	return collection, nil
}

// UploadFile implements Index. The file id is a UUID derived from the file
// name and content, so re-uploading identical content yields the same id.
func (s *QdrantIndex) UploadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read chunk file: %w", err)
	}
	text := string(data)
	name := filepath.Base(path)

	vectors, err := s.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return "", fmt.Errorf("failed to embed %s: %w", name, err)
	}
	if len(vectors) != 1 {
		return "", fmt.Errorf("expected 1 embedding for %s, got %d", name, len(vectors))
	}

	id := uuid.NewSHA1(pointNamespace, append([]byte(name+"\n"), data...)).String()
	meta := map[string]any{
		"file_name":    name,
		"article_id":   articleIDFromFile(name),
		"heading_path": headerValue(text, "Section:"),
		"url":          headerValue(text, "Article URL:"),
		"text":         text,
	}

	s.mu.Lock()
	s.staged[id] = &qdrant.PointStruct{
		Id:      qdrant.NewID(id),
		Vectors: qdrant.NewVectors(vectors[0]...),
		Payload: qdrant.NewValueMap(meta),
	}
	s.mu.Unlock()

	return id, nil
}

// CreateFileBatch implements Index. Points are upserted synchronously, so
// the returned batch is already terminal.
func (s *QdrantIndex) CreateFileBatch(ctx context.Context, storeID string, fileIDs []string) (FileBatch, error) {
	logger := contextutil.LoggerFromContext(ctx)

	s.mu.Lock()
	points := make([]*qdrant.PointStruct, 0, len(fileIDs))
	for _, id := range fileIDs {
		p, ok := s.staged[id]
		if !ok {
			s.mu.Unlock()
			return FileBatch{}, fmt.Errorf("file %s was not uploaded: %w", id, service.ErrNotFound)
		}
		points = append(points, p)
	}
	s.mu.Unlock()

	batch := FileBatch{
		ID:     "batch_" + uuid.NewString(),
		Status: StatusCompleted,
		Counts: FileCounts{Completed: len(points), Total: len(points)},
	}

	if len(points) > 0 {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: storeID,
			Points:         points,
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to upsert points", "collection", storeID, "count", len(points), "error", err)
			batch.Status = StatusFailed
			batch.Counts = FileCounts{Failed: len(points), Total: len(points)}
		}
	}

	s.mu.Lock()
	// A failed batch is retried by uploading the files again.
	for _, id := range fileIDs {
		delete(s.staged, id)
	}
	s.trackBatch(batch)
	s.mu.Unlock()

	logger.InfoContext(ctx, "upserted points", "collection", storeID, "count", len(points), "status", batch.Status)
	return batch, nil
}

// trackBatch records batch, evicting the oldest once maxTrackedBatches are
// held. Callers hold s.mu.
func (s *QdrantIndex) trackBatch(batch FileBatch) {
	s.batches[batch.ID] = batch
	s.batchOrder = append(s.batchOrder, batch.ID)
	for len(s.batchOrder) > maxTrackedBatches {
		delete(s.batches, s.batchOrder[0])
		s.batchOrder = s.batchOrder[1:]
	}
}

// GetFileBatch implements Index. A terminal batch is forgotten once read.
func (s *QdrantIndex) GetFileBatch(ctx context.Context, storeID, batchID string) (FileBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[batchID]
	if !ok {
		return FileBatch{}, fmt.Errorf("batch %s: %w", batchID, service.ErrNotFound)
	}
	if b.Terminal() {
		delete(s.batches, batchID)
		for i, id := range s.batchOrder {
			if id == batchID {
				s.batchOrder = append(s.batchOrder[:i], s.batchOrder[i+1:]...)
				break
			}
		}
	}
	return b, nil
}

// RemoveFile implements Index.
func (s *QdrantIndex) RemoveFile(ctx context.Context, storeID, fileID string) error {
	if _, err := uuid.Parse(fileID); err != nil {
		// Not a point id this index produced; nothing to remove.
		return nil
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: storeID,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(fileID)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete point %s: %w", fileID, err)
	}
	return nil
}

func articleIDFromFile(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.LastIndex(stem, "_"); i > 0 {
		return stem[:i]
	}
	return stem
}

func headerValue(text, prefix string) string {
	for _, line := range strings.SplitN(text, "\n", 6) {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}
