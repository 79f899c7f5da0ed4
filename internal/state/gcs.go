package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"helpcenter-sync/internal/contextutil"
	"helpcenter-sync/internal/service"
)

// objectClient is the slice of an object store the GCS state store needs.
type objectClient interface {
	Read(ctx context.Context, bucket, object string) ([]byte, error)
	Write(ctx context.Context, bucket, object string, data []byte, contentType string) error
}

type gcsObjects struct {
	client *storage.Client
}

func (g gcsObjects) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	r, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	return io.ReadAll(r)
}

func (g gcsObjects) Write(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// GCSStore keeps the state as an object in a Cloud Storage bucket and
// mirrors it to a local file on every load and save.
type GCSStore struct {
	Bucket string
	Object string
	local  *FileStore
	client *storage.Client
	objs   objectClient
}

// NewGCSStore connects to Cloud Storage. credentialsFile may be empty to
// use application default credentials.
func NewGCSStore(ctx context.Context, bucket, object, localPath, credentialsFile string) (*GCSStore, error) {
	if bucket == "" {
		return nil, &service.ValidationError{Field: "gcs_bucket", Message: "cannot be empty"}
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		Bucket: bucket,
		Object: object,
		local:  NewFileStore(localPath),
		client: client,
		objs:   gcsObjects{client: client},
	}, nil
}

// Load downloads the state object. A missing object yields an empty state.
func (g *GCSStore) Load(ctx context.Context) (*State, error) {
	logger := contextutil.LoggerFromContext(ctx)

	data, err := g.objs.Read(ctx, g.Bucket, g.Object)
	if errors.Is(err, service.ErrNotFound) {
		logger.InfoContext(ctx, "state object not found, starting empty", "bucket", g.Bucket, "object", g.Object)
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download state object: %w", err)
	}

	if err := writeFileAtomic(g.local.Path, data); err != nil {
		return nil, err
	}
	return decode(data)
}

// Save writes the local mirror and uploads it.
func (g *GCSStore) Save(ctx context.Context, s *State) error {
	if err := g.local.Save(ctx, s); err != nil {
		return err
	}
	data, err := os.ReadFile(g.local.Path)
	if err != nil {
		return fmt.Errorf("failed to read state mirror: %w", err)
	}
	if err := g.objs.Write(ctx, g.Bucket, g.Object, data, "application/json"); err != nil {
		return fmt.Errorf("failed to upload state object: %w", err)
	}
	return nil
}

// Close releases the storage client.
func (g *GCSStore) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
