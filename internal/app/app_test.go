package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"helpcenter-sync/internal/config"
	"helpcenter-sync/internal/state"
	"helpcenter-sync/internal/storage"
	"helpcenter-sync/internal/vectorstore"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.OpenAIAPIKey = "sk-test"
	cfg.DocDir = filepath.Join(dir, "md")
	cfg.ChunkDir = filepath.Join(dir, "chunks")
	cfg.StatePath = filepath.Join(dir, "state.json")
	cfg.DBPath = filepath.Join(dir, "db", "sync.db")
	return cfg
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		level     string
		wantJSON  bool
		wantDebug bool
	}{
		{name: "text info", format: "text", level: "info"},
		{name: "json debug", format: "json", level: "debug", wantJSON: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.LogFormat = tt.format
			cfg.LogLevel = tt.level

			var buf bytes.Buffer
			logger, err := NewLogger(cfg, &buf)
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			logger.Debug("debug line")
			logger.Info("info line", "article_id", "42")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, `"article_id":"42"`); got != tt.wantJSON {
				t.Errorf("json output = %v, want %v: %s", got, tt.wantJSON, out)
			}
		})
	}
}

func TestNew_StateBackends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		check   func(t *testing.T, s state.Store)
	}{
		{
			name:    "file",
			backend: config.StateBackendFile,
			check: func(t *testing.T, s state.Store) {
				if _, ok := s.(*state.FileStore); !ok {
					t.Errorf("Store = %T, want *state.FileStore", s)
				}
			},
		},
		{
			name:    "sqlite",
			backend: config.StateBackendSQLite,
			check: func(t *testing.T, s state.Store) {
				if _, ok := s.(*storage.StateRepo); !ok {
					t.Errorf("Store = %T, want *storage.StateRepo", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.StateBackend = tt.backend

			a, err := New(context.Background(), cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer func() {
				if err := a.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}()

			tt.check(t, a.Store)
			if _, ok := a.Index.(*vectorstore.OpenAIIndex); !ok {
				t.Errorf("Index = %T, want *vectorstore.OpenAIIndex", a.Index)
			}
			if a.Pipeline == nil {
				t.Fatal("Pipeline is nil")
			}

			st := state.New()
			st.VectorStoreID = "vs_app"
			ctx := context.Background()
			if err := a.Store.Save(ctx, st); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := a.Store.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.VectorStoreID != "vs_app" {
				t.Errorf("VectorStoreID = %q, want vs_app", got.VectorStoreID)
			}
		})
	}
}

func TestNew_QdrantEmbeddingMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "test-model",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float32{0.1, 0.2}},
			},
		})
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.IndexBackend = config.IndexBackendQdrant
	cfg.QdrantVectorSize = 3
	cfg.EmbeddingBaseURL = server.URL

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("New() should fail when embedding size does not match the collection")
	}
}
