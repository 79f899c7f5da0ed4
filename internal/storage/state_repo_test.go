package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"helpcenter-sync/internal/state"
)

var _ state.Store = (*StateRepo)(nil)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStateRepo_LoadEmpty(t *testing.T) {
	repo := NewStateRepo(setupTestDB(t))

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.VectorStoreID != "" || len(got.Articles) != 0 {
		t.Errorf("Load() = %+v, want empty state", got)
	}
}

func TestStateRepo_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepo(setupTestDB(t))

	tests := []struct {
		name  string
		state *state.State
	}{
		{
			name: "articles with files",
			state: &state.State{
				VectorStoreID: "vs_1",
				Articles: map[string]state.Article{
					"101": {Hash: "h1", FileIDs: []string{"file-b", "file-a", "file-c"}},
					"102": {Hash: "h2", FileIDs: []string{}},
				},
			},
		},
		{
			name: "replaces previous state",
			state: &state.State{
				VectorStoreID: "vs_2",
				Articles: map[string]state.Article{
					"103": {Hash: "h3", FileIDs: []string{"file-z"}},
				},
			},
		},
		{
			name:  "cleared",
			state: &state.State{Articles: map[string]state.Article{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Save(ctx, tt.state); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := repo.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.state) {
				t.Errorf("Load() = %+v, want %+v", got, tt.state)
			}
		})
	}
}
