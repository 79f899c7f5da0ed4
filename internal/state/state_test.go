package state

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"helpcenter-sync/internal/service"
)

func TestState_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *State
		wantErr bool
	}{
		{
			name:  "flat layout",
			input: `{"vector_store_id":"vs_1","101":{"hash":"abc","file_ids":["f1","f2"]}}`,
			want: &State{
				VectorStoreID: "vs_1",
				Articles:      map[string]Article{"101": {Hash: "abc", FileIDs: []string{"f1", "f2"}}},
			},
		},
		{
			name:  "empty object",
			input: `{}`,
			want:  &State{Articles: map[string]Article{}},
		},
		{
			name:  "null vector store",
			input: `{"vector_store_id":null}`,
			want:  &State{Articles: map[string]Article{}},
		},
		{
			name:    "article is not an object",
			input:   `{"101":"abc"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New()
			err := json.Unmarshal([]byte(tt.input), got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestState_MarshalJSON_Flat(t *testing.T) {
	s := New()
	s.VectorStoreID = "vs_1"
	s.Put("101", Article{Hash: "abc"})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"101":{"hash":"abc","file_ids":[]},"vector_store_id":"vs_1"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestState_IDs(t *testing.T) {
	s := New()
	s.Put("30", Article{})
	s.Put("10", Article{})
	s.Put("20", Article{})

	if got := s.IDs(); !reflect.DeepEqual(got, []string{"10", "20", "30"}) {
		t.Errorf("IDs() = %v", got)
	}
	if _, ok := s.Get("40"); ok {
		t.Error("Get() found an unknown article")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewFileStore(path)

	s, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() missing file error = %v", err)
	}
	if s.VectorStoreID != "" || len(s.Articles) != 0 {
		t.Fatalf("Load() missing file = %+v, want empty", s)
	}

	s.VectorStoreID = "vs_9"
	s.Put("7", Article{Hash: "h7", FileIDs: []string{"file-1"}})
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Load() = %+v, want %+v", got, s)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("state dir has %d entries, want only the state file", len(entries))
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Error("Load() expected error for corrupt file")
	}
}

type fakeObjects struct {
	objects map[string][]byte
	writes  int
	failErr error
}

func (f *fakeObjects) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	data, ok := f.objects[bucket+"/"+object]
	if !ok {
		return nil, service.ErrNotFound
	}
	return data, nil
}

func (f *fakeObjects) Write(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	if contentType != "application/json" {
		return errors.New("unexpected content type " + contentType)
	}
	f.writes++
	f.objects[bucket+"/"+object] = data
	return nil
}

func newTestGCSStore(t *testing.T, objs objectClient) *GCSStore {
	t.Helper()
	return &GCSStore{
		Bucket: "kb",
		Object: "state.json",
		local:  NewFileStore(filepath.Join(t.TempDir(), "state.json")),
		objs:   objs,
	}
}

func TestGCSStore(t *testing.T) {
	ctx := context.Background()
	objs := &fakeObjects{objects: map[string][]byte{}}
	store := newTestGCSStore(t, objs)

	s, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() missing object error = %v", err)
	}
	if len(s.Articles) != 0 {
		t.Fatalf("Load() missing object = %+v, want empty", s)
	}

	s.Put("5", Article{Hash: "h5", FileIDs: []string{"a"}})
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if objs.writes != 1 {
		t.Errorf("Save() wrote %d objects, want 1", objs.writes)
	}

	mirror, err := os.ReadFile(store.local.Path)
	if err != nil {
		t.Fatalf("local mirror missing: %v", err)
	}
	if string(mirror) != string(objs.objects["kb/state.json"]) {
		t.Error("uploaded object differs from local mirror")
	}

	fresh := newTestGCSStore(t, objs)
	got, err := fresh.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Load() = %+v, want %+v", got, s)
	}
	if _, err := os.Stat(fresh.local.Path); err != nil {
		t.Errorf("Load() did not mirror object locally: %v", err)
	}
}

func TestGCSStore_ReadError(t *testing.T) {
	store := newTestGCSStore(t, &fakeObjects{failErr: errors.New("permission denied")})
	if _, err := store.Load(context.Background()); err == nil {
		t.Error("Load() expected error")
	}
}
