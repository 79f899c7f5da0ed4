// Package state persists the per-article delta state used to decide which
// articles must be re-uploaded to the vector index.
package state

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks helpcenter-sync/internal/state Store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

const vectorStoreKey = "vector_store_id"

// Article is the recorded upload of one article: the hash of its chunk
// directory and the file ids it was uploaded as.
type Article struct {
	Hash    string   `json:"hash"`
	FileIDs []string `json:"file_ids"`
}

// State maps article ids to their last uploaded Article and remembers the
// vector store the files were attached to.
//
// It serializes to a flat JSON object where "vector_store_id" sits next to
// the article ids.
type State struct {
	VectorStoreID string
	Articles      map[string]Article
}

// New returns an empty state.
func New() *State {
	return &State{Articles: make(map[string]Article)}
}

// Get returns the recorded article, if any.
func (s *State) Get(articleID string) (Article, bool) {
	a, ok := s.Articles[articleID]
	return a, ok
}

// Put records an article upload.
func (s *State) Put(articleID string, a Article) {
	if s.Articles == nil {
		s.Articles = make(map[string]Article)
	}
	s.Articles[articleID] = a
}

// IDs returns the recorded article ids in sorted order.
func (s *State) IDs() []string {
	ids := make([]string, 0, len(s.Articles))
	for id := range s.Articles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON writes the flat layout.
func (s *State) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(s.Articles)+1)
	for id, a := range s.Articles {
		if a.FileIDs == nil {
			a.FileIDs = []string{}
		}
		flat[id] = a
	}
	if s.VectorStoreID != "" {
		flat[vectorStoreKey] = s.VectorStoreID
	}
	return json.Marshal(flat)
}

// UnmarshalJSON reads the flat layout.
func (s *State) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	s.VectorStoreID = ""
	s.Articles = make(map[string]Article, len(flat))
	for key, raw := range flat {
		if key == vectorStoreKey {
			var id *string
			if err := json.Unmarshal(raw, &id); err != nil {
				return fmt.Errorf("invalid %s: %w", vectorStoreKey, err)
			}
			if id != nil {
				s.VectorStoreID = *id
			}
			continue
		}
		var a Article
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("invalid state for article %s: %w", key, err)
		}
		s.Articles[key] = a
	}
	return nil
}

// Store loads and saves State.
type Store interface {
	// Load returns the stored state. A store with nothing saved yet returns an empty state.
	Load(ctx context.Context) (*State, error)

	// Save replaces the stored state.
	Save(ctx context.Context, s *State) error
}
