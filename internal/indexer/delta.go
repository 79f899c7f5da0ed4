package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"helpcenter-sync/internal/state"
)

var hashSeparator = []byte("\n---\n")

// HashArticleDir fingerprints an article's chunk directory: SHA-256 over the
// sorted *.md files, each followed by a "\n---\n" separator.
func HashArticleDir(dir string) (string, error) {
	files, err := listChunkFiles(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list chunk files: %w", err)
	}

	h := sha256.New()
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read chunk file: %w", err)
		}
		h.Write(data)
		h.Write(hashSeparator)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Delta classifies article directories against the recorded state.
type Delta struct {
	Added   []string
	Updated []string
	Skipped []string
	// Hashes holds the current hash of every classified article.
	Hashes map[string]string
}

// Pending returns the articles that need uploading, added first.
func (d Delta) Pending() []string {
	out := make([]string, 0, len(d.Added)+len(d.Updated))
	out = append(out, d.Added...)
	return append(out, d.Updated...)
}

// CollectDelta hashes every article directory under root, in sorted order,
// and classifies it as added (no record), updated (hash differs) or skipped.
func CollectDelta(root string, st *state.State) (Delta, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Delta{}, fmt.Errorf("failed to create chunk root: %w", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return Delta{}, fmt.Errorf("failed to read chunk root: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)

	d := Delta{Hashes: make(map[string]string, len(ids))}
	for _, id := range ids {
		hash, err := HashArticleDir(filepath.Join(root, id))
		if err != nil {
			return Delta{}, fmt.Errorf("failed to hash article %s: %w", id, err)
		}
		d.Hashes[id] = hash

		prev, ok := st.Get(id)
		switch {
		case !ok:
			d.Added = append(d.Added, id)
		case prev.Hash != hash:
			d.Updated = append(d.Updated, id)
		default:
			d.Skipped = append(d.Skipped, id)
		}
	}
	return d, nil
}
