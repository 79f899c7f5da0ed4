package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"helpcenter-sync/internal/chunking"
)

// ChunkFileName returns the file name of the n-th (1-based) chunk of an article.
func ChunkFileName(articleID string, n int) string {
	return fmt.Sprintf("%s_%04d.md", articleID, n)
}

// WriteChunks replaces root/articleID with one file per chunk and returns
// the article directory.
func WriteChunks(root, articleID string, chunks []chunking.Chunk) (string, error) {
	if strings.TrimSpace(articleID) == "" || strings.ContainsAny(articleID, `/\`) || articleID == "." || articleID == ".." {
		return "", fmt.Errorf("invalid article id %q", articleID)
	}

	dir := filepath.Join(root, articleID)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear chunk dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create chunk dir: %w", err)
	}

	for i, c := range chunks {
		path := filepath.Join(dir, ChunkFileName(articleID, i+1))
		if err := os.WriteFile(path, []byte(c.Text), 0o644); err != nil {
			return "", fmt.Errorf("failed to write chunk file: %w", err)
		}
	}
	return dir, nil
}

// ChunkDocumentFile chunks a normalized document on disk. The article id
// comes from the chunks, falling back to the file stem before the first "-".
func ChunkDocumentFile(path string, chunker *chunking.MarkdownChunker) (string, []chunking.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read document: %w", err)
	}

	chunks := chunker.ChunkMarkdown(string(data))
	return articleIDFor(path, chunks), chunks, nil
}

func articleIDFor(path string, chunks []chunking.Chunk) string {
	if len(chunks) > 0 && chunks[0].ArticleID != "" {
		return chunks[0].ArticleID
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id, _, _ := strings.Cut(stem, "-")
	return id
}

// listChunkFiles returns the sorted *.md files of an article directory.
func listChunkFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
