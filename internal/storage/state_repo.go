package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"helpcenter-sync/internal/state"
)

const vectorStoreKey = "vector_store_id"

// StateRepo stores the delta state in SQLite. It implements state.Store.
type StateRepo struct {
	db *sql.DB
}

// NewStateRepo creates a new StateRepo.
func NewStateRepo(db *sql.DB) *StateRepo {
	return &StateRepo{db: db}
}

// Load reads the full state.
func (r *StateRepo) Load(ctx context.Context) (*state.State, error) {
	s := state.New()

	err := r.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", vectorStoreKey).Scan(&s.VectorStoreID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read vector store id: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT id, hash FROM articles")
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		s.Put(id, state.Article{Hash: hash, FileIDs: []string{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	files, err := r.db.QueryContext(ctx, "SELECT article_id, file_id FROM article_files ORDER BY article_id, position")
	if err != nil {
		return nil, fmt.Errorf("failed to query article files: %w", err)
	}
	defer files.Close()

	for files.Next() {
		var articleID, fileID string
		if err := files.Scan(&articleID, &fileID); err != nil {
			return nil, fmt.Errorf("failed to scan article file: %w", err)
		}
		a, ok := s.Get(articleID)
		if !ok {
			continue
		}
		a.FileIDs = append(a.FileIDs, fileID)
		s.Put(articleID, a)
	}
	return s, files.Err()
}

// Save replaces the stored state in one transaction.
func (r *StateRepo) Save(ctx context.Context, s *state.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if s.VectorStoreID == "" {
		if _, err := tx.ExecContext(ctx, "DELETE FROM meta WHERE key = ?", vectorStoreKey); err != nil {
			return fmt.Errorf("failed to clear vector store id: %w", err)
		}
	} else if _, err := tx.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		vectorStoreKey, s.VectorStoreID,
	); err != nil {
		return fmt.Errorf("failed to write vector store id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM article_files"); err != nil {
		return fmt.Errorf("failed to clear article files: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM articles"); err != nil {
		return fmt.Errorf("failed to clear articles: %w", err)
	}

	for _, id := range s.IDs() {
		a := s.Articles[id]
		if _, err := tx.ExecContext(ctx, "INSERT INTO articles (id, hash) VALUES (?, ?)", id, a.Hash); err != nil {
			return fmt.Errorf("failed to insert article %s: %w", id, err)
		}
		for i, fileID := range a.FileIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO article_files (article_id, position, file_id) VALUES (?, ?, ?)",
				id, i, fileID,
			); err != nil {
				return fmt.Errorf("failed to insert file for article %s: %w", id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}
