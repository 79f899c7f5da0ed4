// Package indexer turns help-center articles into chunk files on disk and
// keeps a vector index in sync with them.
package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_article_source.go -package=mocks helpcenter-sync/internal/indexer ArticleSource

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"helpcenter-sync/internal/chunking"
	"helpcenter-sync/internal/contextutil"
	"helpcenter-sync/internal/convert"
	"helpcenter-sync/internal/helpcenter"
	"helpcenter-sync/internal/service"
	"helpcenter-sync/internal/state"
	"helpcenter-sync/internal/vectorstore"
)

// ArticleSource lists and fetches help-center articles.
type ArticleSource interface {
	ListArticles(ctx context.Context, limit int) ([]helpcenter.Article, error)
	GetArticle(ctx context.Context, id string) (helpcenter.Article, error)
}

// Config holds the pipeline settings.
type Config struct {
	DocDir          string
	ChunkDir        string
	ArticleLimit    int
	VectorStoreName string
	DeleteOldFiles  bool
	PollInterval    time.Duration
	// UploadConcurrency bounds concurrent chunk file uploads per article.
	UploadConcurrency int
	Chunking          chunking.Options
}

// IngestResult describes one article written to disk.
type IngestResult struct {
	ArticleID string     `json:"article_id"`
	DocPath   string     `json:"doc_path"`
	ChunkDir  string     `json:"chunk_dir"`
	Stats     ChunkStats `json:"stats"`
}

// UploadReport describes one delta upload.
type UploadReport struct {
	VectorStoreID string   `json:"vector_store_id"`
	Added         []string `json:"added"`
	Updated       []string `json:"updated"`
	Skipped       []string `json:"skipped"`
	FilesUploaded int      `json:"files_uploaded"`
}

// SyncReport describes a full or incremental sync.
type SyncReport struct {
	Ingested []IngestResult `json:"ingested"`
	Failed   []string       `json:"failed,omitempty"`
	// Watermark is the newest updated_at seen in the listing.
	Watermark time.Time    `json:"watermark"`
	Upload    UploadReport `json:"upload"`
}

// Pipeline orchestrates fetch, normalization, chunking and delta upload.
// Public operations are serialized.
type Pipeline struct {
	source  ArticleSource
	index   vectorstore.Index
	store   state.Store
	chunker *chunking.MarkdownChunker
	cfg     Config

	mu sync.Mutex
}

// NewPipeline creates a new pipeline.
func NewPipeline(source ArticleSource, index vectorstore.Index, store state.Store, cfg Config) *Pipeline {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.UploadConcurrency <= 0 {
		cfg.UploadConcurrency = 1
	}
	return &Pipeline{
		source:  source,
		index:   index,
		store:   store,
		chunker: chunking.NewMarkdownChunker(cfg.Chunking),
		cfg:     cfg,
	}
}

// Chunker returns the pipeline's chunker.
func (p *Pipeline) Chunker() *chunking.MarkdownChunker {
	return p.chunker
}

// IngestArticle writes the article document and its chunk files.
func (p *Pipeline) IngestArticle(ctx context.Context, a helpcenter.Article, overwrite bool) (IngestResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ingestArticle(ctx, a, overwrite)
}

func (p *Pipeline) ingestArticle(ctx context.Context, a helpcenter.Article, overwrite bool) (IngestResult, error) {
	ctx = contextutil.With(ctx, "article_id", a.IDString())
	logger := contextutil.LoggerFromContext(ctx)

	docPath, err := convert.WriteDocument(a, p.cfg.DocDir, overwrite)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to write document: %w", err)
	}

	articleID, chunks, err := ChunkDocumentFile(docPath, p.chunker)
	if err != nil {
		return IngestResult{}, err
	}

	for _, c := range chunks {
		if c.Oversized {
			logger.WarnContext(ctx, "chunk exceeds size cap",
				"chunk_id", c.ID,
				"chars", c.RawChars,
				"max_chars", p.chunker.Options().MaxChars,
			)
		}
	}

	dir, err := WriteChunks(p.cfg.ChunkDir, articleID, chunks)
	if err != nil {
		return IngestResult{}, err
	}

	res := IngestResult{
		ArticleID: articleID,
		DocPath:   docPath,
		ChunkDir:  dir,
		Stats:     ComputeChunkStats(chunks),
	}
	logger.InfoContext(ctx, "ingested article", "doc_path", docPath, "chunks", len(chunks))
	return res, nil
}

// IngestOne fetches one article, rewrites its document and chunks and
// uploads the resulting delta.
func (p *Pipeline) IngestOne(ctx context.Context, id string) (SyncReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a, err := p.source.GetArticle(ctx, id)
	if err != nil {
		return SyncReport{}, service.WrapError(err, "failed to fetch article")
	}

	res, err := p.ingestArticle(ctx, a, true)
	if err != nil {
		return SyncReport{}, err
	}

	report := SyncReport{Ingested: []IngestResult{res}}
	if t, err := a.UpdatedTime(); err == nil {
		report.Watermark = t
	}

	report.Upload, err = p.uploadDelta(ctx)
	return report, err
}

// SyncAll ingests every listed article and uploads the delta. Articles that
// fail to ingest are logged and skipped. The watermark is left zero when the
// upload fails.
func (p *Pipeline) SyncAll(ctx context.Context) (SyncReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	articles, err := p.source.ListArticles(ctx, p.cfg.ArticleLimit)
	if err != nil {
		return SyncReport{}, service.WrapError(err, "failed to list articles")
	}

	report := p.ingestAll(ctx, articles)

	report.Upload, err = p.uploadDelta(ctx)
	if err != nil {
		return report, err
	}
	report.Watermark = resumeWatermark(ctx, time.Time{}, articles, report.Failed)
	return report, nil
}

// Refresh ingests the listed articles updated after since and uploads the
// delta, including chunk directories left pending by an earlier failure.
// The returned watermark is the newest updated_at ingested, held below the
// oldest article that failed to ingest, or since when nothing is newer or
// the upload fails.
func (p *Pipeline) Refresh(ctx context.Context, since time.Time) (SyncReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	logger := contextutil.LoggerFromContext(ctx)

	articles, err := p.source.ListArticles(ctx, p.cfg.ArticleLimit)
	if err != nil {
		return SyncReport{Watermark: since}, service.WrapError(err, "failed to list articles")
	}

	var fresh []helpcenter.Article
	for _, a := range articles {
		t, err := a.UpdatedTime()
		if err != nil {
			continue
		}
		if t.After(since) {
			fresh = append(fresh, a)
		}
	}

	report := SyncReport{Watermark: since}
	if len(fresh) == 0 {
		logger.InfoContext(ctx, "no new or updated articles", "since", since)
	} else {
		ingested := p.ingestAll(ctx, fresh)
		report.Ingested = ingested.Ingested
		report.Failed = ingested.Failed
	}

	report.Upload, err = p.uploadDelta(ctx)
	if err != nil {
		return report, err
	}
	report.Watermark = resumeWatermark(ctx, since, fresh, report.Failed)
	return report, nil
}

// Run performs a full sync, then refreshes every interval until ctx is done.
// Failed runs are logged and retried on the next tick.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) error {
	logger := contextutil.LoggerFromContext(ctx)

	var watermark time.Time
	report, err := p.SyncAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "initial sync failed", "error", err)
	}
	watermark = report.Watermark

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if watermark.IsZero() {
			report, err = p.SyncAll(ctx)
		} else {
			report, err = p.Refresh(ctx, watermark)
		}
		if err != nil {
			logger.ErrorContext(ctx, "refresh failed", "error", err)
		}
		if report.Watermark.After(watermark) {
			watermark = report.Watermark
		}
	}
}

func (p *Pipeline) ingestAll(ctx context.Context, articles []helpcenter.Article) SyncReport {
	logger := contextutil.LoggerFromContext(ctx)

	var report SyncReport
	for _, a := range articles {
		if ctx.Err() != nil {
			break
		}
		res, err := p.ingestArticle(ctx, a, true)
		if err != nil {
			logger.ErrorContext(ctx, "failed to ingest article", "article_id", a.IDString(), "error", err)
			report.Failed = append(report.Failed, a.IDString())
			continue
		}
		report.Ingested = append(report.Ingested, res)
	}

	logger.InfoContext(ctx, "ingest completed", "articles", len(articles), "success", len(report.Ingested), "errors", len(report.Failed))
	return report
}

// resumeWatermark is the point the next refresh may resume from: the newest
// updated_at in articles, held just below the oldest failed article so it is
// listed again, and never earlier than since.
func resumeWatermark(ctx context.Context, since time.Time, articles []helpcenter.Article, failed []string) time.Time {
	watermark := since
	if newest := newestUpdate(ctx, articles); newest.After(watermark) {
		watermark = newest
	}

	failedIDs := make(map[string]bool, len(failed))
	for _, id := range failed {
		failedIDs[id] = true
	}
	for _, a := range articles {
		if !failedIDs[a.IDString()] {
			continue
		}
		t, err := a.UpdatedTime()
		if err != nil {
			continue
		}
		if limit := t.Add(-time.Nanosecond); limit.Before(watermark) {
			watermark = limit
		}
	}

	if watermark.Before(since) {
		return since
	}
	return watermark
}

func newestUpdate(ctx context.Context, articles []helpcenter.Article) time.Time {
	logger := contextutil.LoggerFromContext(ctx)

	var newest time.Time
	for _, a := range articles {
		t, err := a.UpdatedTime()
		if err != nil {
			logger.DebugContext(ctx, "skipping article without updated_at", "article_id", a.IDString(), "error", err)
			continue
		}
		if t.After(newest) {
			newest = t
		}
	}
	return newest
}

// UploadDelta uploads every added or updated article directory under the
// chunk root and records it in the state store.
func (p *Pipeline) UploadDelta(ctx context.Context) (UploadReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uploadDelta(ctx)
}

func (p *Pipeline) uploadDelta(ctx context.Context) (UploadReport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	st, err := p.store.Load(ctx)
	if err != nil {
		return UploadReport{}, fmt.Errorf("failed to load state: %w", err)
	}

	delta, err := CollectDelta(p.cfg.ChunkDir, st)
	if err != nil {
		return UploadReport{}, err
	}

	report := UploadReport{Added: delta.Added, Updated: delta.Updated, Skipped: delta.Skipped}
	pending := delta.Pending()
	if len(pending) == 0 {
		report.VectorStoreID = st.VectorStoreID
		logger.InfoContext(ctx, "delta is empty", "skipped", len(delta.Skipped))
		return report, nil
	}

	storeID, err := p.index.EnsureStore(ctx, st.VectorStoreID, p.cfg.VectorStoreName)
	if err != nil {
		return report, fmt.Errorf("failed to ensure vector store: %w", err)
	}
	report.VectorStoreID = storeID
	if storeID != st.VectorStoreID {
		st.VectorStoreID = storeID
		if err := p.store.Save(ctx, st); err != nil {
			return report, fmt.Errorf("failed to save state: %w", err)
		}
	}

	logger.InfoContext(ctx, "uploading delta",
		"added", len(delta.Added),
		"updated", len(delta.Updated),
		"skipped", len(delta.Skipped),
		"vector_store_id", storeID,
	)

	for _, id := range pending {
		fileIDs, err := p.uploadArticle(contextutil.With(ctx, "article_id", id), st, storeID, id)
		if err != nil {
			return report, fmt.Errorf("failed to upload article %s: %w", id, err)
		}
		report.FilesUploaded += len(fileIDs)

		st.Put(id, state.Article{Hash: delta.Hashes[id], FileIDs: fileIDs})
		if err := p.store.Save(ctx, st); err != nil {
			return report, fmt.Errorf("failed to save state: %w", err)
		}
	}

	return report, nil
}

func (p *Pipeline) uploadArticle(ctx context.Context, st *state.State, storeID, articleID string) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := listChunkFiles(filepath.Join(p.cfg.ChunkDir, articleID))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, service.ErrNoChunkFiles
	}

	if prev, ok := st.Get(articleID); ok && p.cfg.DeleteOldFiles {
		for _, fid := range prev.FileIDs {
			if err := p.index.RemoveFile(ctx, storeID, fid); err != nil {
				return nil, err
			}
		}
	}

	// File ids keep chunk file order whatever order uploads finish in.
	fileIDs := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.UploadConcurrency)
	for i, path := range files {
		g.Go(func() error {
			fid, err := p.index.UploadFile(gctx, path)
			if err != nil {
				return err
			}
			logger.DebugContext(gctx, "uploaded chunk file", "path", path, "file_id", fid)
			fileIDs[i] = fid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch, err := p.index.CreateFileBatch(ctx, storeID, fileIDs)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "created file batch", "batch_id", batch.ID, "files", len(fileIDs))

	batch, err = p.waitForBatch(ctx, storeID, batch)
	if err != nil {
		return nil, err
	}
	if batch.Status != vectorstore.StatusCompleted {
		return nil, fmt.Errorf("%w: batch %s ended %s (failed=%d cancelled=%d)",
			service.ErrBatchFailed, batch.ID, batch.Status, batch.Counts.Failed, batch.Counts.Cancelled)
	}
	return fileIDs, nil
}

func (p *Pipeline) waitForBatch(ctx context.Context, storeID string, batch vectorstore.FileBatch) (vectorstore.FileBatch, error) {
	logger := contextutil.LoggerFromContext(ctx)

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for !batch.Terminal() {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()
		case <-ticker.C:
		}

		var err error
		batch, err = p.index.GetFileBatch(ctx, storeID, batch.ID)
		if err != nil {
			return batch, err
		}
		logger.DebugContext(ctx, "polled file batch",
			"batch_id", batch.ID,
			"status", batch.Status,
			"completed", batch.Counts.Completed,
			"in_progress", batch.Counts.InProgress,
			"failed", batch.Counts.Failed,
		)
	}
	return batch, nil
}
