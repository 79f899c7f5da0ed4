package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"helpcenter-sync/internal/contextutil"
	"helpcenter-sync/internal/indexer"
)

// Syncer runs full or single-article syncs.
type Syncer interface {
	SyncAll(ctx context.Context) (indexer.SyncReport, error)
	IngestOne(ctx context.Context, id string) (indexer.SyncReport, error)
}

// SyncHandler starts syncs in the background.
type SyncHandler struct {
	syncer  Syncer
	running atomic.Bool
	// done, when set, receives the result of each background run.
	done func(indexer.SyncReport, error)
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncer Syncer) *SyncHandler {
	return &SyncHandler{syncer: syncer}
}

// SyncResponse acknowledges a started sync.
type SyncResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	ArticleID string `json:"article_id,omitempty"`
}

// ServeHTTP starts a sync and answers 202 Accepted, or 409 Conflict while
// another sync started here is still running. ?article=ID syncs one article.
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	articleID := strings.TrimSpace(r.URL.Query().Get("article"))
	logger.InfoContext(ctx, "sync triggered via API", "article_id", articleID)

	if !h.running.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "Sync already running")
		return
	}

	runCtx := context.WithoutCancel(ctx)
	go func() {
		var (
			report indexer.SyncReport
			err    error
		)
		if articleID != "" {
			report, err = h.syncer.IngestOne(runCtx, articleID)
		} else {
			report, err = h.syncer.SyncAll(runCtx)
		}
		if err != nil {
			logger.ErrorContext(runCtx, "sync failed", "article_id", articleID, "error", err)
		} else {
			logger.InfoContext(runCtx, "sync finished",
				"article_id", articleID,
				"ingested", len(report.Ingested),
				"files_uploaded", report.Upload.FilesUploaded,
			)
		}
		h.running.Store(false)
		if h.done != nil {
			h.done(report, err)
		}
	}()

	message := "Sync started. Check server logs for progress."
	if articleID != "" {
		message = "Article sync started. Check server logs for progress."
	}
	writeJSON(w, http.StatusAccepted, SyncResponse{Message: message, Status: "accepted", ArticleID: articleID})
}
