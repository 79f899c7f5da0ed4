package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"helpcenter-sync/internal/chunking"
	"helpcenter-sync/internal/contextutil"
	"helpcenter-sync/internal/indexer"
)

const maxChunkBodyBytes = 5 << 20

// ChunkHandler chunks a posted document without touching disk or the index.
type ChunkHandler struct {
	defaults chunking.Options
	markdown goldmark.Markdown
}

// NewChunkHandler creates a ChunkHandler whose omitted options fall back to defaults.
func NewChunkHandler(defaults chunking.Options) *ChunkHandler {
	return &ChunkHandler{
		defaults: defaults,
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// ChunkOptionsRequest overrides individual chunking options.
type ChunkOptionsRequest struct {
	TargetChars     *int  `json:"target_chars,omitempty"`
	MaxChars        *int  `json:"max_chars,omitempty"`
	OverlapChars    *int  `json:"overlap_chars,omitempty"`
	IncludeTOCChunk *bool `json:"include_toc_chunk,omitempty"`
}

// ChunkRequest represents the JSON request payload.
type ChunkRequest struct {
	Document string               `json:"document"`
	Options  *ChunkOptionsRequest `json:"options,omitempty"`
}

// ChunkView is a chunk in the response, optionally with its body rendered as HTML.
type ChunkView struct {
	chunking.Chunk
	HTML string `json:"html,omitempty"`
}

// ChunkResponse represents the HTTP response payload.
type ChunkResponse struct {
	Options chunking.Options   `json:"options"`
	Stats   indexer.ChunkStats `json:"stats"`
	Chunks  []ChunkView        `json:"chunks"`
}

func (h *ChunkHandler) resolveOptions(req *ChunkOptionsRequest) chunking.Options {
	opts := h.defaults
	if req == nil {
		return opts
	}
	if req.TargetChars != nil {
		opts.TargetChars = *req.TargetChars
	}
	if req.MaxChars != nil {
		opts.MaxChars = *req.MaxChars
	}
	if req.OverlapChars != nil {
		opts.OverlapChars = *req.OverlapChars
	}
	if req.IncludeTOCChunk != nil {
		opts.IncludeTOCChunk = *req.IncludeTOCChunk
	}
	return opts
}

// ServeHTTP accepts either a JSON ChunkRequest or a raw Markdown body.
// With ?format=html each chunk body is also rendered to HTML.
func (h *ChunkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChunkBodyBytes))
	if err != nil {
		logger.WarnContext(ctx, "failed to read request body", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req ChunkRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.Unmarshal(raw, &req); err != nil {
			logger.WarnContext(ctx, "invalid request body", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		req.Document = string(raw)
	}

	opts := h.resolveOptions(req.Options)
	if err := opts.Validate(); err != nil {
		handleServiceError(ctx, w, err, "Invalid options")
		return
	}

	chunks := chunking.Split(req.Document, opts)
	renderHTML := r.URL.Query().Get("format") == "html"

	resp := ChunkResponse{
		Options: opts,
		Stats:   indexer.ComputeChunkStats(chunks),
		Chunks:  make([]ChunkView, 0, len(chunks)),
	}
	for _, c := range chunks {
		view := ChunkView{Chunk: c}
		if renderHTML {
			var buf bytes.Buffer
			if err := h.markdown.Convert([]byte(c.Body()), &buf); err != nil {
				logger.WarnContext(ctx, "failed to render chunk", "chunk_id", c.ID, "error", err)
			} else {
				view.HTML = buf.String()
			}
		}
		resp.Chunks = append(resp.Chunks, view)
	}

	logger.InfoContext(ctx, "chunked document", "chunks", len(chunks), "oversized", resp.Stats.Oversized)
	writeJSON(w, http.StatusOK, resp)
}
