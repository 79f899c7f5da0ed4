// Command ingest runs one sync step from the command line.
//
//	ingest -article 123   ingest and upload one article
//	ingest -all           ingest every listed article and upload the delta
//	ingest -chunk FILE    print the chunks of a local document as JSON
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"helpcenter-sync/internal/app"
	"helpcenter-sync/internal/chunking"
	"helpcenter-sync/internal/config"
	"helpcenter-sync/internal/indexer"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup runs before exit.
func run(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	articleID := fs.String("article", "", "ingest and upload a single article by id")
	all := fs.Bool("all", false, "ingest all listed articles and upload the delta")
	chunkFile := fs.String("chunk", "", "print the chunks of a local Markdown document")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	modes := 0
	for _, set := range []bool{*articleID != "", *all, *chunkFile != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		fs.Usage()
		return 2
	}

	// Chunking a local file needs no backend, so only its options are checked.
	if *chunkFile != "" {
		cfg, err := config.Read()
		if err != nil {
			log.Printf("Failed to load configuration: %v", err)
			return 1
		}
		if err := cfg.Chunking.Validate(); err != nil {
			log.Printf("Invalid chunking options: %v", err)
			return 1
		}
		if err := printChunks(*chunkFile, cfg.Chunking); err != nil {
			log.Printf("Failed to chunk %s: %v", *chunkFile, err)
			return 1
		}
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	logger, err := app.NewLogger(cfg, os.Stderr)
	if err != nil {
		log.Printf("Failed to configure logging: %v", err)
		return 1
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("Failed to close resources", "error", err)
		}
	}()

	var report indexer.SyncReport
	if *articleID != "" {
		report, err = a.Pipeline.IngestOne(ctx, *articleID)
	} else {
		report, err = a.Pipeline.SyncAll(ctx)
	}
	if printErr := printJSON(report); printErr != nil {
		slog.Error("Failed to print report", "error", printErr)
	}
	if err != nil {
		slog.Error("Sync failed", "error", err)
		return 1
	}
	return 0
}

func printChunks(path string, opts chunking.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	chunks := chunking.Split(string(data), opts)
	return printJSON(struct {
		Stats  indexer.ChunkStats `json:"stats"`
		Chunks []chunking.Chunk   `json:"chunks"`
	}{
		Stats:  indexer.ComputeChunkStats(chunks),
		Chunks: chunks,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
