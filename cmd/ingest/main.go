package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"

	"github.com/fatih/color"

	"pdfrag/internal/config"
	"pdfrag/internal/extract"
	"pdfrag/internal/indexer"
	"pdfrag/internal/llm"
	"pdfrag/internal/storage"
	"pdfrag/internal/vectorstore"
)

func main() {
	pdfDir := flag.String("pdf-dir", "", "directory of source PDFs (overrides PDF_DIR)")
	outDir := flag.String("out", "", "artifacts directory for pages.json/chunks.json (overrides ARTIFACTS_DIR)")
	manifestPath := flag.String("manifest", "", "YAML manifest with per-document metadata (overrides MANIFEST_PATH)")
	policy := flag.String("policy", "", "chunking policy, window or paragraph (overrides CHUNK_POLICY)")
	skipExtract := flag.Bool("skip-extract", false, "reuse an existing pages.json instead of re-reading PDFs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *pdfDir != "" {
		cfg.PDFDir = *pdfDir
	}
	if *outDir != "" {
		cfg.ArtifactsDir = *outDir
	}
	if *manifestPath != "" {
		cfg.ManifestPath = *manifestPath
	}
	if *policy != "" {
		cfg.ChunkPolicy = *policy
	}

	// Logs go to stderr so stdout stays clean for the summary
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx := context.Background()

	manifest, err := extract.LoadManifest(cfg.ManifestPath)
	if err != nil {
		log.Fatalf("Failed to load manifest: %v", err)
	}

	chunker, err := indexer.NewChunker(cfg.ChunkPolicy, cfg.ChunkSize, cfg.ChunkOverlap, cfg.MaxCharsPerChunk)
	if err != nil {
		log.Fatalf("Failed to create chunker: %v", err)
	}

	embedder, err := llm.NewEmbedder(cfg.EmbeddingProvider, cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingSize)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantHost, cfg.QdrantPort)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = vectorStore.Close()
	}()

	pipeline := indexer.NewPipeline(
		extract.NewExtractor(cfg.PDFDir, manifest),
		storage.NewPageRepo(cfg.PagesPath()),
		storage.NewChunkRepo(cfg.ChunksPath()),
		chunker,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		cfg.EmbeddingSize,
	)

	stats, err := pipeline.Run(ctx, *skipExtract)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Ingestion failed: %v", err))
		os.Exit(1)
	}

	color.Green("Ingestion complete")
	fmt.Printf("  pages read:      %d\n", stats.PagesRead)
	fmt.Printf("  chunks produced: %d\n", stats.ChunksTotal)
	fmt.Printf("  chunks indexed:  %d\n", stats.ChunksKept)
	fmt.Printf("  chunks dropped:  %d\n", stats.ChunksDropped)
	if stats.ChunksKept > 0 {
		fmt.Printf("  chunk chars:     min %d, max %d, mean %.2f, p95 %d\n",
			stats.CharStats.Min, stats.CharStats.Max, stats.CharStats.Mean, stats.CharStats.P95)
	}

	if len(stats.ChunksPerDoc) > 0 {
		fmt.Println("  chunks per document:")
		docs := make([]string, 0, len(stats.ChunksPerDoc))
		for doc := range stats.ChunksPerDoc {
			docs = append(docs, doc)
		}
		sort.Strings(docs)
		for _, doc := range docs {
			fmt.Printf("    %-32s %d\n", doc, stats.ChunksPerDoc[doc])
		}
	}

	// Read the count back from the live collection as a sanity check
	if info, err := vectorStore.Info(ctx, cfg.QdrantCollection); err != nil {
		slog.Warn("Could not read collection info", "error", err)
	} else {
		fmt.Printf("  collection:      %s (%d points, %s)\n", cfg.QdrantCollection, info.PointsCount, info.Status)
	}
}
