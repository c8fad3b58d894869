package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"pdfrag/internal/config"
	"pdfrag/internal/llm"
	"pdfrag/internal/rag"
	"pdfrag/internal/vectorstore"
)

func main() {
	k := flag.Int("k", 0, "number of chunks to retrieve (default 5, max 20)")
	docID := flag.String("doc", "", "restrict retrieval to one document id")
	showContext := flag.Bool("show-context", false, "print the retrieved chunks before the answer")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, `usage: ask [flags] "question"`)
		flag.PrintDefaults()
		os.Exit(2)
	}
	question := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Logs go to stderr so stdout stays clean for the answer
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

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

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	engine := rag.NewEngine(embedder, vectorStore, cfg.QdrantCollection, llmClient)

	ctx := context.Background()
	req := rag.AskRequest{Question: question, K: *k, DocID: *docID}

	if *showContext {
		askWithContext(ctx, engine, req)
		return
	}
	askStreaming(ctx, engine, req)
}

// askStreaming prints the answer as it is generated, then a compact
// source listing.
func askStreaming(ctx context.Context, engine rag.Engine, req rag.AskRequest) {
	resp, err := engine.AskStream(ctx, req, func(chunk string) error {
		fmt.Print(chunk)
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Query failed: %v", err))
		os.Exit(1)
	}
	fmt.Println()

	if len(resp.Sources) == 0 {
		return
	}

	fmt.Println()
	color.Cyan("Sources:")
	for i, src := range resp.Sources {
		fmt.Printf("  [%d] %s p.%d (chunk %d, distance %.4f)\n",
			i+1, src.DocID, src.Page, src.ChunkID, src.Distance)
	}
}

// askWithContext prints the retrieved chunks in full before the answer,
// mirroring the order they were handed to the model.
func askWithContext(ctx context.Context, engine rag.Engine, req rag.AskRequest) {
	resp, err := engine.Ask(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Query failed: %v", err))
		os.Exit(1)
	}

	if len(resp.Sources) > 0 {
		color.Cyan("Retrieved context:")
		for i, src := range resp.Sources {
			color.Yellow("[%d] %s (%s) p.%d, chunk %d, distance %.4f",
				i+1, src.DocID, src.Title, src.Page, src.ChunkID, src.Distance)
			fmt.Println(src.Text)
			fmt.Println()
		}
	}

	color.Green("Answer:")
	fmt.Println(resp.Answer)
}
