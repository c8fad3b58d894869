package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"pdfrag/internal/contextutil"
	"pdfrag/internal/storage"
)

// Extractor reads every PDF in a directory and produces one text
// record per page. Files are processed in name order so downstream
// chunk ids are stable across runs.
type Extractor struct {
	pdfDir   string
	manifest *Manifest
	logger   *slog.Logger
}

// NewExtractor creates an extractor over pdfDir. A nil manifest is
// treated as empty.
func NewExtractor(pdfDir string, manifest *Manifest) *Extractor {
	if manifest == nil {
		manifest = &Manifest{}
	}
	return &Extractor{
		pdfDir:   pdfDir,
		manifest: manifest,
		logger:   slog.Default(),
	}
}

func (e *Extractor) getLogger(ctx context.Context) *slog.Logger {
	if logger := contextutil.LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return e.logger
}

// ExtractPages walks the PDF directory in name order and extracts
// plain text from every page of every PDF. Pages that are empty after
// trimming are dropped with a warning; a file that cannot be parsed
// fails the whole run.
func (e *Extractor) ExtractPages(ctx context.Context) ([]storage.PageRecord, error) {
	logger := e.getLogger(ctx)

	entries, err := os.ReadDir(e.pdfDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: PDF directory %s", storage.ErrNotFound, e.pdfDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF directory %s: %w", e.pdfDir, err)
	}

	pages := []storage.PageRecord{}
	var fileCount int

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		filePages, err := e.extractFile(ctx, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", entry.Name(), err)
		}

		fileCount++
		pages = append(pages, filePages...)
	}

	if fileCount == 0 {
		return nil, fmt.Errorf("%w: no PDF files in %s", storage.ErrNotFound, e.pdfDir)
	}

	logger.InfoContext(ctx, "Extraction complete",
		"files", fileCount,
		"pages", len(pages))

	return pages, nil
}

// extractFile pulls the text of every page in one PDF.
func (e *Extractor) extractFile(ctx context.Context, name string) ([]storage.PageRecord, error) {
	logger := e.getLogger(ctx)
	path := filepath.Join(e.pdfDir, name)

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	docID, title := e.manifest.Resolve(name)

	total := reader.NumPage()
	records := make([]storage.PageRecord, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			logger.WarnContext(ctx, "Skipping unreadable page",
				"file", name,
				"page", i)
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.WarnContext(ctx, "Failed to extract page text",
				"file", name,
				"page", i,
				"error", err)
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			logger.WarnContext(ctx, "Skipping empty page",
				"file", name,
				"page", i)
			continue
		}

		records = append(records, storage.PageRecord{
			DocID:     docID,
			Title:     title,
			Page:      i,
			Source:    name,
			Text:      text,
			CharCount: utf8.RuneCountInString(text),
		})
	}

	return records, nil
}
