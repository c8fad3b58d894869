package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Manifest supplies per-document metadata overrides keyed by PDF file
// name. Files absent from the manifest fall back to metadata derived
// from their names.
type Manifest struct {
	Documents map[string]DocumentMeta `yaml:"documents"`
}

// DocumentMeta overrides the derived doc id and title for one document.
type DocumentMeta struct {
	DocID string `yaml:"doc_id"`
	Title string `yaml:"title"`
}

// LoadManifest reads a manifest file. An empty path yields an empty
// manifest, since the manifest is optional.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return &Manifest{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Resolve returns the doc id and title for a PDF file name. Manifest
// entries win; otherwise the doc id is the file name stem and the
// title is derived from it.
func (m *Manifest) Resolve(filename string) (docID, title string) {
	name := filepath.Base(filename)
	docID = strings.TrimSuffix(name, filepath.Ext(name))
	title = titleFromFilename(filename)

	if m == nil || m.Documents == nil {
		return docID, title
	}
	if meta, ok := m.Documents[name]; ok {
		if meta.DocID != "" {
			docID = meta.DocID
		}
		if meta.Title != "" {
			title = meta.Title
		}
	}
	return docID, title
}

// titleFromFilename derives a display title from a file name by
// dropping the extension, treating hyphens and underscores as word
// separators, and capitalizing each word.
func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	ext := filepath.Ext(name)
	if ext != "" {
		name = name[:len(name)-len(ext)]
	}

	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}
