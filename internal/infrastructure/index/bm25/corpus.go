package bm25

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Chunks shorter than this are noise (headings, separators) and are skipped.
const minChunkChars = 50

type Chunk struct {
	Content string
	Source  string
}

// LoadCorpus walks dir for markdown and plain-text files and splits each into
// paragraph chunks. A missing directory yields an empty corpus, not an error.
func LoadCorpus(dir string) ([]Chunk, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var chunks []Chunk
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read corpus file %s: %w", path, err)
		}
		chunks = append(chunks, SplitDocument(string(data), filepath.Base(path))...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus dir: %w", err)
	}
	return chunks, nil
}

// SplitDocument breaks a document into paragraph chunks on blank lines,
// dropping fragments below the minimum size.
func SplitDocument(text, source string) []Chunk {
	var chunks []Chunk
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if len(para) <= minChunkChars {
			continue
		}
		chunks = append(chunks, Chunk{Content: para, Source: source})
	}
	return chunks
}
