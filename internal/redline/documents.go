package redline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Document is a reviewable file discovered in the context directory.
type Document struct {
	Path       string    `json:"path"`     // absolute path
	RelPath    string    `json:"rel_path"` // relative to the context directory
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// DiscoverDocuments walks the context directory and returns the files
// matching any of the glob patterns, most recently modified first.
func DiscoverDocuments(contextDir string, globs []string) ([]Document, error) {
	absDir, err := filepath.Abs(contextDir)
	if err != nil {
		return nil, fmt.Errorf("resolve context dir: %w", err)
	}

	var docs []Document
	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries we can't read
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDir {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absDir, path)
		if err != nil {
			return nil
		}
		if !matchesAny(rel, globs) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		docs = append(docs, Document{
			Path:       path,
			RelPath:    rel,
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk context dir: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ModifiedAt.After(docs[j].ModifiedAt)
	})
	return docs, nil
}

// Latest returns the most recently modified document, or false when the
// list is empty.
func Latest(docs []Document) (Document, bool) {
	if len(docs) == 0 {
		return Document{}, false
	}
	return docs[0], true
}

// ReadDocument returns the content of a document file.
func ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

// matchesAny matches a slash-normalized relative path against the glob
// patterns.
func matchesAny(relPath string, globs []string) bool {
	rel := filepath.ToSlash(relPath)
	for _, pattern := range globs {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
