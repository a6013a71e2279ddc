// Package wordlist reads the word-list files that stay tracked for the
// whole session and watches them for changes.
package wordlist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/CWBudde/wordcomplete-lsp/internal/document"
	"github.com/CWBudde/wordcomplete-lsp/internal/uri"
)

// DefaultLanguageID is used for files whose extension is not recognized.
const DefaultLanguageID = "plaintext"

// maxConcurrentReads bounds the number of files read at once.
const maxConcurrentReads = 8

var languageByExtension = map[string]string{
	".txt":  "plaintext",
	".md":   "markdown",
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".php":  "php",
	".sh":   "shellscript",
	".bash": "shellscript",
	".elm":  "elm",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".html": "html",
	".css":  "css",
}

// LanguageID infers the language of a word-list file from its extension.
func LanguageID(path string) string {
	if id, ok := languageByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return id
	}

	return DefaultLanguageID
}

// File is a word-list file loaded from disk. Its content is a snapshot; a
// changed file is read again rather than updated in place.
type File struct {
	path string
	doc  *document.Document
}

// Read loads the file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}

	return &File{
		path: path,
		doc:  document.New(uri.FromPath(path), LanguageID(path), 0, string(data)),
	}, nil
}

// Path returns the file system path of f.
func (f *File) Path() string {
	return f.path
}

// URI returns the file URI of f.
func (f *File) URI() string {
	return f.doc.URI()
}

// LanguageID returns the inferred language of f.
func (f *File) LanguageID() string {
	return f.doc.LanguageID()
}

// Text returns the full content of f.
func (f *File) Text() (string, error) {
	return f.doc.Text()
}

// LineAt returns line n of f.
func (f *File) LineAt(n int) (string, error) {
	return f.doc.LineAt(n)
}

// LineCount returns the number of lines in f.
func (f *File) LineCount() int {
	return f.doc.LineCount()
}

// LoadAll reads every path concurrently. Files that cannot be read are
// logged and left out; the result keeps the order of paths. An error is
// returned only when ctx is cancelled.
func LoadAll(ctx context.Context, paths []string) ([]*File, error) {
	results := make([]*File, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			f, err := Read(p)
			if err != nil {
				log.Warnf("Skipping word list: %v", err)
				return nil
			}

			results[i] = f

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]*File, 0, len(results))

	for _, f := range results {
		if f != nil {
			files = append(files, f)
		}
	}

	return files, nil
}
