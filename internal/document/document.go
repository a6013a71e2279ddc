// Package document keeps the text of open editor documents.
package document

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLineOutOfRange is returned for line numbers outside the document.
var ErrLineOutOfRange = errors.New("line out of range")

// Document is an open editor buffer stored as lines without terminators.
type Document struct {
	uri        string
	languageID string
	version    int32
	lines      []string
}

// New creates a document from its full text.
func New(uri, languageID string, version int32, text string) *Document {
	return &Document{
		uri:        uri,
		languageID: languageID,
		version:    version,
		lines:      SplitLines(text),
	}
}

// URI returns the document URI.
func (d *Document) URI() string {
	return d.uri
}

// LanguageID returns the editor language identifier.
func (d *Document) LanguageID() string {
	return d.languageID
}

// Version returns the last version reported by the client.
func (d *Document) Version() int32 {
	return d.version
}

// SetVersion records the client's document version.
func (d *Document) SetVersion(version int32) {
	d.version = version
}

// Text returns the full text joined with "\n".
func (d *Document) Text() (string, error) {
	return strings.Join(d.lines, "\n"), nil
}

// LineAt returns line n (zero based).
func (d *Document) LineAt(n int) (string, error) {
	if n < 0 || n >= len(d.lines) {
		return "", fmt.Errorf("line %d of %s (0-%d): %w", n, d.uri, len(d.lines)-1, ErrLineOutOfRange)
	}

	return d.lines[n], nil
}

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Lines returns a copy of all lines.
func (d *Document) Lines() []string {
	lines := make([]string, len(d.lines))
	copy(lines, d.lines)

	return lines
}

// SplitLines splits text on "\n", "\r\n" and "\r".
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	return strings.Split(text, "\n")
}
