// Package update keeps token inventories in sync with live edits.
//
// Single-line edits are applied as line patches: the tokens of the old line
// text are removed from the inventory and the tokens of the new line text
// added. Anything else (several changes in one notification, ranges spanning
// lines, inserted line breaks, whole-document replacement) falls back to a
// full reindex.
package update

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/CWBudde/wordcomplete-lsp/internal/index"
	"github.com/CWBudde/wordcomplete-lsp/internal/tokenizer"
)

// Change describes one content change of an edit notification. Lines refer
// to the document before the change.
type Change struct {
	StartLine int
	EndLine   int
	Text      string

	// Full marks a whole-document replacement.
	Full bool
}

// SingleLine reports whether the change replaces text inside one line
// without adding or removing lines.
func (c Change) SingleLine() bool {
	return !c.Full && c.StartLine == c.EndLine && !strings.ContainsAny(c.Text, "\r\n")
}

// Edit is one edit notification for a document.
type Edit struct {
	Changes []Change
}

// Result reports how an edit was applied.
type Result int

const (
	// Skipped means the edit did not touch the index.
	Skipped Result = iota
	// Patched means a single line was patched in place.
	Patched
	// Reindexed means the document was fully re-parsed.
	Reindexed
)

func (r Result) String() string {
	switch r {
	case Patched:
		return "patched"
	case Reindexed:
		return "reindexed"
	default:
		return "skipped"
	}
}

// Engine applies edits to the inventories of an index.Store and keeps a copy
// of the current lines of every active document.
//
// A document without a line cache is Uncached; Activate or any reindex moves
// it to Cached; Deactivate moves it back. Engine is not safe for concurrent
// use; callers serialise edits and queries.
type Engine struct {
	store  *index.Store
	caches map[string][]string
}

// NewEngine creates an engine for store.
func NewEngine(store *index.Store) *Engine {
	return &Engine{
		store:  store,
		caches: make(map[string][]string),
	}
}

// Activate snapshots the lines of doc.
func (e *Engine) Activate(doc index.Document) error {
	lines, err := snapshot(doc)
	if err != nil {
		delete(e.caches, doc.URI())
		return err
	}

	e.caches[doc.URI()] = lines

	return nil
}

// Deactivate drops the line cache of docURI.
func (e *Engine) Deactivate(docURI string) {
	delete(e.caches, docURI)
}

// Cached reports whether docURI has a line cache.
func (e *Engine) Cached(docURI string) bool {
	_, ok := e.caches[docURI]
	return ok
}

// CachedLines returns a copy of the line cache of docURI.
func (e *Engine) CachedLines(docURI string) ([]string, bool) {
	lines, ok := e.caches[docURI]
	if !ok {
		return nil, false
	}

	return append([]string(nil), lines...), true
}

// Refresh fully reindexes doc and re-snapshots its lines.
func (e *Engine) Refresh(doc index.Document) error {
	if err := e.store.Reindex(doc); err != nil {
		e.Deactivate(doc.URI())
		return err
	}

	return e.Activate(doc)
}

// ApplyEdit brings the inventory of doc in line with its content after edit.
// doc must already reflect the edit. Documents without an inventory are left
// alone.
func (e *Engine) ApplyEdit(doc index.Document, edit Edit) (Result, error) {
	docURI := doc.URI()

	if !e.store.Tracked(docURI) {
		log.Debugf("No index for %s, ignoring edit", docURI)
		return Skipped, nil
	}

	if len(edit.Changes) == 0 {
		return Skipped, nil
	}

	if len(edit.Changes) == 1 && edit.Changes[0].SingleLine() {
		if lines, ok := e.caches[docURI]; ok && len(lines) == doc.LineCount() {
			return e.patchLine(doc, lines, edit.Changes[0].StartLine)
		}
	}

	return e.reindex(doc)
}

func (e *Engine) patchLine(doc index.Document, lines []string, n int) (Result, error) {
	if n < 0 || n >= len(lines) {
		return e.reindex(doc)
	}

	newText, err := doc.LineAt(n)
	if err != nil {
		// The inventory no longer matches the document; force the next
		// edit through a full reindex.
		e.Deactivate(doc.URI())
		return Skipped, fmt.Errorf("read line %d of %s: %w", n, doc.URI(), err)
	}

	splitter := e.store.Settings().Splitter(doc.LanguageID())
	removed := tokenizer.Tokenize(lines[n], splitter)
	added := tokenizer.Tokenize(newText, splitter)

	if err := e.store.Patch(doc.URI(), removed, added); err != nil {
		return Skipped, err
	}

	lines[n] = newText

	return Patched, nil
}

func (e *Engine) reindex(doc index.Document) (Result, error) {
	if err := e.Refresh(doc); err != nil {
		if errors.Is(err, index.ErrExcluded) {
			return Skipped, nil
		}

		return Skipped, err
	}

	return Reindexed, nil
}

func snapshot(doc index.Document) ([]string, error) {
	count := doc.LineCount()
	lines := make([]string, count)

	for i := range count {
		line, err := doc.LineAt(i)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", doc.URI(), err)
		}

		lines[i] = line
	}

	return lines, nil
}
