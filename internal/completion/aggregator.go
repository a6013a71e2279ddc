// Package completion turns the token inventories of every tracked document
// into the candidate list for one completion request.
package completion

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/CWBudde/wordcomplete-lsp/internal/config"
	"github.com/CWBudde/wordcomplete-lsp/internal/document"
	"github.com/CWBudde/wordcomplete-lsp/internal/index"
	"github.com/CWBudde/wordcomplete-lsp/internal/tokenizer"
)

// Editors report unreliable word ranges for these languages, so the active
// token is taken from the last splitter segment of the raw word instead.
var lastSegmentLanguages = map[string]bool{
	"elm": true,
	"php": true,
}

// Candidate is one completion suggestion and the first document, in URI
// order, that contributed it.
type Candidate struct {
	Word   string
	Source string
}

// Query describes the cursor context of a completion request.
type Query struct {
	// Raw is the non-space run under the cursor.
	Raw string
	// Active is the normalized token being typed.
	Active string
	// Prefix is the special character prefix matched in Raw, if any.
	Prefix string
}

// Aggregator answers completion requests from an index.Store.
type Aggregator struct {
	store *index.Store
}

// NewAggregator creates an aggregator over store.
func NewAggregator(store *index.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Resolve determines the active token of doc at line and UTF-16 character.
func (a *Aggregator) Resolve(doc index.Document, line, character int) (Query, error) {
	text, err := doc.LineAt(line)
	if err != nil {
		return Query{}, err
	}

	offset, err := document.ByteOffset(text, character)
	if err != nil {
		offset = len(text)
	}

	settings := a.store.Settings()
	languageID := doc.LanguageID()
	splitter := settings.Splitter(languageID)

	wordStart, wordEnd := tokenizer.WordRange(text, offset)
	raw := text[wordStart:wordEnd]

	var start, end int

	if lastSegmentLanguages[languageID] {
		parts := splitter.Split(raw, -1)
		start, end = wordEnd-len(parts[len(parts)-1]), wordEnd
	} else {
		start, end = tokenizer.Segment(text, offset, splitter)
	}

	return Query{
		Raw:    raw,
		Active: tokenizer.Normalize(text[start:end], splitter),
		Prefix: typedPrefix(settings, languageID, text, wordStart, start, end),
	}, nil
}

// typedPrefix matches the special character pattern against the word being
// typed, text[start:end]. When the splitter dropped the special character,
// the separators right before start are tried one rune at a time, nearest
// first, without leaving the non-space word that begins at wordStart.
func typedPrefix(settings *config.Settings, languageID, text string, wordStart, start, end int) string {
	if !settings.HasSpecialPrefix(languageID) {
		return ""
	}

	splitter := settings.Splitter(languageID)
	start = max(start, wordStart)
	before := text[wordStart:start]

	runStart := len(before)
	if locs := splitter.FindAllStringIndex(before, -1); len(locs) > 0 && locs[len(locs)-1][1] == len(before) {
		runStart = locs[len(locs)-1][0]
	}

	for i := len(before); ; {
		if prefix := settings.SpecialPrefix(languageID, text[wordStart+i:end]); prefix != "" {
			return prefix
		}

		if i <= runStart {
			return ""
		}

		_, size := utf8.DecodeLastRuneInString(before[:i])
		i -= size
	}
}

// Complete returns the candidates for a request in doc at line and UTF-16
// character, sorted by word. The active token is never among them.
func (a *Aggregator) Complete(doc index.Document, line, character int) ([]Candidate, error) {
	q, err := a.Resolve(doc, line, character)
	if err != nil {
		return nil, err
	}

	return a.Collect(doc, q), nil
}

// Collect pools the tokens of every document visible from doc under the
// current policy and removes q.Active.
func (a *Aggregator) Collect(doc index.Document, q Query) []Candidate {
	settings := a.store.Settings()
	queryURI := doc.URI()
	queryLanguage := doc.LanguageID()
	notSelf := settings.NonContributingToSelf(queryLanguage)

	pool := make(map[string]string)

	a.store.Visit(func(docURI, languageID string, inv *index.Inventory) {
		if docURI == queryURI && !settings.ShowCurrentDocument {
			return
		}

		if notSelf && languageID == queryLanguage {
			return
		}

		if docURI != queryURI && !settings.ShowOpenDocuments {
			return
		}

		inv.Each(func(word string) {
			if tokenizer.Length(word) < settings.MinWordLength {
				return
			}

			if _, ok := pool[word]; !ok {
				pool[word] = docURI
			}
		})
	})

	delete(pool, q.Active)

	if q.Prefix != "" {
		plain := make(map[string]string, len(pool))
		for word, source := range pool {
			plain[word] = source
		}

		for word, source := range plain {
			if _, ok := pool[q.Prefix+word]; !ok {
				pool[q.Prefix+word] = source
			}
		}

		delete(pool, q.Active)
	}

	candidates := make([]Candidate, 0, len(pool))
	for word, source := range pool {
		candidates = append(candidates, Candidate{Word: word, Source: source})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Word < candidates[j].Word
	})

	return candidates
}

// Limit caps candidates at limit entries and reports whether any were cut.
// When capping, candidates that extend active come first. A limit of zero
// means no limit.
func Limit(candidates []Candidate, active string, limit int) ([]Candidate, bool) {
	if limit <= 0 || len(candidates) <= limit {
		return candidates, false
	}

	limited := make([]Candidate, 0, limit)

	if active != "" {
		for _, c := range candidates {
			if strings.HasPrefix(c.Word, active) {
				limited = append(limited, c)
				if len(limited) == limit {
					return limited, true
				}
			}
		}
	}

	for _, c := range candidates {
		if active != "" && strings.HasPrefix(c.Word, active) {
			continue
		}

		limited = append(limited, c)
		if len(limited) == limit {
			break
		}
	}

	return limited, true
}
