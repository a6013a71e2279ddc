package server

import (
	"time"

	"github.com/CWBudde/wordcomplete-lsp/internal/completion"
)

// Suggestion is one completion candidate ready for presentation.
type Suggestion struct {
	Word string

	// Detail is the display path of the document the word came from.
	Detail string
}

// CompletionResult is the answer to one completion request.
type CompletionResult struct {
	Suggestions []Suggestion

	// Incomplete is set when the list was capped at MaxItems.
	Incomplete bool
}

// Complete collects the candidates for a request at line and UTF-16
// character of the open document docURI.
func (s *Server) Complete(docURI string, line, character int) (CompletionResult, error) {
	started := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.Get(docURI)
	if !ok {
		return CompletionResult{}, nil
	}

	s.activate(docURI)

	q, err := s.aggregator.Resolve(doc, line, character)
	if err != nil {
		return CompletionResult{}, err
	}

	candidates := s.aggregator.Collect(doc, q)
	candidates, incomplete := completion.Limit(candidates, q.Active, s.settings.MaxItems)

	suggestions := make([]Suggestion, len(candidates))
	for i, c := range candidates {
		detail, _ := s.index.DisplayPath(c.Source)
		suggestions[i] = Suggestion{Word: c.Word, Detail: detail}
	}

	s.metrics.ObserveCompletion(started, len(suggestions))

	return CompletionResult{Suggestions: suggestions, Incomplete: incomplete}, nil
}
