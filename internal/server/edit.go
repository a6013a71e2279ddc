package server

import (
	"fmt"

	"github.com/charmbracelet/log"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/wordcomplete-lsp/internal/update"
)

// Change applies the content changes of one didChange notification to the
// open document and brings its inventory up to date.
func (s *Server) Change(docURI string, version int32, changes []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.Get(docURI)
	if !ok {
		log.Warnf("Change for unknown document %s", docURI)
		return nil
	}

	edit := update.Edit{Changes: make([]update.Change, 0, len(changes))}

	for _, change := range changes {
		if err := doc.Apply(change); err != nil {
			// The buffer may hold part of the edit; resync from whatever
			// it holds now.
			s.refresh(doc)
			return fmt.Errorf("apply change to %s: %w", docURI, err)
		}

		edit.Changes = append(edit.Changes, toChange(change))
	}

	doc.SetVersion(version)
	s.activate(docURI)

	if s.settings.UpdateOnlyOnSave || !s.settings.ShowCurrentDocument {
		// The line cache no longer matches the buffer.
		s.engine.Deactivate(docURI)
		s.metrics.EditsTotal.WithLabelValues(update.Skipped.String()).Inc()

		return nil
	}

	result, err := s.engine.ApplyEdit(doc, edit)
	s.metrics.EditsTotal.WithLabelValues(result.String()).Inc()

	if err != nil {
		return fmt.Errorf("update index of %s: %w", docURI, err)
	}

	log.Debugf("Edit of %s (version %d): %s", docURI, version, result)

	return nil
}

func toChange(change any) update.Change {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEvent:
		if c.Range == nil {
			return update.Change{Text: c.Text, Full: true}
		}

		return update.Change{
			StartLine: int(c.Range.Start.Line),
			EndLine:   int(c.Range.End.Line),
			Text:      c.Text,
		}
	case protocol.TextDocumentContentChangeEventWhole:
		return update.Change{Text: c.Text, Full: true}
	default:
		return update.Change{Full: true}
	}
}
