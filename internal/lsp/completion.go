package lsp

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/wordcomplete-lsp/internal/server"
)

// sortPrefix keeps word suggestions below those of other providers in
// clients that merge several completion sources.
const sortPrefix = "zz"

// Completion handles the textDocument/completion request.
// It suggests every word seen in the tracked documents.
func Completion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	startTime := time.Now()

	defer func() {
		log.Debugf("Completion took %v", time.Since(startTime))
	}()

	empty := &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}

	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warn("server instance not available in Completion")
		return empty, nil
	}

	docURI := params.TextDocument.URI
	position := params.Position

	result, err := srv.Complete(docURI, int(position.Line), int(position.Character))
	if err != nil {
		log.Errorf("Completion at %s:%d:%d: %v", docURI, position.Line, position.Character, err)
		return empty, nil
	}

	kind := protocol.CompletionItemKindText
	items := make([]protocol.CompletionItem, 0, len(result.Suggestions))

	for _, s := range result.Suggestions {
		sortText := sortPrefix + s.Word
		item := protocol.CompletionItem{
			Label:    s.Word,
			Kind:     &kind,
			SortText: &sortText,
		}

		if s.Detail != "" {
			detail := s.Detail
			item.Detail = &detail
		}

		items = append(items, item)
	}

	log.Debugf("Completion at %s:%d:%d: %d items", docURI, position.Line, position.Character, len(items))

	return &protocol.CompletionList{
		IsIncomplete: result.Incomplete,
		Items:        items,
	}, nil
}
