package lsp

import (
	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/wordcomplete-lsp/internal/server"
)

// DidOpen handles the textDocument/didOpen notification.
// The document is stored and its words are indexed.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warn("server instance not available in DidOpen")
		return nil
	}

	item := params.TextDocument

	log.Debugf("Document opened: %s (version %d, language %s, %d bytes)",
		item.URI, item.Version, item.LanguageID, len(item.Text))

	srv.Open(item.URI, item.LanguageID, item.Version, item.Text)

	return nil
}

// DidClose handles the textDocument/didClose notification.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warn("server instance not available in DidClose")
		return nil
	}

	srv.Close(params.TextDocument.URI)

	log.Debugf("Document closed: %s", params.TextDocument.URI)

	return nil
}

// DidChange handles the textDocument/didChange notification.
// It supports both full and incremental sync modes.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warn("server instance not available in DidChange")
		return nil
	}

	docURI := params.TextDocument.URI

	if err := srv.Change(docURI, params.TextDocument.Version, params.ContentChanges); err != nil {
		// The index is stale until the next successful update; the
		// client has nothing to act on.
		log.Errorf("didChange %s: %v", docURI, err)
	}

	return nil
}

// DidSave handles the textDocument/didSave notification.
func DidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warn("server instance not available in DidSave")
		return nil
	}

	srv.Save(params.TextDocument.URI)

	return nil
}
