// Package lsp implements LSP protocol handlers.
package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// NewHandler wires every supported request and notification:
//   - initialize / initialized / shutdown / setTrace
//   - textDocument/didOpen, didChange, didClose, didSave
//   - textDocument/completion
//   - workspace/didChangeConfiguration, didChangeWorkspaceFolders, executeCommand
func NewHandler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		SetTrace:    SetTrace,

		TextDocumentDidOpen:    DidOpen,
		TextDocumentDidChange:  DidChange,
		TextDocumentDidClose:   DidClose,
		TextDocumentDidSave:    DidSave,
		TextDocumentCompletion: Completion,

		WorkspaceDidChangeConfiguration:    DidChangeConfiguration,
		WorkspaceDidChangeWorkspaceFolders: DidChangeWorkspaceFolders,
		WorkspaceExecuteCommand:            ExecuteCommand,
	}
}

// notify sends a notification when the context is connected to a client.
func notify(context *glsp.Context, method string, params any) {
	if context != nil && context.Notify != nil {
		context.Notify(method, params)
	}
}
