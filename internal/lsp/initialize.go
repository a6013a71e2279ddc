package lsp

import (
	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/wordcomplete-lsp/internal/server"
	"github.com/CWBudde/wordcomplete-lsp/internal/uri"
)

const (
	serverName    = "wordcomplete-lsp"
	serverVersion = "0.1.0"
)

var (
	// serverInstance holds the global server instance
	// This is set by SetServer and accessed by handlers
	serverInstance interface{}
)

// SetServer sets the global server instance for handlers to access.
func SetServer(srv interface{}) {
	serverInstance = srv
}

// Initialize handles the LSP initialize request.
// It records the workspace folders and initialization options and
// advertises the server capabilities.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (interface{}, error) {
	if srv, ok := serverInstance.(*server.Server); ok && srv != nil {
		srv.Initialize(workspaceFolders(params), params.InitializationOptions)
	} else {
		log.Warn("server instance not available in Initialize")
	}

	if params.Trace != nil {
		protocol.SetTraceValue(*params.Trace)
	}

	changeKind := protocol.TextDocumentSyncKindIncremental
	trueVal := true
	falseVal := false

	capabilities := protocol.ServerCapabilities{
		// Text document synchronization
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
			WillSave:  &falseVal,
			Save: &protocol.SaveOptions{
				IncludeText: &falseVal,
			},
		},

		// Word completion
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"$", "@"},
			ResolveProvider:   &falseVal,
		},

		ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
			Commands: []string{CommandToggleCurrentFile},
		},

		Workspace: &protocol.ServerCapabilitiesWorkspace{
			WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{
				Supported:           &trueVal,
				ChangeNotifications: &protocol.BoolOrString{Value: true},
			},
		},
	}

	version := serverVersion

	result := protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}

	return result, nil
}

// Initialized handles the initialized notification from the client.
// Word-list files are loaded in the background from here on.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warn("server instance not available in Initialized")
		return nil
	}

	ReportSettingsWarnings(context, srv.Settings())
	srv.LoadWordListsAsync()

	return nil
}

// Shutdown handles the shutdown request.
// Background loading and the word-list watcher are stopped.
func Shutdown(context *glsp.Context) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		return nil
	}

	srv.SetShuttingDown()

	if err := srv.Shutdown(); err != nil {
		log.Warnf("Shutdown: %v", err)
	}

	return nil
}

// SetTrace handles the $/setTrace notification.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	if srv, ok := serverInstance.(*server.Server); ok && srv != nil {
		srv.SetTrace(string(params.Value))
	}

	return nil
}

// workspaceFolders returns the folder paths of the workspace, falling back
// to the root URI and root path of older clients.
func workspaceFolders(params *protocol.InitializeParams) []string {
	if len(params.WorkspaceFolders) > 0 {
		return foldersToPaths(params.WorkspaceFolders)
	}

	if params.RootURI != nil && *params.RootURI != "" {
		return []string{uri.ToPath(*params.RootURI)}
	}

	if params.RootPath != nil && *params.RootPath != "" {
		return []string{*params.RootPath}
	}

	return nil
}

func foldersToPaths(folders []protocol.WorkspaceFolder) []string {
	paths := make([]string, 0, len(folders))
	for _, f := range folders {
		paths = append(paths, uri.ToPath(f.URI))
	}

	return paths
}
