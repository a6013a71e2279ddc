package lsp

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/wordcomplete-lsp/internal/server"
	"github.com/CWBudde/wordcomplete-lsp/internal/uri"
)

// CommandToggleCurrentFile flips whether the document being edited
// contributes its own words.
const CommandToggleCurrentFile = "allAutocomplete.toggleCurrentFile"

// DidChangeConfiguration handles workspace configuration changes from the client.
// The settings are expected under the "allAutocomplete" key:
//
//	{
//	  "allAutocomplete": {
//	    "minWordLength": 3,
//	    "wordListFiles": ["words.txt"]
//	  }
//	}
func DidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warn("server instance not available in DidChangeConfiguration")
		return nil
	}

	if params.Settings == nil {
		return nil
	}

	srv.UpdateSettings(params.Settings)
	ReportSettingsWarnings(context, srv.Settings())

	log.Infof("Configuration updated, %d documents tracked", srv.Index().Len())

	return nil
}

// DidChangeWorkspaceFolders handles changes to workspace folders.
// Word-list paths and display paths are resolved against the new set.
func DidChangeWorkspaceFolders(context *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warn("server instance not available in DidChangeWorkspaceFolders")
		return nil
	}

	removed := make(map[string]bool, len(params.Event.Removed))
	for _, folder := range params.Event.Removed {
		log.Infof("Workspace folder removed: %s (%s)", folder.Name, folder.URI)
		removed[uri.ToPath(folder.URI)] = true
	}

	var folders []string

	for _, f := range srv.GetWorkspaceFolders() {
		if !removed[f] {
			folders = append(folders, f)
		}
	}

	for _, folder := range params.Event.Added {
		log.Infof("Workspace folder added: %s (%s)", folder.Name, folder.URI)
		folders = append(folders, uri.ToPath(folder.URI))
	}

	srv.SetWorkspaceFolders(folders)

	return nil
}

// ExecuteCommand handles workspace/executeCommand.
func ExecuteCommand(context *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warn("server instance not available in ExecuteCommand")
		return nil, nil
	}

	switch params.Command {
	case CommandToggleCurrentFile:
		show := srv.ToggleCurrentFile()

		message := "Words from the current file are hidden"
		if show {
			message = "Words from the current file are shown"
		}

		notify(context, protocol.ServerWindowShowMessage, protocol.ShowMessageParams{
			Type:    protocol.MessageTypeInfo,
			Message: message,
		})

		return show, nil
	default:
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
}
