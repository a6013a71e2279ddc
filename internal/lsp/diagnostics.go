package lsp

import (
	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/wordcomplete-lsp/internal/config"
)

// ReportSettingsWarnings shows every problem found while compiling the
// settings, such as an invalid pattern that was replaced by the default.
// It returns the number of messages sent.
func ReportSettingsWarnings(context *glsp.Context, settings *config.Settings) int {
	if settings == nil || len(settings.Warnings) == 0 {
		return 0
	}

	if context == nil || context.Notify == nil {
		log.Warn("Cannot report settings warnings - context or Notify is nil")
		return 0
	}

	for _, warning := range settings.Warnings {
		context.Notify(protocol.ServerWindowShowMessage, protocol.ShowMessageParams{
			Type:    protocol.MessageTypeWarning,
			Message: config.Namespace + ": " + warning,
		})
	}

	log.Debugf("Reported %d settings warning(s)", len(settings.Warnings))

	return len(settings.Warnings)
}
