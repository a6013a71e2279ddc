// Package server holds the state of the word completion language server.
// Every editor event and query goes through one mutex, so the index, the
// line caches, and the settings are only ever seen in a consistent state.
package server

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/CWBudde/wordcomplete-lsp/internal/completion"
	"github.com/CWBudde/wordcomplete-lsp/internal/config"
	"github.com/CWBudde/wordcomplete-lsp/internal/document"
	"github.com/CWBudde/wordcomplete-lsp/internal/index"
	"github.com/CWBudde/wordcomplete-lsp/internal/metrics"
	"github.com/CWBudde/wordcomplete-lsp/internal/update"
	"github.com/CWBudde/wordcomplete-lsp/internal/uri"
	"github.com/CWBudde/wordcomplete-lsp/internal/wordlist"
)

// Index store operations, as reported to metrics.
const (
	opIndex   = "index"
	opReindex = "reindex"
	opRemove  = "remove"
)

// Server holds the state of the LSP server.
type Server struct {
	// documents stores all open documents
	documents *DocumentStore

	// index holds the token inventory of every tracked document
	index *index.Store

	engine     *update.Engine
	aggregator *completion.Aggregator
	metrics    *metrics.Metrics

	// watcher reloads word-list files changed on disk, created on first load
	watcher *wordlist.Watcher

	// base holds the defaults merged with the configuration file
	base config.Options

	// clientSettings is the last settings payload sent by the client
	clientSettings any

	settings *config.Settings

	// showCurrent overrides ShowCurrentDocument after toggleCurrentFile
	showCurrent *bool

	// workspaceFolders stores the workspace folders from the client
	workspaceFolders []string

	// activeURI is the document that received the latest event
	activeURI string

	trace string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu serialises every event and query
	mu sync.RWMutex

	// shutting down flag
	shuttingDown bool
}

// Option configures a Server.
type Option func(*Server)

// WithOptions sets the options the client settings are merged onto.
func WithOptions(opts config.Options) Option {
	return func(s *Server) {
		s.base = opts
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a new LSP server instance.
func New(options ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		documents: NewDocumentStore(),
		base:      config.DefaultOptions(),
		trace:     "off",
		ctx:       ctx,
		cancel:    cancel,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	s.settings = config.Compile(s.base, nil)
	s.index = index.NewStore(s.settings)
	s.index.SetPermanent(wordListURIs(s.settings))
	s.engine = update.NewEngine(s.index)
	s.aggregator = completion.NewAggregator(s.index)

	return s
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shuttingDown = true
}

// Documents returns the open document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// Index returns the token index.
func (s *Server) Index() *index.Store {
	return s.index
}

// Metrics returns the metrics collectors.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Settings returns the current policy.
func (s *Server) Settings() *config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// ActiveURI returns the document that received the latest event.
func (s *Server) ActiveURI() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeURI
}

// SetTrace sets the trace level requested by the client.
func (s *Server) SetTrace(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trace = value
}

// Trace returns the trace level.
func (s *Server) Trace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.trace
}

// GetWorkspaceFolders returns the workspace folders.
func (s *Server) GetWorkspaceFolders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.workspaceFolders
}

// Initialize applies the workspace folders and initialization options sent
// with the initialize request. Nothing is indexed yet at this point.
func (s *Server) Initialize(folders []string, clientSettings any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaceFolders = folders
	s.clientSettings = clientSettings
	s.reconfigure()
}

// UpdateSettings rebuilds the policy from a new client settings payload,
// reindexes every open document, and reloads the word lists.
func (s *Server) UpdateSettings(clientSettings any) {
	s.mu.Lock()
	s.clientSettings = clientSettings
	s.showCurrent = nil
	s.reconfigure()
	s.rebuild()
	s.mu.Unlock()

	s.LoadWordListsAsync()
}

// SetWorkspaceFolders replaces the workspace folders. Word-list paths and
// display paths depend on them, so everything is rebuilt.
func (s *Server) SetWorkspaceFolders(folders []string) {
	s.mu.Lock()
	s.workspaceFolders = folders
	s.reconfigure()
	s.rebuild()
	s.mu.Unlock()

	s.LoadWordListsAsync()
}

// Open tracks a document opened in the editor.
func (s *Server) Open(docURI, languageID string, version int32, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := document.New(docURI, languageID, version, text)
	s.documents.Set(doc)
	s.activate(docURI)

	if s.index.IsPermanent(docURI) {
		// The editor buffer replaces the content read from disk.
		s.refresh(doc)
	} else {
		s.indexDocument(doc)
	}

	s.updateGauge()
}

// Close stops tracking a document closed in the editor. Word-list files stay
// tracked with their content on disk.
func (s *Server) Close(docURI string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents.Delete(docURI)
	s.engine.Deactivate(docURI)

	if s.activeURI == docURI {
		s.activeURI = ""
	}

	if s.index.IsPermanent(docURI) {
		s.reloadWordListAsync(uri.ToPath(docURI))
		return
	}

	removed := s.index.Remove(docURI)
	if removed {
		s.metrics.ObserveIndex(opRemove, nil)
	}

	s.updateGauge()
}

// Save handles a document saved in the editor. With UpdateOnlyOnSave this is
// the only point where the document is reindexed.
func (s *Server) Save(docURI string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.Get(docURI)
	if !ok {
		return
	}

	s.activate(docURI)

	if s.settings.UpdateOnlyOnSave {
		s.refresh(doc)
		s.updateGauge()
	}
}

// ToggleCurrentFile flips ShowCurrentDocument for the rest of the session and
// returns the new value. Turning it on brings the active document's
// inventory up to date.
func (s *Server) ToggleCurrentFile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	show := !s.settings.ShowCurrentDocument
	s.showCurrent = &show
	s.settings = s.settings.WithShowCurrentDocument(show)
	s.index.SetSettings(s.settings)

	if show {
		if doc, ok := s.documents.Get(s.activeURI); ok {
			s.refresh(doc)
		}
	}

	log.Infof("Show current document: %t", show)

	return show
}

// Shutdown stops background work and waits for it to finish.
func (s *Server) Shutdown() error {
	s.cancel()

	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	var err error
	if watcher != nil {
		err = watcher.Close()
	}

	s.wg.Wait()

	return err
}

// activate records docURI as the active document. With ShowCurrentDocument
// off, edits to the active document are held back, so the previously active
// document is reindexed when it loses focus.
func (s *Server) activate(docURI string) {
	prev := s.activeURI
	if prev == docURI {
		return
	}

	s.activeURI = docURI

	if prev == "" || s.settings.ShowCurrentDocument {
		return
	}

	if doc, ok := s.documents.Get(prev); ok {
		s.refresh(doc)
	}
}

// reconfigure compiles the settings from the base options, the client
// settings, and the toggle override.
func (s *Server) reconfigure() {
	opts, err := config.FromSettings(s.clientSettings, s.base)
	if err != nil {
		log.Warnf("Ignoring client settings: %v", err)

		opts = s.base
	}

	settings := config.Compile(opts, s.workspaceFolders)
	if s.showCurrent != nil {
		settings = settings.WithShowCurrentDocument(*s.showCurrent)
	}

	s.settings = settings
	s.index.SetSettings(settings)
	s.index.SetPermanent(wordListURIs(settings))
}

// rebuild drops every inventory and indexes the open documents again.
// Word lists are loaded separately.
func (s *Server) rebuild() {
	s.index.Clear()

	for _, docURI := range s.documents.List() {
		doc, ok := s.documents.Get(docURI)
		if !ok {
			continue
		}

		s.engine.Deactivate(docURI)
		s.indexDocument(doc)
	}

	s.updateGauge()
}

func (s *Server) indexDocument(doc *document.Document) {
	indexed, err := s.index.Index(doc)
	s.metrics.ObserveIndex(opIndex, err)

	if err != nil {
		log.Errorf("Failed to index %s: %v", doc.URI(), err)
		return
	}

	if !indexed {
		return
	}

	if err := s.engine.Activate(doc); err != nil {
		log.Warnf("Cannot cache lines of %s: %v", doc.URI(), err)
	}
}

// refresh reindexes doc and re-snapshots its line cache.
func (s *Server) refresh(doc index.Document) {
	err := s.engine.Refresh(doc)
	if errors.Is(err, index.ErrExcluded) {
		err = nil
	}

	s.metrics.ObserveIndex(opReindex, err)

	if err != nil {
		log.Errorf("Failed to reindex %s: %v", doc.URI(), err)
	}
}

func (s *Server) updateGauge() {
	s.metrics.TrackedDocuments.Set(float64(s.index.Len()))
}

func wordListURIs(settings *config.Settings) []string {
	uris := make([]string, 0, len(settings.WordListFiles))
	for _, p := range settings.WordListFiles {
		uris = append(uris, uri.FromPath(p))
	}

	return uris
}
