// Package index maintains the per-document token inventories that completion
// is served from.
package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/CWBudde/wordcomplete-lsp/internal/config"
	"github.com/CWBudde/wordcomplete-lsp/internal/tokenizer"
	"github.com/CWBudde/wordcomplete-lsp/internal/uri"
)

var (
	// ErrNotTracked is returned when an operation needs an inventory that
	// does not exist.
	ErrNotTracked = errors.New("document not tracked")

	// ErrExcluded is returned by Reindex for documents the policy excludes.
	ErrExcluded = errors.New("document excluded")
)

// Document is the read-only view of an editor document the index needs.
type Document interface {
	URI() string
	LanguageID() string
	LineAt(n int) (string, error)
	LineCount() int
}

type entry struct {
	languageID string
	inventory  *Inventory
}

// Store maps document URIs to their token inventories and owns the path
// registry used to label them.
type Store struct {
	settings    *config.Settings
	inventories map[string]*entry
	registry    *PathRegistry
	permanent   map[string]struct{}

	mu sync.RWMutex
}

// NewStore creates an empty store governed by settings.
func NewStore(settings *config.Settings) *Store {
	return &Store{
		settings:    settings,
		inventories: make(map[string]*entry),
		registry:    NewPathRegistry(settings.Folders),
		permanent:   make(map[string]struct{}),
	}
}

// SetSettings swaps the policy. Existing inventories are kept as they are;
// callers reindex when the new policy changes tokenization.
func (s *Store) SetSettings(settings *config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	s.registry.SetFolders(settings.Folders)
}

// Settings returns the current policy.
func (s *Store) Settings() *config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// SetPermanent records the URIs that Remove must never drop.
func (s *Store) SetPermanent(uris []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.permanent = make(map[string]struct{}, len(uris))
	for _, u := range uris {
		s.permanent[u] = struct{}{}
	}
}

// IsPermanent reports whether docURI is a word-list document.
func (s *Store) IsPermanent(docURI string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.permanent[docURI]

	return ok
}

// Index builds the inventory of doc. It reports false without error when the
// document is already tracked, excluded, or of a non-contributing language.
// On a read error the store is left untouched.
func (s *Store) Index(doc Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inventories[doc.URI()]; ok {
		return false, nil
	}

	if s.skip(doc) {
		return false, nil
	}

	inv, err := s.build(doc)
	if err != nil {
		return false, err
	}

	s.commit(doc, inv)

	return true, nil
}

// Reindex rebuilds the inventory of doc from its full text. Unlike Remove it
// also applies to permanent documents. If the text cannot be read the
// previous inventory stays in place.
func (s *Store) Reindex(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.skip(doc) {
		s.drop(doc.URI())
		return ErrExcluded
	}

	inv, err := s.build(doc)
	if err != nil {
		return err
	}

	s.commit(doc, inv)

	return nil
}

// Remove deletes the inventory of docURI. Permanent word-list documents are
// never removed; Remove reports whether anything was deleted.
func (s *Store) Remove(docURI string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.permanent[docURI]; ok {
		log.Debugf("Keeping word list document %s", docURI)
		return false
	}

	return s.drop(docURI)
}

// Patch removes and adds raw tokens of docURI's inventory. Tokens go through
// the same acceptance rules as full indexing.
func (s *Store) Patch(docURI string, removed, added []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.inventories[docURI]
	if !ok {
		return fmt.Errorf("patch %s: %w", docURI, ErrNotTracked)
	}

	for _, raw := range removed {
		if token, ok := s.settings.Accept(raw, e.languageID); ok {
			e.inventory.remove(token)
		}
	}

	for _, raw := range added {
		if token, ok := s.settings.Accept(raw, e.languageID); ok {
			e.inventory.add(token)
		}
	}

	return nil
}

// Clear drops every inventory, permanent ones included.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inventories = make(map[string]*entry)
	s.registry = NewPathRegistry(s.settings.Folders)
}

// DisplayPath returns the label for docURI.
func (s *Store) DisplayPath(docURI string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.registry.Display(docURI)
}

// Tracked reports whether docURI has an inventory.
func (s *Store) Tracked(docURI string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.inventories[docURI]

	return ok
}

// Inventory returns the inventory of docURI. The result must not be used
// after the next mutation of the store.
func (s *Store) Inventory(docURI string) (*Inventory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.inventories[docURI]
	if !ok {
		return nil, false
	}

	return e.inventory, true
}

// Len returns the number of tracked documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.inventories)
}

// URIs returns the tracked URIs in lexical order.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedURIs()
}

// Visit calls fn for every tracked document in URI order. The store is
// read-locked for the duration of the walk; fn must not mutate it.
func (s *Store) Visit(fn func(docURI, languageID string, inv *Inventory)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.sortedURIs() {
		e := s.inventories[u]
		fn(u, e.languageID, e.inventory)
	}
}

func (s *Store) sortedURIs() []string {
	uris := make([]string, 0, len(s.inventories))
	for u := range s.inventories {
		uris = append(uris, u)
	}

	sort.Strings(uris)

	return uris
}

func (s *Store) skip(doc Document) bool {
	if s.settings.Excluded(doc.URI()) {
		log.Debugf("Skipping excluded document %s", doc.URI())
		return true
	}

	if s.settings.NonContributing(doc.LanguageID()) {
		log.Debugf("Skipping non-contributing language %s for %s", doc.LanguageID(), doc.URI())
		return true
	}

	return false
}

// build tokenizes doc line by line into a fresh inventory. Line patches
// tokenize single lines, so splitting the same units keeps both in step
// even when the splitter does not match line breaks.
func (s *Store) build(doc Document) (*Inventory, error) {
	languageID := doc.LanguageID()
	splitter := s.settings.Splitter(languageID)
	inv := newInventory(uri.Base(doc.URI()))

	for n := range doc.LineCount() {
		line, err := doc.LineAt(n)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", doc.URI(), err)
		}

		for _, raw := range tokenizer.Tokenize(line, splitter) {
			if token, ok := s.settings.Accept(raw, languageID); ok {
				inv.add(token)
			}
		}
	}

	return inv, nil
}

func (s *Store) commit(doc Document, inv *Inventory) {
	s.inventories[doc.URI()] = &entry{
		languageID: doc.LanguageID(),
		inventory:  inv,
	}
	s.registry.Add(doc.URI())
}

func (s *Store) drop(docURI string) bool {
	if _, ok := s.inventories[docURI]; !ok {
		return false
	}

	delete(s.inventories, docURI)
	s.registry.Remove(docURI)

	return true
}
