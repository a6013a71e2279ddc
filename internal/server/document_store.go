package server

import (
	"sort"
	"sync"

	"github.com/CWBudde/wordcomplete-lsp/internal/document"
)

// DocumentStore manages all open documents.
type DocumentStore struct {
	documents map[string]*document.Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*document.Document),
	}
}

// Set stores or replaces a document.
func (ds *DocumentStore) Set(doc *document.Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[doc.URI()] = doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (*document.Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Delete removes a document from the store.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// List returns all document URIs in lexical order.
func (ds *DocumentStore) List() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	uris := make([]string, 0, len(ds.documents))
	for uri := range ds.documents {
		uris = append(uris, uri)
	}

	sort.Strings(uris)

	return uris
}
