package index

import (
	"slices"

	"github.com/CWBudde/wordcomplete-lsp/internal/uri"
)

// PathRegistry disambiguates documents that share a basename.
//
// A document whose basename is unique is displayed by its bare basename.
// As soon as a second document with the same basename is registered, every
// document in that bucket is displayed by its workspace-relative path; when
// the bucket shrinks back to one entry the survivor returns to its basename.
type PathRegistry struct {
	buckets map[string][]string // basename -> document URIs in registration order
	display map[string]string   // document URI -> display name
	folders []string
}

// NewPathRegistry creates a registry that computes relative paths against
// folders.
func NewPathRegistry(folders []string) *PathRegistry {
	return &PathRegistry{
		buckets: make(map[string][]string),
		display: make(map[string]string),
		folders: slices.Clone(folders),
	}
}

// Add registers docURI. Adding an already registered URI is a no-op.
func (r *PathRegistry) Add(docURI string) {
	if _, ok := r.display[docURI]; ok {
		return
	}

	base := uri.Base(docURI)
	r.buckets[base] = append(r.buckets[base], docURI)
	r.refresh(base)
}

// Remove unregisters docURI and collapses its bucket when one entry remains.
func (r *PathRegistry) Remove(docURI string) {
	if _, ok := r.display[docURI]; !ok {
		return
	}

	delete(r.display, docURI)

	base := uri.Base(docURI)

	bucket := slices.DeleteFunc(r.buckets[base], func(u string) bool { return u == docURI })
	if len(bucket) == 0 {
		delete(r.buckets, base)
		return
	}

	r.buckets[base] = bucket
	r.refresh(base)
}

// Display returns the display name of docURI.
func (r *PathRegistry) Display(docURI string) (string, bool) {
	name, ok := r.display[docURI]
	return name, ok
}

// Bucket returns the URIs sharing basename, in registration order.
func (r *PathRegistry) Bucket(basename string) []string {
	return slices.Clone(r.buckets[basename])
}

// SetFolders changes the workspace folders and recomputes every display name.
func (r *PathRegistry) SetFolders(folders []string) {
	r.folders = slices.Clone(folders)

	for base := range r.buckets {
		r.refresh(base)
	}
}

func (r *PathRegistry) refresh(base string) {
	bucket := r.buckets[base]

	if len(bucket) == 1 {
		r.display[bucket[0]] = base
		return
	}

	for _, u := range bucket {
		r.display[u] = uri.Rel(uri.ToPath(u), r.folders)
	}
}
