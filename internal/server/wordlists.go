package server

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/CWBudde/wordcomplete-lsp/internal/wordlist"
)

// LoadWordLists reads every configured word-list file and tracks it.
// Files are read without holding the server lock; each one is committed
// separately, so a list may become available before the others.
func (s *Server) LoadWordLists(ctx context.Context) error {
	s.mu.RLock()
	paths := append([]string(nil), s.settings.WordListFiles...)
	s.mu.RUnlock()

	if len(paths) == 0 {
		return nil
	}

	files, err := wordlist.LoadAll(ctx, paths)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range files {
		s.commitWordList(f)
	}

	s.metrics.WordListLoadsTotal.WithLabelValues("error").Add(float64(len(paths) - len(files)))
	s.watchWordLists()
	s.updateGauge()

	log.Infof("Loaded %d of %d word lists", len(files), len(paths))

	return nil
}

// LoadWordListsAsync runs LoadWordLists in the background until Shutdown.
func (s *Server) LoadWordListsAsync() {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		if err := s.LoadWordLists(s.ctx); err != nil && s.ctx.Err() == nil {
			log.Errorf("Failed to load word lists: %v", err)
		}
	}()
}

// ReloadWordList reads one word-list file again after it changed on disk.
func (s *Server) ReloadWordList(path string) {
	f, err := wordlist.Read(path)
	if err != nil {
		s.metrics.WordListLoadsTotal.WithLabelValues("error").Inc()
		log.Warnf("Cannot reload word list: %v", err)

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.commitWordList(f)
	s.updateGauge()
}

func (s *Server) reloadWordListAsync(path string) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.ReloadWordList(path)
	}()
}

// commitWordList tracks f unless the configuration dropped it meanwhile or
// the file is open in the editor, whose buffer takes precedence.
func (s *Server) commitWordList(f *wordlist.File) {
	if !s.settings.IsWordListFile(f.Path()) {
		log.Debugf("Word list %s is no longer configured", f.Path())
		return
	}

	if _, open := s.documents.Get(f.URI()); open {
		return
	}

	err := s.index.Reindex(f)
	s.metrics.ObserveIndex(opReindex, err)

	if err != nil {
		s.metrics.WordListLoadsTotal.WithLabelValues("skipped").Inc()
		log.Warnf("Word list %s not indexed: %v", f.Path(), err)

		return
	}

	s.metrics.WordListLoadsTotal.WithLabelValues("ok").Inc()
}

func (s *Server) watchWordLists() {
	if s.ctx.Err() != nil {
		return
	}

	if s.watcher == nil {
		w, err := wordlist.NewWatcher(func(p string) {
			s.ReloadWordList(filepath.Clean(p))
		})
		if err != nil {
			log.Warnf("Word lists will not be reloaded on change: %v", err)
			return
		}

		s.watcher = w
	}

	s.watcher.Watch(s.settings.WordListFiles)
}
