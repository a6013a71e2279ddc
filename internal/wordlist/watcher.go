package wordlist

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to word-list files. It watches the parent
// directories so that files replaced by rename are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}

	wg sync.WaitGroup
}

// NewWatcher starts a watcher that calls onChange from its own goroutine
// with the cleaned path of a changed word-list file.
func NewWatcher(onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		onChange: onChange,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}

	w.wg.Add(1)

	go w.run()

	return w, nil
}

// Watch replaces the watched set with paths. Directories that cannot be
// watched are logged and skipped.
func (w *Watcher) Watch(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})

	for _, p := range paths {
		p = filepath.Clean(p)
		files[p] = struct{}{}
		dirs[filepath.Dir(p)] = struct{}{}
	}

	for dir := range w.dirs {
		if _, keep := dirs[dir]; !keep {
			_ = w.watcher.Remove(dir)
		}
	}

	for dir := range dirs {
		if _, ok := w.dirs[dir]; ok {
			continue
		}

		if err := w.watcher.Add(dir); err != nil {
			log.Warnf("Cannot watch %s: %v", dir, err)
			delete(dirs, dir)
		}
	}

	w.files = files
	w.dirs = dirs
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()

	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			p := filepath.Clean(event.Name)
			if w.watched(p) {
				log.Debugf("Word list changed: %s", p)
				w.onChange(p)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			log.Warnf("Word list watcher: %v", err)
		}
	}
}

func (w *Watcher) watched(p string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.files[p]

	return ok
}
