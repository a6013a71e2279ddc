package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/CWBudde/wordcomplete-lsp/internal/config"
	"github.com/CWBudde/wordcomplete-lsp/internal/index"
	"github.com/CWBudde/wordcomplete-lsp/internal/logger"
	"github.com/CWBudde/wordcomplete-lsp/internal/wordlist"
)

// indexFiles indexes the given files the way the server indexes word lists
// and prints one inventory per file.
func indexFiles(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no files given")
	}

	closer, err := logger.Setup(c.String("log-level"), c.String("log-file"))
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := loadOptions(c)
	if err != nil {
		return err
	}

	folders := make([]string, 0, len(c.StringSlice("folder")))
	for _, f := range c.StringSlice("folder") {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve folder %q: %w", f, err)
		}

		folders = append(folders, abs)
	}

	paths := make([]string, 0, c.NArg())
	for _, p := range c.Args().Slice() {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", p, err)
		}

		paths = append(paths, abs)
	}

	files, err := wordlist.LoadAll(c.Context, paths)
	if err != nil {
		return err
	}

	store := index.NewStore(config.Compile(opts, folders))

	for _, f := range files {
		if _, err := store.Index(f); err != nil {
			return fmt.Errorf("failed to index %s: %w", f.Path(), err)
		}
	}

	printInventories(c.App.Writer, store, c.Bool("counts"))

	if len(files) < len(paths) {
		return fmt.Errorf("%d of %d files could not be read", len(paths)-len(files), len(paths))
	}

	return nil
}

func printInventories(w io.Writer, store *index.Store, counts bool) {
	type tracked struct {
		uri, languageID string
		inv             *index.Inventory
	}

	var docs []tracked

	store.Visit(func(docURI, languageID string, inv *index.Inventory) {
		docs = append(docs, tracked{docURI, languageID, inv})
	})

	for _, d := range docs {
		name, _ := store.DisplayPath(d.uri)
		fmt.Fprintf(w, "%s (%s, %d words)\n", name, d.languageID, d.inv.Len())

		all := d.inv.Counts()
		for _, word := range d.inv.Words() {
			if counts {
				fmt.Fprintf(w, "  %s %d\n", word, all[word])
			} else {
				fmt.Fprintf(w, "  %s\n", word)
			}
		}
	}
}
