// Package config holds the completion policy shared by the index, the update
// engine and the aggregator.
//
// Options is the raw, serialisable form read from TOML files and from LSP
// settings. Compile turns it into an immutable Settings value; a reload
// always builds a fresh Settings instead of mutating the current one.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Namespace is the key under which LSP clients send our settings.
const Namespace = "allAutocomplete"

// Options mirrors the user-facing configuration keys.
type Options struct {
	MinWordLength                  int               `toml:"min_word_length" json:"minWordLength"`
	MaxItems                       int               `toml:"max_items" json:"maxItemsInSingleList"`
	Whitespace                     string            `toml:"whitespace" json:"whitespace"`
	IgnoredWords                   string            `toml:"ignored_words" json:"ignoredWords"`
	ShowCurrentDocument            bool              `toml:"show_current_document" json:"showCurrentDocument"`
	ShowOpenDocuments              bool              `toml:"show_open_documents" json:"showOpenDocuments"`
	DontContributeToSelf           bool              `toml:"dont_contribute_to_self" json:"dontContributeToSelf"`
	UpdateOnlyOnSave               bool              `toml:"update_only_on_save" json:"updateOnlyOnSave"`
	ExcludeFiles                   string            `toml:"exclude_files" json:"excludeFiles"`
	NonContributingLanguages       []string          `toml:"non_contributing_languages" json:"nonContributingLanguages"`
	NonContributingToSelfLanguages []string          `toml:"non_contributing_to_self_languages" json:"nonContributingToSelfLanguages"`
	LanguageWhitespace             map[string]string `toml:"language_whitespace" json:"languageWhitespace"`
	LanguageSpecialCharacters      map[string]string `toml:"language_special_characters" json:"languageSpecialCharacters"`
	WordListFiles                  []string          `toml:"word_list_files" json:"wordListFiles"`
}

// DefaultOptions returns the built-in configuration.
func DefaultOptions() Options {
	return Options{
		MinWordLength:       3,
		MaxItems:            0,
		Whitespace:          `[^\p{L}\p{N}_\-]+`,
		ShowCurrentDocument: true,
		ShowOpenDocuments:   true,
		LanguageWhitespace: map[string]string{
			"php":         `[^\w\-_$]+`,
			"shellscript": `[^\w\-_$]+`,
		},
		LanguageSpecialCharacters: map[string]string{
			"php":         `^\$`,
			"shellscript": `^\$`,
		},
	}
}

// LoadFile overlays the TOML file at path on top of base.
// Keys missing from the file keep their value from base.
func LoadFile(path string, base Options) (Options, error) {
	opts := base.clone()

	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return base, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	log.Debugf("Loaded config from %s", path)

	return opts, nil
}

// LoadFileIfExists is LoadFile that treats a missing file as "no overrides".
func LoadFileIfExists(path string, base Options) (Options, error) {
	if path == "" {
		return base, nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			log.Warnf("Config file not found at %s, using defaults", path)
			return base, nil
		}

		return base, err
	}

	return LoadFile(path, base)
}

// FromSettings overlays LSP settings on top of base. The settings value is
// either the full settings object (with our Namespace key) or the namespace
// object itself, as sent in initializationOptions.
func FromSettings(settings any, base Options) (Options, error) {
	if settings == nil {
		return base, nil
	}

	section := settings
	if m, ok := settings.(map[string]any); ok {
		if ns, ok := m[Namespace]; ok {
			section = ns
		}
	}

	raw, err := json.Marshal(section)
	if err != nil {
		return base, fmt.Errorf("failed to encode settings: %w", err)
	}

	opts := base.clone()
	if err := json.Unmarshal(raw, &opts); err != nil {
		return base, fmt.Errorf("failed to decode settings: %w", err)
	}

	return opts, nil
}

// clone copies the maps and slices so decoding into the copy never writes
// through to base.
func (o Options) clone() Options {
	c := o
	c.NonContributingLanguages = append([]string(nil), o.NonContributingLanguages...)
	c.NonContributingToSelfLanguages = append([]string(nil), o.NonContributingToSelfLanguages...)
	c.WordListFiles = append([]string(nil), o.WordListFiles...)
	c.LanguageWhitespace = cloneMap(o.LanguageWhitespace)
	c.LanguageSpecialCharacters = cloneMap(o.LanguageSpecialCharacters)

	return c
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
