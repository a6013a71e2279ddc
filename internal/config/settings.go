package config

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/CWBudde/wordcomplete-lsp/internal/tokenizer"
	"github.com/CWBudde/wordcomplete-lsp/internal/uri"
)

// Editor-internal documents that are never worth indexing.
var (
	builtinExcludedNames  = []string{"settings", "settings/editor", "vscode-extensions", "vs_code_welcome_page", "extHostLog"}
	builtinExcludedRegexp = regexp.MustCompile(`^extension-output-#[0-9]+$`)
)

// Settings is the compiled, read-only completion policy.
type Settings struct {
	MinWordLength        int
	MaxItems             int
	ShowCurrentDocument  bool
	ShowOpenDocuments    bool
	DontContributeToSelf bool
	UpdateOnlyOnSave     bool

	// WordListFiles are absolute paths of the always-tracked word lists.
	WordListFiles []string

	// Folders are the workspace folder paths used for relative display paths.
	Folders []string

	// Warnings collects configuration problems that were recovered from.
	Warnings []string

	whitespace      *regexp.Regexp
	languageSplit   map[string]*regexp.Regexp
	languageSpecial map[string]*regexp.Regexp
	ignored         map[string]struct{}
	excludeFiles    string
	nonContributing []string
	nonSelf         []string
}

// Default compiles DefaultOptions without workspace folders.
func Default() *Settings {
	return Compile(DefaultOptions(), nil)
}

// Compile validates opts and builds Settings. Invalid patterns never fail the
// build: they are reported in Warnings and the default splitter is used.
func Compile(opts Options, folders []string) *Settings {
	s := &Settings{
		MinWordLength:        opts.MinWordLength,
		MaxItems:             opts.MaxItems,
		ShowCurrentDocument:  opts.ShowCurrentDocument,
		ShowOpenDocuments:    opts.ShowOpenDocuments,
		DontContributeToSelf: opts.DontContributeToSelf,
		UpdateOnlyOnSave:     opts.UpdateOnlyOnSave,
		Folders:              slices.Clone(folders),
		languageSplit:        make(map[string]*regexp.Regexp),
		languageSpecial:      make(map[string]*regexp.Regexp),
		ignored:              make(map[string]struct{}),
		excludeFiles:         opts.ExcludeFiles,
		nonContributing:      slices.Clone(opts.NonContributingLanguages),
		nonSelf:              slices.Clone(opts.NonContributingToSelfLanguages),
	}

	if s.MinWordLength < 0 {
		s.MinWordLength = 0
	}

	whitespace, err := regexp.Compile(opts.Whitespace)
	if err != nil || opts.Whitespace == "" {
		s.warn("invalid whitespace pattern %q, using default: %v", opts.Whitespace, err)
		whitespace = regexp.MustCompile(tokenizer.DefaultWhitespace)
	}

	s.whitespace = whitespace

	for lang, pattern := range opts.LanguageWhitespace {
		re, err := regexp.Compile(pattern)
		if err != nil {
			s.warn("invalid whitespace pattern for %s: %q: %v", lang, pattern, err)
			continue
		}

		s.languageSplit[lang] = re
	}

	for lang, pattern := range opts.LanguageSpecialCharacters {
		re, err := regexp.Compile(pattern)
		if err != nil {
			s.warn("invalid special character pattern for %s: %q: %v", lang, pattern, err)
			continue
		}

		s.languageSpecial[lang] = re
	}

	for _, word := range tokenizer.Tokenize(opts.IgnoredWords, s.whitespace) {
		s.ignored[word] = struct{}{}
	}

	if s.excludeFiles != "" && !doublestar.ValidatePattern(s.excludeFiles) {
		s.warn("invalid exclude pattern %q, ignoring it", s.excludeFiles)
		s.excludeFiles = ""
	}

	s.WordListFiles = resolveWordLists(opts.WordListFiles, folders)

	return s
}

func (s *Settings) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.Warnings = append(s.Warnings, msg)
	log.Warn(msg)
}

// resolveWordLists makes every word-list path absolute. Relative paths are
// resolved once per workspace folder.
func resolveWordLists(files, folders []string) []string {
	var resolved []string

	for _, file := range files {
		if filepath.IsAbs(file) {
			resolved = append(resolved, filepath.Clean(file))
			continue
		}

		if len(folders) == 0 {
			if abs, err := filepath.Abs(file); err == nil {
				resolved = append(resolved, abs)
			}

			continue
		}

		for _, folder := range folders {
			resolved = append(resolved, filepath.Join(folder, file))
		}
	}

	return resolved
}

// Splitter returns the token splitter for languageID, falling back to the
// default whitespace pattern.
func (s *Settings) Splitter(languageID string) *regexp.Regexp {
	if re, ok := s.languageSplit[languageID]; ok {
		return re
	}

	return s.whitespace
}

// SpecialPrefix returns the first match of the language's special character
// pattern inside word, or "" when none is configured or nothing matches.
func (s *Settings) SpecialPrefix(languageID, word string) string {
	re, ok := s.languageSpecial[languageID]
	if !ok {
		return ""
	}

	return re.FindString(word)
}

// HasSpecialPrefix reports whether languageID has a special character pattern.
func (s *Settings) HasSpecialPrefix(languageID string) bool {
	_, ok := s.languageSpecial[languageID]
	return ok
}

// Accept normalizes a raw token for languageID and reports whether it
// belongs in an inventory. Full indexing and line patches both go through
// here so they always agree.
func (s *Settings) Accept(raw, languageID string) (string, bool) {
	token := tokenizer.Normalize(raw, s.Splitter(languageID))
	if token == "" {
		return "", false
	}

	if tokenizer.Length(token) < s.MinWordLength {
		return "", false
	}

	if s.Ignored(token) {
		return "", false
	}

	return token, true
}

// Ignored reports whether word is on the ignored list.
func (s *Settings) Ignored(word string) bool {
	_, ok := s.ignored[word]
	return ok
}

// NonContributing reports whether documents of languageID are never indexed.
func (s *Settings) NonContributing(languageID string) bool {
	return slices.Contains(s.nonContributing, languageID)
}

// NonContributingToSelf reports whether documents of languageID must not
// feed completions of documents with the same language.
func (s *Settings) NonContributingToSelf(languageID string) bool {
	return s.DontContributeToSelf || slices.Contains(s.nonSelf, languageID)
}

// Excluded reports whether the document at uri is excluded from indexing,
// either as an editor-internal document or by the exclude glob.
func (s *Settings) Excluded(docURI string) bool {
	p := filepath.ToSlash(uri.ToPath(docURI))
	trimmed := strings.TrimPrefix(p, "/")

	for _, name := range builtinExcludedNames {
		if trimmed == name || strings.HasSuffix(trimmed, "/"+name) {
			return true
		}
	}

	if builtinExcludedRegexp.MatchString(path.Base(p)) {
		return true
	}

	if s.excludeFiles == "" {
		return false
	}

	if ok, _ := doublestar.Match(s.excludeFiles, trimmed); ok {
		return true
	}

	for _, folder := range s.Folders {
		rel, err := filepath.Rel(folder, filepath.FromSlash(p))
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}

		if ok, _ := doublestar.Match(s.excludeFiles, filepath.ToSlash(rel)); ok {
			return true
		}
	}

	return false
}

// IsWordListFile reports whether p (a path or file URI) is a configured
// word-list file.
func (s *Settings) IsWordListFile(p string) bool {
	return slices.Contains(s.WordListFiles, filepath.Clean(uri.ToPath(p)))
}

// WithShowCurrentDocument returns a copy of s with ShowCurrentDocument set.
func (s *Settings) WithShowCurrentDocument(show bool) *Settings {
	c := *s
	c.ShowCurrentDocument = show

	return &c
}
