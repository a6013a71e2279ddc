package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, 3, s.MinWordLength)
	assert.True(t, s.ShowCurrentDocument)
	assert.True(t, s.ShowOpenDocuments)
	assert.False(t, s.DontContributeToSelf)
	assert.Empty(t, s.Warnings)
	assert.True(t, s.HasSpecialPrefix("php"))
}

func TestCompile_InvalidLanguagePatternFallsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.LanguageWhitespace = map[string]string{"go": "[unclosed"}

	s := Compile(opts, nil)

	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "go")
	assert.Same(t, s.Splitter("plaintext"), s.Splitter("go"))
}

func TestCompile_InvalidDefaultWhitespace(t *testing.T) {
	opts := DefaultOptions()
	opts.Whitespace = "("

	s := Compile(opts, nil)

	require.NotEmpty(t, s.Warnings)
	assert.Equal(t, []string{"a", "b"}, s.Splitter("plaintext").Split("a b", -1))
}

func TestAccept(t *testing.T) {
	opts := DefaultOptions()
	opts.MinWordLength = 2
	opts.IgnoredWords = "TODO, FIXME"

	s := Compile(opts, nil)

	token, ok := s.Accept("hello", "plaintext")
	assert.True(t, ok)
	assert.Equal(t, "hello", token)

	_, ok = s.Accept("a", "plaintext")
	assert.False(t, ok, "shorter than the minimum")

	_, ok = s.Accept("...", "plaintext")
	assert.False(t, ok, "normalizes to the empty string")

	_, ok = s.Accept("TODO", "plaintext")
	assert.False(t, ok, "ignored word")

	assert.True(t, s.Ignored("FIXME"))
}

func TestAccept_ZeroMinimumStillRejectsEmpty(t *testing.T) {
	opts := DefaultOptions()
	opts.MinWordLength = 0

	s := Compile(opts, nil)

	_, ok := s.Accept("  ", "plaintext")
	assert.False(t, ok)
}

func TestSpecialPrefix(t *testing.T) {
	opts := DefaultOptions()
	opts.LanguageSpecialCharacters = map[string]string{"shell": `^\$`}

	s := Compile(opts, nil)

	assert.Equal(t, "$", s.SpecialPrefix("shell", "$na"))
	assert.Equal(t, "", s.SpecialPrefix("shell", "na"))
	assert.Equal(t, "", s.SpecialPrefix("plaintext", "$na"))
}

func TestNonContributingToSelf(t *testing.T) {
	opts := DefaultOptions()
	opts.NonContributingToSelfLanguages = []string{"markdown"}

	s := Compile(opts, nil)
	assert.True(t, s.NonContributingToSelf("markdown"))
	assert.False(t, s.NonContributingToSelf("python"))

	opts.DontContributeToSelf = true
	s = Compile(opts, nil)
	assert.True(t, s.NonContributingToSelf("python"))
}

func TestExcluded(t *testing.T) {
	opts := DefaultOptions()
	opts.ExcludeFiles = "**/*.{log,lock}"

	s := Compile(opts, []string{"/work"})

	assert.True(t, s.Excluded("file:///work/logs/out.log"))
	assert.True(t, s.Excluded("file:///work/yarn.lock"))
	assert.False(t, s.Excluded("file:///work/main.go"))
	assert.True(t, s.Excluded("vscode-userdata:/settings"))
	assert.True(t, s.Excluded("output:extension-output-%233"))
}

func TestExcluded_InvalidPattern(t *testing.T) {
	opts := DefaultOptions()
	opts.ExcludeFiles = "[broken"

	s := Compile(opts, nil)

	assert.NotEmpty(t, s.Warnings)
	assert.False(t, s.Excluded("file:///work/main.go"))
}

func TestWordListFiles(t *testing.T) {
	opts := DefaultOptions()
	opts.WordListFiles = []string{"words.txt", "/abs/dict.txt"}

	s := Compile(opts, []string{"/a", "/b"})

	assert.Equal(t, []string{
		filepath.Join("/a", "words.txt"),
		filepath.Join("/b", "words.txt"),
		filepath.Clean("/abs/dict.txt"),
	}, s.WordListFiles)
	assert.True(t, s.IsWordListFile("file:///a/words.txt"))
	assert.False(t, s.IsWordListFile("file:///a/other.txt"))
}

func TestWithShowCurrentDocument(t *testing.T) {
	s := Default()
	c := s.WithShowCurrentDocument(false)

	assert.True(t, s.ShowCurrentDocument)
	assert.False(t, c.ShowCurrentDocument)
}

func TestFromSettings(t *testing.T) {
	base := DefaultOptions()
	settings := map[string]any{
		Namespace: map[string]any{
			"minWordLength":        float64(2),
			"dontContributeToSelf": true,
			"languageWhitespace":   map[string]any{"go": `[^\w]+`},
		},
	}

	opts, err := FromSettings(settings, base)
	require.NoError(t, err)

	assert.Equal(t, 2, opts.MinWordLength)
	assert.True(t, opts.DontContributeToSelf)
	assert.Equal(t, `[^\w]+`, opts.LanguageWhitespace["go"])
	assert.Contains(t, opts.LanguageWhitespace, "php", "keys not sent keep their base value")
	assert.NotContains(t, base.LanguageWhitespace, "go", "base must not be modified")
}

func TestFromSettings_Nil(t *testing.T) {
	base := DefaultOptions()

	opts, err := FromSettings(nil, base)
	require.NoError(t, err)
	assert.Equal(t, base.MinWordLength, opts.MinWordLength)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
min_word_length = 4
show_open_documents = false
word_list_files = ["dict.txt"]

[language_special_characters]
shell = '^\$'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts, err := LoadFile(path, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, opts.MinWordLength)
	assert.False(t, opts.ShowOpenDocuments)
	assert.True(t, opts.ShowCurrentDocument)
	assert.Equal(t, []string{"dict.txt"}, opts.WordListFiles)
	assert.Equal(t, `^\$`, opts.LanguageSpecialCharacters["shell"])
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("min_word_length = ="), 0o644))

	opts, err := LoadFile(path, DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, 3, opts.MinWordLength)
}

func TestLoadFileIfExists_Missing(t *testing.T) {
	opts, err := LoadFileIfExists(filepath.Join(t.TempDir(), "nope.toml"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, opts.MinWordLength)
}
