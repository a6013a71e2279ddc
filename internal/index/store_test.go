package index

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/wordcomplete-lsp/internal/config"
)

type memDoc struct {
	uri     string
	lang    string
	text    string
	readErr error
}

func (d *memDoc) URI() string        { return d.uri }
func (d *memDoc) LanguageID() string { return d.lang }
func (d *memDoc) LineCount() int     { return len(strings.Split(d.text, "\n")) }

func (d *memDoc) LineAt(n int) (string, error) {
	if d.readErr != nil {
		return "", d.readErr
	}

	return strings.Split(d.text, "\n")[n], nil
}

func settingsWith(t *testing.T, mutate func(*config.Options)) *config.Settings {
	t.Helper()

	opts := config.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}

	s := config.Compile(opts, []string{"/work"})
	require.Empty(t, s.Warnings)

	return s
}

func minLength(n int) func(*config.Options) {
	return func(o *config.Options) { o.MinWordLength = n }
}

func TestStore_IndexScenario(t *testing.T) {
	store := NewStore(settingsWith(t, minLength(2)))
	doc := &memDoc{uri: "file:///work/notes.txt", lang: "plaintext", text: "hello world hello"}

	indexed, err := store.Index(doc)
	require.NoError(t, err)
	require.True(t, indexed)

	inv, ok := store.Inventory(doc.uri)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"hello": 2, "world": 1, "notes.txt": 1}, inv.Counts())
	assert.Equal(t, 3, inv.Len())
}

func TestStore_IndexIsNoOpWhenTracked(t *testing.T) {
	store := NewStore(settingsWith(t, minLength(2)))
	doc := &memDoc{uri: "file:///work/a.txt", lang: "plaintext", text: "alpha"}

	_, err := store.Index(doc)
	require.NoError(t, err)

	doc.text = "beta"
	indexed, err := store.Index(doc)
	require.NoError(t, err)
	assert.False(t, indexed)

	inv, _ := store.Inventory(doc.uri)
	assert.Equal(t, 1, inv.Count("alpha"))
	assert.Equal(t, 0, inv.Count("beta"))
}

func TestStore_IndexSkipsExcludedAndNonContributing(t *testing.T) {
	store := NewStore(settingsWith(t, func(o *config.Options) {
		o.ExcludeFiles = "**/*.log"
		o.NonContributingLanguages = []string{"json"}
	}))

	indexed, err := store.Index(&memDoc{uri: "file:///work/out.log", lang: "log", text: "words here"})
	require.NoError(t, err)
	assert.False(t, indexed)

	indexed, err = store.Index(&memDoc{uri: "file:///work/data.json", lang: "json", text: "words here"})
	require.NoError(t, err)
	assert.False(t, indexed)

	assert.Equal(t, 0, store.Len())
}

func TestStore_IndexReadFailureLeavesStoreUnchanged(t *testing.T) {
	store := NewStore(settingsWith(t, nil))
	doc := &memDoc{uri: "file:///work/gone.txt", lang: "plaintext", readErr: errors.New("vanished")}

	indexed, err := store.Index(doc)
	require.Error(t, err)
	assert.False(t, indexed)
	assert.False(t, store.Tracked(doc.uri))

	_, ok := store.DisplayPath(doc.uri)
	assert.False(t, ok)
}

func TestStore_ReindexKeepsOldInventoryOnFailure(t *testing.T) {
	store := NewStore(settingsWith(t, nil))
	doc := &memDoc{uri: "file:///work/a.txt", lang: "plaintext", text: "original content"}

	_, err := store.Index(doc)
	require.NoError(t, err)

	doc.readErr = errors.New("io")
	require.Error(t, store.Reindex(doc))

	inv, ok := store.Inventory(doc.uri)
	require.True(t, ok)
	assert.Equal(t, 1, inv.Count("original"))
}

func TestStore_Reindex(t *testing.T) {
	store := NewStore(settingsWith(t, nil))
	doc := &memDoc{uri: "file:///work/a.txt", lang: "plaintext", text: "first words"}

	_, err := store.Index(doc)
	require.NoError(t, err)

	doc.text = "second words words"
	require.NoError(t, store.Reindex(doc))

	inv, _ := store.Inventory(doc.uri)
	assert.Equal(t, map[string]int{"second": 1, "words": 2, "a.txt": 1}, inv.Counts())
}

func TestStore_IndexThenRemoveRestoresState(t *testing.T) {
	store := NewStore(settingsWith(t, nil))
	other := &memDoc{uri: "file:///work/x/main.go", lang: "go", text: "package main"}
	doc := &memDoc{uri: "file:///work/y/main.go", lang: "go", text: "func main"}

	_, err := store.Index(other)
	require.NoError(t, err)

	beforeURIs := store.URIs()
	beforeDisplay, _ := store.DisplayPath(other.uri)

	_, err = store.Index(doc)
	require.NoError(t, err)
	assert.True(t, store.Remove(doc.uri))

	afterDisplay, _ := store.DisplayPath(other.uri)
	assert.Equal(t, beforeURIs, store.URIs())
	assert.Equal(t, beforeDisplay, afterDisplay)
	assert.False(t, store.Tracked(doc.uri))
}

func TestStore_RemoveKeepsPermanentDocuments(t *testing.T) {
	store := NewStore(settingsWith(t, nil))
	doc := &memDoc{uri: "file:///dict/words.txt", lang: "plaintext", text: "lexicon"}

	store.SetPermanent([]string{doc.uri})

	_, err := store.Index(doc)
	require.NoError(t, err)

	assert.False(t, store.Remove(doc.uri))
	assert.True(t, store.Tracked(doc.uri))
	assert.True(t, store.IsPermanent(doc.uri))

	doc.text = "lexicon glossary"
	require.NoError(t, store.Reindex(doc))

	inv, _ := store.Inventory(doc.uri)
	assert.Equal(t, 1, inv.Count("glossary"))
}

func TestStore_RemoveUnknown(t *testing.T) {
	store := NewStore(settingsWith(t, nil))
	assert.False(t, store.Remove("file:///work/none.txt"))
}

func TestStore_Patch(t *testing.T) {
	store := NewStore(settingsWith(t, minLength(2)))
	doc := &memDoc{uri: "file:///work/a.txt", lang: "plaintext", text: "foo bar"}

	_, err := store.Index(doc)
	require.NoError(t, err)

	require.NoError(t, store.Patch(doc.uri, []string{"foo", "bar"}, []string{"foo", "baz"}))

	inv, _ := store.Inventory(doc.uri)
	assert.Equal(t, map[string]int{"foo": 1, "baz": 1, "a.txt": 1}, inv.Counts())
}

func TestStore_PatchNeverRemovesBasename(t *testing.T) {
	store := NewStore(settingsWith(t, minLength(2)))
	doc := &memDoc{uri: "file:///work/readme", lang: "plaintext", text: "see readme"}

	_, err := store.Index(doc)
	require.NoError(t, err)

	inv, _ := store.Inventory(doc.uri)
	assert.Equal(t, 2, inv.Count("readme"))

	require.NoError(t, store.Patch(doc.uri, []string{"readme", "readme", "readme"}, nil))
	assert.Equal(t, 1, inv.Count("readme"))
	assert.Contains(t, inv.Words(), "readme")
}

func TestStore_PatchUntracked(t *testing.T) {
	store := NewStore(settingsWith(t, nil))

	err := store.Patch("file:///work/none.txt", nil, []string{"word"})
	require.ErrorIs(t, err, ErrNotTracked)
	assert.Equal(t, 0, store.Len())
}

func TestStore_VisitOrder(t *testing.T) {
	store := NewStore(settingsWith(t, nil))

	for _, u := range []string{"file:///work/c.txt", "file:///work/a.txt", "file:///work/b.txt"} {
		_, err := store.Index(&memDoc{uri: u, lang: "plaintext", text: "content"})
		require.NoError(t, err)
	}

	var visited []string
	store.Visit(func(docURI, _ string, _ *Inventory) {
		visited = append(visited, docURI)
	})

	assert.Equal(t, []string{"file:///work/a.txt", "file:///work/b.txt", "file:///work/c.txt"}, visited)
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(settingsWith(t, nil))
	_, err := store.Index(&memDoc{uri: "file:///work/a.txt", lang: "plaintext", text: "content"})
	require.NoError(t, err)

	store.Clear()
	assert.Equal(t, 0, store.Len())
}

func TestStore_IndexSplitsLinesWithAnySplitter(t *testing.T) {
	store := NewStore(settingsWith(t, func(o *config.Options) {
		o.LanguageWhitespace["plaintext"] = `[,]+`
	}))
	doc := &memDoc{uri: "file:///work/list.csv", lang: "plaintext", text: "alpha,beta\ngamma,delta"}

	_, err := store.Index(doc)
	require.NoError(t, err)

	inv, _ := store.Inventory(doc.uri)
	assert.Equal(t, map[string]int{"alpha": 1, "beta": 1, "gamma": 1, "delta": 1, "list.csv": 1}, inv.Counts())
}

func TestStore_RemoveConsultsOnlyPermanentSet(t *testing.T) {
	store := NewStore(settingsWith(t, func(o *config.Options) {
		o.WordListFiles = []string{"/dict/words.txt"}
	}))
	doc := &memDoc{uri: "file:///dict/words.txt", lang: "plaintext", text: "lexicon"}

	_, err := store.Index(doc)
	require.NoError(t, err)

	assert.True(t, store.Remove(doc.uri))
	assert.False(t, store.Tracked(doc.uri))
}
