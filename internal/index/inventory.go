package index

import (
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Inventory is the token multiset of one document.
//
// Token counts live in a patricia trie keyed by token text; a count never
// drops to zero, the entry is deleted instead. The document's basename is a
// synthetic entry kept outside the trie so that edits can never remove it.
type Inventory struct {
	tokens   *patricia.Trie
	distinct int
	basename string
}

func newInventory(basename string) *Inventory {
	return &Inventory{
		tokens:   patricia.NewTrie(),
		basename: basename,
	}
}

func (inv *Inventory) add(token string) {
	key := patricia.Prefix(token)

	if item := inv.tokens.Get(key); item != nil {
		inv.tokens.Set(key, item.(int)+1)
		return
	}

	inv.tokens.Insert(key, 1)
	inv.distinct++
}

func (inv *Inventory) remove(token string) {
	key := patricia.Prefix(token)

	item := inv.tokens.Get(key)
	if item == nil {
		return
	}

	count := item.(int) - 1
	if count <= 0 {
		inv.tokens.Delete(key)
		inv.distinct--

		return
	}

	inv.tokens.Set(key, count)
}

// Basename returns the synthetic basename entry.
func (inv *Inventory) Basename() string {
	return inv.basename
}

// Count returns how many times token is present, including the synthetic
// basename entry.
func (inv *Inventory) Count(token string) int {
	count := 0
	if item := inv.tokens.Get(patricia.Prefix(token)); item != nil {
		count = item.(int)
	}

	if token == inv.basename && token != "" {
		count++
	}

	return count
}

// Len returns the number of distinct entries.
func (inv *Inventory) Len() int {
	n := inv.distinct
	if inv.basename != "" && inv.tokens.Get(patricia.Prefix(inv.basename)) == nil {
		n++
	}

	return n
}

// Counts returns a copy of the inventory as a map.
func (inv *Inventory) Counts() map[string]int {
	counts := make(map[string]int, inv.distinct+1)

	_ = inv.tokens.Visit(func(p patricia.Prefix, item patricia.Item) error {
		counts[string(p)] = item.(int)
		return nil
	})

	if inv.basename != "" {
		counts[inv.basename]++
	}

	return counts
}

// Each calls fn once per distinct entry. Order is unspecified.
func (inv *Inventory) Each(fn func(word string)) {
	seenBasename := false

	_ = inv.tokens.Visit(func(p patricia.Prefix, _ patricia.Item) error {
		word := string(p)
		if word == inv.basename {
			seenBasename = true
		}

		fn(word)

		return nil
	})

	if inv.basename != "" && !seenBasename {
		fn(inv.basename)
	}
}

// Words returns the distinct entries sorted lexically.
func (inv *Inventory) Words() []string {
	words := make([]string, 0, inv.Len())
	inv.Each(func(word string) {
		words = append(words, word)
	})

	sort.Strings(words)

	return words
}
