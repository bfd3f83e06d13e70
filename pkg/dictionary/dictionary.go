// Package dictionary loads steno dictionaries (stroke sequence -> translation) and merges
// them in load order.
package dictionary

import (
	"fmt"
	"sort"

	"github.com/bastiangx/strokecheck/pkg/strokes"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is one dictionary definition.
type Entry struct {
	Key         string
	Strokes     strokes.Sequence
	Translation string
}

// Dictionary is an ordered set of entries with unique keys.
// Redefining a key replaces its translation but keeps its original position.
type Dictionary struct {
	entries []Entry
	index   *patricia.Trie // key -> position in entries
}

// New creates an empty dictionary.
func New() *Dictionary {
	return &Dictionary{index: patricia.NewTrie()}
}

// Set defines key as translation. Keys that are not valid stroke sequences are rejected.
func (d *Dictionary) Set(key, translation string) error {
	seq, err := strokes.Parse(key)
	if err != nil {
		return fmt.Errorf("invalid key %q: %w", key, err)
	}
	if item := d.index.Get(patricia.Prefix(key)); item != nil {
		d.entries[item.(int)].Translation = translation
		return nil
	}
	d.index.Insert(patricia.Prefix(key), len(d.entries))
	d.entries = append(d.entries, Entry{Key: key, Strokes: seq, Translation: translation})
	return nil
}

// Translation returns the translation of key.
func (d *Dictionary) Translation(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	item := d.index.Get(patricia.Prefix(key))
	if item == nil {
		return "", false
	}
	return d.entries[item.(int)].Translation, true
}

// Has reports whether key is defined.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.Translation(key)
	return ok
}

// Complete returns up to limit entries whose key starts with prefix, excluding prefix
// itself, sorted by key. limit <= 0 returns all of them.
func (d *Dictionary) Complete(prefix string, limit int) []Entry {
	var out []Entry
	err := d.index.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		if string(p) == prefix {
			return nil
		}
		out = append(out, d.entries[item.(int)])
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting dictionary subtree: %v", err)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Entries returns the entries in definition order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Trie builds the stroke trie of all entries.
func (d *Dictionary) Trie() *strokes.Trie {
	t := strokes.NewTrie()
	for _, e := range d.entries {
		t.Insert(e.Strokes)
	}
	return t
}

// Clone returns an independent copy.
func (d *Dictionary) Clone() *Dictionary {
	out := New()
	out.entries = make([]Entry, len(d.entries))
	copy(out.entries, d.entries)
	for i, e := range out.entries {
		out.index.Insert(patricia.Prefix(e.Key), i)
	}
	return out
}
