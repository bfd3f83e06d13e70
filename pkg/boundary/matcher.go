// Package boundary finds translation boundary errors: dictionary entries whose strokes can
// also be read as a run of other, shorter entries.
package boundary

import (
	"github.com/bastiangx/strokecheck/pkg/strokes"
)

// Matcher enumerates the ways a stroke sequence decomposes into dictionary entries.
// Results are memoized per suffix. A Matcher is not safe for concurrent use; give each
// goroutine its own over the shared trie.
type Matcher struct {
	trie           *strokes.Trie
	includeTrivial bool
	cache          map[string]*MatchSet
}

// NewMatcher creates a matcher over trie. includeTrivial only affects Match, where it controls
// whether a sequence that is itself an entry matches itself. BoundaryErrors never reports the
// self match, and hiding exact retilings is done by EntryErrors.
func NewMatcher(trie *strokes.Trie, includeTrivial bool) *Matcher {
	return &Matcher{
		trie:           trie,
		includeTrivial: includeTrivial,
		cache:          make(map[string]*MatchSet),
	}
}

// Match returns every explanation of seq.
// The self match {seq} is only kept when trivial matches are enabled and no longer entry
// extends seq; an open continuation of seq takes its place otherwise.
func (m *Matcher) Match(seq strokes.Sequence) *MatchSet {
	if len(seq) == 0 {
		return NewMatchSet()
	}
	set := m.explain(seq).Clone()
	if !m.includeTrivial || m.trie.CountExtensions(seq) > 0 {
		set.Remove(Explanation{EntrySegment(seq)}.String())
	}
	return set
}

// BoundaryErrors returns the explanations of seq that cross at least one entry boundary.
// Single-stroke sequences have none.
func (m *Matcher) BoundaryErrors(seq strokes.Sequence) *MatchSet {
	if len(seq) <= 1 {
		return NewMatchSet()
	}
	set := m.explain(seq).Clone()
	set.Filter(func(match Match) bool {
		return len(match.Explanation) > 1
	})
	return set
}

// CacheSize returns the number of memoized suffixes.
func (m *Matcher) CacheSize() int {
	return len(m.cache)
}

// explain computes all explanations of suffix. The returned set is shared through the
// cache and must not be modified.
func (m *Matcher) explain(suffix strokes.Sequence) *MatchSet {
	key := suffix.Key()
	if cached, ok := m.cache[key]; ok {
		return cached
	}

	set := NewMatchSet()

	if m.trie.Contains(suffix) {
		set.Add(Explanation{EntrySegment(suffix)}, 1)
	}

	switch k := m.trie.CountExtensions(suffix); {
	case k == 1:
		set.Add(Explanation{ExtensionSegment(suffix, m.trie.SoleExtension(suffix))}, 1)
	case k > 1:
		set.Add(Explanation{OpenSegment(suffix, k)}, k)
	}

	for _, n := range m.trie.EntryPrefixes(suffix) {
		head := EntrySegment(suffix[:n])
		for _, sub := range m.explain(suffix[n:]).Matches() {
			set.Add(sub.Explanation.Prepend(head), sub.Count)
		}
	}

	m.cache[key] = set
	return set
}
