package boundary

import "sort"

// Match is one explanation and the number of concrete readings it stands for.
type Match struct {
	Explanation Explanation
	Count       int
}

// MatchSet maps rendered explanations to matches, remembering insertion order.
type MatchSet struct {
	keys    []string
	matches map[string]*Match
}

// NewMatchSet creates an empty set.
func NewMatchSet() *MatchSet {
	return &MatchSet{matches: make(map[string]*Match)}
}

// Add inserts exp with count, summing counts when the rendered key is already present.
func (m *MatchSet) Add(exp Explanation, count int) {
	key := exp.String()
	if existing, ok := m.matches[key]; ok {
		existing.Count += count
		return
	}
	m.keys = append(m.keys, key)
	m.matches[key] = &Match{Explanation: exp, Count: count}
}

// Remove deletes the explanation rendered as key, if present.
func (m *MatchSet) Remove(key string) {
	if _, ok := m.matches[key]; !ok {
		return
	}
	delete(m.matches, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Filter keeps only the matches for which keep returns true.
func (m *MatchSet) Filter(keep func(Match) bool) {
	kept := m.keys[:0]
	for _, k := range m.keys {
		if keep(*m.matches[k]) {
			kept = append(kept, k)
			continue
		}
		delete(m.matches, k)
	}
	m.keys = kept
}

// Get returns the count for a rendered explanation.
func (m *MatchSet) Get(key string) (int, bool) {
	match, ok := m.matches[key]
	if !ok {
		return 0, false
	}
	return match.Count, true
}

// Len returns the number of distinct explanations.
func (m *MatchSet) Len() int {
	return len(m.keys)
}

// Total returns the sum of all counts.
func (m *MatchSet) Total() int {
	total := 0
	for _, match := range m.matches {
		total += match.Count
	}
	return total
}

// Matches returns the matches in insertion order.
func (m *MatchSet) Matches() []Match {
	out := make([]Match, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, *m.matches[k])
	}
	return out
}

// Sorted returns the matches by descending count, ties kept in insertion order.
func (m *MatchSet) Sorted() []Match {
	out := m.Matches()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Counts returns rendered explanation -> count.
func (m *MatchSet) Counts() map[string]int {
	out := make(map[string]int, len(m.keys))
	for k, match := range m.matches {
		out[k] = match.Count
	}
	return out
}

// Clone returns a copy that can be modified without touching m.
func (m *MatchSet) Clone() *MatchSet {
	out := &MatchSet{
		keys:    make([]string, len(m.keys)),
		matches: make(map[string]*Match, len(m.matches)),
	}
	copy(out.keys, m.keys)
	for k, match := range m.matches {
		c := *match
		out.matches[k] = &c
	}
	return out
}
