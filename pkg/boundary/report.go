package boundary

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/strokecheck/pkg/dictionary"
	"github.com/bastiangx/strokecheck/pkg/strokes"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Options controls report generation.
type Options struct {
	// HideTrivial drops explanations that retile an entry exactly with other entries
	// (A/HED read as A HED) and keeps only those spilling into a longer entry.
	HideTrivial bool
	// Focus restricts the report to entries and explanations involving this sequence.
	Focus strokes.Sequence
	// AddTranslations appends translations to the stroke keys.
	AddTranslations bool
	// Workers is the number of goroutines matching entries. Values below 2 run inline.
	Workers int
	// Progress, when set, is called with each new whole percentage of entries checked.
	Progress func(percent int)
}

// Count is a rendered explanation and its multiplicity.
type Count struct {
	Explanation string
	Count       int
}

// ReportEntry holds the boundary errors of one dictionary entry.
type ReportEntry struct {
	Strokes string
	Matches []Count
}

// Total returns the sum of the entry's multiplicities.
func (e ReportEntry) Total() int {
	total := 0
	for _, m := range e.Matches {
		total += m.Count
	}
	return total
}

// Report lists entries with boundary errors, most ambiguous first.
type Report struct {
	Entries []ReportEntry
}

// Len returns the number of entries in the report.
func (r *Report) Len() int {
	return len(r.Entries)
}

// Build checks the entries of dict and returns the ordered report.
// dict is not modified; a focus sequence missing from it is analysed on a copy.
func Build(dict *dictionary.Dictionary, opts Options) (*Report, error) {
	focused := len(opts.Focus) > 0
	if focused && !dict.Has(opts.Focus.String()) {
		dict = dict.Clone()
		if err := dict.Set(opts.Focus.String(), ""); err != nil {
			return nil, fmt.Errorf("add focus sequence %q: %w", opts.Focus, err)
		}
		log.Debugf("Focus sequence %s is not an entry, checking it as one", opts.Focus)
	}

	start := time.Now()
	trie := dict.Trie()
	candidates := Candidates(dict, opts.Focus)
	log.Debugf("Checking %d of %d entries", len(candidates), dict.Len())

	sets, err := matchAll(trie, candidates, opts)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for i, c := range candidates {
		set := sets[i]
		if focused {
			FocusErrors(set, c.Strokes, opts.Focus)
		}
		if set.Len() == 0 {
			continue
		}
		report.Entries = append(report.Entries, render(c, set, dict, opts.AddTranslations))
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].Total() > report.Entries[j].Total()
	})

	log.Debugf("Found boundary errors in %d entries in %v", len(report.Entries), time.Since(start))
	return report, nil
}

// Candidates returns the entries worth checking, in dictionary order. With a focus
// sequence, only entries containing it or ending in one of its proper prefixes are kept.
func Candidates(dict *dictionary.Dictionary, focus strokes.Sequence) []dictionary.Entry {
	entries := dict.Entries()
	if len(focus) == 0 {
		return entries
	}
	var out []dictionary.Entry
	for _, e := range entries {
		if e.Strokes.Contains(focus) || e.Strokes.OverlapsPrefixOf(focus) {
			out = append(out, e)
		}
	}
	return out
}

// matchAll computes the boundary errors of every candidate, indexed like candidates.
func matchAll(trie *strokes.Trie, candidates []dictionary.Entry, opts Options) ([]*MatchSet, error) {
	results := make([]*MatchSet, len(candidates))
	tracker := newProgress(len(candidates), opts.Progress)

	check := func(m *Matcher, i int) {
		results[i] = EntryErrors(m, candidates[i].Strokes, opts.HideTrivial)
		tracker.step()
	}

	workers := opts.Workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	if workers < 2 {
		m := NewMatcher(trie, false)
		for i := range candidates {
			check(m, i)
		}
		log.Debugf("Memoized %d suffixes", m.CacheSize())
		return results, nil
	}

	chunk := (len(candidates) + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < len(candidates); lo += chunk {
		hi := min(lo+chunk, len(candidates))
		g.Go(func() error {
			m := NewMatcher(trie, false)
			for i := lo; i < hi; i++ {
				check(m, i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("match entries: %w", err)
	}
	return results, nil
}

// EntryErrors returns the boundary errors of one entry, without exact retilings when
// hideTrivial is set.
func EntryErrors(m *Matcher, seq strokes.Sequence, hideTrivial bool) *MatchSet {
	set := m.BoundaryErrors(seq)
	if hideTrivial {
		set.Filter(func(match Match) bool {
			return !match.Explanation.Concrete()
		})
	}
	return set
}

// FocusErrors drops from set, the boundary errors of seq, every explanation not involving
// focus. The errors of focus itself are kept whole.
func FocusErrors(set *MatchSet, seq, focus strokes.Sequence) {
	if seq.Equal(focus) {
		return
	}
	set.Filter(func(m Match) bool {
		return involves(m.Explanation, focus)
	})
}

// involves reports whether exp uses focus as a whole entry, or ends in a continuation
// that focus could complete.
func involves(exp Explanation, focus strokes.Sequence) bool {
	for _, seg := range exp {
		if seg.Kind == Entry && seg.Strokes.Equal(focus) {
			return true
		}
	}
	last := exp.Last()
	return last.Kind != Entry && focus.HasPrefix(last.Prefix)
}

func render(e dictionary.Entry, set *MatchSet, dict *dictionary.Dictionary, translate bool) ReportEntry {
	out := ReportEntry{Strokes: e.Key}
	if translate {
		out.Strokes = e.Key + ": " + e.Translation
	}
	for _, m := range set.Sorted() {
		key := m.Explanation.String()
		if translate {
			key = Annotate(key, dict)
		}
		out.Matches = append(out.Matches, Count{Explanation: key, Count: m.Count})
	}
	return out
}

// Annotate appends the translation to every space separated stroke token of key that is
// a dictionary entry.
func Annotate(key string, dict *dictionary.Dictionary) string {
	tokens := strings.Split(key, " ")
	for i, t := range tokens {
		if translation, ok := dict.Translation(t); ok {
			tokens[i] = t + ": " + translation
		}
	}
	return strings.Join(tokens, " ")
}

// progress reports whole percentages of completed entries, in increasing order.
type progress struct {
	mu     sync.Mutex
	done   int
	total  int
	last   int
	notify func(int)
}

func newProgress(total int, notify func(int)) *progress {
	return &progress{total: total, notify: notify}
}

func (p *progress) step() {
	if p.notify == nil || p.total == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if percent := 100 * p.done / p.total; percent > p.last {
		p.last = percent
		p.notify(percent)
	}
}
