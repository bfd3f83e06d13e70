package boundary

import (
	"fmt"
	"testing"

	"github.com/bastiangx/strokecheck/pkg/dictionary"
	"github.com/bastiangx/strokecheck/pkg/strokes"
	"github.com/google/go-cmp/cmp"
)

func dictOf(t testing.TB, pairs ...string) *dictionary.Dictionary {
	t.Helper()
	d := dictionary.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := d.Set(pairs[i], pairs[i+1]); err != nil {
			t.Fatalf("Set(%q): %v", pairs[i], err)
		}
	}
	return d
}

func aheadDict(t testing.TB) *dictionary.Dictionary {
	return dictOf(t,
		"A", "a",
		"HED", "head",
		"A/HED", "ahead",
		"HED/KWAR", "header",
		"HED/-S", "heads",
		"B", "b",
		"A/B", "ab",
	)
}

func TestBuild(t *testing.T) {
	testCases := []struct {
		description string
		opts        Options
		want        []ReportEntry
	}{
		{
			description: "all boundary errors",
			want: []ReportEntry{
				{Strokes: "A/HED", Matches: []Count{{"A HED/<open>", 2}, {"A HED", 1}}},
				{Strokes: "A/B", Matches: []Count{{"A B", 1}}},
			},
		},
		{
			description: "hide trivial retilings",
			opts:        Options{HideTrivial: true},
			want: []ReportEntry{
				{Strokes: "A/HED", Matches: []Count{{"A HED/<open>", 2}}},
			},
		},
		{
			description: "with translations",
			opts:        Options{AddTranslations: true},
			want: []ReportEntry{
				{Strokes: "A/HED: ahead", Matches: []Count{{"A: a HED/<open>", 2}, {"A: a HED: head", 1}}},
				{Strokes: "A/B: ab", Matches: []Count{{"A: a B: b", 1}}},
			},
		},
		{
			description: "focus on a single stroke entry",
			opts:        Options{Focus: strokes.MustParse("B")},
			want: []ReportEntry{
				{Strokes: "A/B", Matches: []Count{{"A B", 1}}},
			},
		},
		{
			description: "focus completes an open continuation",
			opts:        Options{Focus: strokes.MustParse("HED/-S")},
			want: []ReportEntry{
				{Strokes: "A/HED", Matches: []Count{{"A HED/<open>", 2}}},
			},
		},
		{
			description: "focus missing from the dictionary",
			opts:        Options{Focus: strokes.MustParse("A/HED/KWAR")},
			want: []ReportEntry{
				{Strokes: "A/HED/KWAR", Matches: []Count{{"A HED/KWAR", 1}}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			d := aheadDict(t)
			got, err := Build(d, tc.opts)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, got.Entries); diff != "" {
				t.Errorf("Build() mismatch (-want +got):\n%s", diff)
			}
			if d.Len() != 7 {
				t.Errorf("Build() modified the dictionary, %d entries", d.Len())
			}
		})
	}
}

func TestBuildTiesKeepDictionaryOrder(t *testing.T) {
	forward := dictOf(t, "A", "a", "B", "b", "A/B", "ab", "B/A", "ba")
	backward := dictOf(t, "A", "a", "B", "b", "B/A", "ba", "A/B", "ab")

	for _, tc := range []struct {
		dict *dictionary.Dictionary
		want []string
	}{
		{forward, []string{"A/B", "B/A"}},
		{backward, []string{"B/A", "A/B"}},
	} {
		report, err := Build(tc.dict, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		var got []string
		for _, e := range report.Entries {
			got = append(got, e.Strokes)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("entry order mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestBuildFocusIsSubset(t *testing.T) {
	d := aheadDict(t)
	full, err := Build(d, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	all := make(map[string]map[string]int)
	for _, e := range full.Entries {
		all[e.Strokes] = make(map[string]int)
		for _, m := range e.Matches {
			all[e.Strokes][m.Explanation] = m.Count
		}
	}

	for _, e := range d.Entries() {
		focused, err := Build(d, Options{Focus: e.Strokes})
		if err != nil {
			t.Fatalf("Build(focus %s) error = %v", e.Key, err)
		}
		for _, entry := range focused.Entries {
			for _, m := range entry.Matches {
				if count, ok := all[entry.Strokes][m.Explanation]; !ok || count != m.Count {
					t.Errorf("focus %s: %s -> %s not in the unfocused report", e.Key, entry.Strokes, m.Explanation)
				}
			}
		}
	}
}

// usesFocus reports whether exp has focus as a whole entry segment, or ends in a
// continuation whose covered strokes start focus.
func usesFocus(exp Explanation, focus strokes.Sequence) bool {
	for _, seg := range exp {
		if seg.Kind == Entry && cmp.Equal(seg.Strokes, focus) {
			return true
		}
	}
	last := exp[len(exp)-1]
	if last.Kind != Open && last.Kind != Extension {
		return false
	}
	return len(last.Prefix) <= len(focus) && cmp.Equal(focus[:len(last.Prefix)], last.Prefix)
}

func TestFocusErrorsMentionFocus(t *testing.T) {
	for name, d := range map[string]*dictionary.Dictionary{
		"ahead":     aheadDict(t),
		"synthetic": syntheticDict(t, 60),
	} {
		t.Run(name, func(t *testing.T) {
			checked := 0
			for _, focus := range d.Entries() {
				m := NewMatcher(d.Trie(), false)
				for _, c := range Candidates(d, focus.Strokes) {
					set := EntryErrors(m, c.Strokes, false)
					FocusErrors(set, c.Strokes, focus.Strokes)
					if c.Strokes.Equal(focus.Strokes) {
						continue
					}
					for _, match := range set.Matches() {
						checked++
						if !usesFocus(match.Explanation, focus.Strokes) {
							t.Errorf("focus %s: %s kept %s, which does not involve the focus",
								focus.Key, c.Key, match.Explanation)
						}
					}
				}
			}
			if checked == 0 {
				t.Fatal("no focused explanations were checked")
			}
		})
	}
}

func TestFocusErrorsKeepsFocusEntry(t *testing.T) {
	d := aheadDict(t)
	m := NewMatcher(d.Trie(), false)
	seq := strokes.MustParse("A/HED")

	set := EntryErrors(m, seq, false)
	want := set.Counts()
	FocusErrors(set, seq, seq)
	if diff := cmp.Diff(want, set.Counts()); diff != "" {
		t.Errorf("FocusErrors filtered the focus entry itself (-want +got):\n%s", diff)
	}

	other := EntryErrors(m, seq, false)
	FocusErrors(other, seq, strokes.MustParse("HED/-S"))
	if diff := cmp.Diff(map[string]int{"A HED/<open>": 2}, other.Counts()); diff != "" {
		t.Errorf("FocusErrors(HED/-S) mismatch (-want +got):\n%s", diff)
	}
}

func syntheticDict(t testing.TB, n int) *dictionary.Dictionary {
	d := dictionary.New()
	for i := 0; i < n; i++ {
		a, b, c := fmt.Sprintf("S%d", i%17), fmt.Sprintf("S%d", (i*5)%17), fmt.Sprintf("S%d", (i*11)%17)
		for _, key := range []string{a, a + "/" + b, a + "/" + b + "/" + c, b + "/" + c} {
			if err := d.Set(key, fmt.Sprintf("w%d", i)); err != nil {
				t.Fatalf("Set(%q): %v", key, err)
			}
		}
	}
	return d
}

func TestBuildWorkersMatchSingleThreaded(t *testing.T) {
	d := syntheticDict(t, 300)
	want, err := Build(d, Options{AddTranslations: true})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if want.Len() == 0 {
		t.Fatal("synthetic dictionary has no boundary errors")
	}

	for _, workers := range []int{2, 3, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			got, err := Build(d, Options{AddTranslations: true, Workers: workers})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("parallel report differs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildProgress(t *testing.T) {
	d := syntheticDict(t, 120)

	for _, workers := range []int{1, 4} {
		var seen []int
		_, err := Build(d, Options{Workers: workers, Progress: func(p int) {
			seen = append(seen, p)
		}})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(seen) == 0 || seen[len(seen)-1] != 100 {
			t.Fatalf("workers=%d: progress %v does not end at 100", workers, seen)
		}
		for i := 1; i < len(seen); i++ {
			if seen[i] <= seen[i-1] {
				t.Errorf("workers=%d: progress not increasing at %d: %v", workers, i, seen)
				break
			}
		}
	}
}

func TestCandidates(t *testing.T) {
	d := aheadDict(t)
	testCases := []struct {
		focus string
		want  []string
	}{
		{"HED", []string{"HED", "A/HED", "HED/KWAR", "HED/-S"}},
		{"HED/-S", []string{"HED", "A/HED", "HED/-S"}},
		{"A/B", []string{"A", "A/B"}},
	}

	for _, tc := range testCases {
		t.Run(tc.focus, func(t *testing.T) {
			var got []string
			for _, e := range Candidates(d, strokes.MustParse(tc.focus)) {
				got = append(got, e.Key)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Candidates(%s) mismatch (-want +got):\n%s", tc.focus, diff)
			}
		})
	}

	if got := len(Candidates(d, nil)); got != d.Len() {
		t.Errorf("Candidates without focus = %d entries, want %d", got, d.Len())
	}
}

func TestAnnotate(t *testing.T) {
	d := aheadDict(t)
	testCases := []struct {
		key  string
		want string
	}{
		{"A HED", "A: a HED: head"},
		{"A HED/<open>", "A: a HED/<open>"},
		{"A/HED", "A/HED: ahead"},
		{"X HED/KWAR", "X HED/KWAR: header"},
	}

	for _, tc := range testCases {
		if got := Annotate(tc.key, d); got != tc.want {
			t.Errorf("Annotate(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	d := syntheticDict(b, 1000)
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Build(d, Options{Workers: workers}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
