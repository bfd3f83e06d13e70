// Package strokes holds the stroke sequence type and the stroke trie the matcher walks.
package strokes

import (
	"errors"
	"strings"
)

// Separator joins the strokes of a sequence in its textual form.
const Separator = "/"

// keySep separates tokens in cache keys. Tokens never contain it.
const keySep = "\x1f"

var (
	// ErrEmptySequence is returned when parsing an empty stroke string.
	ErrEmptySequence = errors.New("empty stroke sequence")
	// ErrEmptyStroke is returned when a stroke string has an empty token ("A//B", "A/").
	ErrEmptyStroke = errors.New("empty stroke in sequence")
)

// Sequence is an ordered list of strokes, the key of a dictionary entry.
type Sequence []string

// Parse splits a slash-delimited stroke string into a Sequence.
func Parse(s string) (Sequence, error) {
	if s == "" {
		return nil, ErrEmptySequence
	}
	parts := strings.Split(s, Separator)
	for _, p := range parts {
		if p == "" {
			return nil, ErrEmptyStroke
		}
	}
	return Sequence(parts), nil
}

// MustParse is Parse for literals in tests and examples.
func MustParse(s string) Sequence {
	seq, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return seq
}

// String returns the slash-delimited form.
func (s Sequence) String() string {
	return strings.Join(s, Separator)
}

// Key returns a value usable as a map key. Two sequences have the same key iff they are equal.
func (s Sequence) Key() string {
	return strings.Join(s, keySep)
}

// Equal reports whether s and o have the same strokes.
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether p is a prefix of s (p may equal s).
func (s Sequence) HasPrefix(p Sequence) bool {
	return len(p) <= len(s) && s[:len(p)].Equal(p)
}

// Contains reports whether sub occurs contiguously in s.
func (s Sequence) Contains(sub Sequence) bool {
	if len(sub) == 0 {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i : i+len(sub)].Equal(sub) {
			return true
		}
	}
	return false
}

// OverlapsPrefixOf reports whether some proper suffix-sized tail of s (1..len(o)-1 strokes)
// equals the prefix of o with the same length.
func (s Sequence) OverlapsPrefixOf(o Sequence) bool {
	for n := 1; n < len(o); n++ {
		if n > len(s) {
			break
		}
		if s[len(s)-n:].Equal(o[:n]) {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share storage with s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}
