package boundary

import (
	"strings"

	"github.com/bastiangx/strokecheck/pkg/strokes"
)

// SegmentKind tags a Segment.
type SegmentKind int

const (
	// Entry is a complete dictionary entry.
	Entry SegmentKind = iota
	// Open is a prefix shared by several longer entries, kept as a count.
	Open
	// Extension is a prefix with exactly one longer entry, resolved to that entry.
	Extension
)

// OpenMarker is appended to the prefix of an Open segment when rendered.
const OpenMarker = "<open>"

// Segment is one piece of an Explanation.
type Segment struct {
	Kind SegmentKind
	// Strokes is the entry for Entry and Extension, and the shared prefix for Open.
	Strokes strokes.Sequence
	// Prefix is the part of the explained sequence an Open or Extension segment covers.
	Prefix strokes.Sequence
	// Count is the number of longer entries behind an Open segment.
	Count int
}

// EntrySegment returns a concrete entry segment.
func EntrySegment(seq strokes.Sequence) Segment {
	c := seq.Clone()
	return Segment{Kind: Entry, Strokes: c, Prefix: c}
}

// OpenSegment returns an unresolved continuation of prefix shared by count entries.
func OpenSegment(prefix strokes.Sequence, count int) Segment {
	c := prefix.Clone()
	return Segment{Kind: Open, Strokes: c, Prefix: c, Count: count}
}

// ExtensionSegment returns the continuation of prefix resolved to its single longer entry.
func ExtensionSegment(prefix, entry strokes.Sequence) Segment {
	return Segment{Kind: Extension, Strokes: entry.Clone(), Prefix: prefix.Clone(), Count: 1}
}

// String renders the segment.
func (s Segment) String() string {
	if s.Kind == Open {
		return s.Strokes.String() + strokes.Separator + OpenMarker
	}
	return s.Strokes.String()
}

// Explanation is one way of reading a stroke sequence as dictionary entries.
type Explanation []Segment

// String renders the explanation, segments separated by a space.
func (e Explanation) String() string {
	parts := make([]string, len(e))
	for i, s := range e {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// Prepend returns a new explanation with seg in front of e.
func (e Explanation) Prepend(seg Segment) Explanation {
	out := make(Explanation, 0, len(e)+1)
	out = append(out, seg)
	return append(out, e...)
}

// Last returns the final segment.
func (e Explanation) Last() Segment {
	return e[len(e)-1]
}

// Concrete reports whether every segment is a dictionary entry covering exactly its own strokes.
func (e Explanation) Concrete() bool {
	for _, s := range e {
		if s.Kind != Entry {
			return false
		}
	}
	return true
}
