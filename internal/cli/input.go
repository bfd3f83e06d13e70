// Package cli is an interactive prompt for checking stroke sequences against a loaded
// dictionary, for debugging entries one at a time.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/strokecheck/pkg/boundary"
	"github.com/bastiangx/strokecheck/pkg/dictionary"
	"github.com/bastiangx/strokecheck/pkg/strokes"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// InputHandler reads stroke sequences line by line and prints their boundary errors.
type InputHandler struct {
	dict        *dictionary.Dictionary
	matcher     *boundary.Matcher
	hideTrivial bool
	translate   bool
	in          *bufio.Reader
	out         io.Writer

	countStyle lipgloss.Style
	keyStyle   lipgloss.Style
	dimStyle   lipgloss.Style
}

// NewInputHandler creates a handler over dict reading from in and writing to out.
// The matcher and its cache live as long as the handler.
func NewInputHandler(dict *dictionary.Dictionary, hideTrivial, translate bool, in io.Reader, out io.Writer) *InputHandler {
	r := lipgloss.NewRenderer(out)
	return &InputHandler{
		dict:        dict,
		matcher:     boundary.NewMatcher(dict.Trie(), false),
		hideTrivial: hideTrivial,
		translate:   translate,
		in:          bufio.NewReader(in),
		out:         out,
		countStyle:  r.NewStyle().Foreground(lipgloss.Color("#f6c177")).Width(4).Align(lipgloss.Right),
		keyStyle:    r.NewStyle().Foreground(lipgloss.Color("#9ccfd8")).Bold(true),
		dimStyle:    r.NewStyle().Foreground(lipgloss.Color("#6e6a86")),
	}
}

// Start runs the prompt until the input ends.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, h.keyStyle.Render("strokecheck"), h.dimStyle.Render(fmt.Sprintf("%d entries", h.dict.Len())))
	fmt.Fprintln(h.out, h.dimStyle.Render("type a stroke sequence like A/HED and press Enter (Ctrl+D to exit)"))

	for {
		fmt.Fprint(h.out, "> ")
		line, err := h.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(h.out)
				return nil
			}
			return err
		}
	}
}

// handleInput checks one sequence and prints its boundary errors, most frequent first.
func (h *InputHandler) handleInput(input string) {
	seq, err := strokes.Parse(input)
	if err != nil {
		log.Errorf("Invalid stroke sequence %q: %v", input, err)
		return
	}

	start := time.Now()
	set := boundary.EntryErrors(h.matcher, seq, h.hideTrivial)
	log.Debugf("Took [ %v ] for %s, %d suffixes cached", time.Since(start), seq, h.matcher.CacheSize())

	header := seq.String()
	if translation, ok := h.dict.Translation(header); ok {
		header += " " + h.dimStyle.Render("→ "+translation)
	} else {
		header += " " + h.dimStyle.Render("(not an entry)")
	}
	fmt.Fprintln(h.out, h.keyStyle.Render(header))
	h.showCompletions(seq)

	if set.Len() == 0 {
		fmt.Fprintln(h.out, h.dimStyle.Render("  no boundary errors"))
		return
	}
	for _, m := range set.Sorted() {
		key := m.Explanation.String()
		if h.translate {
			key = boundary.Annotate(key, h.dict)
		}
		fmt.Fprintf(h.out, "%s  %s\n", h.countStyle.Render(fmt.Sprint(m.Count)), key)
	}
}

// completionLimit caps the longer entries listed under a sequence that is not an entry.
const completionLimit = 5

// showCompletions lists a few entries that continue seq when seq itself is not an entry.
func (h *InputHandler) showCompletions(seq strokes.Sequence) {
	if h.dict.Has(seq.String()) {
		return
	}
	for _, e := range h.dict.Complete(seq.String()+strokes.Separator, completionLimit) {
		fmt.Fprintln(h.out, h.dimStyle.Render("  continues as "+e.Key+" → "+e.Translation))
	}
}
