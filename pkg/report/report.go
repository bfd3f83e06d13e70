// Package report encodes boundary error reports as JSON or msgpack, keeping entry and
// explanation order, and reads them back.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/strokecheck/pkg/boundary"
	"github.com/tidwall/pretty"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is a report encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

var (
	// ErrUnknownFormat is returned for unsupported format names.
	ErrUnknownFormat = errors.New("unknown report format")
	// ErrMalformed is returned when decoding data that is not a report.
	ErrMalformed = errors.New("malformed report")
)

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (use json or msgpack)", ErrUnknownFormat, name)
	}
}

// Write encodes r in the given format. indent only applies to JSON.
func Write(w io.Writer, r *boundary.Report, format Format, indent int) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, r, indent)
	case FormatMsgpack:
		return WriteMsgpack(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteJSON writes r as a JSON object of entry -> {explanation: count}. Keys appear in report
// order and non-ASCII text is written as is. indent 0 writes a single line.
func WriteJSON(w io.Writer, r *boundary.Report, indent int) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, e.Strokes); err != nil {
			return err
		}
		buf.WriteString(":{")
		for j, m := range e.Matches {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(&buf, m.Explanation); err != nil {
				return err
			}
			fmt.Fprintf(&buf, ":%d", m.Count)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	out := buf.Bytes()
	if indent > 0 {
		out = pretty.PrettyOptions(out, &pretty.Options{
			Width:  80,
			Indent: strings.Repeat(" ", indent),
		})
	} else {
		out = append(out, '\n')
	}
	_, err := w.Write(out)
	return err
}

// writeString appends s as a JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// WriteMsgpack writes r as nested msgpack maps in report order.
func WriteMsgpack(w io.Writer, r *boundary.Report) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.EncodeMapLen(len(r.Entries)); err != nil {
		return err
	}
	for _, e := range r.Entries {
		if err := enc.EncodeString(e.Strokes); err != nil {
			return err
		}
		if err := enc.EncodeMapLen(len(e.Matches)); err != nil {
			return err
		}
		for _, m := range e.Matches {
			if err := enc.EncodeString(m.Explanation); err != nil {
				return err
			}
			if err := enc.EncodeInt(int64(m.Count)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Read decodes a report in the given format.
func Read(rd io.Reader, format Format) (*boundary.Report, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(rd)
	case FormatMsgpack:
		return ReadMsgpack(rd)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadJSON decodes a JSON report, keeping key order.
func ReadJSON(rd io.Reader) (*boundary.Report, error) {
	dec := json.NewDecoder(rd)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	r := &boundary.Report{}
	for dec.More() {
		strokes, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		entry := boundary.ReportEntry{Strokes: strokes}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			explanation, err := stringToken(dec)
			if err != nil {
				return nil, err
			}
			var count int
			if err := dec.Decode(&count); err != nil {
				return nil, fmt.Errorf("%w: count of %q: %v", ErrMalformed, explanation, err)
			}
			entry.Matches = append(entry.Matches, boundary.Count{Explanation: explanation, Count: count})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		r.Entries = append(r.Entries, entry)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	return r, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrMalformed, want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected key, got %v", ErrMalformed, tok)
	}
	return s, nil
}

// ReadMsgpack decodes a msgpack report, keeping key order.
func ReadMsgpack(rd io.Reader) (*boundary.Report, error) {
	dec := msgpack.NewDecoder(rd)
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: nil map", ErrMalformed)
	}
	r := &boundary.Report{}
	for i := 0; i < n; i++ {
		strokes, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		entry := boundary.ReportEntry{Strokes: strokes}
		m, err := dec.DecodeMapLen()
		if err != nil || m < 0 {
			return nil, fmt.Errorf("%w: matches of %q: %v", ErrMalformed, strokes, err)
		}
		for j := 0; j < m; j++ {
			explanation, err := dec.DecodeString()
			if err != nil {
				return nil, fmt.Errorf("%w: %q match %d: %v", ErrMalformed, strokes, j, err)
			}
			count, err := dec.DecodeInt()
			if err != nil {
				return nil, fmt.Errorf("%w: count of %q: %v", ErrMalformed, explanation, err)
			}
			entry.Matches = append(entry.Matches, boundary.Count{Explanation: explanation, Count: count})
		}
		r.Entries = append(r.Entries, entry)
	}
	return r, nil
}
