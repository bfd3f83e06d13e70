package dictionary

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrMalformed is returned for sources that are not a flat strokes -> translation mapping.
var ErrMalformed = errors.New("malformed dictionary")

// LoaderStats provides statistics about one load
type LoaderStats struct {
	Sources  int
	Read     int // definitions read, including overrides
	Skipped  int // definitions with invalid keys
	Entries  int // unique entries after merging
	Duration time.Duration
}

// Load reads every source in order and merges them; later sources override earlier ones.
func Load(paths ...string) (*Dictionary, LoaderStats, error) {
	var stats LoaderStats
	if len(paths) == 0 {
		return nil, stats, errors.New("no dictionary sources given")
	}

	start := time.Now()
	d := New()
	for _, path := range paths {
		read, skipped, err := d.LoadFile(path)
		if err != nil {
			return nil, stats, err
		}
		stats.Read += read
		stats.Skipped += skipped
		stats.Sources++
		log.Debugf("Loaded %s: %d definitions, %d skipped", path, read, skipped)
	}
	stats.Entries = d.Len()
	stats.Duration = time.Since(start)
	return d, stats, nil
}

// LoadFile merges one dictionary file into d. It returns the number of definitions read
// and the number skipped for invalid keys.
func (d *Dictionary) LoadFile(path string) (int, int, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return 0, 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer file.Close()

	return d.Read(bufio.NewReader(file), format, path)
}

// Read merges a dictionary in the given format from r. name is used in messages.
func (d *Dictionary) Read(r io.Reader, format FileFormat, name string) (int, int, error) {
	switch format {
	case FormatJSON:
		return d.readJSON(r, name)
	case FormatMsgpack:
		return d.readMsgpack(r, name)
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// readJSON validates the whole document first, then decodes it as a token stream to keep
// the definition order.
func (d *Dictionary) readJSON(r io.Reader, name string) (int, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read dictionary %s: %w", name, err)
	}
	if err := validateJSON(data); err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}

	read, skipped := 0, 0
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
		}
		key, _ := tok.(string)

		var translation string
		if err := dec.Decode(&translation); err != nil {
			return 0, 0, fmt.Errorf("%w: %s: value of %q: %v", ErrMalformed, name, key, err)
		}
		read++
		if !d.define(key, translation, name) {
			skipped++
		}
	}
	return read, skipped, nil
}

func (d *Dictionary) readMsgpack(r io.Reader, name string) (int, int, error) {
	dec := msgpack.NewDecoder(r)
	n, err := dec.DecodeMapLen()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: %s: nil map", ErrMalformed, name)
	}

	read, skipped := 0, 0
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s: key %d: %v", ErrMalformed, name, i, err)
		}
		translation, err := dec.DecodeString()
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s: value of %q: %v", ErrMalformed, name, key, err)
		}
		read++
		if !d.define(key, translation, name) {
			skipped++
		}
	}
	return read, skipped, nil
}

// define sets one definition, logging and skipping keys that are not stroke sequences.
func (d *Dictionary) define(key, translation, source string) bool {
	if err := d.Set(key, translation); err != nil {
		log.Warnf("Skipping entry in %s: %v", source, err)
		return false
	}
	return true
}

// WriteMsgpack writes the merged dictionary as a msgpack map in definition order.
func (d *Dictionary) WriteMsgpack(w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.EncodeMapLen(len(d.entries)); err != nil {
		return err
	}
	for _, e := range d.entries {
		if err := enc.EncodeString(e.Key); err != nil {
			return err
		}
		if err := enc.EncodeString(e.Translation); err != nil {
			return err
		}
	}
	return nil
}

// Export writes the merged dictionary to path in msgpack format.
func (d *Dictionary) Export(path string) error {
	if FormatForExtension(path) != FormatMsgpack {
		return fmt.Errorf("%w: export to %s, use one of %v", ErrUnknownFormat, path,
			supportedFormats[FormatMsgpack].Extensions)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(file)
	if err := d.WriteMsgpack(w); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
