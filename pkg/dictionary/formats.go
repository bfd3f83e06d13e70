package dictionary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // JSON object, strokes -> translation
	FormatMsgpack            // msgpack map, strokes -> translation
)

// ErrUnknownFormat is returned for files whose format cannot be determined.
var ErrUnknownFormat = errors.New("unknown dictionary format")

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON Dictionary",
		Extensions:  []string{".json"},
		MinSize:     2, // {}
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "MessagePack Dictionary",
		Extensions:  []string{".msgpack", ".mpk"},
		MinSize:     1, // fixmap header
	},
}

// String returns the format description.
func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, expectedFormat)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	if FormatForExtension(filename) != expectedFormat {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, filepath.Ext(filename), formatInfo.Description, formatInfo.Extensions)
	}
	return nil
}

// FormatForExtension maps a file name to a format by extension alone.
func FormatForExtension(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatUnknown
}

// DetectFileFormat determines and validates the format of a file
func DetectFileFormat(filename string) (FileFormat, error) {
	format := FormatForExtension(filename)
	if format == FormatUnknown {
		return FormatUnknown, fmt.Errorf("%w: %s (supported extensions: %s)",
			ErrUnknownFormat, filename, strings.Join(SupportedExtensions(), ", "))
	}
	if err := ValidateFileFormat(filename, format); err != nil {
		return FormatUnknown, err
	}
	return format, nil
}

// SupportedExtensions lists every recognised file extension, sorted.
func SupportedExtensions() []string {
	var exts []string
	for _, info := range supportedFormats {
		exts = append(exts, info.Extensions...)
	}
	sort.Strings(exts)
	return exts
}
