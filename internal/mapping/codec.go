package mapping

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bidsmap/internal/faults"
)

// Format is a mapping file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", faults.Wrap(faults.ErrConfig, "mapping", "detect format",
			fmt.Sprintf("%s: unsupported extension (want .yaml, .yml or .json)", path), nil)
	}
}

// Load reads and validates the mapping file at path.
func Load(path string) (Mapping, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfig, "mapping", "read", path, err)
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfig, "mapping", "parse", path, err)
	}
	return m, nil
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (Mapping, error) {
	var (
		root *node
		err  error
	)
	switch format {
	case FormatYAML:
		root, err = decodeYAML(data)
	case FormatJSON:
		root, err = decodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return fromTree(root)
}

// Encode writes m to w in the given format.
func Encode(w io.Writer, format Format, m Mapping) error {
	if m == nil {
		return faults.Wrap(faults.ErrConfig, "mapping", "encode", "nil mapping", nil)
	}
	root := toTree(m)
	switch format {
	case FormatYAML:
		return encodeYAML(w, root)
	case FormatJSON:
		return encodeJSON(w, root)
	default:
		return faults.Wrap(faults.ErrConfig, "mapping", "encode", fmt.Sprintf("unsupported format %q", format), nil)
	}
}

// Save writes m to path, choosing the format from its extension.
func Save(path string, m Mapping) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, m); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return faults.Wrap(faults.ErrPath, "mapping", "save", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return faults.Wrap(faults.ErrPath, "mapping", "save", path, err)
	}
	return nil
}
