// Package codec reads and writes employee rosters.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"badgeclock/internal/domain"
)

// Importer reads a roster from a serialized form
type Importer interface {
	Parse(r io.Reader) ([]domain.Employee, error)
	Format() string
}

// Exporter writes a roster to a serialized form
type Exporter interface {
	Export(employees []domain.Employee, w io.Writer) error
	Format() string
}

// Codec both reads and writes rosters
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec named by format ("yaml", "yml" or "json")
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml", "":
		return NewYAMLCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported roster format %q", format)
	}
}

// ForPath picks the codec from a file extension
func ForPath(path string) (Codec, error) {
	return ForFormat(filepath.Ext(path))
}

// ForContentType picks the codec from an HTTP Content-Type header
func ForContentType(contentType string) Codec {
	if strings.Contains(contentType, "json") {
		return NewJSONCodec()
	}
	return NewYAMLCodec()
}
