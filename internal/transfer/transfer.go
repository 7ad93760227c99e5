// Package transfer moves the choice log in and out of the application as
// JSON documents or CSV tables.
package transfer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lazypower/lifeclock/internal/store"
)

// Format is an export/import file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or csv)", s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot tell format of %q: no extension", path)
	}
	return ParseFormat(ext)
}

// Appender records imported choices. engine.Engine satisfies it.
type Appender interface {
	Append(ctx context.Context, c store.Choice) (store.Choice, error)
}

// ImportError reports the first record an import could not accept. Row is
// the 1-based record number, or 0 when the document itself is malformed.
// Records before Row have already been appended.
type ImportError struct {
	Row int
	Err error
}

func (e *ImportError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("import: %v", e.Err)
	}
	return fmt.Sprintf("import: record %d: %v", e.Row, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// appendAll appends choices in order and stops at the first rejection.
func appendAll(ctx context.Context, dst Appender, choices []store.Choice, firstRow int) (int, error) {
	for i, c := range choices {
		c.ID = 0
		if _, err := dst.Append(ctx, c); err != nil {
			return i, &ImportError{Row: firstRow + i, Err: err}
		}
	}
	return len(choices), nil
}

// Import reads r in format f and appends every record to dst.
func Import(ctx context.Context, f Format, r io.Reader, dst Appender) (int, error) {
	if f == FormatCSV {
		return ImportCSV(ctx, r, dst)
	}
	return ImportJSON(ctx, r, dst)
}
