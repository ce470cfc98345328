// Package writer renders profiling samples to JSON report files.
package writer

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Stats describes one written report.
type Stats struct {
	// JSONSize is the size of the rendered JSON payload.
	JSONSize int64
	// CompressedSize is the size of the file on disk. Equal to JSONSize
	// for uncompressed reports.
	CompressedSize int64
}

// ReportWriter renders values as JSON. Files whose path ends in ".gz"
// are written gzip compressed; everything else is written plain.
type ReportWriter[T any] struct {
	// Indent enables pretty printing when non-empty.
	Indent string
	// Level is the gzip level for compressed reports.
	Level int
}

// NewReportWriter creates a writer producing compact JSON with default
// gzip compression.
func NewReportWriter[T any]() *ReportWriter[T] {
	return &ReportWriter[T]{Level: gzip.DefaultCompression}
}

// Marshal renders the value to JSON bytes.
func (w *ReportWriter[T]) Marshal(v T) ([]byte, error) {
	if w.Indent != "" {
		return json.MarshalIndent(v, "", w.Indent)
	}
	return json.Marshal(v)
}

// WriteFile renders the value and writes it to path, compressing when the
// path asks for it. It returns the payload and on-disk sizes.
func (w *ReportWriter[T]) WriteFile(v T, path string) (*Stats, error) {
	payload, err := w.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	out := payload
	if strings.HasSuffix(path, ".gz") {
		if out, err = w.compress(payload); err != nil {
			return nil, err
		}
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return &Stats{
		JSONSize:       int64(len(payload)),
		CompressedSize: int64(len(out)),
	}, nil
}

func (w *ReportWriter[T]) compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, w.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := gz.Write(payload); err != nil {
		gz.Close()
		return nil, fmt.Errorf("failed to compress report: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress report: %w", err)
	}
	return buf.Bytes(), nil
}
