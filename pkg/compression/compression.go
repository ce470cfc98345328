// Package compression detects and undoes the compression applied to heap
// snapshot files, so the profiler accepts plain, gzip, and zstd snapshots
// interchangeably.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Format identifies the compression applied to a snapshot payload.
type Format uint8

const (
	// FormatNone marks an uncompressed payload.
	FormatNone Format = iota
	// FormatGzip marks a gzip payload (magic 0x1f 0x8b).
	FormatGzip
	// FormatZstd marks a zstd payload (magic 0x28 0xb5 0x2f 0xfd).
	FormatZstd
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatGzip:
		return "gzip"
	case FormatZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Detect sniffs the payload's magic bytes. Anything that is neither gzip
// nor zstd is treated as uncompressed.
func Detect(data []byte) Format {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return FormatGzip
	}
	if len(data) >= 4 && data[0] == 0x28 && data[1] == 0xb5 && data[2] == 0x2f && data[3] == 0xfd {
		return FormatZstd
	}
	return FormatNone
}

// AutoDecompress returns the plain snapshot bytes whatever the payload's
// format. Uncompressed payloads pass through unchanged.
func AutoDecompress(data []byte) ([]byte, error) {
	switch Detect(data) {
	case FormatGzip:
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip snapshot: %w", err)
		}
		defer reader.Close()
		plain, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip snapshot: %w", err)
		}
		return plain, nil

	case FormatZstd:
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer decoder.Close()
		plain, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read zstd snapshot: %w", err)
		}
		return plain, nil

	default:
		return data, nil
	}
}

// Compress compresses a snapshot payload in the given format. Used when
// archiving snapshots and for building compressed fixtures.
func Compress(data []byte, f Format) ([]byte, error) {
	switch f {
	case FormatGzip:
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(data); err != nil {
			gz.Close()
			return nil, fmt.Errorf("failed to gzip snapshot: %w", err)
		}
		if err := gz.Close(); err != nil {
			return nil, fmt.Errorf("failed to gzip snapshot: %w", err)
		}
		return buf.Bytes(), nil

	case FormatZstd:
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		defer encoder.Close()
		return encoder.EncodeAll(data, nil), nil

	case FormatNone:
		return data, nil

	default:
		return nil, fmt.Errorf("unknown compression format: %d", f)
	}
}
