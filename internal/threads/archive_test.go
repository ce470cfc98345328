package threads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReader_SegmentRoundTrip(t *testing.T) {
	w := NewWriter(64)
	w.BeginSegment()
	w.WriteUint64(42)
	w.WriteBool(true)
	w.EndSegment()
	w.BeginSegment()
	w.WriteBytes([]byte("scratch"))
	w.EndSegment()

	r := NewReader(w.Bytes())
	seg1 := r.NextSegment()
	assert.Equal(t, uint64(42), seg1.ReadUint64())
	assert.True(t, seg1.ReadBool())
	seg2 := r.NextSegment()
	assert.Equal(t, []byte("scratch"), seg2.ReadBytes())
}

func TestWriterReader_EmptySegment(t *testing.T) {
	w := NewWriter(8)
	w.BeginSegment()
	w.EndSegment()

	r := NewReader(w.Bytes())
	seg := r.NextSegment()
	assert.Panics(t, func() { seg.ReadUint64() })
}

func TestWriter_NestedSegmentPanics(t *testing.T) {
	w := NewWriter(8)
	w.BeginSegment()
	assert.Panics(t, func() { w.BeginSegment() })
}

func TestWriter_EndWithoutBeginPanics(t *testing.T) {
	w := NewWriter(8)
	assert.Panics(t, func() { w.EndSegment() })
}

func TestReader_TruncatedArchivePanics(t *testing.T) {
	w := NewWriter(16)
	w.BeginSegment()
	w.WriteUint64(1)
	w.EndSegment()

	full := w.Bytes()
	r := NewReader(full[:len(full)-2])
	assert.Panics(t, func() { r.NextSegment() })
}

func TestReader_ReadPastSegmentEndPanics(t *testing.T) {
	w := NewWriter(16)
	w.BeginSegment()
	w.WriteUint64(7)
	w.EndSegment()

	seg := NewReader(w.Bytes()).NextSegment()
	seg.ReadUint64()
	assert.Panics(t, func() { seg.ReadUint64() })
}

func TestReader_SegmentsAreIsolated(t *testing.T) {
	w := NewWriter(32)
	w.BeginSegment()
	w.WriteUint64(1)
	w.EndSegment()
	w.BeginSegment()
	w.WriteUint64(2)
	w.EndSegment()

	r := NewReader(w.Bytes())
	seg1 := r.NextSegment()
	require.Equal(t, uint64(1), seg1.ReadUint64())
	// Reading beyond the first segment must not leak into the second.
	assert.Panics(t, func() { seg1.ReadUint64() })
	assert.Equal(t, uint64(2), r.NextSegment().ReadUint64())
}
