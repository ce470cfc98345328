// Package threads implements the execution-context archival machinery:
// any number of logical threads share one runtime by snapshotting and
// restoring per-thread interpreter state into archival slots, under the
// single global runtime lock.
package threads

import (
	"encoding/binary"
	"fmt"
)

// Writer serializes collaborator state into an archival slot buffer. Each
// collaborator writes one length-prefixed segment, so readers can skip to
// or stop at segment boundaries without knowing field layouts.
type Writer struct {
	buf      []byte
	segStart int
}

// NewWriter creates a writer with the given capacity hint.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity), segStart: -1}
}

// BeginSegment opens a new length-prefixed segment.
func (w *Writer) BeginSegment() {
	if w.segStart >= 0 {
		panic("threads: nested archive segment")
	}
	w.segStart = len(w.buf)
	w.buf = append(w.buf, 0, 0, 0, 0)
}

// EndSegment closes the current segment and patches its length prefix.
func (w *Writer) EndSegment() {
	if w.segStart < 0 {
		panic("threads: EndSegment without BeginSegment")
	}
	length := len(w.buf) - w.segStart - 4
	binary.LittleEndian.PutUint32(w.buf[w.segStart:], uint32(length))
	w.segStart = -1
}

// WriteUint64 appends one fixed-width value to the current segment.
func (w *Writer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteBool appends one boolean to the current segment.
func (w *Writer) WriteBool(v bool) {
	b := byte(0)
	if v {
		b = 1
	}
	w.buf = append(w.buf, b)
}

// WriteBytes appends a length-prefixed byte field to the current segment.
func (w *Writer) WriteBytes(p []byte) {
	w.WriteUint64(uint64(len(p)))
	w.buf = append(w.buf, p...)
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Reader deserializes collaborator state from an archival slot buffer.
type Reader struct {
	data []byte
	off  int
}

// NewReader creates a reader over an archived buffer.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NextSegment returns a reader scoped to the next segment and advances
// past it.
func (r *Reader) NextSegment() *Reader {
	if r.off+4 > len(r.data) {
		panic(fmt.Sprintf("threads: truncated archive at offset %d", r.off))
	}
	length := int(binary.LittleEndian.Uint32(r.data[r.off:]))
	start := r.off + 4
	if start+length > len(r.data) {
		panic(fmt.Sprintf("threads: archive segment overruns buffer (%d bytes at %d)", length, start))
	}
	r.off = start + length
	return &Reader{data: r.data[start : start+length]}
}

// nextSegmentBytes returns the raw bytes of the next segment and advances
// past it. Used by compaction hooks that patch archived state in place.
func (r *Reader) nextSegmentBytes() []byte {
	if r.off+4 > len(r.data) {
		panic(fmt.Sprintf("threads: truncated archive at offset %d", r.off))
	}
	length := int(binary.LittleEndian.Uint32(r.data[r.off:]))
	start := r.off + 4
	r.off = start + length
	return r.data[start : start+length]
}

// ReadUint64 reads one fixed-width value.
func (r *Reader) ReadUint64() uint64 {
	if r.off+8 > len(r.data) {
		panic("threads: archive read past segment end")
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

// ReadBool reads one boolean.
func (r *Reader) ReadBool() bool {
	if r.off >= len(r.data) {
		panic("threads: archive read past segment end")
	}
	b := r.data[r.off]
	r.off++
	return b != 0
}

// ReadBytes reads one length-prefixed byte field.
func (r *Reader) ReadBytes() []byte {
	n := int(r.ReadUint64())
	if r.off+n > len(r.data) {
		panic("threads: archive read past segment end")
	}
	p := make([]byte, n)
	copy(p, r.data[r.off:r.off+n])
	r.off += n
	return p
}
