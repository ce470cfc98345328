package profiler

import "github.com/runtime-analysis/internal/heap"

// Config carries the tunable profiler constants.
type Config struct {
	// MaxCoarserPasses bounds the coarsening fixed-point iteration.
	MaxCoarserPasses int
	// MaxRetainersPerLine caps retainer entries per report line.
	MaxRetainersPerLine int
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		MaxCoarserPasses:    DefaultMaxCoarserPasses,
		MaxRetainersPerLine: DefaultMaxRetainersPerLine,
	}
}

// sampleSpace and sampleEvent label every written sample.
const (
	sampleSpace = "Heap"
	sampleEvent = "allocated"
)

// kindHistogram accumulates per-kind instance counts during a pass.
type kindHistogram struct {
	rows map[heap.Kind]*numberAndSize
}

func newKindHistogram() *kindHistogram {
	return &kindHistogram{rows: make(map[heap.Kind]*numberAndSize)}
}

func (h *kindHistogram) collect(obj *heap.Object) {
	entry, ok := h.rows[obj.Kind]
	if !ok {
		entry = &numberAndSize{}
		h.rows[obj.Kind] = entry
	}
	entry.number++
	entry.bytes += obj.ByteSize
}

func (h *kindHistogram) print(sink Sink) {
	for _, kind := range []heap.Kind{
		heap.KindString,
		heap.KindObject,
		heap.KindGlobalPropertyCell,
		heap.KindStorageArray,
		heap.KindOther,
	} {
		if entry, ok := h.rows[kind]; ok && entry.bytes > 0 {
			sink.KindItem(kind.String(), entry.number, entry.bytes)
		}
	}
}

// WriteSample runs one full profiling pass over h: a single heap traversal
// feeding the kind histogram, the constructor histogram, and the retainer
// profile, emitted in that order through the sink. It must run with the
// runtime lock held; the heap must not mutate underneath it.
func WriteSample(h *heap.Heap, sink Sink, cfg Config) {
	sink.BeginSample(sampleSpace, sampleEvent, h.Capacity(), h.SizeOfObjects())

	kinds := newKindHistogram()
	consProfile := NewConstructorProfile()
	retainerProfile := NewRetainerProfile(h, cfg)
	h.ForEachObject(func(obj *heap.Object) {
		kinds.collect(obj)
		consProfile.CollectStats(obj)
		retainerProfile.CollectStats(obj)
	})

	kinds.print(sink)
	consProfile.PrintStats(sink)
	retainerProfile.PrintStats(sink)

	sink.EndSample()
}
