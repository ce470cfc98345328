package profiler

import (
	"sort"

	"github.com/runtime-analysis/internal/heap"
)

// numberAndSize accumulates an object count and byte total.
type numberAndSize struct {
	number int64
	bytes  int64
}

// ConstructorProfile is the per-constructor histogram pass: object count
// and byte totals keyed by reporting name, with no coarsening.
type ConstructorProfile struct {
	stats map[string]*numberAndSize
}

// NewConstructorProfile creates an empty histogram for one pass.
func NewConstructorProfile() *ConstructorProfile {
	return &ConstructorProfile{stats: make(map[string]*numberAndSize)}
}

// networkSize returns the object's footprint: its own size plus the size
// of its property and element storage only when non-empty. Empty backing
// stores alias one shared array and must not be counted per object.
func networkSize(obj *heap.Object) int64 {
	size := obj.ByteSize
	if obj.Properties != nil && !obj.Properties.Empty() {
		size += obj.Properties.ByteSize
	}
	if obj.Elements != nil && !obj.Elements.Empty() {
		size += obj.Elements.ByteSize
	}
	return size
}

// CollectStats accumulates one live object into the histogram. Objects
// that are neither strings nor plain objects are ignored.
func (p *ConstructorProfile) CollectStats(obj *heap.Object) {
	var name string
	var size int64
	switch {
	case obj.IsString():
		name = StringConstructor
		size = obj.ByteSize
	case obj.IsPlainObject():
		name = obj.Constructor
		size = networkSize(obj)
	default:
		return
	}
	entry, ok := p.stats[name]
	if !ok {
		entry = &numberAndSize{}
		p.stats[name] = entry
	}
	entry.number++
	entry.bytes += size
}

// PrintStats emits one row per distinct name in sorted order.
func (p *ConstructorProfile) PrintStats(sink Sink) {
	names := make([]string, 0, len(p.stats))
	for name := range p.stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := p.stats[name]
		sink.Constructor(name, entry.number, entry.bytes)
	}
}
