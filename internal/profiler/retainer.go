package profiler

import (
	"fmt"

	"github.com/runtime-analysis/internal/heap"
)

// RetainerProfile builds the retainer graph for one profiling pass: a map
// from each referenced cluster to the set of clusters holding a reference
// to it. The graph is pass-local and discarded afterwards.
type RetainerProfile struct {
	retainers *clusterTree
	coarser   *Coarser
	cfg       Config
}

// NewRetainerProfile creates a profile for one pass over h and records the
// root set as references from the synthetic roots cluster. It must run
// with the runtime lock held and performs no heap allocation on h.
func NewRetainerProfile(h *heap.Heap, cfg Config) *RetainerProfile {
	p := &RetainerProfile{
		retainers: newClusterTree(),
		coarser:   NewCoarser(cfg.MaxCoarserPasses),
		cfg:       cfg,
	}
	roots := RootsCluster()
	h.ForEachRoot(func(obj *heap.Object) {
		p.visitReference(roots, obj, false)
	})
	return p
}

// Clusterize classifies an object into its cluster. Object and Array
// instances are kept instance-distinct; every string falls into the one
// String cluster. Any other kind signals an unsupported reference being
// walked and is a contract violation.
func Clusterize(obj *heap.Object) Cluster {
	switch {
	case obj.IsPlainObject():
		if obj.Constructor == objectConstructor || obj.Constructor == arrayConstructor {
			return NewInstanceCluster(obj.Constructor, obj.ID)
		}
		return NewCluster(obj.Constructor)
	case obj.IsString():
		return NewCluster(StringConstructor)
	default:
		panic(fmt.Sprintf("profiler: cannot clusterize %s object %d", obj.Kind, obj.ID))
	}
}

// StoreReference records that an object of cluster holds a reference to
// ref. Recording the same edge twice has no additional effect.
func (p *RetainerProfile) StoreReference(cluster Cluster, ref *heap.Object) {
	refCluster := Clusterize(ref)
	p.retainers.Get(refCluster).Add(cluster)
}

// CollectStats is invoked once per live heap object and records the
// object's outgoing references. Global property cells are attributed to a
// synthetic retaining cluster instead of being traced through.
func (p *RetainerProfile) CollectStats(obj *heap.Object) {
	switch {
	case obj.IsPlainObject():
		p.extractReferences(Clusterize(obj), obj)
	case obj.IsGlobalPropertyCell():
		p.extractReferences(GlobalPropertyCluster(), obj)
	}
}

// extractReferences walks the object's pointer slots. Direct references to
// objects and strings are recorded; auxiliary storage arrays are traversed
// exactly one level deep, attributing their contents to the owning object
// rather than to a generic array node. Nested storage arrays beyond the
// first level are not traversed.
func (p *RetainerProfile) extractReferences(from Cluster, obj *heap.Object) {
	for _, slot := range obj.Refs {
		p.visitReference(from, slot, false)
	}
	p.visitReference(from, obj.Properties, false)
	p.visitReference(from, obj.Elements, false)
}

func (p *RetainerProfile) visitReference(from Cluster, slot *heap.Object, insideArray bool) {
	if slot == nil {
		return
	}
	switch {
	case slot.IsPlainObject() || slot.IsString():
		p.StoreReference(from, slot)
	case slot.IsStorageArray() && !insideArray:
		for _, inner := range slot.Refs {
			p.visitReference(from, inner, true)
		}
	}
}
