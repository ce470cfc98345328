// Package profiler implements the retainer-clustering heap profiler: it
// groups live objects into clusters by constructor, records which clusters
// retain which, coarsens clusters with identical retainer signatures, and
// renders a bounded per-cluster retainer report.
package profiler

import (
	"fmt"
	"strings"

	"github.com/runtime-analysis/internal/heap"
)

// ClusterKind discriminates cluster identities.
type ClusterKind int

const (
	// ClusterNone is the null cluster sentinel.
	ClusterNone ClusterKind = iota
	// ClusterNormal identifies objects sharing a constructor name,
	// optionally pinned to one instance.
	ClusterNormal
	// ClusterRoots is the synthetic cluster retaining the root set.
	ClusterRoots
	// ClusterGlobalProperty is the synthetic cluster standing in for
	// global property cells.
	ClusterGlobalProperty
)

// StringConstructor is the reporting name shared by all string values.
const StringConstructor = "String"

// Constructor names whose instances are kept distinct from each other.
const (
	objectConstructor = "Object"
	arrayConstructor  = "Array"
)

// Cluster identifies an equivalence class of heap values: all instances of
// one constructor, one singled-out instance of it, or one of the two
// special-case kinds. The zero value is the null cluster.
type Cluster struct {
	kind        ClusterKind
	constructor string
	instance    heap.ObjectID
}

// NewCluster returns the cluster of all instances of a constructor.
func NewCluster(constructor string) Cluster {
	return Cluster{kind: ClusterNormal, constructor: constructor}
}

// NewInstanceCluster returns a cluster pinned to a single instance.
func NewInstanceCluster(constructor string, instance heap.ObjectID) Cluster {
	return Cluster{kind: ClusterNormal, constructor: constructor, instance: instance}
}

// RootsCluster returns the synthetic root-set cluster.
func RootsCluster() Cluster { return Cluster{kind: ClusterRoots} }

// GlobalPropertyCluster returns the synthetic global-property cluster.
func GlobalPropertyCluster() Cluster { return Cluster{kind: ClusterGlobalProperty} }

// IsNull reports whether c is the null cluster.
func (c Cluster) IsNull() bool { return c.kind == ClusterNone }

// CanBeCoarsened reports whether c may participate in coarsening: only
// whole-constructor clusters qualify. Instance-pinned and special-case
// clusters must never be merged.
func (c Cluster) CanBeCoarsened() bool {
	return c.kind == ClusterNormal && c.instance == heap.InvalidObjectID
}

// Compare establishes the total order over clusters: by kind, then by
// constructor name, then by pinned instance.
func Compare(a, b Cluster) int {
	if cmp := CompareConstructors(a, b); cmp != 0 {
		return cmp
	}
	switch {
	case a.instance < b.instance:
		return -1
	case a.instance > b.instance:
		return 1
	default:
		return 0
	}
}

// CompareConstructors orders clusters ignoring instance identity, so that
// all instance-pinned clusters of one constructor sort together.
func CompareConstructors(a, b Cluster) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	return strings.Compare(a.constructor, b.constructor)
}

// String renders the cluster for report lines.
func (c Cluster) String() string {
	switch c.kind {
	case ClusterNone:
		return "(null cluster)"
	case ClusterRoots:
		return "(roots)"
	case ClusterGlobalProperty:
		return "(global property)"
	}
	name := c.constructor
	if name == "" {
		name = "(anonymous)"
	}
	if c.instance != heap.InvalidObjectID {
		return fmt.Sprintf("%s:%#x", name, uint64(c.instance))
	}
	return name
}
