package profiler

import "sort"

// DefaultMaxCoarserPasses bounds the coarsening fixed-point iteration on
// adversarial graphs.
const DefaultMaxCoarserPasses = 10

// backRef pairs a cluster with its retainer signature: the ordered list of
// distinct coarsened retaining clusters.
type backRef struct {
	cluster Cluster
	refs    []Cluster
}

// compareBackRefs orders backref records by the owning cluster's key, then
// by signature length, then lexicographically by signature content.
func compareBackRefs(a, b backRef) int {
	if cmp := Compare(a.cluster, b.cluster); cmp != 0 {
		return cmp
	}
	if len(a.refs) != len(b.refs) {
		if len(a.refs) < len(b.refs) {
			return -1
		}
		return 1
	}
	return compareSignatures(a.refs, b.refs)
}

func compareSignatures(a, b []Cluster) int {
	for i := range a {
		if cmp := Compare(a[i], b[i]); cmp != 0 {
			return cmp
		}
	}
	return 0
}

// sameSignature reports whether two backref records carry identical
// retainer signatures. The owning cluster is deliberately not part of this
// check: records are merged on signature content alone, even though the
// sort order above also considered the owning cluster's key.
func sameSignature(a, b backRef) bool {
	return len(a.refs) == len(b.refs) && compareSignatures(a.refs, b.refs) == 0
}

// Coarser merges clusters whose retainer signatures are structurally
// identical, so that report size stays bounded even for graphs with
// thousands of near-duplicate objects.
type Coarser struct {
	maxPasses int
	eq        map[Cluster]Cluster
}

// NewCoarser creates a coarsener running at most maxPasses passes per
// Process call. Non-positive maxPasses selects the default bound.
func NewCoarser(maxPasses int) *Coarser {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxCoarserPasses
	}
	return &Coarser{maxPasses: maxPasses}
}

// Process iterates coarsening passes over the retainer graph until the
// equivalence relation stops growing or the pass bound is hit. The pass
// count is monotone non-decreasing, so a repeated count is a fixed point
// and further passes would be idempotent.
func (c *Coarser) Process(tree *clusterTree) {
	lastEqClusters := -1
	for i := 0; i < c.maxPasses; i++ {
		currEqClusters := c.doProcess(tree)
		if currEqClusters == lastEqClusters {
			break
		}
		lastEqClusters = currEqClusters
	}
}

// doProcess runs one coarsening pass and returns the number of clusters
// mapped to a representative other than themselves.
func (c *Coarser) doProcess(tree *clusterTree) int {
	backrefs := c.collectBackRefs(tree)
	sortBackRefs(backrefs)
	return c.fillEqualityTable(backrefs)
}

// collectBackRefs builds one backref record per coarsenable cluster,
// applying the current equivalence table to each retaining cluster and
// deduplicating retainers that coarsen to the same representative. The
// signatures come out sorted because they derive from ordered set
// traversal.
func (c *Coarser) collectBackRefs(tree *clusterTree) []backRef {
	backrefs := make([]backRef, 0, tree.Len())
	tree.ForEach(func(cluster Cluster, retainers *clusterSet) {
		if !cluster.CanBeCoarsened() {
			return
		}
		pair := backRef{cluster: cluster}
		seen := make(map[Cluster]struct{})
		retainers.ForEach(func(r Cluster) {
			eq := c.GetEquivalent(r)
			if eq.IsNull() {
				pair.refs = append(pair.refs, r)
				return
			}
			if _, dup := seen[eq]; dup {
				return
			}
			seen[eq] = struct{}{}
			pair.refs = append(pair.refs, eq)
		})
		backrefs = append(backrefs, pair)
	})
	return backrefs
}

func sortBackRefs(backrefs []backRef) {
	sort.Slice(backrefs, func(i, j int) bool {
		return compareBackRefs(backrefs[i], backrefs[j]) < 0
	})
}

// fillEqualityTable rebuilds the equivalence table from the sorted backref
// list: every maximal run of records with identical signatures becomes one
// equivalence class represented by its first member.
func (c *Coarser) fillEqualityTable(backrefs []backRef) int {
	next := make(map[Cluster]Cluster)
	eqClustersCount := 0
	eqTo := 0
	firstAdded := false
	for i := 1; i < len(backrefs); i++ {
		if sameSignature(backrefs[i], backrefs[eqTo]) {
			if !firstAdded {
				// Self-equivalence for the representative, added only once
				// the class has a second member.
				next[backrefs[eqTo].cluster] = backrefs[eqTo].cluster
				firstAdded = true
			}
			next[backrefs[i].cluster] = backrefs[eqTo].cluster
			eqClustersCount++
		} else {
			eqTo = i
			firstAdded = false
		}
	}
	c.eq = next
	return eqClustersCount
}

// GetEquivalent returns the representative cluster, or the null cluster if
// the argument cannot be coarsened or has no mapping.
func (c *Coarser) GetEquivalent(cluster Cluster) Cluster {
	if !cluster.CanBeCoarsened() {
		return Cluster{}
	}
	eq, ok := c.eq[cluster]
	if !ok {
		return Cluster{}
	}
	return eq
}

// HasEquivalent reports whether cluster is subsumed by a different
// representative.
func (c *Coarser) HasEquivalent(cluster Cluster) bool {
	if !cluster.CanBeCoarsened() {
		return false
	}
	eq, ok := c.eq[cluster]
	return ok && Compare(cluster, eq) != 0
}
