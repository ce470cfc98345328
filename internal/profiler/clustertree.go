package profiler

import "sort"

// clusterSet is an ordered set of clusters. Iteration always runs in the
// total cluster order, which the coarsener relies on: retainer signatures
// derived from set traversal come out pre-sorted.
type clusterSet struct {
	members map[Cluster]struct{}
	ordered []Cluster
	dirty   bool
}

func newClusterSet() *clusterSet {
	return &clusterSet{members: make(map[Cluster]struct{})}
}

// Add inserts c and reports whether it was newly added.
func (s *clusterSet) Add(c Cluster) bool {
	if _, ok := s.members[c]; ok {
		return false
	}
	s.members[c] = struct{}{}
	s.ordered = append(s.ordered, c)
	s.dirty = true
	return true
}

// Contains reports membership.
func (s *clusterSet) Contains(c Cluster) bool {
	_, ok := s.members[c]
	return ok
}

// Len returns the number of members.
func (s *clusterSet) Len() int { return len(s.members) }

func (s *clusterSet) sortIfNeeded() {
	if s.dirty {
		sort.Slice(s.ordered, func(i, j int) bool {
			return Compare(s.ordered[i], s.ordered[j]) < 0
		})
		s.dirty = false
	}
}

// ForEach visits members in cluster order.
func (s *clusterSet) ForEach(fn func(Cluster)) {
	s.sortIfNeeded()
	for _, c := range s.ordered {
		fn(c)
	}
}

// clusterTree is an ordered map from cluster to the set of clusters
// retaining it. The two levels are iterated explicitly: the outer ForEach
// yields (cluster, retainer set) pairs, and the inner set is iterated on
// its own.
type clusterTree struct {
	entries map[Cluster]*clusterSet
	keys    []Cluster
	dirty   bool
}

func newClusterTree() *clusterTree {
	return &clusterTree{entries: make(map[Cluster]*clusterSet)}
}

// Get returns the retainer set for c, creating it on first use.
func (t *clusterTree) Get(c Cluster) *clusterSet {
	set, ok := t.entries[c]
	if !ok {
		set = newClusterSet()
		t.entries[c] = set
		t.keys = append(t.keys, c)
		t.dirty = true
	}
	return set
}

// Len returns the number of clusters in the tree.
func (t *clusterTree) Len() int { return len(t.entries) }

func (t *clusterTree) sortIfNeeded() {
	if t.dirty {
		sort.Slice(t.keys, func(i, j int) bool {
			return Compare(t.keys[i], t.keys[j]) < 0
		})
		t.dirty = false
	}
}

// ForEach visits (cluster, retainer set) pairs in cluster order.
func (t *clusterTree) ForEach(fn func(Cluster, *clusterSet)) {
	t.sortIfNeeded()
	for _, key := range t.keys {
		fn(key, t.entries[key])
	}
}
