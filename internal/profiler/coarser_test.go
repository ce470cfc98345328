package profiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree records edges retainer -> retained into a fresh tree.
func buildTree(edges map[string][]string) *clusterTree {
	tree := newClusterTree()
	for retained, retainers := range edges {
		set := tree.Get(NewCluster(retained))
		for _, r := range retainers {
			set.Add(NewCluster(r))
		}
	}
	return tree
}

func TestCoarser_MergesIdenticalSignatures(t *testing.T) {
	// C1 and C2 are both retained by exactly {Ra, Rb}.
	tree := buildTree(map[string][]string{
		"C1": {"Ra", "Rb"},
		"C2": {"Ra", "Rb"},
	})

	c := NewCoarser(0)
	c.Process(tree)

	c1, c2 := NewCluster("C1"), NewCluster("C2")
	require.True(t, c.HasEquivalent(c2))
	assert.Equal(t, c1, c.GetEquivalent(c2))
	// The representative maps to itself and is not subsumed.
	assert.Equal(t, c1, c.GetEquivalent(c1))
	assert.False(t, c.HasEquivalent(c1))
}

func TestCoarser_DistinctSignaturesStaySeparate(t *testing.T) {
	tree := buildTree(map[string][]string{
		"C1": {"Ra"},
		"C2": {"Rb"},
		"C3": {"Ra", "Rb"},
	})

	c := NewCoarser(0)
	c.Process(tree)

	for _, name := range []string{"C1", "C2", "C3"} {
		assert.False(t, c.HasEquivalent(NewCluster(name)), name)
	}
}

func TestCoarser_NeverMergesInstanceClusters(t *testing.T) {
	tree := newClusterTree()
	tree.Get(NewInstanceCluster("Object", 1)).Add(NewCluster("R"))
	tree.Get(NewInstanceCluster("Object", 2)).Add(NewCluster("R"))

	c := NewCoarser(0)
	c.Process(tree)

	assert.False(t, c.HasEquivalent(NewInstanceCluster("Object", 1)))
	assert.False(t, c.HasEquivalent(NewInstanceCluster("Object", 2)))
	assert.True(t, c.GetEquivalent(NewInstanceCluster("Object", 1)).IsNull())
}

func TestCoarser_SpecialClustersNeverParticipate(t *testing.T) {
	tree := newClusterTree()
	tree.Get(NewCluster("C")).Add(RootsCluster())

	c := NewCoarser(0)
	c.Process(tree)

	assert.True(t, c.GetEquivalent(RootsCluster()).IsNull())
	assert.True(t, c.GetEquivalent(GlobalPropertyCluster()).IsNull())
}

func TestCoarser_HierarchicalMergeNeedsSecondPass(t *testing.T) {
	// L1/L2 hang off M1, L3/L4 off M2, and M1/M2 share a retainer. The
	// first pass merges M1 and M2; only then do all four leaves share a
	// signature and collapse in the second pass.
	tree := buildTree(map[string][]string{
		"L1": {"M1"},
		"L2": {"M1"},
		"L3": {"M2"},
		"L4": {"M2"},
		"M1": {"R"},
		"M2": {"R"},
	})

	c := NewCoarser(0)
	c.Process(tree)

	l1 := NewCluster("L1")
	for _, name := range []string{"L2", "L3", "L4"} {
		assert.Equal(t, l1, c.GetEquivalent(NewCluster(name)), name)
	}
	assert.Equal(t, NewCluster("M1"), c.GetEquivalent(NewCluster("M2")))
}

func TestCoarser_ProcessIsStableUnderRepetition(t *testing.T) {
	tree := buildTree(map[string][]string{
		"L1": {"M1"},
		"L2": {"M1"},
		"M1": {"R"},
	})

	c := NewCoarser(0)
	c.Process(tree)
	first := c.GetEquivalent(NewCluster("L2"))
	c.Process(tree)
	assert.Equal(t, first, c.GetEquivalent(NewCluster("L2")))
}

func TestCoarser_PassBoundHoldsOnWideGraphs(t *testing.T) {
	// Many clusters with a shared signature collapse without exhausting
	// the pass bound, and the result maps every member to one
	// representative.
	edges := make(map[string][]string)
	for i := 0; i < 100; i++ {
		edges[fmt.Sprintf("C%03d", i)] = []string{"Ra", "Rb"}
	}
	tree := buildTree(edges)

	c := NewCoarser(2)
	c.Process(tree)

	rep := NewCluster("C000")
	for i := 1; i < 100; i++ {
		name := fmt.Sprintf("C%03d", i)
		assert.Equal(t, rep, c.GetEquivalent(NewCluster(name)), name)
	}
}
