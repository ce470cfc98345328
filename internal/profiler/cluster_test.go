package profiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runtime-analysis/internal/heap"
)

func TestCluster_ZeroValueIsNull(t *testing.T) {
	var c Cluster
	assert.True(t, c.IsNull())
	assert.False(t, c.CanBeCoarsened())
}

func TestCluster_CanBeCoarsened(t *testing.T) {
	assert.True(t, NewCluster("Point").CanBeCoarsened())
	assert.True(t, NewCluster("").CanBeCoarsened())
	assert.False(t, NewInstanceCluster("Object", 42).CanBeCoarsened())
	assert.False(t, RootsCluster().CanBeCoarsened())
	assert.False(t, GlobalPropertyCluster().CanBeCoarsened())
}

func TestCluster_CompareOrdersByKindThenNameThenInstance(t *testing.T) {
	a := NewCluster("A")
	b := NewCluster("B")
	assert.Negative(t, Compare(a, b))
	assert.Positive(t, Compare(b, a))
	assert.Zero(t, Compare(a, NewCluster("A")))

	// Same constructor, different pinned instances.
	obj1 := NewInstanceCluster("Object", 1)
	obj2 := NewInstanceCluster("Object", 2)
	assert.Negative(t, Compare(obj1, obj2))
	assert.Zero(t, CompareConstructors(obj1, obj2))

	// Kind dominates name.
	assert.Negative(t, Compare(NewCluster("Zebra"), RootsCluster()))
}

func TestCluster_CompareIsConsistentWithEquality(t *testing.T) {
	clusters := []Cluster{
		NewCluster("A"),
		NewCluster("B"),
		NewInstanceCluster("Object", 7),
		RootsCluster(),
		GlobalPropertyCluster(),
	}
	for i, a := range clusters {
		for j, b := range clusters {
			if i == j {
				assert.Zero(t, Compare(a, b))
			} else {
				assert.NotZero(t, Compare(a, b), "%v vs %v", a, b)
			}
		}
	}
}

func TestCluster_String(t *testing.T) {
	assert.Equal(t, "(roots)", RootsCluster().String())
	assert.Equal(t, "(global property)", GlobalPropertyCluster().String())
	assert.Equal(t, "(anonymous)", NewCluster("").String())
	assert.Equal(t, "Point", NewCluster("Point").String())
	assert.Equal(t, "Object:0x2a", NewInstanceCluster("Object", 42).String())
}

func TestClusterize_InstancePinning(t *testing.T) {
	h := heap.NewHeap()
	obj := h.AddObject("Object", 24)
	arr := h.AddObject("Array", 24)
	point := h.AddObject("Point", 24)
	str := h.AddString(12)

	assert.Equal(t, NewInstanceCluster("Object", obj.ID), Clusterize(obj))
	assert.Equal(t, NewInstanceCluster("Array", arr.ID), Clusterize(arr))
	assert.Equal(t, NewCluster("Point"), Clusterize(point))
	assert.Equal(t, NewCluster(StringConstructor), Clusterize(str))
}

func TestClusterize_PanicsOnUnsupportedKind(t *testing.T) {
	h := heap.NewHeap()
	arr := h.AddStorageArray(8)
	assert.Panics(t, func() { Clusterize(arr) })
}
