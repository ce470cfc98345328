package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeap_NewHeapHasSharedEmptyArray(t *testing.T) {
	h := NewHeap()
	empty := h.EmptyArray()
	require.NotNil(t, empty)
	assert.True(t, empty.IsStorageArray())
	assert.True(t, empty.Empty())
	assert.Equal(t, 1, h.ObjectCount())
}

func TestHeap_AddObjectAliasesEmptyBackingStores(t *testing.T) {
	h := NewHeap()
	a := h.AddObject("A", 24)
	b := h.AddObject("B", 24)

	assert.Same(t, h.EmptyArray(), a.Properties)
	assert.Same(t, h.EmptyArray(), a.Elements)
	assert.Same(t, a.Properties, b.Properties)
}

func TestHeap_IDsAreUniqueAndStable(t *testing.T) {
	h := NewHeap()
	seen := make(map[ObjectID]bool)
	for i := 0; i < 10; i++ {
		obj := h.AddObject("X", 8)
		assert.NotEqual(t, InvalidObjectID, obj.ID)
		assert.False(t, seen[obj.ID])
		seen[obj.ID] = true
	}
}

func TestHeap_SizeOfObjects(t *testing.T) {
	h := NewHeap()
	h.AddObject("A", 24)
	h.AddString(12)
	h.AddStorageArray(48)

	assert.Equal(t, int64(84), h.SizeOfObjects())
}

func TestHeap_FindObject(t *testing.T) {
	h := NewHeap()
	obj := h.AddObject("A", 24)

	found, err := h.FindObject(obj.ID)
	require.NoError(t, err)
	assert.Same(t, obj, found)

	_, err = h.FindObject(9999)
	assert.Error(t, err)
}

func TestHeap_ForEachRootVisitsOnlyRoots(t *testing.T) {
	h := NewHeap()
	root := h.AddObject("Root", 24)
	h.AddObject("Other", 24)
	h.AddRoot(root)

	var visited []*Object
	h.ForEachRoot(func(o *Object) { visited = append(visited, o) })
	require.Len(t, visited, 1)
	assert.Same(t, root, visited[0])
}
