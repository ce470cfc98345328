package heap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestHeap() *Heap {
	h := NewHeap()
	h.SetCapacity(4096)
	global := h.AddObject("Global", 64)
	point := h.AddObject("Point", 24)
	name := h.AddString(12)
	global.Properties = h.AddStorageArray(32, point, name)
	cell := h.AddGlobalPropertyCell(point)
	h.AddRoot(global)
	h.AddRoot(cell)
	return h
}

func TestSnapshot_RoundTrip(t *testing.T) {
	h := buildTestHeap()

	restored, err := FromSnapshot(h.ToSnapshot())
	require.NoError(t, err)

	assert.Equal(t, h.Capacity(), restored.Capacity())
	assert.Equal(t, h.ObjectCount(), restored.ObjectCount())
	assert.Equal(t, h.SizeOfObjects(), restored.SizeOfObjects())
	assert.Equal(t, h.EmptyArray().ID, restored.EmptyArray().ID)

	global, err := restored.FindObject(2)
	require.NoError(t, err)
	assert.Equal(t, "Global", global.Constructor)
	require.NotNil(t, global.Properties)
	assert.Len(t, global.Properties.Refs, 2)

	var roots []ObjectID
	restored.ForEachRoot(func(o *Object) { roots = append(roots, o.ID) })
	assert.Len(t, roots, 2)
}

func TestSnapshot_FileRoundTrip(t *testing.T) {
	h := buildTestHeap()
	path := filepath.Join(t.TempDir(), "heap.json")

	require.NoError(t, h.WriteSnapshotFile(path))
	restored, err := LoadSnapshotFile(path)
	require.NoError(t, err)
	assert.Equal(t, h.ObjectCount(), restored.ObjectCount())
}

func TestSnapshot_RejectsDanglingReference(t *testing.T) {
	snap := buildTestHeap().ToSnapshot()
	snap.Objects[1].Refs = append(snap.Objects[1].Refs, 9999)

	_, err := FromSnapshot(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangling")
}

func TestSnapshot_RejectsDuplicateID(t *testing.T) {
	snap := buildTestHeap().ToSnapshot()
	snap.Objects = append(snap.Objects, snap.Objects[1])

	_, err := FromSnapshot(snap)
	assert.Error(t, err)
}

func TestSnapshot_RejectsMissingEmptyArray(t *testing.T) {
	snap := buildTestHeap().ToSnapshot()
	snap.EmptyArray = InvalidObjectID

	_, err := FromSnapshot(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty storage array")
}

func TestSnapshot_RejectsUnknownKind(t *testing.T) {
	snap := buildTestHeap().ToSnapshot()
	snap.Objects[0].Kind = "BANANA"

	_, err := FromSnapshot(snap)
	assert.Error(t, err)
}
