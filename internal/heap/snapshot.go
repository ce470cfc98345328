package heap

import (
	"encoding/json"
	"fmt"
	"os"
)

// SnapshotObject is the JSON form of one heap object.
type SnapshotObject struct {
	ID          ObjectID   `json:"id"`
	Kind        string     `json:"kind"`
	Constructor string     `json:"constructor,omitempty"`
	Size        int64      `json:"size"`
	Refs        []ObjectID `json:"refs,omitempty"`
	Properties  ObjectID   `json:"properties,omitempty"`
	Elements    ObjectID   `json:"elements,omitempty"`
}

// Snapshot is the serialized form of a heap, used as the CLI input format.
type Snapshot struct {
	Capacity   int64            `json:"capacity"`
	EmptyArray ObjectID         `json:"empty_array"`
	Objects    []SnapshotObject `json:"objects"`
	Roots      []ObjectID       `json:"roots"`
}

var kindNames = map[string]Kind{
	"STRING":               KindString,
	"OBJECT":               KindObject,
	"GLOBAL_PROPERTY_CELL": KindGlobalPropertyCell,
	"STORAGE_ARRAY":        KindStorageArray,
	"OTHER":                KindOther,
}

// ToSnapshot serializes the heap.
func (h *Heap) ToSnapshot() *Snapshot {
	snap := &Snapshot{
		Capacity:   h.capacity,
		EmptyArray: h.emptyArray.ID,
	}
	for _, obj := range h.objects {
		so := SnapshotObject{
			ID:          obj.ID,
			Kind:        obj.Kind.String(),
			Constructor: obj.Constructor,
			Size:        obj.ByteSize,
		}
		for _, ref := range obj.Refs {
			so.Refs = append(so.Refs, ref.ID)
		}
		if obj.Properties != nil {
			so.Properties = obj.Properties.ID
		}
		if obj.Elements != nil {
			so.Elements = obj.Elements.ID
		}
		snap.Objects = append(snap.Objects, so)
	}
	for _, root := range h.roots {
		snap.Roots = append(snap.Roots, root.ID)
	}
	return snap
}

// FromSnapshot reconstructs a heap from its serialized form.
func FromSnapshot(snap *Snapshot) (*Heap, error) {
	h := &Heap{capacity: snap.Capacity, nextID: 1}
	byID := make(map[ObjectID]*Object, len(snap.Objects))

	for _, so := range snap.Objects {
		kind, ok := kindNames[so.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown object kind: %q", so.Kind)
		}
		if so.ID == InvalidObjectID {
			return nil, fmt.Errorf("object with invalid id 0")
		}
		if _, dup := byID[so.ID]; dup {
			return nil, fmt.Errorf("duplicate object id %d", so.ID)
		}
		obj := &Object{
			ID:          so.ID,
			Kind:        kind,
			Constructor: so.Constructor,
			ByteSize:    so.Size,
		}
		byID[so.ID] = obj
		h.objects = append(h.objects, obj)
		if so.ID >= h.nextID {
			h.nextID = so.ID + 1
		}
	}

	resolve := func(id ObjectID) (*Object, error) {
		if id == InvalidObjectID {
			return nil, nil
		}
		obj, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("dangling reference to object %d", id)
		}
		return obj, nil
	}

	for i, so := range snap.Objects {
		obj := h.objects[i]
		for _, refID := range so.Refs {
			ref, err := resolve(refID)
			if err != nil {
				return nil, err
			}
			obj.Refs = append(obj.Refs, ref)
		}
		var err error
		if obj.Properties, err = resolve(so.Properties); err != nil {
			return nil, err
		}
		if obj.Elements, err = resolve(so.Elements); err != nil {
			return nil, err
		}
	}

	empty, err := resolve(snap.EmptyArray)
	if err != nil {
		return nil, err
	}
	if empty == nil || !empty.IsStorageArray() || !empty.Empty() {
		return nil, fmt.Errorf("snapshot has no shared empty storage array")
	}
	h.emptyArray = empty

	for _, rootID := range snap.Roots {
		root, err := resolve(rootID)
		if err != nil {
			return nil, err
		}
		if root == nil {
			return nil, fmt.Errorf("root with invalid id 0")
		}
		h.roots = append(h.roots, root)
	}
	return h, nil
}

// LoadSnapshot parses a heap snapshot from JSON bytes.
func LoadSnapshot(data []byte) (*Heap, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return FromSnapshot(&snap)
}

// LoadSnapshotFile reads a heap snapshot from a JSON file.
func LoadSnapshotFile(path string) (*Heap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return LoadSnapshot(data)
}

// WriteSnapshotFile writes the heap to a JSON snapshot file.
func (h *Heap) WriteSnapshotFile(path string) error {
	data, err := json.MarshalIndent(h.ToSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
