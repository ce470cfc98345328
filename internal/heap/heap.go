// Package heap provides the in-memory object graph model consumed by the
// profiler: objects with outgoing references, auxiliary storage arrays,
// and a root set. It deliberately knows nothing about clustering or
// archival; it is the walker side of the profiling contract.
package heap

import "fmt"

// ObjectID identifies a heap object. IDs are assigned by the Builder and
// are stable for the lifetime of a Heap.
type ObjectID uint64

// InvalidObjectID marks "no object".
const InvalidObjectID ObjectID = 0

// Kind classifies a heap object for profiling purposes.
type Kind int

const (
	// KindOther covers internal objects the profiler ignores.
	KindOther Kind = iota
	// KindString is any string value.
	KindString
	// KindObject is an ordinary object with a constructor.
	KindObject
	// KindGlobalPropertyCell is a cell holding a global property value.
	KindGlobalPropertyCell
	// KindStorageArray is auxiliary array-like storage: property backing
	// stores, element backing stores, and closure variable storage.
	KindStorageArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "STRING"
	case KindObject:
		return "OBJECT"
	case KindGlobalPropertyCell:
		return "GLOBAL_PROPERTY_CELL"
	case KindStorageArray:
		return "STORAGE_ARRAY"
	default:
		return "OTHER"
	}
}

// Object is one live heap value. Refs holds the object's plain pointer
// slots; Properties and Elements are its auxiliary backing stores and may
// alias the heap-wide shared empty array.
type Object struct {
	ID          ObjectID
	Kind        Kind
	Constructor string
	ByteSize    int64
	Refs        []*Object
	Properties  *Object
	Elements    *Object
}

// IsString reports whether the object is a string value.
func (o *Object) IsString() bool { return o.Kind == KindString }

// IsPlainObject reports whether the object is an ordinary object.
func (o *Object) IsPlainObject() bool { return o.Kind == KindObject }

// IsGlobalPropertyCell reports whether the object is a global property cell.
func (o *Object) IsGlobalPropertyCell() bool { return o.Kind == KindGlobalPropertyCell }

// IsStorageArray reports whether the object is auxiliary array storage.
func (o *Object) IsStorageArray() bool { return o.Kind == KindStorageArray }

// Empty reports whether a storage array has no slots. The heap-wide shared
// empty array must never contribute to any object's footprint.
func (o *Object) Empty() bool { return len(o.Refs) == 0 }

// Heap is a snapshot of the live object graph plus its root set. The
// profiler runs over it with the runtime lock held, so no synchronization
// is needed here.
type Heap struct {
	objects    []*Object
	roots      []*Object
	emptyArray *Object
	capacity   int64
	nextID     ObjectID
}

// NewHeap creates an empty heap with one canonical shared empty storage
// array.
func NewHeap() *Heap {
	h := &Heap{nextID: 1}
	h.emptyArray = h.newObject(KindStorageArray, "", 0)
	return h
}

func (h *Heap) newObject(kind Kind, constructor string, size int64) *Object {
	obj := &Object{
		ID:          h.nextID,
		Kind:        kind,
		Constructor: constructor,
		ByteSize:    size,
	}
	h.nextID++
	h.objects = append(h.objects, obj)
	return obj
}

// EmptyArray returns the canonical shared empty storage array.
func (h *Heap) EmptyArray() *Object { return h.emptyArray }

// AddObject adds an ordinary object. Its backing stores start out aliased
// to the shared empty array.
func (h *Heap) AddObject(constructor string, size int64) *Object {
	obj := h.newObject(KindObject, constructor, size)
	obj.Properties = h.emptyArray
	obj.Elements = h.emptyArray
	return obj
}

// AddString adds a string value.
func (h *Heap) AddString(size int64) *Object {
	return h.newObject(KindString, "", size)
}

// AddGlobalPropertyCell adds a global property cell referencing value.
func (h *Heap) AddGlobalPropertyCell(value *Object) *Object {
	cell := h.newObject(KindGlobalPropertyCell, "", 16)
	cell.Refs = append(cell.Refs, value)
	return cell
}

// AddStorageArray adds a non-shared auxiliary storage array with the given
// slots.
func (h *Heap) AddStorageArray(size int64, slots ...*Object) *Object {
	arr := h.newObject(KindStorageArray, "", size)
	arr.Refs = append(arr.Refs, slots...)
	return arr
}

// AddRoot marks an object as directly reachable from the root set.
func (h *Heap) AddRoot(obj *Object) {
	h.roots = append(h.roots, obj)
}

// SetCapacity records the reserved heap capacity reported in samples.
func (h *Heap) SetCapacity(capacity int64) { h.capacity = capacity }

// Capacity returns the reserved heap capacity.
func (h *Heap) Capacity() int64 { return h.capacity }

// SizeOfObjects returns the total own size of all live objects.
func (h *Heap) SizeOfObjects() int64 {
	var total int64
	for _, obj := range h.objects {
		total += obj.ByteSize
	}
	return total
}

// ObjectCount returns the number of live objects, including the shared
// empty array.
func (h *Heap) ObjectCount() int { return len(h.objects) }

// FindObject returns the object with the given id, scanning the heap
// linearly.
func (h *Heap) FindObject(id ObjectID) (*Object, error) {
	for _, obj := range h.objects {
		if obj.ID == id {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("no object with id %d", id)
}

// ForEachObject visits every live object once, in allocation order.
func (h *Heap) ForEachObject(fn func(*Object)) {
	for _, obj := range h.objects {
		fn(obj)
	}
}

// ForEachRoot visits every object in the root set.
func (h *Heap) ForEachRoot(fn func(*Object)) {
	for _, obj := range h.roots {
		fn(obj)
	}
}
