package threads

// Thread is a handle to one logical thread of execution. A handle is
// created through Runtime.NewThread and carries the thread's id and,
// while the thread is parked, the archival slot holding its state.
type Thread struct {
	id   int
	slot int
}

func newThread(id int) *Thread {
	return &Thread{id: id, slot: invalidSlot}
}

// ID returns the thread's id. Ids start at 1.
func (t *Thread) ID() int { return t.id }

// HasSlot reports whether the thread currently owns an archival slot.
func (t *Thread) HasSlot() bool { return t.slot != invalidSlot }
