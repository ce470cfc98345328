package threads

// InvalidThreadID marks a slot not bound to any thread. Thread ids start
// at 1 so that 0 always means "no thread".
const InvalidThreadID = 0

// invalidSlot marks a thread with no archival slot.
const invalidSlot = -1

// ThreadState is one archival slot: the serialized runtime-visible state
// of exactly one logical thread. Its content is only valid while the slot
// is in use.
type ThreadState struct {
	id                 int
	terminateOnRestore bool
	data               []byte
}

// ID returns the id of the thread archived in this slot.
func (s *ThreadState) ID() int { return s.id }

// TerminateOnRestore reports whether the archived thread must begin
// unwinding as soon as its state is restored.
func (s *ThreadState) TerminateOnRestore() bool { return s.terminateOnRestore }

// SetTerminateOnRestore arms or clears the single-shot termination flag.
func (s *ThreadState) SetTerminateOnRestore(v bool) { s.terminateOnRestore = v }

// Data returns the archived buffer.
func (s *ThreadState) Data() []byte { return s.data }

// stateArena owns all archival slots, indexed by integer handle. FREE
// membership is a stack of handles, IN_USE an ordered list; a lazily held
// slot is on neither. Slots are allocated on demand and never shrunk. All
// mutators already hold the big runtime lock, so the arena itself is
// unsynchronized.
type stateArena struct {
	slots []*ThreadState
	free  []int
	inUse []int
}

// acquire returns a free slot handle, allocating a new slot sized for one
// thread's archive if none is free. Allocation failure here is fatal: the
// runtime cannot continue without archive storage, and the Go runtime
// aborts the process on allocation failure.
func (a *stateArena) acquire(capacity int) int {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		return h
	}
	a.slots = append(a.slots, &ThreadState{
		id:   InvalidThreadID,
		data: make([]byte, 0, capacity),
	})
	return len(a.slots) - 1
}

// slot returns the state at handle h.
func (a *stateArena) slot(h int) *ThreadState { return a.slots[h] }

// allocated returns the total number of slots ever allocated.
func (a *stateArena) allocated() int { return len(a.slots) }

// freeCount returns the number of slots on the free list.
func (a *stateArena) freeCount() int { return len(a.free) }

// inUseCount returns the number of slots on the in-use list.
func (a *stateArena) inUseCount() int { return len(a.inUse) }

// linkInUse places the slot on the in-use list.
func (a *stateArena) linkInUse(h int) {
	a.inUse = append(a.inUse, h)
}

// unlinkInUse removes the slot from the in-use list if present. A lazily
// held slot is on neither list, so a miss is fine.
func (a *stateArena) unlinkInUse(h int) {
	for i, cur := range a.inUse {
		if cur == h {
			a.inUse = append(a.inUse[:i], a.inUse[i+1:]...)
			return
		}
	}
}

// release resets the slot and returns it to the free list.
func (a *stateArena) release(h int) {
	s := a.slots[h]
	s.id = InvalidThreadID
	s.terminateOnRestore = false
	s.data = s.data[:0]
	a.free = append(a.free, h)
}

// forEachInUse visits every in-use slot in archival order.
func (a *stateArena) forEachInUse(fn func(*ThreadState)) {
	for _, h := range a.inUse {
		fn(a.slots[h])
	}
}
