package threads

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/runtime-analysis/pkg/utils"
)

// ThreadManager serializes access to the runtime's live per-thread state.
// Exactly one thread holds the runtime lock at a time; every other thread
// is parked with its state archived in a slot. Archival is lazy: parking
// only reserves a slot, and the bytes are written eagerly the moment a
// second thread needs the live state.
type ThreadManager struct {
	mu sync.Mutex
	// lockOwner is read by threads that may not hold mu, so it is atomic.
	lockOwner atomic.Int64

	lastID atomic.Int64
	arena  stateArena

	archivers []Archiver
	guard     *StackGuard

	lazyThread *Thread

	logger utils.Logger
}

// NewThreadManager creates a manager over the given collaborators. The
// registration order is the serialization order; all root-bearing
// collaborators must come before the first non-root one, so that a root
// walk over an archived slot can stop at the first non-root segment.
// guard must be one of the archivers.
func NewThreadManager(guard *StackGuard, logger utils.Logger, archivers ...Archiver) *ThreadManager {
	if logger == nil {
		logger = utils.GetGlobalLogger()
	}
	seenNonRoot := false
	guardRegistered := false
	for _, a := range archivers {
		if a.HoldsRoots() {
			if seenNonRoot {
				panic(fmt.Sprintf("threads: root-bearing archiver %q registered after a non-root one", a.Name()))
			}
			if _, ok := a.(RootSource); !ok {
				panic(fmt.Sprintf("threads: archiver %q holds roots but cannot iterate them", a.Name()))
			}
		} else {
			seenNonRoot = true
		}
		if a == Archiver(guard) {
			guardRegistered = true
		}
	}
	if !guardRegistered {
		panic("threads: stack guard must be registered as an archiver")
	}
	return &ThreadManager{
		archivers: archivers,
		guard:     guard,
		logger:    logger,
	}
}

// Lock blocks until t holds the runtime lock.
func (m *ThreadManager) Lock(t *Thread) {
	m.mu.Lock()
	m.lockOwner.Store(int64(t.id))
}

// Unlock releases the runtime lock. Panics if t is not the owner.
func (m *ThreadManager) Unlock(t *Thread) {
	if owner := int(m.lockOwner.Load()); owner != t.id {
		panic(fmt.Sprintf("threads: thread %d unlocking a lock owned by %d", t.id, owner))
	}
	m.lockOwner.Store(InvalidThreadID)
	m.mu.Unlock()
}

// IsLockedBy reports whether t currently owns the runtime lock. Only
// meaningful when called by t itself.
func (m *ThreadManager) IsLockedBy(t *Thread) bool {
	return int(m.lockOwner.Load()) == t.id
}

// assignID hands out thread ids, starting at 1. Safe without the
// runtime lock so handles can be created from any goroutine.
func (m *ThreadManager) assignID() int {
	return int(m.lastID.Add(1))
}

// archiveSpacePerThread estimates the slot buffer size for one thread:
// every collaborator's own estimate plus the segment length prefixes.
func (m *ThreadManager) archiveSpacePerThread() int {
	space := 0
	for _, a := range m.archivers {
		space += 4 + a.ArchiveSpace()
	}
	return space
}

// ArchiveThread parks the calling thread t: a slot is reserved and bound
// to t, but the live state stays in place. If t regains the lock before
// anyone else needs the state, restoring is free. The caller must hold
// the runtime lock.
func (m *ThreadManager) ArchiveThread(t *Thread) {
	if m.lazyThread != nil {
		panic("threads: a lazily archived thread is already pending")
	}
	if t.HasSlot() {
		panic(fmt.Sprintf("threads: thread %d is already archived", t.id))
	}
	h := m.arena.acquire(m.archiveSpacePerThread())
	s := m.arena.slot(h)
	s.id = t.id
	t.slot = h
	m.lazyThread = t
	m.logger.Debug("thread %d archived lazily into slot %d", t.id, h)
}

// eagerlyArchiveThread writes the pending lazy thread's live state into
// its reserved slot and links the slot in use.
func (m *ThreadManager) eagerlyArchiveThread() {
	t := m.lazyThread
	h := t.slot
	m.arena.linkInUse(h)
	w := NewWriter(m.archiveSpacePerThread())
	for _, a := range m.archivers {
		w.BeginSegment()
		a.Archive(w)
		w.EndSegment()
	}
	m.arena.slot(h).data = w.Bytes()
	m.lazyThread = nil
	m.logger.Debug("thread %d archived eagerly into slot %d", t.id, h)
}

// RestoreThread makes t's state live again and reports whether t had
// state to restore. A false return means t is new to the runtime and got
// freshly initialized state instead. The caller must hold the runtime
// lock.
func (m *ThreadManager) RestoreThread(t *Thread) bool {
	// The state never left the live runtime; just give the slot back.
	if m.lazyThread == t {
		m.lazyThread = nil
		s := m.arena.slot(t.slot)
		if s.id != t.id {
			panic(fmt.Sprintf("threads: lazy slot bound to thread %d, not %d", s.id, t.id))
		}
		m.arena.release(t.slot)
		t.slot = invalidSlot
		return true
	}
	// Someone else parked lazily; their state must leave the live
	// runtime before we overwrite it.
	if m.lazyThread != nil {
		m.eagerlyArchiveThread()
	}
	if !t.HasSlot() {
		for _, a := range m.archivers {
			a.FreeThreadResources()
		}
		m.guard.InitThread()
		return false
	}
	s := m.arena.slot(t.slot)
	r := NewReader(s.data)
	for _, a := range m.archivers {
		a.Restore(r.NextSegment())
	}
	if s.terminateOnRestore {
		m.guard.TerminateExecution()
		s.terminateOnRestore = false
	}
	m.arena.unlinkInUse(t.slot)
	m.arena.release(t.slot)
	t.slot = invalidSlot
	return true
}

// TerminateExecution arms termination for the parked thread with the
// given id: the thread starts unwinding as soon as its state is restored.
// A running or lazily parked thread is not affected.
func (m *ThreadManager) TerminateExecution(id int) {
	m.arena.forEachInUse(func(s *ThreadState) {
		if s.id == id {
			s.terminateOnRestore = true
		}
	})
}

// Iterate visits the GC roots held by every fully archived thread. The
// roots of the running thread and of a lazily parked one are still live
// and are visited through the collaborators directly.
func (m *ThreadManager) Iterate(visit RootVisitor) {
	m.arena.forEachInUse(func(s *ThreadState) {
		r := NewReader(s.data)
		for _, a := range m.archivers {
			if !a.HoldsRoots() {
				break
			}
			a.(RootSource).IterateArchivedRoots(r.NextSegment(), visit)
		}
	})
}

// MarkCompactPrologue lets collaborators patch archived segments before a
// mark-compact cycle.
func (m *ThreadManager) MarkCompactPrologue(isCompacting bool) {
	m.compactionPass(func(cp compactionParticipant, seg []byte) {
		cp.MarkCompactPrologue(isCompacting, seg)
	})
}

// MarkCompactEpilogue lets collaborators patch archived segments after a
// mark-compact cycle.
func (m *ThreadManager) MarkCompactEpilogue(isCompacting bool) {
	m.compactionPass(func(cp compactionParticipant, seg []byte) {
		cp.MarkCompactEpilogue(isCompacting, seg)
	})
}

func (m *ThreadManager) compactionPass(apply func(compactionParticipant, []byte)) {
	m.arena.forEachInUse(func(s *ThreadState) {
		r := NewReader(s.data)
		for _, a := range m.archivers {
			seg := r.nextSegmentBytes()
			if cp, ok := a.(compactionParticipant); ok {
				apply(cp, seg)
			}
		}
	})
}

// FreeThreadResources drops the calling thread's live state without
// archiving it.
func (m *ThreadManager) FreeThreadResources() {
	for _, a := range m.archivers {
		a.FreeThreadResources()
	}
}

// ArchivedThreadCount returns the number of fully archived threads.
func (m *ThreadManager) ArchivedThreadCount() int { return m.arena.inUseCount() }

// SlotCount returns the total number of archival slots ever allocated.
func (m *ThreadManager) SlotCount() int { return m.arena.allocated() }
