package threads

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/runtime-analysis/internal/heap"
)

// RootVisitor visits heap objects held as GC roots by archived threads.
type RootVisitor func(id heap.ObjectID)

// Archiver is one collaborator owning a piece of per-thread runtime state.
// The manager serializes collaborators in a fixed registration order, with
// root-bearing collaborators first so a root-iteration pass can stop at
// the first non-root segment.
type Archiver interface {
	// Name identifies the collaborator in diagnostics.
	Name() string
	// HoldsRoots reports whether archived segments contain GC roots.
	HoldsRoots() bool
	// ArchiveSpace estimates the segment size, used to size slot buffers.
	ArchiveSpace() int
	// Archive serializes the live per-thread state into one segment and
	// resets the live state for the next thread.
	Archive(w *Writer)
	// Restore deserializes one segment back into live state.
	Restore(r *Reader)
	// FreeThreadResources drops live per-thread state without archiving.
	FreeThreadResources()
}

// RootSource is implemented by root-bearing archivers that can walk the
// roots inside an archived segment.
type RootSource interface {
	IterateArchivedRoots(r *Reader, visit RootVisitor)
}

// compactionParticipant is implemented by archivers whose archived
// segments must be patched around a mark-compact cycle.
type compactionParticipant interface {
	MarkCompactPrologue(isCompacting bool, segment []byte)
	MarkCompactEpilogue(isCompacting bool, segment []byte)
}

// Interrupt flags checked by threads at safe points.
const (
	// InterruptPreempt asks the active thread to yield the runtime lock.
	InterruptPreempt uint32 = 1 << iota
	// InterruptTerminate asks the active thread to begin unwinding.
	InterruptTerminate
)

const defaultStackLimit = 512 * 1024

// StackGuard holds the active thread's stack limits and pending interrupt
// flags. Interrupts are set asynchronously by the preemption switcher, so
// they use atomics; the limits are only touched under the runtime lock.
type StackGuard struct {
	stackLimit     uint64
	realStackLimit uint64
	interrupts     atomic.Uint32
}

// NewStackGuard creates a guard with default limits.
func NewStackGuard() *StackGuard {
	g := &StackGuard{}
	g.InitThread()
	return g
}

// Name implements Archiver.
func (g *StackGuard) Name() string { return "stack-guard" }

// HoldsRoots implements Archiver; stack limits are not GC roots.
func (g *StackGuard) HoldsRoots() bool { return false }

// ArchiveSpace implements Archiver.
func (g *StackGuard) ArchiveSpace() int { return 8 + 8 + 8 }

// InitThread resets limits and interrupts for a fresh thread.
func (g *StackGuard) InitThread() {
	g.stackLimit = defaultStackLimit
	g.realStackLimit = defaultStackLimit
	g.interrupts.Store(0)
}

// ClearThread drops the current thread's guard state.
func (g *StackGuard) ClearThread() {
	g.stackLimit = 0
	g.realStackLimit = 0
	g.interrupts.Store(0)
}

// SetStackLimit lowers the limit visible to the running thread.
func (g *StackGuard) SetStackLimit(limit uint64) { g.stackLimit = limit }

// StackLimit returns the current limit.
func (g *StackGuard) StackLimit() uint64 { return g.stackLimit }

// Preempt signals the active thread to yield at its next safe point. Safe
// to call from the preemption switcher goroutine.
func (g *StackGuard) Preempt() {
	g.orInterrupt(InterruptPreempt)
}

// TerminateExecution signals the active thread to begin unwinding at its
// next safe point.
func (g *StackGuard) TerminateExecution() {
	g.orInterrupt(InterruptTerminate)
}

func (g *StackGuard) orInterrupt(flag uint32) {
	for {
		old := g.interrupts.Load()
		if g.interrupts.CompareAndSwap(old, old|flag) {
			return
		}
	}
}

// HasInterrupt reports whether the given interrupt is pending.
func (g *StackGuard) HasInterrupt(flag uint32) bool {
	return g.interrupts.Load()&flag != 0
}

// CheckAndClearInterrupt consumes a pending interrupt at a safe point.
func (g *StackGuard) CheckAndClearInterrupt(flag uint32) bool {
	for {
		old := g.interrupts.Load()
		if old&flag == 0 {
			return false
		}
		if g.interrupts.CompareAndSwap(old, old&^flag) {
			return true
		}
	}
}

// Archive implements Archiver.
func (g *StackGuard) Archive(w *Writer) {
	w.WriteUint64(g.stackLimit)
	w.WriteUint64(g.realStackLimit)
	w.WriteUint64(uint64(g.interrupts.Load()))
	g.InitThread()
}

// Restore implements Archiver.
func (g *StackGuard) Restore(r *Reader) {
	g.stackLimit = r.ReadUint64()
	g.realStackLimit = r.ReadUint64()
	g.interrupts.Store(uint32(r.ReadUint64()))
}

// FreeThreadResources implements Archiver.
func (g *StackGuard) FreeThreadResources() { g.ClearThread() }

// RegExpStack is the per-thread regexp backtracking scratch stack.
type RegExpStack struct {
	stack []byte
}

// NewRegExpStack creates an empty scratch stack.
func NewRegExpStack() *RegExpStack { return &RegExpStack{} }

// Name implements Archiver.
func (s *RegExpStack) Name() string { return "regexp-stack" }

// HoldsRoots implements Archiver; the scratch stack holds raw offsets.
func (s *RegExpStack) HoldsRoots() bool { return false }

// ArchiveSpace implements Archiver.
func (s *RegExpStack) ArchiveSpace() int { return 8 + 256 }

// EnsureCapacity grows the scratch stack to at least n bytes.
func (s *RegExpStack) EnsureCapacity(n int) {
	if len(s.stack) < n {
		grown := make([]byte, n)
		copy(grown, s.stack)
		s.stack = grown
	}
}

// Content returns the live scratch stack.
func (s *RegExpStack) Content() []byte { return s.stack }

// Reset drops the scratch stack.
func (s *RegExpStack) Reset() { s.stack = nil }

// Archive implements Archiver.
func (s *RegExpStack) Archive(w *Writer) {
	w.WriteBytes(s.stack)
	s.stack = nil
}

// Restore implements Archiver.
func (s *RegExpStack) Restore(r *Reader) {
	s.stack = r.ReadBytes()
}

// FreeThreadResources implements Archiver.
func (s *RegExpStack) FreeThreadResources() { s.Reset() }

// HandleScopes tracks the heap objects pinned by the active thread's open
// handle scopes. These are GC roots and must archive before any non-root
// collaborator.
type HandleScopes struct {
	handles []heap.ObjectID
}

// NewHandleScopes creates an empty scope stack.
func NewHandleScopes() *HandleScopes { return &HandleScopes{} }

// Name implements Archiver.
func (h *HandleScopes) Name() string { return "handle-scopes" }

// HoldsRoots implements Archiver.
func (h *HandleScopes) HoldsRoots() bool { return true }

// ArchiveSpace implements Archiver.
func (h *HandleScopes) ArchiveSpace() int { return 8 + 16*8 }

// Open pins an object in the current scope.
func (h *HandleScopes) Open(id heap.ObjectID) {
	h.handles = append(h.handles, id)
}

// Len returns the number of pinned objects.
func (h *HandleScopes) Len() int { return len(h.handles) }

// IterateLive visits the active thread's pinned objects.
func (h *HandleScopes) IterateLive(visit RootVisitor) {
	for _, id := range h.handles {
		visit(id)
	}
}

// Archive implements Archiver.
func (h *HandleScopes) Archive(w *Writer) {
	w.WriteUint64(uint64(len(h.handles)))
	for _, id := range h.handles {
		w.WriteUint64(uint64(id))
	}
	h.handles = nil
}

// Restore implements Archiver.
func (h *HandleScopes) Restore(r *Reader) {
	n := int(r.ReadUint64())
	h.handles = make([]heap.ObjectID, 0, n)
	for i := 0; i < n; i++ {
		h.handles = append(h.handles, heap.ObjectID(r.ReadUint64()))
	}
}

// FreeThreadResources implements Archiver.
func (h *HandleScopes) FreeThreadResources() { h.handles = nil }

// IterateArchivedRoots implements RootSource.
func (h *HandleScopes) IterateArchivedRoots(r *Reader, visit RootVisitor) {
	n := int(r.ReadUint64())
	for i := 0; i < n; i++ {
		visit(heap.ObjectID(r.ReadUint64()))
	}
}

// ExecutionTop holds the active thread's execution state: the pending
// exception object and the lazily cached stack trace, both GC roots, plus
// the thread id the execution state belongs to.
//
// Archived segment layout (fixed, relied on by the compaction hooks):
// pending exception (8), cached stack trace (8), thread id (8).
type ExecutionTop struct {
	pendingException heap.ObjectID
	cachedStackTrace heap.ObjectID
	threadID         uint64
}

// NewExecutionTop creates an empty execution state.
func NewExecutionTop() *ExecutionTop { return &ExecutionTop{} }

// Name implements Archiver.
func (t *ExecutionTop) Name() string { return "execution-top" }

// HoldsRoots implements Archiver.
func (t *ExecutionTop) HoldsRoots() bool { return true }

// ArchiveSpace implements Archiver.
func (t *ExecutionTop) ArchiveSpace() int { return 8 + 8 + 8 }

// SetPendingException records the thrown object.
func (t *ExecutionTop) SetPendingException(id heap.ObjectID) { t.pendingException = id }

// PendingException returns the thrown object, if any.
func (t *ExecutionTop) PendingException() heap.ObjectID { return t.pendingException }

// SetCachedStackTrace records the lazily formatted stack trace object.
func (t *ExecutionTop) SetCachedStackTrace(id heap.ObjectID) { t.cachedStackTrace = id }

// CachedStackTrace returns the cached stack trace object, if any.
func (t *ExecutionTop) CachedStackTrace() heap.ObjectID { return t.cachedStackTrace }

// SetThreadID records the owning thread.
func (t *ExecutionTop) SetThreadID(id int) { t.threadID = uint64(id) }

// Archive implements Archiver.
func (t *ExecutionTop) Archive(w *Writer) {
	w.WriteUint64(uint64(t.pendingException))
	w.WriteUint64(uint64(t.cachedStackTrace))
	w.WriteUint64(t.threadID)
	t.pendingException = heap.InvalidObjectID
	t.cachedStackTrace = heap.InvalidObjectID
	t.threadID = InvalidThreadID
}

// Restore implements Archiver.
func (t *ExecutionTop) Restore(r *Reader) {
	t.pendingException = heap.ObjectID(r.ReadUint64())
	t.cachedStackTrace = heap.ObjectID(r.ReadUint64())
	t.threadID = r.ReadUint64()
}

// FreeThreadResources implements Archiver.
func (t *ExecutionTop) FreeThreadResources() {
	t.pendingException = heap.InvalidObjectID
	t.cachedStackTrace = heap.InvalidObjectID
	t.threadID = InvalidThreadID
}

// IterateArchivedRoots implements RootSource.
func (t *ExecutionTop) IterateArchivedRoots(r *Reader, visit RootVisitor) {
	if id := heap.ObjectID(r.ReadUint64()); id != heap.InvalidObjectID {
		visit(id)
	}
	if id := heap.ObjectID(r.ReadUint64()); id != heap.InvalidObjectID {
		visit(id)
	}
}

// MarkCompactPrologue implements compactionParticipant: compaction moves
// objects, so the cached stack trace in every archived segment is dropped
// before the cycle. It is rebuilt lazily on demand after restore.
func (t *ExecutionTop) MarkCompactPrologue(isCompacting bool, segment []byte) {
	if isCompacting && len(segment) >= 16 {
		binary.LittleEndian.PutUint64(segment[8:16], uint64(heap.InvalidObjectID))
	}
}

// MarkCompactEpilogue implements compactionParticipant. Nothing to patch
// after the cycle; the prologue already invalidated relocatable caches.
func (t *ExecutionTop) MarkCompactEpilogue(isCompacting bool, segment []byte) {}

// Bootstrapper holds the per-thread bootstrapping flag: whether the thread
// was inside an environment bootstrap when it yielded.
type Bootstrapper struct {
	active bool
}

// NewBootstrapper creates an inactive bootstrapper state.
func NewBootstrapper() *Bootstrapper { return &Bootstrapper{} }

// Name implements Archiver.
func (b *Bootstrapper) Name() string { return "bootstrapper" }

// HoldsRoots implements Archiver.
func (b *Bootstrapper) HoldsRoots() bool { return false }

// ArchiveSpace implements Archiver.
func (b *Bootstrapper) ArchiveSpace() int { return 1 }

// SetActive marks the thread as bootstrapping.
func (b *Bootstrapper) SetActive(v bool) { b.active = v }

// Active reports whether the thread is bootstrapping.
func (b *Bootstrapper) Active() bool { return b.active }

// Archive implements Archiver.
func (b *Bootstrapper) Archive(w *Writer) {
	w.WriteBool(b.active)
	b.active = false
}

// Restore implements Archiver.
func (b *Bootstrapper) Restore(r *Reader) {
	b.active = r.ReadBool()
}

// FreeThreadResources implements Archiver.
func (b *Bootstrapper) FreeThreadResources() { b.active = false }
