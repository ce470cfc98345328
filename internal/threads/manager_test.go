package threads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runtime-analysis/internal/heap"
	"github.com/runtime-analysis/pkg/utils"
)

func newTestRuntime() *Runtime {
	return NewRuntime(nil, &utils.NullLogger{})
}

func TestThreadManager_NewThreadIDsStartAtOne(t *testing.T) {
	rt := newTestRuntime()
	assert.Equal(t, 1, rt.NewThread().ID())
	assert.Equal(t, 2, rt.NewThread().ID())
}

func TestThreadManager_NewThreadGetsFreshState(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()

	m.Lock(t1)
	defer m.Unlock(t1)
	assert.False(t, m.RestoreThread(t1))
	assert.Equal(t, uint64(defaultStackLimit), rt.Guard().StackLimit())
	assert.Equal(t, 0, rt.HandleScopes().Len())
}

func TestThreadManager_LazySelfRestoreKeepsStateLive(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()

	m.Lock(t1)
	m.RestoreThread(t1)
	rt.HandleScopes().Open(7)
	m.ArchiveThread(t1)
	assert.True(t, t1.HasSlot())

	// Nobody touched the runtime in between: restoring is free and the
	// live state never moved.
	assert.True(t, m.RestoreThread(t1))
	assert.False(t, t1.HasSlot())
	assert.Equal(t, 1, rt.HandleScopes().Len())
	assert.Equal(t, 0, m.ArchivedThreadCount())
	m.Unlock(t1)
}

func TestThreadManager_ArchiveRestoreRoundTrip(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()
	t2 := rt.NewThread()

	m.Lock(t1)
	m.RestoreThread(t1)
	rt.HandleScopes().Open(7)
	rt.HandleScopes().Open(8)
	rt.Top().SetPendingException(9)
	rt.Top().SetThreadID(t1.ID())
	rt.Guard().SetStackLimit(1234)
	rt.RegExpStack().EnsureCapacity(3)
	copy(rt.RegExpStack().Content(), "abc")
	rt.Bootstrapper().SetActive(true)
	m.ArchiveThread(t1)
	m.Unlock(t1)

	m.Lock(t2)
	// Restoring t2 first forces t1's lazy archive to become eager.
	require.False(t, m.RestoreThread(t2))
	assert.Equal(t, 1, m.ArchivedThreadCount())
	assert.Equal(t, 0, rt.HandleScopes().Len())
	assert.Equal(t, heap.InvalidObjectID, rt.Top().PendingException())
	assert.Equal(t, uint64(defaultStackLimit), rt.Guard().StackLimit())
	assert.Empty(t, rt.RegExpStack().Content())
	assert.False(t, rt.Bootstrapper().Active())
	m.ArchiveThread(t2)
	m.Unlock(t2)

	m.Lock(t1)
	require.True(t, m.RestoreThread(t1))
	assert.Equal(t, 2, rt.HandleScopes().Len())
	assert.Equal(t, heap.ObjectID(9), rt.Top().PendingException())
	assert.Equal(t, uint64(1234), rt.Guard().StackLimit())
	assert.Equal(t, []byte("abc"), rt.RegExpStack().Content())
	assert.True(t, rt.Bootstrapper().Active())
	m.Unlock(t1)
}

func TestThreadManager_SlotReuseStaysBounded(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()
	t2 := rt.NewThread()

	for i := 0; i < 5; i++ {
		m.Lock(t1)
		m.RestoreThread(t1)
		m.ArchiveThread(t1)
		m.Unlock(t1)

		m.Lock(t2)
		m.RestoreThread(t2)
		m.ArchiveThread(t2)
		m.Unlock(t2)
	}

	// Two threads ping-ponging never need more than two slots.
	assert.LessOrEqual(t, m.SlotCount(), 2)
}

func TestThreadManager_TerminateOnRestoreIsSingleShot(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()
	t2 := rt.NewThread()

	park := func(tt *Thread) {
		m.Lock(tt)
		m.RestoreThread(tt)
		m.ArchiveThread(tt)
		m.Unlock(tt)
	}
	unpark := func(tt *Thread) bool {
		m.Lock(tt)
		restored := m.RestoreThread(tt)
		m.Unlock(tt)
		return restored
	}

	park(t1)
	park(t2) // makes t1's archive eager

	m.TerminateExecution(t1.ID())
	require.True(t, unpark(t1))
	assert.True(t, rt.Guard().CheckAndClearInterrupt(InterruptTerminate))

	// The flag does not survive into the next park/unpark cycle.
	park(t1)
	require.True(t, unpark(t2))
	require.True(t, unpark(t1))
	assert.False(t, rt.Guard().HasInterrupt(InterruptTerminate))
}

func TestThreadManager_TerminateUnknownThreadIsNoOp(t *testing.T) {
	rt := newTestRuntime()
	rt.Manager().TerminateExecution(42)
	assert.False(t, rt.Guard().HasInterrupt(InterruptTerminate))
}

func TestThreadManager_IterateVisitsArchivedRootsOnly(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()
	t2 := rt.NewThread()

	m.Lock(t1)
	m.RestoreThread(t1)
	rt.HandleScopes().Open(7)
	rt.HandleScopes().Open(8)
	rt.Top().SetPendingException(9)
	m.ArchiveThread(t1)
	m.Unlock(t1)

	m.Lock(t2)
	m.RestoreThread(t2)
	rt.HandleScopes().Open(100) // live, not archived

	var archived []heap.ObjectID
	m.Iterate(func(id heap.ObjectID) { archived = append(archived, id) })
	assert.Equal(t, []heap.ObjectID{7, 8, 9}, archived)

	// The runtime-level walk sees the live roots too.
	var all []heap.ObjectID
	rt.IterateRoots(func(id heap.ObjectID) { all = append(all, id) })
	assert.Equal(t, []heap.ObjectID{100, 7, 8, 9}, all)
	m.Unlock(t2)
}

func TestThreadManager_MarkCompactPrologueDropsCachedStackTrace(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()
	t2 := rt.NewThread()

	m.Lock(t1)
	m.RestoreThread(t1)
	rt.Top().SetPendingException(5)
	rt.Top().SetCachedStackTrace(6)
	m.ArchiveThread(t1)
	m.Unlock(t1)

	m.Lock(t2)
	m.RestoreThread(t2)
	m.MarkCompactPrologue(true)
	m.MarkCompactEpilogue(true)
	m.ArchiveThread(t2)
	m.Unlock(t2)

	m.Lock(t1)
	require.True(t, m.RestoreThread(t1))
	assert.Equal(t, heap.ObjectID(5), rt.Top().PendingException())
	assert.Equal(t, heap.InvalidObjectID, rt.Top().CachedStackTrace())
	m.Unlock(t1)
}

func TestThreadManager_NonCompactingCycleKeepsCaches(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()
	t2 := rt.NewThread()

	m.Lock(t1)
	m.RestoreThread(t1)
	rt.Top().SetCachedStackTrace(6)
	m.ArchiveThread(t1)
	m.Unlock(t1)

	m.Lock(t2)
	m.RestoreThread(t2)
	m.MarkCompactPrologue(false)
	m.ArchiveThread(t2)
	m.Unlock(t2)

	m.Lock(t1)
	require.True(t, m.RestoreThread(t1))
	assert.Equal(t, heap.ObjectID(6), rt.Top().CachedStackTrace())
	m.Unlock(t1)
}

func TestThreadManager_ArchiveWhileLazyPendingPanics(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()
	t2 := rt.NewThread()

	m.Lock(t1)
	m.ArchiveThread(t1)
	assert.Panics(t, func() { m.ArchiveThread(t2) })
	m.RestoreThread(t1)
	m.Unlock(t1)
}

func TestThreadManager_UnlockByNonOwnerPanics(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Manager()
	t1 := rt.NewThread()
	t2 := rt.NewThread()

	m.Lock(t1)
	assert.Panics(t, func() { m.Unlock(t2) })
	m.Unlock(t1)
}

func TestNewThreadManager_RejectsRootHolderAfterNonRoot(t *testing.T) {
	guard := NewStackGuard()
	assert.Panics(t, func() {
		NewThreadManager(guard, &utils.NullLogger{}, guard, NewHandleScopes())
	})
}

func TestNewThreadManager_RequiresGuardRegistration(t *testing.T) {
	guard := NewStackGuard()
	assert.Panics(t, func() {
		NewThreadManager(guard, &utils.NullLogger{}, NewHandleScopes())
	})
}
