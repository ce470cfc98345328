package threads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runtime-analysis/internal/heap"
)

func TestLocker_FirstEntryFreesStateOnExit(t *testing.T) {
	rt := newTestRuntime()
	t1 := rt.NewThread()

	l := NewLocker(rt, t1)
	rt.HandleScopes().Open(7)
	l.Exit()
	assert.False(t, t1.HasSlot())

	// A top-level scope does not archive, so nothing survives it.
	l = NewLocker(rt, t1)
	assert.Equal(t, 0, rt.HandleScopes().Len())
	l.Exit()
}

func TestLocker_NestedLockerIsNoOp(t *testing.T) {
	rt := newTestRuntime()
	t1 := rt.NewThread()

	outer := NewLocker(rt, t1)
	rt.HandleScopes().Open(7)

	inner := NewLocker(rt, t1)
	inner.Exit()
	// The inner scope neither parked the thread nor dropped the lock.
	assert.True(t, rt.Manager().IsLockedBy(t1))
	assert.Equal(t, 1, rt.HandleScopes().Len())

	outer.Exit()
	assert.False(t, rt.Manager().IsLockedBy(t1))
}

func TestLocker_ReturningThreadKeepsState(t *testing.T) {
	rt := newTestRuntime()
	t1 := rt.NewThread()
	t2 := rt.NewThread()

	l1 := NewLocker(rt, t1)
	rt.HandleScopes().Open(7)
	u := NewUnlocker(rt, t1)

	// Another thread runs while t1 is parked.
	l2 := NewLocker(rt, t2)
	assert.Equal(t, 0, rt.HandleScopes().Len())
	rt.HandleScopes().Open(100)
	l2.Exit()

	u.Relock()
	require.Equal(t, 1, rt.HandleScopes().Len())
	var got []heap.ObjectID
	rt.HandleScopes().IterateLive(func(id heap.ObjectID) { got = append(got, id) })
	assert.Equal(t, []heap.ObjectID{7}, got)
	l1.Exit()
}

func TestLocker_ExitTwiceIsSafe(t *testing.T) {
	rt := newTestRuntime()
	t1 := rt.NewThread()

	l := NewLocker(rt, t1)
	l.Exit()
	assert.NotPanics(t, func() { l.Exit() })
}
