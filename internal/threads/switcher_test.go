package threads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runtime-analysis/pkg/utils"
)

func waitForInterrupt(t *testing.T, guard *StackGuard, flag uint32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if guard.HasInterrupt(flag) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("interrupt never raised")
}

func TestContextSwitcher_RaisesPreemptInterrupt(t *testing.T) {
	guard := NewStackGuard()
	c := NewContextSwitcher(guard, utils.NewRealClock(), &utils.NullLogger{})

	c.StartPreemption(time.Millisecond)
	defer c.StopPreemption()

	waitForInterrupt(t, guard, InterruptPreempt)
	assert.True(t, guard.CheckAndClearInterrupt(InterruptPreempt))
}

func TestContextSwitcher_StartIsIdempotent(t *testing.T) {
	guard := NewStackGuard()
	c := NewContextSwitcher(guard, utils.NewRealClock(), &utils.NullLogger{})

	c.StartPreemption(time.Millisecond)
	c.StartPreemption(5 * time.Millisecond)
	require.True(t, c.Running())

	c.StopPreemption()
	assert.False(t, c.Running())
}

func TestContextSwitcher_StopJoinsAndStopsRaising(t *testing.T) {
	guard := NewStackGuard()
	c := NewContextSwitcher(guard, utils.NewRealClock(), &utils.NullLogger{})

	c.StartPreemption(time.Millisecond)
	waitForInterrupt(t, guard, InterruptPreempt)
	c.StopPreemption()

	guard.CheckAndClearInterrupt(InterruptPreempt)
	time.Sleep(10 * time.Millisecond)
	assert.False(t, guard.HasInterrupt(InterruptPreempt))
}

func TestContextSwitcher_StopWithoutStartIsNoOp(t *testing.T) {
	guard := NewStackGuard()
	c := NewContextSwitcher(guard, nil, &utils.NullLogger{})
	assert.NotPanics(t, c.StopPreemption)
	assert.False(t, c.Running())
}
