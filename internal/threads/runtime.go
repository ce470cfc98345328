package threads

import (
	"github.com/runtime-analysis/internal/heap"
	"github.com/runtime-analysis/pkg/utils"
)

// Runtime bundles the shared per-process state: the collaborators owning
// the live thread's runtime-visible data, the thread manager guarding
// them, and the preemption switcher. There are no package-level
// singletons; callers create a Runtime and hand out Thread handles.
type Runtime struct {
	guard        *StackGuard
	regexpStack  *RegExpStack
	handleScopes *HandleScopes
	top          *ExecutionTop
	bootstrapper *Bootstrapper

	manager  *ThreadManager
	switcher *ContextSwitcher
}

// NewRuntime creates a runtime with a fresh collaborator set. Root
// holders register first so archived root iteration can stop early.
func NewRuntime(clock utils.Clock, logger utils.Logger) *Runtime {
	r := &Runtime{
		guard:        NewStackGuard(),
		regexpStack:  NewRegExpStack(),
		handleScopes: NewHandleScopes(),
		top:          NewExecutionTop(),
		bootstrapper: NewBootstrapper(),
	}
	r.manager = NewThreadManager(r.guard, logger,
		r.handleScopes,
		r.top,
		r.guard,
		r.regexpStack,
		r.bootstrapper,
	)
	r.switcher = NewContextSwitcher(r.guard, clock, logger)
	return r
}

// NewThread creates a handle for a new logical thread. The handle has no
// archived state until its first park.
func (r *Runtime) NewThread() *Thread {
	return newThread(r.manager.assignID())
}

// Manager returns the thread manager.
func (r *Runtime) Manager() *ThreadManager { return r.manager }

// Switcher returns the preemption switcher.
func (r *Runtime) Switcher() *ContextSwitcher { return r.switcher }

// Guard returns the stack guard of the running thread.
func (r *Runtime) Guard() *StackGuard { return r.guard }

// HandleScopes returns the running thread's handle scopes.
func (r *Runtime) HandleScopes() *HandleScopes { return r.handleScopes }

// Top returns the running thread's execution state.
func (r *Runtime) Top() *ExecutionTop { return r.top }

// RegExpStack returns the running thread's regexp scratch stack.
func (r *Runtime) RegExpStack() *RegExpStack { return r.regexpStack }

// Bootstrapper returns the running thread's bootstrapping state.
func (r *Runtime) Bootstrapper() *Bootstrapper { return r.bootstrapper }

// IterateRoots visits every GC root the runtime holds on behalf of its
// threads: the live collaborators of the running thread, then the
// archived slots of every parked thread. The caller must hold the
// runtime lock.
func (r *Runtime) IterateRoots(visit RootVisitor) {
	r.handleScopes.IterateLive(visit)
	if id := r.top.PendingException(); id != heap.InvalidObjectID {
		visit(id)
	}
	if id := r.top.CachedStackTrace(); id != heap.InvalidObjectID {
		visit(id)
	}
	r.manager.Iterate(visit)
}
