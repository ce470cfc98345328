package threads

// Locker makes the runtime's live state belong to one thread for a
// scope. Entering takes the runtime lock and restores the thread's
// archived state; Exit parks the thread again and releases the lock.
// Lockers nest: an inner Locker on a thread that already owns the lock
// is a no-op on both ends.
type Locker struct {
	runtime  *Runtime
	thread   *Thread
	hasLock  bool
	topLevel bool
}

// NewLocker enters the runtime as thread t, blocking until the lock is
// available.
func NewLocker(r *Runtime, t *Thread) *Locker {
	l := &Locker{runtime: r, thread: t, topLevel: true}
	if !r.manager.IsLockedBy(t) {
		r.manager.Lock(t)
		l.hasLock = true
		if r.manager.RestoreThread(t) {
			l.topLevel = false
		}
	}
	return l
}

// Exit leaves the runtime. A thread entering for the first time frees
// its state instead of archiving it; a returning thread parks lazily.
func (l *Locker) Exit() {
	if !l.hasLock {
		return
	}
	if l.topLevel {
		l.runtime.manager.FreeThreadResources()
	} else {
		l.runtime.manager.ArchiveThread(l.thread)
	}
	l.runtime.manager.Unlock(l.thread)
	l.hasLock = false
}

// Unlocker temporarily gives up the runtime lock inside a locked scope,
// archiving the thread so others can run. Relock restores the state and
// retakes the lock.
type Unlocker struct {
	runtime *Runtime
	thread  *Thread
}

// NewUnlocker parks thread t and releases the runtime lock. The caller
// must own the lock.
func NewUnlocker(r *Runtime, t *Thread) *Unlocker {
	r.manager.ArchiveThread(t)
	r.manager.Unlock(t)
	return &Unlocker{runtime: r, thread: t}
}

// Relock retakes the runtime lock and restores the thread's state.
func (u *Unlocker) Relock() {
	u.runtime.manager.Lock(u.thread)
	u.runtime.manager.RestoreThread(u.thread)
}
