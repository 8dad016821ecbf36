// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package dirwatch

import (
	"context"
	"errors"
	"path/filepath"
	"time"
)

// Run pulls raw events from the notification source and processes them in
// kernel delivery order until ctx is cancelled or the event stream fails.
// Ordering matters: a deletion for a descriptor must never be handled before
// the insertion that created it, which the single loop goroutine guarantees
// trivially.
//
// A failure while handling one event is logged and never ends the loop; only
// a source read error does, and it is returned after the shutdown sequence
// ran. Cancellation via ctx returns nil.
//
// Run must be called at most once.
func (m *Monitor) Run(ctx context.Context) error {
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			m.source.wake()
		case <-stopped:
		}
	}()

	var runErr error
loop:
	for ctx.Err() == nil {
		events, err := m.source.nextEvents()
		switch {
		case errors.Is(err, errSourceGone):
			break loop
		case err != nil:
			m.log.Error("event stream failed", "error", err)
			runErr = err
			break loop
		}
		for _, ev := range events {
			m.handle(ev)
		}
	}
	m.shutdown()
	return runErr
}

// handle processes a single raw event, steps 2-4 of the per-event state
// machine. Registry and counter mutations happen under the write lock; the
// notification send happens after it is released, so a slow consumer never
// blocks Stats readers.
func (m *Monitor) handle(ev rawEvent) {
	if ev.flags&flagOverflow != 0 {
		// Events between the last processed record and now were silently
		// dropped. Counters are best-effort from here on; no resync is
		// attempted.
		m.log.Warn("event queue overflowed, counters are approximate")
		return
	}
	if ev.name == "" {
		if ev.flags&flagIgnored != 0 {
			// The kernel dropped a watch on its own, typically because the
			// directory was deleted. The registry reconciles on the
			// deletion event, nothing to do here.
			m.log.Debug("watch invalidated by kernel", "wd", ev.wd)
		}
		return
	}
	dbgprintf("event: wd=%d flags=%b name=%q", ev.wd, ev.flags, ev.name)

	m.mu.Lock()
	n, ok := m.dispatch(ev)
	m.mu.Unlock()
	if ok {
		m.c <- n
	}
}

// dispatch mutates registry and counters for one named event and reports the
// notification to emit, if any. Caller holds the write lock.
func (m *Monitor) dispatch(ev rawEvent) (Notification, bool) {
	isdir := ev.flags&flagIsDir != 0
	switch {
	case ev.flags&flagCreated != 0 && isdir:
		return m.dirCreated(ev)
	case ev.flags&flagCreated != 0:
		return m.fileCreated(ev)
	case ev.flags&flagDeleted != 0 && isdir:
		return m.dirRemoved(ev)
	case ev.flags&flagDeleted != 0:
		return m.fileRemoved(ev)
	}
	return Notification{}, false
}

func (m *Monitor) dirCreated(ev rawEvent) (Notification, bool) {
	parent, err := m.registry.path(ev.wd)
	if err != nil {
		m.log.Warn("create event for unknown watch", "wd", ev.wd, "name", ev.name)
		return Notification{}, false
	}
	child := filepath.Join(parent, ev.name)
	if m.filter != nil && m.filter(child) {
		m.log.Debug("directory excluded", "path", child)
		return Notification{}, false
	}
	wd, err := m.source.register(child)
	if err != nil {
		// The directory may already be gone again, or be unreadable. The
		// subtree stays unmonitored, same as one created too fast to catch.
		m.log.Warn("cannot watch new directory", "path", child, "error", err)
	} else {
		if m.registry.live(wd) {
			// The kernel reused a descriptor the registry still tracks,
			// meaning a removal was lost somewhere. Trust the kernel.
			m.log.Warn("descriptor reuse, replacing stale entry", "wd", wd)
			m.registry.evict(wd)
		}
		m.registry.insert(ev.wd, ev.name, wd)
	}
	m.dirs++
	return Notification{Kind: DirCreated, Path: child, Time: time.Now()}, true
}

func (m *Monitor) fileCreated(ev rawEvent) (Notification, bool) {
	parent, err := m.registry.path(ev.wd)
	if err != nil {
		m.log.Warn("create event for unknown watch", "wd", ev.wd, "name", ev.name)
		return Notification{}, false
	}
	path := filepath.Join(parent, ev.name)
	if m.filter != nil && m.filter(path) {
		return Notification{}, false
	}
	m.files++
	return Notification{Kind: FileCreated, Path: path, Time: time.Now()}, true
}

func (m *Monitor) dirRemoved(ev rawEvent) (Notification, bool) {
	if parent, err := m.registry.path(ev.wd); err == nil {
		if child := filepath.Join(parent, ev.name); m.filter != nil && m.filter(child) {
			// Excluded directories were never registered, remove would
			// report them as unknown.
			m.log.Debug("directory excluded", "path", child)
			return Notification{}, false
		}
	}
	wd, dir, err := m.registry.remove(ev.wd, ev.name)
	if err != nil {
		// Duplicate or out-of-order event, or lost synchronization. Either
		// way there is nothing to tear down.
		m.log.Warn("delete event for unknown entry", "wd", ev.wd, "name", ev.name,
			"error", err)
		return Notification{}, false
	}
	if err := m.source.deregister(wd); err != nil {
		// Best-effort: the kernel usually invalidated the descriptor
		// together with the directory.
		m.log.Debug("deregister failed", "wd", wd, "error", err)
	}
	m.dirs--
	return Notification{Kind: DirRemoved, Path: dir, Time: time.Now()}, true
}

func (m *Monitor) fileRemoved(ev rawEvent) (Notification, bool) {
	// Files are never registered, only their parent resolves.
	parent, err := m.registry.path(ev.wd)
	if err != nil {
		m.log.Warn("delete event for unknown watch", "wd", ev.wd, "name", ev.name)
		return Notification{}, false
	}
	path := filepath.Join(parent, ev.name)
	if m.filter != nil && m.filter(path) {
		return Notification{}, false
	}
	m.files--
	return Notification{Kind: FileRemoved, Path: path, Time: time.Now()}, true
}

// shutdown drains the registry, deregisters every live watch best-effort and
// releases the source.
func (m *Monitor) shutdown() {
	m.mu.Lock()
	wds := m.registry.drainAll()
	m.mu.Unlock()
	for _, wd := range wds {
		if err := m.source.deregister(wd); err != nil {
			m.log.Debug("deregister during shutdown", "wd", wd, "error", err)
		}
	}
	if err := m.source.close(); err != nil {
		m.log.Warn("closing notification source", "error", err)
	}
	dbgprintf("shutdown: %d watches drained", len(wds))
}
