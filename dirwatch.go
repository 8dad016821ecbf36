// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

// Package dirwatch recursively monitors a directory tree for creation and
// deletion of files and subdirectories on top of inotify.
//
// inotify watches a single directory level at a time and reports events as a
// (watch descriptor, bare name) pair. The package keeps a bidirectional
// registry between descriptors and (parent descriptor, name) entries so that
// full paths can be reconstructed on demand, new subdirectories can be
// registered as they appear, and watches can be torn down again as
// subdirectories are deleted.

// BUG(olandr): Subdirectories created faster than their creation events can
// be read and registered go unwatched, together with everything created
// inside them before registration. This is inherent to inotify; there is no
// way to close the window, only to keep it short.

// BUG(olandr): Deleting a directory removes the kernel watches for its whole
// subtree without reporting individual deletions for the descendants. File
// and directory counters are therefore net counters, not exact tallies, after
// a subtree removal.

package dirwatch

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
)

// DoNotWatchFn reports whether a path should be excluded from monitoring.
// Excluded directories are never registered with the notification source, so
// their whole subtree stays silent.
type DoNotWatchFn func(string) bool

// Monitor ties the watch registry to a notification source and delivers
// creation and deletion notifications for everything under its root.
type Monitor struct {
	source   source
	registry *registry
	c        chan<- Notification
	filter   DoNotWatchFn
	log      *slog.Logger

	// mu serializes registry and counter access between the event loop and
	// Stats/Summary readers. The loop is the only writer.
	mu    sync.RWMutex
	dirs  int
	files int
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithFilter excludes paths for which fn returns true. A matching directory
// is not registered for monitoring and produces no notifications; a matching
// file produces no notifications.
func WithFilter(fn DoNotWatchFn) Option {
	return func(m *Monitor) { m.filter = fn }
}

// WithLogger routes the monitor's diagnostics to l. By default they are
// discarded.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// NewMonitor starts monitoring the directory tree rooted at root. The root
// must exist and be a directory, otherwise NewMonitor fails. Pre-existing
// subdirectories of root are not scanned; only changes made while the monitor
// runs are observed.
//
// The c almost always is a buffered channel. The monitor will not drop
// notifications - the caller must ensure that c has sufficient buffer space
// to keep up with the expected event rate, or drain it promptly.
//
// No events are delivered until Run is called.
func NewMonitor(root string, c chan<- Notification, opts ...Option) (*Monitor, error) {
	src, err := newSource()
	if err != nil {
		return nil, err
	}
	m, err := newMonitor(root, c, src, opts...)
	if err != nil {
		src.close()
		return nil, err
	}
	return m, nil
}

// newMonitor wires a monitor to an arbitrary source and registers the root
// watch. Registration failure for the root is fatal; there is nothing to
// monitor without it.
func newMonitor(root string, c chan<- Notification, src source, opts ...Option) (*Monitor, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	m := &Monitor{
		source:   src,
		registry: newRegistry(),
		c:        c,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	wd, err := src.register(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	m.registry.insert(noParent, root, wd)
	return m, nil
}

// Stats returns the current net creation counters. Safe to call from any
// goroutine while Run is in flight. After a queue overflow the counters are
// best-effort, see Run.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{Dirs: m.dirs, Files: m.files}
}

// Summary returns the counters together with both registry sizes. The two
// sizes are maintained in lockstep; observing them diverge means the
// bookkeeping is broken.
func (m *Monitor) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	forward, reverse := m.registry.count()
	return Summary{
		Dirs:    m.dirs,
		Files:   m.files,
		Forward: forward,
		Reverse: reverse,
	}
}
