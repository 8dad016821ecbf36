// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package dirwatch

import (
	"fmt"
	"path/filepath"
)

// watchdesc is a watch descriptor as issued by the notification source. A
// descriptor is unique only while its watch is live; the kernel is free to
// reuse it after removal.
type watchdesc int32

// noParent marks the root entry. The root's name holds the absolute path the
// monitor was started on, not a relative segment.
const noParent watchdesc = -1

// watchEntry ties a descriptor back to the directory it monitors as a
// (parent descriptor, bare name) pair - the only coordinates events carry.
// The parent field is a back-reference, not ownership; the registry owns all
// entries.
type watchEntry struct {
	parent watchdesc
	name   string
}

// registry is the bidirectional descriptor <-> (parent, name) bookkeeping
// that turns bare event names back into full paths. Both maps are mutated
// together, never singly; a stale half-entry is a correctness bug, not a
// cosmetic one.
//
// The registry carries no lock of its own. It is driven by the single event
// loop goroutine and the Monitor guards cross-goroutine reads.
type registry struct {
	forward map[watchdesc]watchEntry
	reverse map[watchEntry]watchdesc
}

func newRegistry() *registry {
	return &registry{
		forward: make(map[watchdesc]watchEntry),
		reverse: make(map[watchEntry]watchdesc),
	}
}

// insert records a freshly registered watch under its parent. The caller
// guarantees wd is not live; a duplicate insert means the bookkeeping has
// already diverged from the kernel and there is no safe way to continue, so
// it fails loudly.
func (r *registry) insert(parent watchdesc, name string, wd watchdesc) {
	if old, ok := r.forward[wd]; ok {
		panic(fmt.Sprintf("dirwatch: duplicate insert of wd %d (live %q, new %q)",
			wd, old.name, name))
	}
	entry := watchEntry{parent: parent, name: name}
	r.forward[wd] = entry
	r.reverse[entry] = wd
}

// path reassembles the full directory path for wd by walking the parent
// chain up to the root and joining the names. The walk is iterative on
// purpose: tree depth is bounded only by the filesystem, and recursing here
// would put the stack at its mercy.
func (r *registry) path(wd watchdesc) (string, error) {
	var segments []string
	for at := wd; at != noParent; {
		entry, ok := r.forward[at]
		if !ok {
			return "", fmt.Errorf("%w: wd %d", errUnknownHandle, at)
		}
		segments = append(segments, entry.name)
		at = entry.parent
	}
	// Collected leaf-first, joined root-first.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return filepath.Join(segments...), nil
}

// lookup returns the descriptor registered for the (parent, name) pair
// without removing it.
func (r *registry) lookup(parent watchdesc, name string) (watchdesc, error) {
	wd, ok := r.reverse[watchEntry{parent: parent, name: name}]
	if !ok {
		return 0, fmt.Errorf("%w: %q under wd %d", errUnknownEntry, name, parent)
	}
	return wd, nil
}

// remove deletes the entry registered for the (parent, name) pair - the
// coordinates a deletion event carries - and returns its descriptor, needed
// to deregister with the source, together with the resolved display path.
//
// A missing pair is a real runtime condition (duplicate or out-of-order
// events), reported as errUnknownEntry with the registry left untouched.
func (r *registry) remove(parent watchdesc, name string) (watchdesc, string, error) {
	entry := watchEntry{parent: parent, name: name}
	wd, ok := r.reverse[entry]
	if !ok {
		return 0, "", fmt.Errorf("%w: %q under wd %d", errUnknownEntry, name, parent)
	}
	dir, err := r.path(wd)
	if err != nil {
		return 0, "", err
	}
	delete(r.forward, wd)
	delete(r.reverse, entry)
	return wd, dir, nil
}

// evict drops a live entry by descriptor, both halves together. Used when
// the kernel hands out a descriptor the registry still considers live.
func (r *registry) evict(wd watchdesc) {
	if entry, ok := r.forward[wd]; ok {
		delete(r.forward, wd)
		delete(r.reverse, entry)
	}
}

// live reports whether wd currently resolves to an entry.
func (r *registry) live(wd watchdesc) bool {
	_, ok := r.forward[wd]
	return ok
}

// drainAll empties the registry and returns every removed descriptor so the
// caller can deregister each with the source. Draining an empty registry
// returns nil.
func (r *registry) drainAll() []watchdesc {
	if len(r.forward) == 0 {
		return nil
	}
	wds := make([]watchdesc, 0, len(r.forward))
	for wd := range r.forward {
		wds = append(wds, wd)
	}
	r.forward = make(map[watchdesc]watchEntry)
	r.reverse = make(map[watchEntry]watchdesc)
	return wds
}

// count returns the sizes of the forward and reverse maps. They must always
// be equal; a test observing divergence has found a bug.
func (r *registry) count() (forward, reverse int) {
	return len(r.forward), len(r.reverse)
}
