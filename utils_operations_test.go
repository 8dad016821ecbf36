// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

//go:build linux

package dirwatch

import (
	"os"
	"path/filepath"
	"time"
)

// Filesystem operations against a monitorTest tree. Paths are slash
// separated and relative to the root; a trailing slash makes a directory.

func (w *monitorTest) create(path string) {
	isdir, err := tmpcreate(w.root, path)
	if err != nil {
		w.Fatalf("tmpcreate(%q, %q)=%v", w.root, path, err)
	}
	if isdir {
		dbgprintf("[FS] os.Mkdir(%q)", path)
	} else {
		dbgprintf("[FS] os.Create(%q)", path)
	}
}

func (w *monitorTest) remove(path string) {
	if err := os.RemoveAll(filepath.Join(w.root, filepath.FromSlash(path))); err != nil {
		w.Fatalf("RemoveAll(%q)=%v", path, err)
	}
	dbgprintf("[FS] os.RemoveAll(%q)", path)
}

// expect scans incoming notifications until one matches kind and path,
// failing on timeout. Interleaved notifications for other paths are skipped;
// use expectNone between stages when silence itself is the assertion.
func (w *monitorTest) expect(kind Kind, path string) {
	want := filepath.Join(w.root, filepath.FromSlash(path))
	for {
		select {
		case n := <-w.c:
			dbgprintf("received: %v", n)
			if n.Kind == kind && n.Path == want {
				return
			}
		case <-time.After(w.timeout()):
			w.Fatalf("timed out after %v waiting for %v on %q", w.timeout(), kind, want)
		}
	}
}

// expectNone asserts no notification arrives within the probe window.
func (w *monitorTest) expectNone() {
	select {
	case n := <-w.c:
		w.Fatalf("unexpected dangling notification: %v", n)
	case <-time.After(250 * time.Millisecond):
	}
}
