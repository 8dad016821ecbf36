// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

//go:build linux

package dirwatch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"
)

// monitorTest runs a real monitor over a fresh temporary tree and lets tests
// perform filesystem operations against it while asserting notifications.
type monitorTest struct {
	Timeout time.Duration

	t      *testing.T
	root   string
	m      *Monitor
	c      chan Notification
	cancel context.CancelFunc
	done   chan error
	once   sync.Once
}

func newMonitorTest(t *testing.T, opts ...Option) *monitorTest {
	root, err := tmproot()
	if err != nil {
		t.Fatalf("tmproot()=%v", err)
	}
	c := make(chan Notification, 512)
	m, err := NewMonitor(root, c, opts...)
	if err != nil {
		os.RemoveAll(root)
		t.Fatalf("NewMonitor(%q)=%v", root, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &monitorTest{
		t:      t,
		root:   root,
		m:      m,
		c:      c,
		cancel: cancel,
		done:   make(chan error, 1),
	}
	go func() { w.done <- m.Run(ctx) }()
	t.Cleanup(w.Close)
	return w
}

// Close stops the monitor, waits for the loop to drain and removes the tree.
func (w *monitorTest) Close() {
	w.once.Do(func() {
		w.cancel()
		select {
		case err := <-w.done:
			if err != nil {
				w.t.Errorf("Run()=%v", err)
			}
		case <-time.After(w.timeout()):
			w.t.Errorf("Run did not return within %v after cancellation", w.timeout())
		}
		os.RemoveAll(w.root)
	})
}

func (w *monitorTest) timeout() time.Duration {
	if w.Timeout != 0 {
		return w.Timeout
	}
	return timeout()
}

func (w *monitorTest) Fatalf(format string, v ...interface{}) {
	w.t.Fatalf("%s: %s", caller(), fmt.Sprintf(format, v...))
}
