// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package dirwatch

import (
	"sync"
	"testing"
)

// fakeSource scripts a raw event stream and records every call the monitor
// issues against the notification source.
//
// Descriptors are issued sequentially starting at 1, so the root watch is
// always wd 1 and scripted events can reference descriptors by number. The
// issue hook overrides that when a test needs descriptor collisions.
type fakeSource struct {
	t *testing.T

	mu      sync.Mutex
	batches [][]rawEvent
	calls   []sourceCall
	nextwd  watchdesc

	failing map[string]error          // register errors by path
	issue   func(path string) watchdesc // optional custom descriptor issuing

	// block makes nextEvents wait for wake once the script runs out instead
	// of reporting errSourceGone immediately.
	block bool
	woken chan struct{}
	once  sync.Once
}

func newFakeSource(t *testing.T, batches ...[]rawEvent) *fakeSource {
	return &fakeSource{
		t:       t,
		batches: batches,
		woken:   make(chan struct{}),
	}
}

func batch(events ...rawEvent) []rawEvent {
	return events
}

func (s *fakeSource) register(path string) (watchdesc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dbgprintf("%s: (*fakeSource).register(%q)", caller(), path)
	s.calls = append(s.calls, sourceCall{F: funcRegister, P: path})
	if err, ok := s.failing[path]; ok {
		return noParent, err
	}
	if s.issue != nil {
		return s.issue(path), nil
	}
	s.nextwd++
	return s.nextwd, nil
}

func (s *fakeSource) deregister(wd watchdesc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dbgprintf("%s: (*fakeSource).deregister(%d)", caller(), wd)
	s.calls = append(s.calls, sourceCall{F: funcDeregister, WD: wd})
	return nil
}

func (s *fakeSource) nextEvents() ([]rawEvent, error) {
	s.mu.Lock()
	if len(s.batches) > 0 {
		events := s.batches[0]
		s.batches = s.batches[1:]
		s.mu.Unlock()
		return events, nil
	}
	block := s.block
	s.mu.Unlock()
	if block {
		<-s.woken
	}
	return nil, errSourceGone
}

func (s *fakeSource) wake() {
	s.once.Do(func() { close(s.woken) })
}

func (s *fakeSource) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sourceCall{F: funcClose})
	return nil
}

func (s *fakeSource) recorded() []sourceCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sourceCall(nil), s.calls...)
}
