// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package dirwatch

import "errors"

var (
	errUnknownHandle = errors.New("watch descriptor is not being tracked")
	errUnknownEntry  = errors.New("no watch registered for parent and name")
	errSourceGone    = errors.New("notification source closed")
)

// flags classifies a raw event. The source translates whatever the kernel
// reports into this set; the event loop never sees kernel masks directly.
type flags uint32

const (
	flagCreated flags = 1 << iota
	flagDeleted
	flagIsDir
	flagIgnored
	flagOverflow
)

// rawEvent is a single decoded change notification: the watch descriptor it
// was issued against, its classification, and - only for records that carry
// one - the bare name of the affected file or directory inside the watched
// directory. It never carries a path.
type rawEvent struct {
	wd    watchdesc
	flags flags
	name  string
}

// source is an intermediate interface wrapping the kernel notification
// facility, inotify on Linux. It exists so the event loop can be driven by a
// scripted stream in tests.
//
// The source does no path bookkeeping of its own; mapping descriptors back to
// paths is entirely the registry's job.
type source interface {
	// register starts monitoring path for creation and deletion and returns
	// the descriptor the kernel issued for it. The path must exist and be a
	// directory.
	register(path string) (watchdesc, error)

	// deregister stops monitoring the watch given by wd. The kernel may have
	// already invalidated the descriptor, in which case an error is returned
	// and the caller is expected to shrug.
	deregister(wd watchdesc) error

	// nextEvents blocks until at least one event can be read, then returns
	// the whole batch in kernel delivery order. It returns errSourceGone
	// after wake was called, and the underlying read error if the stream
	// fails.
	nextEvents() ([]rawEvent, error)

	// wake interrupts an in-flight or future nextEvents call, making it
	// return errSourceGone.
	wake()

	// close releases the source. No events are reported afterwards.
	close() error
}
