// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

//go:build linux

package dirwatch

import (
	"bytes"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// watchMask is the event set every watch is registered with. The monitor
// only deals in creation and deletion; IN_IGNORED and IN_Q_OVERFLOW arrive
// unrequested.
const watchMask = unix.IN_CREATE | unix.IN_DELETE

const maxEventSize = unix.SizeofInotifyEvent + unix.PathMax + 1

// inotifySource reads raw inotify records from a non-blocking descriptor.
// The self-pipe makes an in-flight poll interruptible: wake writes a byte,
// nextEvents sees the pipe readable and reports errSourceGone.
//
// nextEvents must be called from a single goroutine, the read buffer is not
// guarded.
type inotifySource struct {
	fd     int
	pipe   [2]int
	buffer [64 * maxEventSize]byte
	once   sync.Once
}

func newSource() (source, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("inotify_init1", err)
	}
	s := &inotifySource{fd: fd}
	if err := unix.Pipe2(s.pipe[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("pipe2", err)
	}
	return s, nil
}

func (s *inotifySource) register(path string) (watchdesc, error) {
	wd, err := unix.InotifyAddWatch(s.fd, path, watchMask)
	if err != nil {
		return noParent, os.NewSyscallError("inotify_add_watch", err)
	}
	return watchdesc(wd), nil
}

func (s *inotifySource) deregister(wd watchdesc) error {
	if _, err := unix.InotifyRmWatch(s.fd, uint32(wd)); err != nil {
		return os.NewSyscallError("inotify_rm_watch", err)
	}
	return nil
}

func (s *inotifySource) nextEvents() ([]rawEvent, error) {
	for {
		fds := []unix.PollFd{
			{Fd: int32(s.fd), Events: unix.POLLIN},
			{Fd: int32(s.pipe[0]), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, os.NewSyscallError("poll", err)
		}
		if fds[1].Revents != 0 {
			return nil, errSourceGone
		}
		n, err := unix.Read(s.fd, s.buffer[:])
		switch {
		case err == unix.EAGAIN:
			continue
		case err != nil:
			return nil, os.NewSyscallError("read", err)
		case n < unix.SizeofInotifyEvent:
			continue
		}
		return s.decode(n), nil
	}
}

// decode walks the packed inotify_event records in the first n bytes of the
// read buffer. Each record is a fixed header followed by Len bytes of
// NUL-padded name.
func (s *inotifySource) decode(n int) []rawEvent {
	events := make([]rawEvent, 0, n/unix.SizeofInotifyEvent)
	nmin := n - unix.SizeofInotifyEvent
	for pos := 0; pos <= nmin; {
		sys := (*unix.InotifyEvent)(unsafe.Pointer(&s.buffer[pos]))
		pos += unix.SizeofInotifyEvent
		name := ""
		if sys.Len > 0 {
			endpos := pos + int(sys.Len)
			name = string(bytes.TrimRight(s.buffer[pos:endpos], "\x00"))
			pos = endpos
		}
		events = append(events, rawEvent{
			wd:    watchdesc(sys.Wd),
			flags: maskflags(sys.Mask, sys.Wd),
			name:  name,
		})
	}
	return events
}

func maskflags(mask uint32, wd int32) flags {
	var f flags
	if mask&unix.IN_CREATE != 0 {
		f |= flagCreated
	}
	if mask&unix.IN_DELETE != 0 {
		f |= flagDeleted
	}
	if mask&unix.IN_ISDIR != 0 {
		f |= flagIsDir
	}
	if mask&unix.IN_IGNORED != 0 {
		f |= flagIgnored
	}
	// The kernel reports queue overflow against wd -1.
	if mask&unix.IN_Q_OVERFLOW != 0 || wd == -1 {
		f |= flagOverflow
	}
	return f
}

func (s *inotifySource) wake() {
	unix.Write(s.pipe[1], []byte{0})
}

func (s *inotifySource) close() error {
	var err error
	s.once.Do(func() {
		err = nonil(
			os.NewSyscallError("close", unix.Close(s.fd)),
			os.NewSyscallError("close", unix.Close(s.pipe[0])),
			os.NewSyscallError("close", unix.Close(s.pipe[1])),
		)
	})
	return err
}
