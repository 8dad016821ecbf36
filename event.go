// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package dirwatch

import "time"

// Kind is the type of filesystem change a notification reports.
type Kind uint8

// The four notification kinds. Move and rename events are not monitored.
const (
	DirCreated Kind = iota + 1
	FileCreated
	DirRemoved
	FileRemoved
)

var kindstr = map[Kind]string{
	DirCreated:  "dirwatch.DirCreated",
	FileCreated: "dirwatch.FileCreated",
	DirRemoved:  "dirwatch.DirRemoved",
	FileRemoved: "dirwatch.FileRemoved",
}

// String implements fmt.Stringer interface.
func (k Kind) String() string {
	if s, ok := kindstr[k]; ok {
		return s
	}
	return "dirwatch.Kind(unknown)"
}

// Notification describes a single observed creation or deletion. Path is
// absolute and clean, reassembled from the registry's parent chain.
type Notification struct {
	Kind Kind
	Path string
	Time time.Time
}

// String implements fmt.Stringer interface.
func (n Notification) String() string {
	return n.Kind.String() + `: "` + n.Path + `"`
}

// Stats holds the net creation counters: every observed creation increments,
// every observed deletion decrements. Deletions swallowed by a subtree
// removal never arrive, so the counters drift from the real tree after one
// (see the package bugs).
type Stats struct {
	Dirs  int
	Files int
}

// Summary is the end-of-run snapshot: the net counters plus the sizes of the
// forward and reverse registry maps. Forward and Reverse must be equal at all
// times.
type Summary struct {
	Dirs    int
	Files   int
	Forward int
	Reverse int
}
