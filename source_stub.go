// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

//go:build !linux

package dirwatch

import "errors"

// The monitor is built on inotify; there is no implementation for other
// platforms.
func newSource() (source, error) {
	return nil, errors.New("dirwatch: not supported on this platform")
}
