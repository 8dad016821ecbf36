// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package dirwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

func fakeDirName() string {
	return gofakeit.LetterN(6)
}

func fakeFileName() string {
	return fmt.Sprintf("%v.%v", gofakeit.LetterN(6), gofakeit.FileExtension())
}

// fakeSegments generates n random path segments. The index suffix keeps them
// unique regardless of what gofakeit hands out.
func fakeSegments(n int) []string {
	segments := make([]string, n)
	for i := range segments {
		segments[i] = fmt.Sprintf("%v%d", fakeDirName(), i)
	}
	return segments
}

// isDir follows the trailing-slash convention of tree fixtures: "a/b/" is a
// directory, "a/b" is a file.
func isDir(path string) bool {
	r := path[len(path)-1]
	return r == '\\' || r == '/'
}

// tmpcreate creates a single file or directory (trailing slash) under root.
func tmpcreate(root, path string) (bool, error) {
	isdir := isDir(path)
	path = filepath.Join(root, filepath.FromSlash(path))
	if isdir {
		if err := os.Mkdir(path, 0755); err != nil {
			return false, err
		}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return false, err
		}
		if err := nonil(f.Sync(), f.Close()); err != nil {
			return false, err
		}
	}
	return isdir, nil
}

// tmproot creates a fresh temporary tree root, honoring DIRWATCH_TMP.
func tmproot() (string, error) {
	return os.MkdirTemp(testdataDestination())
}

func testdataDestination() (string, string) {
	if s := os.Getenv("DIRWATCH_TMP"); s != "" {
		return filepath.Split(s)
	}
	return "", "dirwatch"
}

func timeout() time.Duration {
	if s := os.Getenv("DIRWATCH_TIMEOUT"); s != "" {
		if t, err := time.ParseDuration(s); err == nil {
			return t
		}
	}
	return 2 * time.Second
}

// drainNotifications empties c without blocking. Used after the loop has
// stopped, when everything sent is already buffered.
func drainNotifications(c chan Notification) (ns []Notification) {
	for {
		select {
		case n := <-c:
			ns = append(ns, n)
		default:
			return
		}
	}
}
