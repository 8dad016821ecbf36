// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package dirwatch

import (
	"fmt"
	"os"
	"strconv"
)

// NOTE(olandr): set DIRWATCH_DEBUG to get extra information about processed
// events on stdout.

var debugTag, _ = strconv.ParseBool(os.Getenv("DIRWATCH_DEBUG"))

func dbgprint(v ...interface{}) {
	if debugTag {
		fmt.Println(append([]interface{}{"[D]"}, v...)...)
	}
}

func dbgprintf(format string, v ...interface{}) {
	if debugTag {
		fmt.Printf("[D] "+format+"\n", v...)
	}
}
