// Package debug provides env-gated diagnostic output.
package debug

import (
	"fmt"
	"os"
)

var (
	enabled     = os.Getenv("BOUNTY_DEBUG") != ""
	verboseMode = false
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output (--verbose flag).
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

func Logf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
