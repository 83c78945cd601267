// Package log provides logging utilities including colored console output
// for the link probes.
package log

import (
	"os"

	"github.com/fatih/color"
)

var red = color.New(color.FgRed).FprintfFunc()
var blue = color.New(color.FgBlue).FprintfFunc()
var yellow = color.New(color.FgYellow).FprintfFunc()

var verbose = false

// SetVerbose enables or disables verbose output globally.
func SetVerbose(on bool) {
	verbose = on
}

// ErrorMsg prints an error message to stderr in red color.
func ErrorMsg(format string, a ...interface{}) {
	red(os.Stderr, "[!] Error: "+format, a...)
}

// InfoMsg prints an informational message to stderr in blue color.
func InfoMsg(format string, a ...interface{}) {
	blue(os.Stderr, "[+] "+format, a...)
}

// VerboseMsg prints a diagnostic message to stderr in yellow color. It does
// nothing unless verbose output was enabled with SetVerbose.
func VerboseMsg(format string, a ...interface{}) {
	if !verbose {
		return
	}
	yellow(os.Stderr, "[*] "+format, a...)
}
