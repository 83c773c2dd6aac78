// Package output provides formatted terminal output for the slipway CLI.
// All helpers write to Stdout, which tests can replace with a buffer.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	// Colors and styles
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)

	// Output writers (can be overridden for testing)
	Stdout io.Writer = os.Stdout

	// Disable colors if not TTY or NO_COLOR is set
	noColor = os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout)
)

func init() {
	if noColor {
		color.NoColor = true
	}
}

// Success prints a success message with a checkmark
// Example: ✓ Stack updated
func Success(format string, a ...interface{}) {
	fmt.Fprintf(Stdout, green.Sprint("✓")+" "+format+"\n", a...)
}

// Info prints an informational message with an arrow
// Example: → Refreshing stack state...
func Info(format string, a ...interface{}) {
	fmt.Fprintf(Stdout, cyan.Sprint("→")+" "+format+"\n", a...)
}

// Warning prints a warning message with a warning symbol
// Example: ⚠ DOCKER_USERNAME is empty
func Warning(format string, a ...interface{}) {
	fmt.Fprintf(Stdout, yellow.Sprint("⚠")+" "+format+"\n", a...)
}

// Error prints an error message with an X symbol
// Example: ✗ Failed to update stack: permission denied
func Error(format string, a ...interface{}) {
	fmt.Fprintf(Stdout, red.Sprint("✗")+" "+format+"\n", a...)
}

// Header prints a section header with a separator line
func Header(text string) {
	fmt.Fprintln(Stdout)
	fmt.Fprintln(Stdout, bold.Sprint(text))
	fmt.Fprintln(Stdout, gray.Sprint(strings.Repeat("━", 50)))
}

// KeyValue prints a key-value pair with indentation
// Example:   Stack name: dev
func KeyValue(key, value string) {
	fmt.Fprintf(Stdout, "  %s: %s\n", gray.Sprint(key), value)
}

// Blank prints a blank line
func Blank() {
	fmt.Fprintln(Stdout)
}

// Println prints a plain line without any formatting
func Println(a ...interface{}) {
	fmt.Fprintln(Stdout, a...)
}

// Printf prints a formatted plain line
func Printf(format string, a ...interface{}) {
	fmt.Fprintf(Stdout, format, a...)
}

// Bold prints text in bold
func Bold(text string) string {
	return bold.Sprint(text)
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fileInfo, _ := f.Stat()
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
