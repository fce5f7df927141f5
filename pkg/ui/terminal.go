package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Banner printed before a crawl
const Banner = `
    ┌─────────────────────────────────────────────┐
    │  sinacrawler · incremental timeline crawler │
    └─────────────────────────────────────────────┘
`

var (
	mu           sync.Mutex
	out          io.Writer = os.Stdout
	quietMode    bool
	colorEnabled = term.IsTerminal(int(os.Stdout.Fd()))
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
// while colors are enabled
func colorize(colorString string) func(string) string {
	return func(text string) string {
		mu.Lock()
		enabled := colorEnabled
		mu.Unlock()
		if !enabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// SetOutput redirects all terminal output. Passing nil restores stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetColorEnabled forces colors on or off
func SetColorEnabled(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	colorEnabled = enabled
}

// SetQuietMode suppresses everything except errors and the run summary
func SetQuietMode(quiet bool) {
	mu.Lock()
	defer mu.Unlock()
	quietMode = quiet
}

// IsQuiet reports whether quiet mode is on
func IsQuiet() bool {
	mu.Lock()
	defer mu.Unlock()
	return quietMode
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

func printf(format string, args ...interface{}) {
	fmt.Fprintf(writer(), format, args...)
}

// PrintBanner prints the banner unless quiet
func PrintBanner() {
	if IsQuiet() {
		return
	}
	printf("%s", Cyan(Banner))
}

// PrintError prints an error message in red. Errors are printed in quiet mode too.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		printf("%s\n", Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		printf("%s\n", Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if IsQuiet() {
		return
	}
	printf("%s\n", Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	if IsQuiet() {
		return
	}
	printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if IsQuiet() {
		return
	}
	if len(args) > 0 {
		printf("%s\n", Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		printf("%s\n", Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if IsQuiet() {
		return
	}
	printf("%s\n", Magenta(msg))
}
