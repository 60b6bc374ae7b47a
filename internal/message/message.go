// internal/message/message.go
package message

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/mvas-it/m365ops/version"
)

var (
	quiet     bool
	noColor   bool
	silent    bool
	mutex     sync.RWMutex
	outWriter io.Writer = os.Stdout
	inReader  io.Reader = os.Stdin

	// Color definitions
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	promptColor  = color.New(color.FgHiWhite, color.Bold)
	bannerColor  = color.New(color.FgHiBlue, color.Bold)
)

const asciiBanner = `
▗▖  ▗▖ ▄▄▄▄  ▄▄▄  ▗▄▄▄▖ ▄▄▄  ▄▄▄▄   ▄▄▄
▐▛▚▞▜▌▐▌  ▐▌▐▌   ▐▌    ▐▌ ▐▌▐▌  ▐▌▐▌
▐▌  ▐▌ ▀▚▄▟▙▝▀▚▖ ▐▛▀▀▘ ▐▌ ▐▌▐▛▀▚▖  ▀▀▚▖
▐▌  ▐▌▄▄▄▄▄▄ ▄▄▞▘▐▙▄▄▖ ▝▄▄▞▘▐▌          ▗▄▄▞▘
`

// SetQuiet enables/disables user messages
func SetQuiet(q bool) {
	mutex.Lock()
	defer mutex.Unlock()
	quiet = q
}

// SetNoColor enables/disables colored output
func SetNoColor(nc bool) {
	mutex.Lock()
	defer mutex.Unlock()
	noColor = nc
	color.NoColor = nc // This affects the color package globally
}

// SetSilent enables/disables all messages
func SetSilent(s bool) {
	mutex.Lock()
	defer mutex.Unlock()
	silent = s
}

// SetOutput changes the output writer (useful for testing)
func SetOutput(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()
	outWriter = w
}

// SetInput changes the prompt input reader (useful for testing)
func SetInput(r io.Reader) {
	mutex.Lock()
	defer mutex.Unlock()
	inReader = r
	promptReader = nil
}

func printf(c *color.Color, prefix, format string, args ...interface{}) {
	mutex.RLock()
	defer mutex.RUnlock()

	if !quiet {
		msg := fmt.Sprintf(format, args...)
		if noColor {
			fmt.Fprintf(outWriter, "%s%s\n", prefix, msg)
		} else {
			c.Fprintf(outWriter, "%s%s\n", prefix, msg)
		}
	}
}

// Info prints an informational message unless quiet/silent mode is enabled
func Info(format string, args ...interface{}) {
	if quiet || silent {
		return
	}
	printf(infoColor, "[*] ", format, args...)
}

// Success prints a success message unless quiet/silent mode is enabled
func Success(format string, args ...interface{}) {
	if quiet || silent {
		return
	}
	printf(successColor, "[+] ", format, args...)
}

// Warning prints a warning message unless silent mode is enabled
func Warning(format string, args ...interface{}) {
	if silent {
		return
	}
	printf(warningColor, "[!] ", format, args...)
}

// Error prints an error message unless silent mode is enabled
func Error(format string, args ...interface{}) {
	if silent {
		return
	}
	printf(errorColor, "[-] ", format, args...)
}

// promptReader buffers prompt input across calls so consecutive prompts
// don't drop buffered lines.
var promptReader *bufio.Reader

// Prompt prints a label and reads one trimmed line from the input reader.
// Prompts are never suppressed: an interactive run that swallowed its own
// questions would just hang.
func Prompt(label string) string {
	mutex.Lock()
	defer mutex.Unlock()

	if noColor {
		fmt.Fprintf(outWriter, "%s: ", label)
	} else {
		promptColor.Fprintf(outWriter, "%s: ", label)
	}

	if promptReader == nil {
		promptReader = bufio.NewReader(inReader)
	}
	line, err := promptReader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

// Emphasize returns a string with bold formatting
func Emphasize(s string) string {
	if noColor {
		return s
	}
	return color.New(color.Bold).Sprint(s)
}

// Prints the banner
func Banner() {
	if quiet || silent {
		return
	}

	mutex.RLock()
	defer mutex.RUnlock()

	if noColor {
		fmt.Fprint(outWriter, asciiBanner, version.AbbreviatedVersion(), "\n")
	} else {
		bannerColor.Fprint(outWriter, asciiBanner, version.AbbreviatedVersion(), "\n")
	}
}
