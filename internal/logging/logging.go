package logging

import (
	"io"
	"log"
	"os"
)

// DefaultFile is the debug log written when debug logging is enabled
const DefaultFile = "rex-debug.log"

var (
	Debug   *log.Logger
	Scanner *log.Logger
	Live    *log.Logger
	Warn    *log.Logger
	Enabled bool
)

func init() {
	Debug = log.New(io.Discard, "", 0)
	Scanner = log.New(io.Discard, "", 0)
	Live = log.New(io.Discard, "", 0)
	Warn = log.New(os.Stderr, "warning: ", 0)
}

// Setup enables or disables the debug loggers. When enabled, Debug,
// Scanner and Live append to path.
func Setup(enabled bool, path string) {
	if !enabled {
		Debug = log.New(io.Discard, "", 0)
		Scanner = log.New(io.Discard, "", 0)
		Live = log.New(io.Discard, "", 0)
		Enabled = false
		return
	}

	Enabled = true
	if path == "" {
		path = DefaultFile
	}

	debugFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Fallback to stderr if we can't open the file
		Debug = log.New(os.Stderr, "[DEBUG] ", log.Ldate|log.Ltime)
		Scanner = log.New(os.Stderr, "[SCANNER] ", log.Ldate|log.Ltime)
		Live = log.New(os.Stderr, "[LIVE] ", log.Ldate|log.Ltime)
		return
	}

	Debug = log.New(debugFile, "[DEBUG] ", log.Lmicroseconds)
	Scanner = log.New(debugFile, "[SCANNER] ", log.Lmicroseconds)
	Live = log.New(debugFile, "[LIVE] ", log.Lmicroseconds)
}

// SetWarnOutput redirects warnings, mainly so tests and the progress view can
// keep stderr clean.
func SetWarnOutput(w io.Writer) {
	Warn.SetOutput(w)
}
