// Package logging configures the gommon logger shared by echo and the rest of
// the server.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

const (
	jsonHeader = `{"time":"${time_rfc3339_nano}","level":"${level}","prefix":"${prefix}"}`
	textHeader = `${time_rfc3339} ${level} [${prefix}]`
)

// New returns a logger writing to w, or to stderr when w is nil. stdout is
// left alone because the stdio transport owns it.
func New(prefix, level, format string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.New(prefix)
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	if strings.EqualFold(format, "text") {
		l.SetHeader(textHeader)
	} else {
		l.SetHeader(jsonHeader)
	}
	l.DisableColor()
	return l
}

// ConfigureGlobal applies the same settings to the package-level gommon
// logger, which otherwise writes to stdout.
func ConfigureGlobal(level, format string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
	log.SetLevel(ParseLevel(level))
	if strings.EqualFold(format, "text") {
		log.SetHeader(textHeader)
	} else {
		log.SetHeader(jsonHeader)
	}
}

// ParseLevel maps a level name to a gommon level. Unknown names map to INFO.
func ParseLevel(level string) log.Lvl {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return log.DEBUG
	case "WARN", "WARNING":
		return log.WARN
	case "ERROR", "CRITICAL":
		return log.ERROR
	case "OFF":
		return log.OFF
	default:
		return log.INFO
	}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	l := log.New("-")
	l.SetOutput(io.Discard)
	l.SetLevel(log.OFF)
	return l
}
