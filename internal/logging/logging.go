// Package logging provides leveled, structured logging for the service.
package logging

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// Fields attaches structured key/value context to a log line.
type Fields map[string]interface{}

// Logger writes leveled log lines tagged with a component name.
type Logger struct {
	name string
	out  *log.Logger
}

// NewLogger returns a logger for the named component.
func NewLogger(name string) *Logger {
	return &Logger{
		name: name,
		out:  log.New(os.Stdout, "", log.LstdFlags|log.LUTC),
	}
}

func (l *Logger) Debug(msg string, fields Fields) { l.write("DEBUG", msg, fields) }

func (l *Logger) Info(msg string, fields Fields) { l.write("INFO", msg, fields) }

func (l *Logger) Warn(msg string, fields Fields) { l.write("WARN", msg, fields) }

func (l *Logger) Error(msg string, fields Fields) { l.write("ERROR", msg, fields) }

// Fatal logs the message and exits the process.
func (l *Logger) Fatal(msg string, fields Fields) {
	l.write("FATAL", msg, fields)
	os.Exit(1)
}

func (l *Logger) write(level, msg string, fields Fields) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", level, l.name, msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}

	l.out.Println(b.String())
}
