package output

import (
	"fmt"
	"io"
	"sync"
)

// Logger writes prefixed diagnostic lines, usually to stderr. It is safe for
// concurrent use and implements runner.FailureLogger.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	colors *ColorScheme
}

func NewLogger(w io.Writer, noColor bool) *Logger {
	return &Logger{w: w, colors: SchemeFor(w, noColor)}
}

// Infof logs an "[info]" line.
func (l *Logger) Infof(format string, args ...any) {
	l.println(l.colors.Info.Sprint("[info]") + " " + fmt.Sprintf(format, args...))
}

// Warnf logs a "WARNING:" line.
func (l *Logger) Warnf(format string, args ...any) {
	l.println(l.colors.Warning.Sprint("WARNING:") + " " + fmt.Sprintf(format, args...))
}

// Errorf logs an "Error:" line.
func (l *Logger) Errorf(format string, args ...any) {
	l.println(l.colors.Error.Sprint("Error:") + " " + fmt.Sprintf(format, args...))
}

// LogFailure logs a failed request.
func (l *Logger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.println(l.colors.Error.Sprint("[jolt]") + " request failed: " + err.Error())
}

func (l *Logger) println(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, line)
}
