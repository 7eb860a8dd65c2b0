package log

import (
	stdlog "log"
	"strings"
)

type stdlogWriter struct {
	logger Logger
}

func (w stdlogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if msg != "" {
		w.logger.Info(msg)
	}
	return len(p), nil
}

// RedirectStdLog routes standard library log output through the given
// Logger at info level.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdlogWriter{logger: logger})
}

// ToStdLogger returns a *log.Logger whose output is routed through the
// given Logger, for libraries that require the standard interface.
func ToStdLogger(logger Logger) *stdlog.Logger {
	return stdlog.New(stdlogWriter{logger: logger}, "", 0)
}
