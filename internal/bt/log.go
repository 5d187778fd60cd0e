package bt

import (
	"log/slog"
	"sync/atomic"
)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger used for lifecycle tracing. A nil logger
// restores [slog.Default].
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Logger returns the logger set by [SetLogger], for behaviours defined
// outside this package.
func Logger() *slog.Logger { return logger() }
