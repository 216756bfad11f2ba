package cache

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// defaultLogger backs caches built without WithLogger. Nil means silent.
var defaultLogger atomic.Pointer[zerolog.Logger]

// SetLogger installs the logger for caches created afterwards without
// WithLogger. Entries carry component=cache. A nil logger silences them.
func SetLogger(l *zerolog.Logger) {
	if l == nil {
		defaultLogger.Store(nil)
		return
	}
	tagged := l.With().Str("component", "cache").Logger()
	defaultLogger.Store(&tagged)
}

func logger() zerolog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return *l
	}
	return zerolog.Nop()
}
