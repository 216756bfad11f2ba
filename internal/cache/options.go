package cache

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a cache built by New.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *zerolog.Logger
}

// WithClock replaces time.Now for freshness decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger uses l instead of the logger installed by SetLogger.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) log(backend string) zerolog.Logger {
	base := logger()
	if o.logger != nil {
		base = *o.logger
	}
	return base.With().Str("backend", backend).Logger()
}
