package cache

import (
	"context"
	"fmt"
	"time"
)

// New creates a new Cache based on the configuration.
// It returns an error if the configuration is invalid or if the cache
// backend fails to initialize. The context is accepted for API consistency;
// every backend is process-local.
//
// Example:
//
//	c, err := cache.New(ctx, &cache.Config{Mode: cache.ModeSimple})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
func New(_ context.Context, cfg *Config, opts ...Option) (Cache, error) {
	o := buildOptions(opts)
	log := o.log("factory")
	start := time.Now()
	mode := cfg.GetMode()

	if err := cfg.Validate(); err != nil {
		log.Debug().Err(err).Str("mode", string(mode)).Msg("cache factory: validation failed")
		return nil, err
	}

	log.Info().
		Str("mode", string(mode)).
		Msg("cache factory: initializing backend")

	var cache Cache
	var err error

	switch mode {
	case ModeSimple:
		cache, err = newRistrettoCache(cfg, o)
	case ModeTiered:
		cache, err = newTieredCache(cfg, o)
	case ModeDisabled:
		cache = newNoopCache(o)
	default:
		return nil, fmt.Errorf("cache: unknown mode %q", mode)
	}

	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("cache factory: backend initialization failed")
		return nil, err
	}

	log.Info().
		Str("mode", string(mode)).
		Dur("init_time", time.Since(start)).
		Msg("cache factory: backend initialized")

	return cache, nil
}
