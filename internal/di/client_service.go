package di

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/do/v2"

	"github.com/blaze-intelligence/livedata/internal/config"
	"github.com/blaze-intelligence/livedata/internal/livedata"
)

// ClientService owns the live data client. On config reload it builds a
// replacement client over the same cache and tracker, swaps it in and
// closes the previous one.
type ClientService struct {
	client  *livedata.Client
	cfgSvc  *ConfigService
	cache   *CacheService
	tracker *HealthTrackerService
	logger  *LoggerService
	mu      sync.RWMutex
	closed  bool
}

// NewClient creates the client from configuration and subscribes it to
// config reloads.
func NewClient(i do.Injector) (*ClientService, error) {
	svc := &ClientService{
		cfgSvc:  do.MustInvoke[*ConfigService](i),
		logger:  do.MustInvoke[*LoggerService](i),
		cache:   do.MustInvoke[*CacheService](i),
		tracker: do.MustInvoke[*HealthTrackerService](i),
	}

	if err := svc.rebuildFrom(svc.cfgSvc.Get()); err != nil {
		return nil, err
	}
	svc.cfgSvc.OnReload(svc.rebuildFrom)

	return svc, nil
}

// Client returns the current client. Callers should fetch it per operation
// rather than holding it across a reload.
func (s *ClientService) Client() *livedata.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *ClientService) rebuildFrom(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	client, err := livedata.New(context.Background(), livedata.Options{
		Cache:   s.cache.Cache,
		Tracker: s.tracker.Tracker,
		Logger:  s.logger.Logger,
		Health:  cfg.Health,
		Fetch:   cfg.Fetch,
		Config:  cfg.Client,
	})
	if err != nil {
		return fmt.Errorf("failed to create live data client: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return client.Close()
	}
	old := s.client
	s.client = client
	s.mu.Unlock()

	if old == nil {
		return nil
	}
	if err := old.Close(); err != nil {
		s.logger.Logger.Warn().Err(err).Msg("failed to close previous live data client")
	}
	s.logger.Logger.Info().Str("base_url", client.BaseURL()).Msg("live data client rebuilt")
	return nil
}

// Shutdown implements do.Shutdowner and closes the current client.
func (s *ClientService) Shutdown() error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.closed = true
	s.mu.Unlock()

	if client != nil {
		return client.Close()
	}
	return nil
}
