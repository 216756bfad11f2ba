package di

import (
	"github.com/samber/do/v2"

	"github.com/blaze-intelligence/livedata/internal/health"
)

// HealthTrackerService wraps the circuit breaker tracker for DI. Like the
// cache it is shared across client rebuilds, so breaker state survives a
// config reload. Breaker settings take effect on restart.
type HealthTrackerService struct {
	Tracker *health.Tracker
}

// NewHealthTracker creates the tracker from configuration.
func NewHealthTracker(i do.Injector) (*HealthTrackerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)

	tracker := health.NewTracker(cfgSvc.Get().Health.CircuitBreaker, loggerSvc.Logger)
	return &HealthTrackerService{Tracker: tracker}, nil
}
