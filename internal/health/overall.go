package health

import "github.com/samber/lo"

// Overall is the aggregate health verdict.
type Overall string

// Overall health values.
const (
	OverallHealthy   Overall = "healthy"
	OverallDegraded  Overall = "degraded"
	OverallUnhealthy Overall = "unhealthy"
)

// Evaluate folds individual check outcomes into an Overall verdict: all passing
// is healthy, a strict majority is degraded, anything less is unhealthy.
func Evaluate(checks ...bool) Overall {
	passed := lo.Count(checks, true)
	switch {
	case passed == len(checks):
		return OverallHealthy
	case passed*2 > len(checks):
		return OverallDegraded
	default:
		return OverallUnhealthy
	}
}
