package livedata

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/samber/ro"

	"github.com/blaze-intelligence/livedata/internal/cache"
	"github.com/blaze-intelligence/livedata/internal/fetch"
	reactive "github.com/blaze-intelligence/livedata/internal/ro"
)

// Target names one payload to prefetch.
type Target struct {
	Domain string `json:"domain"`
	ID     string `json:"id"`
}

func (t Target) String() string {
	return fetch.NewKey(t.Domain, t.ID).String()
}

// PrefetchReport summarises a Prefetch run.
type PrefetchReport struct {
	Errors    map[string]string `json:"errors,omitempty"`
	Requested int               `json:"requested"`
	Fetched   int               `json:"fetched"`
	Cached    int               `json:"cached"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
}

type prefetchOutcome struct {
	err    error
	target Target
	cached bool
}

// Prefetch warms the cache for targets with low priority. Each domain admits
// at most PrefetchPerSecond targets per second. Targets over the limit,
// repeated targets and targets whose domain circuit is open are counted as
// Skipped.
func (c *Client) Prefetch(ctx context.Context, targets []Target) (PrefetchReport, error) {
	report := PrefetchReport{Requested: len(targets)}
	unique := lo.Uniq(targets)

	domains := lo.Uniq(lo.Map(unique, func(t Target, _ int) string { return t.Domain }))
	healthy := lo.Associate(domains, func(d string) (string, func() bool) {
		return d, c.tracker.IsHealthyFunc(d)
	})

	pipeline := ro.Pipe3(
		ro.FromSlice(unique),
		ro.Filter(func(t Target) bool {
			if healthy[t.Domain]() {
				return true
			}
			c.log.Debug().Str("target", t.String()).Msg("prefetch skipped: circuit open")
			return false
		}),
		reactive.NewLimitOperator(int64(c.cfg.GetPrefetchPerSecond()), time.Second, func(t Target) string {
			return t.Domain
		}),
		ro.Map(func(t Target) prefetchOutcome {
			res, err := c.Get(ctx, t.Domain, t.ID, fetch.WithPriority(cache.PriorityLow))
			return prefetchOutcome{target: t, err: err, cached: err == nil && res.FromCache}
		}),
	)

	outcomes, _, err := ro.CollectWithContext(ctx, pipeline)
	if err != nil {
		return report, fmt.Errorf("livedata: prefetch: %w", err)
	}

	report.Skipped = len(targets) - len(outcomes)
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			report.Failed++
			if report.Errors == nil {
				report.Errors = make(map[string]string)
			}
			report.Errors[o.target.String()] = o.err.Error()
		case o.cached:
			report.Cached++
		default:
			report.Fetched++
		}
	}

	c.log.Info().
		Int("requested", report.Requested).
		Int("fetched", report.Fetched).
		Int("cached", report.Cached).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("prefetch completed")

	return report, nil
}
