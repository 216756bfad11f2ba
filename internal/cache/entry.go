package cache

import "time"

// Freshness classifies an entry at a point in time.
type Freshness int

// Freshness values.
const (
	Fresh Freshness = iota
	Stale
	Expired
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "expired"
	}
}

// Priority decides where a tiered cache places a new entry.
type Priority int

// Priority values.
const (
	PriorityNormal Priority = iota
	PriorityHigh
	PriorityLow
)

// Entry is a stored payload with its freshness windows.
// FreshUntil is StoredAt+TTL and StaleUntil is FreshUntil+stale window.
type Entry struct {
	StoredAt   time.Time
	FreshUntil time.Time
	StaleUntil time.Time
	Value      []byte
}

func newEntry(value []byte, now time.Time, ttl, staleWindow time.Duration) *Entry {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	freshUntil := now.Add(ttl)
	return &Entry{
		StoredAt:   now,
		FreshUntil: freshUntil,
		StaleUntil: freshUntil.Add(staleWindow),
		Value:      valueCopy,
	}
}

// Freshness reports whether the entry is fresh, stale or expired at now.
func (e *Entry) Freshness(now time.Time) Freshness {
	switch {
	case now.Before(e.FreshUntil):
		return Fresh
	case now.Before(e.StaleUntil):
		return Stale
	default:
		return Expired
	}
}

// NeedsRefresh reports whether at least threshold (0..1) of the entry's TTL has
// elapsed. Entries past their TTL always need a refresh.
func (e *Entry) NeedsRefresh(now time.Time, threshold float64) bool {
	ttl := e.FreshUntil.Sub(e.StoredAt)
	if ttl <= 0 {
		return true
	}
	return float64(now.Sub(e.StoredAt)) >= threshold*float64(ttl)
}

// Lookup is the result of Get or Peek.
type Lookup struct {
	StoredAt time.Time
	Source   string
	Value    []byte

	// Fresh is true while the entry is inside its TTL.
	Fresh bool

	// Stale is true when the value is past its TTL. Get only returns stale
	// values inside the stale window; Peek returns them regardless.
	Stale bool

	// NeedsRefresh asks the caller to refresh the entry in the background.
	NeedsRefresh bool
}

func (e *Entry) lookup(now time.Time, source string) *Lookup {
	valueCopy := make([]byte, len(e.Value))
	copy(valueCopy, e.Value)

	fresh := e.Freshness(now) == Fresh
	return &Lookup{
		StoredAt: e.StoredAt,
		Source:   source,
		Value:    valueCopy,
		Fresh:    fresh,
		Stale:    !fresh,
	}
}

// SetOption configures a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	ttl      time.Duration
	priority Priority
}

// WithTTL overrides the configured TTL for one entry.
func WithTTL(ttl time.Duration) SetOption {
	return func(o *setOptions) {
		o.ttl = ttl
	}
}

// WithPriority sets the placement priority for one entry.
func WithPriority(p Priority) SetOption {
	return func(o *setOptions) {
		o.priority = p
	}
}

func applySetOptions(defaultTTL time.Duration, opts []SetOption) setOptions {
	o := setOptions{ttl: defaultTTL, priority: PriorityNormal}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ttl <= 0 {
		o.ttl = defaultTTL
	}
	return o
}
