package cache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	buf, testLogger := newTestLogger(zerolog.DebugLevel)
	SetLogger(testLogger)

	if logger().GetLevel() != zerolog.DebugLevel {
		t.Error("SetLogger did not update the default logger")
	}

	c, err := New(context.Background(), &Config{Mode: ModeTiered})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()
	_ = c.Set(context.Background(), "teams-stl", []byte(`{}`))

	if !strings.Contains(buf.String(), `"component":"cache"`) {
		t.Errorf("expected component=cache in output:\n%s", buf.String())
	}

	SetLogger(nil)
	if logger().GetLevel() != zerolog.Disabled {
		t.Errorf("expected a silent logger after SetLogger(nil), got level %s", logger().GetLevel())
	}
}

func TestTieredCache_LogsPromotion(t *testing.T) {
	t.Parallel()

	buf, testLogger := newTestLogger(zerolog.DebugLevel)
	c, err := newTieredCache(&Config{PromoteAfter: 1}, options{now: newTestClock().Now, logger: testLogger})
	if err != nil {
		t.Fatalf("newTieredCache failed: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	_ = c.Set(ctx, "teams-stl", []byte(`{}`))
	_, _ = c.Get(ctx, "teams-stl")

	out := buf.String()
	for _, want := range []string{`"backend":"tiered"`, `"message":"cache set"`, `"message":"cache promote"`, `"to":"hot"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestRistrettoCache_LogsCreation(t *testing.T) {
	t.Parallel()

	buf, testLogger := newTestLogger(zerolog.InfoLevel)
	c, err := newRistrettoCache(&Config{Mode: ModeSimple}, options{now: newTestClock().Now, logger: testLogger})
	if err != nil {
		t.Fatalf("newRistrettoCache failed: %v", err)
	}
	defer c.Close()

	if !strings.Contains(buf.String(), "ristretto cache created") {
		t.Errorf("expected creation log, got:\n%s", buf.String())
	}
}

func TestRistrettoCache_LogsRejectedSetAtWarn(t *testing.T) {
	t.Parallel()

	buf, testLogger := newTestLogger(zerolog.WarnLevel)
	cfg := &Config{Mode: ModeSimple, Ristretto: RistrettoConfig{NumCounters: 1000, MaxCost: 8, BufferItems: 64}}
	c, err := newRistrettoCache(cfg, options{now: newTestClock().Now, logger: testLogger})
	if err != nil {
		t.Fatalf("newRistrettoCache failed: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "small", []byte("ok")); err != nil {
		t.Fatalf("Set(small) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no warning for an admitted write, got:\n%s", buf.String())
	}

	if err := c.Set(ctx, "large", bytes.Repeat([]byte("x"), 64)); err != nil {
		t.Fatalf("Set(large) error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"message":"cache set rejected"`, `"key":"large"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
	if _, err := c.Get(ctx, "large"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(large) error = %v, want ErrNotFound", err)
	}
}
