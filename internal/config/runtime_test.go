package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntime_GetStore(t *testing.T) {
	t.Parallel()

	cfg1 := MakeTestConfig()
	cfg1.Fetch.MaxAttempts = 3

	runtime := NewRuntime(cfg1)

	retrieved := runtime.Get()
	assert.Same(t, cfg1, retrieved, "Initial config should be retrievable")
	assert.Equal(t, 3, retrieved.Fetch.MaxAttempts)

	cfg2 := MakeTestConfig()
	cfg2.Fetch.MaxAttempts = 5
	runtime.Store(cfg2)

	retrieved2 := runtime.Get()
	assert.Same(t, cfg2, retrieved2, "New config should be retrievable")
	assert.Equal(t, 5, retrieved2.Fetch.MaxAttempts)

	// Holders of the old pointer keep their snapshot.
	assert.Equal(t, 3, retrieved.Fetch.MaxAttempts)
}

func TestRuntime_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	runtime := NewRuntime(MakeTestConfig())

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = runtime.Get()
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			cfg := MakeTestConfig()
			cfg.Fetch.MaxAttempts = i + 1
			runtime.Store(cfg)
		}
	}()

	wg.Wait()

	assert.Equal(t, 100, runtime.Get().Fetch.MaxAttempts)
}

func TestRuntime_ImplementsRuntimeConfig(t *testing.T) {
	t.Parallel()

	var rc RuntimeConfig = NewRuntime(MakeTestConfig())
	assert.NotNil(t, rc.Get())
}
