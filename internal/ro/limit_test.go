package ro

import (
	"testing"
	"time"

	"github.com/samber/ro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	domain string
	id     int
}

func TestLimitAdmitsUnderRate(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5}
	limited := Limit(ro.FromSlice(items), 1000, time.Second, func(int) string { return "" })

	results, err := ro.Collect(limited)
	require.NoError(t, err)
	assert.Equal(t, items, results)
}

func TestLimitDropsOverRatePerKey(t *testing.T) {
	t.Parallel()

	items := []target{
		{domain: "teams", id: 1},
		{domain: "teams", id: 2},
		{domain: "teams", id: 3},
		{domain: "games", id: 4},
		{domain: "games", id: 5},
	}
	limited := Limit(ro.FromSlice(items), 1, time.Minute, func(t target) string { return t.domain })

	results, err := ro.Collect(limited)
	require.NoError(t, err)
	assert.Equal(t, []target{{domain: "teams", id: 1}, {domain: "games", id: 4}}, results)
}

func TestNewLimitOperatorDisabled(t *testing.T) {
	t.Parallel()

	op := NewLimitOperator[int](0, time.Second, func(int) string { return "" })

	results, err := ro.Collect(ro.Pipe1(ro.FromSlice([]int{1, 2, 3}), op))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, results)
}

func TestNewLimitOperatorDefaultsInterval(t *testing.T) {
	t.Parallel()

	op := NewLimitOperator[int](2, 0, func(int) string { return "" })

	results, err := ro.Collect(ro.Pipe1(ro.FromSlice([]int{1, 2, 3}), op))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, results)
}
