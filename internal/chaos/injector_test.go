package chaos

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig.Validate())
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{MinDelay: time.Second, MaxDelay: time.Millisecond}.Validate())
	assert.Error(t, Config{MinDelay: -time.Millisecond}.Validate())
	assert.Error(t, Config{ErrorRate: 1.01}.Validate())
	assert.Error(t, Config{ErrorRate: -0.5}.Validate())

	_, err := NewInjector(Config{ErrorRate: 2})
	assert.Error(t, err)
}

func TestDelayWithinBounds(t *testing.T) {
	inj, err := NewInjector(DefaultConfig, WithSource(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	for range 1000 {
		d := inj.Delay()
		assert.GreaterOrEqual(t, d, 200*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}

func TestDelayFixedWhenBoundsEqual(t *testing.T) {
	inj, err := NewInjector(Config{MinDelay: 5 * time.Millisecond, MaxDelay: 5 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, inj.Delay())
}

func TestShouldFailRate(t *testing.T) {
	inj, err := NewInjector(Config{ErrorRate: 0.10}, WithSource(rand.NewPCG(42, 7)))
	require.NoError(t, err)

	const n = 20000
	failures := 0
	for range n {
		if inj.ShouldFail() {
			failures++
		}
	}
	rate := float64(failures) / n
	assert.InDelta(t, 0.10, rate, 0.015)
}

func TestShouldFailExtremes(t *testing.T) {
	never, err := NewInjector(Config{ErrorRate: 0})
	require.NoError(t, err)
	always, err := NewInjector(Config{ErrorRate: 1})
	require.NoError(t, err)

	for range 100 {
		assert.False(t, never.ShouldFail())
		assert.True(t, always.ShouldFail())
	}
}

func TestSleepObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}
