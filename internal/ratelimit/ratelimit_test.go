package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetExhaustsAndResets(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	b := NewBudget("gemini", 2, 24*time.Hour)
	b.SetClock(func() time.Time { return now })

	require.NoError(t, b.Use())
	require.NoError(t, b.Use())
	assert.ErrorIs(t, b.Use(), ErrBudgetExhausted)
	assert.Equal(t, 0, b.Remaining())

	now = now.Add(25 * time.Hour)
	assert.Equal(t, 2, b.Remaining())
	assert.NoError(t, b.Use())
}

func TestBudgetUnlimited(t *testing.T) {
	b := NewBudget("gemini", 0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, b.Use())
	}
	assert.Equal(t, -1, b.Remaining())
}

func TestNilBudgetAllowsEverything(t *testing.T) {
	var b *Budget
	assert.NoError(t, b.Use())
	assert.Equal(t, -1, b.Remaining())
}
