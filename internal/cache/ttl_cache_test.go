package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lexorahq/lexora/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_PrefixCollision(t *testing.T) {
	long := "What is the notice period for terminating a residential lease agreement signed before 2020?"
	longer := long + " And does it differ for furnished apartments?"

	// Questions sharing the first 50 characters resolve to the same entry.
	assert.Equal(t, Key("gpt-4o-mini", long), Key("gpt-4o-mini", longer))
	assert.NotEqual(t, Key("gpt-4o-mini", long), Key("claude-3", long))
	assert.Equal(t, Key("GPT-4o-Mini", "hi"), Key("gpt-4o-mini", "hi"))
}

func TestTTLCache_Expiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache(10, time.Hour, clk)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	clk.Advance(time.Hour + time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_BoundedEviction(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache(3, time.Hour, clk)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v")
	}
	assert.Equal(t, 3, c.Len())

	// The two oldest entries were evicted.
	_, ok := c.Get("k0")
	assert.False(t, ok)
	_, ok = c.Get("k1")
	assert.False(t, ok)
	_, ok = c.Get("k4")
	assert.True(t, ok)
}

func TestTTLCache_UpdateRefreshes(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache(2, time.Hour, clk)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3") // refresh moves "a" to the back of the eviction order
	c.Set("c", "4") // evicts "b", not "a"

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", got)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewMemoryCache(10, time.Hour, clk)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "gpt-4o-mini", "what is usufruct?")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "gpt-4o-mini", "what is usufruct?", "A real right..."))

	answer, ok, err := c.Get(ctx, "gpt-4o-mini", "what is usufruct?")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A real right...", answer)
}
