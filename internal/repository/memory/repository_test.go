package memory

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(5*time.Minute, clock)

	c.Set("league_1", "value")

	v, ok := c.Get("league_1")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	clock.Advance(4*time.Minute + 59*time.Second)
	_, ok = c.Get("league_1")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("league_1")
	assert.False(t, ok)
}

func TestCache_SetRefreshesTimestamp(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(time.Minute, clock)

	c.Set("k", 1)
	clock.Advance(50 * time.Second)
	c.Set("k", 2)
	clock.Advance(50 * time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCache_ClearPrune(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(time.Minute, clock)

	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 2, c.Len())

	clock.Advance(2 * time.Minute)
	c.Set("c", 3)
	assert.Equal(t, 2, c.Prune())
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestNewCache_DefaultTTL(t *testing.T) {
	c := NewCache(0, nil)
	assert.Equal(t, DefaultTTL, c.TTL)
}
