package middleware

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow(42)
		require.True(t, ok, "запрос %d должен пройти", i+1)
	}

	ok, retryAfter := rl.Allow(42)
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)
}

func TestRateLimiterPerUser(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()

	ok, _ := rl.Allow(1)
	require.True(t, ok)
	ok, _ = rl.Allow(1)
	require.False(t, ok)

	// Лимит другого игрока не тронут
	ok, _ = rl.Allow(2)
	assert.True(t, ok)
}

func TestTrimOld(t *testing.T) {
	now := time.Now()
	times := []time.Time{
		now.Add(-3 * time.Minute),
		now.Add(-2 * time.Minute),
		now.Add(-30 * time.Second),
	}

	recent := trimOld(times, now.Add(-time.Minute))
	require.Len(t, recent, 1)
	assert.Equal(t, times[2], recent[0])

	assert.Nil(t, trimOld(times, now))
}

func TestPreviewTextCyrillic(t *testing.T) {
	short := "!собрать 8"
	assert.Equal(t, short, previewText(short))

	long := strings.Repeat("ш", 80)
	got := previewText(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ш", 50)+"...", got)
}
