package streak

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigafarm.ru/mining-bot/internal/common"
)

func testStreakParams() Params {
	return Params{
		Cooldown: 24 * time.Hour,
		Grace:    24 * time.Hour,
	}
}

func TestRewardSchedule(t *testing.T) {
	assert.True(t, RewardForDay(1).Equal(decimal.NewFromInt(100)))
	assert.True(t, RewardForDay(7).Equal(decimal.NewFromInt(1000)))

	// После конца расписания награда повторяется
	assert.True(t, RewardForDay(8).Equal(decimal.NewFromInt(1000)))
	assert.True(t, RewardForDay(365).Equal(decimal.NewFromInt(1000)))
}

func TestSettleClaimFirstTime(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := &State{UserID: 1}

	result, err := settleClaim(st, testStreakParams(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Day)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(100)))
	assert.False(t, result.Reset)
}

func TestSettleClaimTooEarly(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	next := now.Add(5 * time.Hour)
	st := &State{UserID: 1, CurrentStreak: 3, NextClaimAt: &next}

	_, err := settleClaim(st, testStreakParams(), now)
	var cooldown *common.CooldownError
	require.True(t, errors.As(err, &cooldown))
	assert.Equal(t, 5*time.Hour, cooldown.RetryAfter)
}

func TestSettleClaimContinuesWithinGrace(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	next := now.Add(-time.Hour)
	st := &State{UserID: 1, CurrentStreak: 3, NextClaimAt: &next}

	result, err := settleClaim(st, testStreakParams(), now)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Day)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(400)))
	assert.False(t, result.Reset)
}

func TestSettleClaimResetsAfterGrace(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	next := now.Add(-25 * time.Hour)
	st := &State{UserID: 1, CurrentStreak: 5, NextClaimAt: &next}

	result, err := settleClaim(st, testStreakParams(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Day)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.Reset)
}

func TestSettleClaimGraceBoundary(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	next := now.Add(-24 * time.Hour)
	st := &State{UserID: 1, CurrentStreak: 2, NextClaimAt: &next}

	// Ровно на границе грейса серия ещё продолжается
	result, err := settleClaim(st, testStreakParams(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Day)
	assert.False(t, result.Reset)
}
