package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		BotMaxInflight:           64,
		BotUpdateTimeoutSeconds:  60,
		DBMaxConns:               25,
		DBMinConns:               5,
		BaseRewardRate:           0.5,
		MinCollectionPeriodHours: 3,
		CollectionIntervalHours:  8,
		MaxCollectionPeriodHours: 24,
		CycleDurationHours:       24,
		StreakGraceHours:         24,
		StreakCooldownHours:      24,
		ReferrerBonusAmount:      500,
		ReferredBonusAmount:      250,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	c := validConfig()
	c.MinCollectionPeriodHours = 30
	assert.Error(t, c.Validate())

	c = validConfig()
	c.CollectionIntervalHours = 1
	assert.Error(t, c.Validate())

	c = validConfig()
	c.CycleDurationHours = 0
	assert.Error(t, c.Validate())

	c = validConfig()
	c.DBMinConns = 30
	assert.Error(t, c.Validate())
}

func TestDurationHelpers(t *testing.T) {
	c := validConfig()
	assert.Equal(t, 24*time.Hour, c.StreakCooldown())
	assert.Equal(t, 24*time.Hour, c.StreakGrace())
	assert.True(t, c.BaseRate().Equal(c.BaseRate()))
	assert.Equal(t, "0.5", c.BaseRate().String())
}

func TestParseInt64CSV(t *testing.T) {
	ids, err := parseInt64CSV("123, 456,789")
	require.NoError(t, err)
	assert.Equal(t, []int64{123, 456, 789}, ids)

	ids, err = parseInt64CSV("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseInt64CSV("12,abc")
	assert.Error(t, err)
}
