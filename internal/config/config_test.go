package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Game.StartCountdown)
	assert.Equal(t, 60*time.Second, cfg.Game.TurnDuration)
	assert.Equal(t, 40*time.Second, cfg.Game.ChallengeDuration)
	assert.Equal(t, 30*time.Second, cfg.Game.NightDuration)
	assert.Equal(t, 45*time.Second, cfg.Game.VotingDuration)
	assert.Equal(t, 30*time.Minute, cfg.Game.RoomTTL)
	assert.Equal(t, 5*time.Minute, cfg.Game.ReapInterval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("GAME_NIGHT_DURATION", "12s")
	t.Setenv("GAME_ROOM_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, 12*time.Second, cfg.Game.NightDuration)
	assert.Equal(t, time.Hour, cfg.Game.RoomTTL)
}
