package game

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

func TestTurnTimerExpiryAdvancesSpeaker(t *testing.T) {
	cfg := testConfig()
	cfg.TurnDuration = 30 * time.Millisecond
	rec := &recorder{}
	reg := NewRegistry(cfg, zerolog.Nop(), rec, nil)

	roomID, ids := makeLobby(t, reg, 4, internal.RoomSettings{})
	room := startPlaying(t, reg, roomID, ids)

	// First turn times out on its own and the floor moves on.
	require.Eventually(t, func() bool {
		room.Mu.RLock()
		defer room.Mu.RUnlock()
		return room.CurrentSpeakerID == ids[1]
	}, 2*time.Second, 5*time.Millisecond)

	room.Mu.RLock()
	assert.True(t, room.TurnsCompleted[ids[0]])
	room.Mu.RUnlock()
}

func TestCancelledTimerDoesNotFire(t *testing.T) {
	cfg := testConfig()
	cfg.TurnDuration = 30 * time.Millisecond
	rec := &recorder{}
	reg := NewRegistry(cfg, zerolog.Nop(), rec, nil)

	roomID, ids := makeLobby(t, reg, 4, internal.RoomSettings{})
	room := startPlaying(t, reg, roomID, ids)

	fired := false
	room.Mu.Lock()
	reg.cancelTimer(room)
	reg.armTimer(room, time.Hour, func(*internal.Room) []outEvent {
		fired = true
		return nil
	})
	// Arming a replacement cancels the hour-long one.
	reg.armTimer(room, 20*time.Millisecond, func(*internal.Room) []outEvent {
		return nil
	})
	room.Mu.Unlock()

	time.Sleep(100 * time.Millisecond)
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.False(t, fired, "superseded timer must stay silent")
	assert.Nil(t, room.Timer, "expired timer cleans up after itself")
}

func TestTimerBroadcastsUpdates(t *testing.T) {
	cfg := testConfig()
	cfg.TurnDuration = 5 * time.Second
	rec := &recorder{}
	reg := NewRegistry(cfg, zerolog.Nop(), rec, nil)

	roomID, ids := makeLobby(t, reg, 4, internal.RoomSettings{})
	startPlaying(t, reg, roomID, ids)

	require.Eventually(t, func() bool {
		return len(rec.byType(internal.EventTimerUpdate)) >= 1
	}, 3*time.Second, 10*time.Millisecond)

	update := rec.byType(internal.EventTimerUpdate)[0]
	data, ok := update.Msg.Data.(internal.TimerUpdateData)
	require.True(t, ok)
	assert.True(t, data.IsActive)
	assert.LessOrEqual(t, data.TimeRemaining, (5 * time.Second).Milliseconds())
	assert.Positive(t, data.TimeRemaining)
}
