package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
	"github.com/raminperspolisi/MafiaVERSE-backend/internal/config"
)

// recorder captures published events so tests can assert on what a client
// would have seen.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	RoomID   string
	PlayerID string // empty for broadcasts
	Msg      internal.Message[any]
}

func (r *recorder) BroadcastToRoom(roomID string, msg internal.Message[any]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{RoomID: roomID, Msg: msg})
}

func (r *recorder) SendToPlayer(roomID, playerID string, msg internal.Message[any]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{RoomID: roomID, PlayerID: playerID, Msg: msg})
}

func (r *recorder) byType(eventType string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, ev := range r.events {
		if ev.Msg.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type archiveRecorder struct {
	mu      sync.Mutex
	records []GameRecord
}

func (a *archiveRecorder) ArchiveGame(_ context.Context, rec GameRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *archiveRecorder) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// testConfig keeps timers short enough for tests but long enough that a
// phase does not expire mid-assertion.
func testConfig() config.Game {
	return config.Game{
		StartCountdown:    20 * time.Millisecond,
		TurnDuration:      time.Minute,
		ChallengeDuration: time.Minute,
		NightDuration:     time.Minute,
		VotingDuration:    time.Minute,
		RoomTTL:           30 * time.Minute,
		ReapInterval:      5 * time.Minute,
		CommandRate:       100,
		CommandBurst:      100,
	}
}

func newTestRegistry(t *testing.T) (*Registry, *recorder, *archiveRecorder) {
	t.Helper()
	rec := &recorder{}
	arch := &archiveRecorder{}
	reg := NewRegistry(testConfig(), zerolog.Nop(), rec, arch)
	return reg, rec, arch
}

// makeLobby creates a room and joins n players named p0..p(n-1). p0 is the
// owner.
func makeLobby(t *testing.T, reg *Registry, n int, settings internal.RoomSettings) (roomID string, ids []string) {
	t.Helper()
	info, err := reg.CreateRoom(settings)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		_, err := reg.JoinRoom(info.Id, id, "user-"+id, settings.Password)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return info.Id, ids
}

// startPlaying readies everyone, starts the game and waits for the
// introduction phase to open.
func startPlaying(t *testing.T, reg *Registry, roomID string, ids []string) *internal.Room {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, reg.ToggleReady(roomID, id))
	}
	require.NoError(t, reg.StartGame(roomID, ids[0]))

	room, err := reg.Room(roomID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		room.Mu.RLock()
		defer room.Mu.RUnlock()
		return room.Status == internal.StatusPlaying && room.Phase == internal.PhaseIntroduction
	}, 2*time.Second, 5*time.Millisecond, "game did not reach the introduction phase")
	return room
}

// snapshotPhase reads status/phase/day under the room lock.
func snapshotPhase(room *internal.Room) (internal.GameStatus, internal.GamePhase, int) {
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	return room.Status, room.Phase, room.Day
}
