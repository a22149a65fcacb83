package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateQueue(t *testing.T) {
	room := &Room{SpeakingQueue: []string{"a", "b", "c"}, CurrentSpeakerID: "a"}

	require.Equal(t, "b", room.RotateQueue())
	assert.Equal(t, []string{"b", "c", "a"}, room.SpeakingQueue)

	require.Equal(t, "c", room.RotateQueue())
	require.Equal(t, "a", room.RotateQueue())
	require.Equal(t, "b", room.RotateQueue())
	assert.Equal(t, []string{"b", "c", "a"}, room.SpeakingQueue)
}

func TestRotateQueueEmpty(t *testing.T) {
	room := &Room{CurrentSpeakerID: "ghost"}
	assert.Equal(t, "", room.RotateQueue())
	assert.Empty(t, room.SpeakingQueue)
}

func TestRemoveFromQueue(t *testing.T) {
	t.Run("removes current speaker and promotes next", func(t *testing.T) {
		room := &Room{SpeakingQueue: []string{"a", "b", "c"}, CurrentSpeakerID: "a"}
		room.RemoveFromQueue("a")
		assert.Equal(t, []string{"b", "c"}, room.SpeakingQueue)
		assert.Equal(t, "b", room.CurrentSpeakerID)
	})

	t.Run("removes non-speaker without changing the floor", func(t *testing.T) {
		room := &Room{SpeakingQueue: []string{"a", "b", "c"}, CurrentSpeakerID: "a"}
		room.RemoveFromQueue("c")
		assert.Equal(t, []string{"a", "b"}, room.SpeakingQueue)
		assert.Equal(t, "a", room.CurrentSpeakerID)
	})

	t.Run("last member leaves the floor empty", func(t *testing.T) {
		room := &Room{SpeakingQueue: []string{"a"}, CurrentSpeakerID: "a"}
		room.RemoveFromQueue("a")
		assert.Empty(t, room.SpeakingQueue)
		assert.Equal(t, "", room.CurrentSpeakerID)
	})
}

func TestApplyReactionMutualExclusion(t *testing.T) {
	room := &Room{}

	likes, dislikes := room.ApplyReaction(1, "target", "rater", ReactionLike)
	assert.Equal(t, 1, likes)
	assert.Equal(t, 0, dislikes)

	// Switching sides moves the rater, never double-counts.
	likes, dislikes = room.ApplyReaction(1, "target", "rater", ReactionDislike)
	assert.Equal(t, 0, likes)
	assert.Equal(t, 1, dislikes)

	likes, dislikes = room.ApplyReaction(1, "target", "other", ReactionDislike)
	assert.Equal(t, 0, likes)
	assert.Equal(t, 2, dislikes)
}

func TestApplyReactionScopedByDay(t *testing.T) {
	room := &Room{}
	room.ApplyReaction(1, "target", "rater", ReactionLike)
	room.ApplyReaction(2, "target", "rater", ReactionDislike)

	likes, dislikes := room.ReactionCounts(1, "target")
	assert.Equal(t, 1, likes)
	assert.Equal(t, 0, dislikes)

	likes, dislikes = room.ReactionCounts(2, "target")
	assert.Equal(t, 0, likes)
	assert.Equal(t, 1, dislikes)
}

func TestGameTimerRemaining(t *testing.T) {
	var timer *GameTimer
	assert.Equal(t, time.Duration(0), timer.Remaining())

	timer = &GameTimer{StartTime: time.Now().Add(-2 * time.Minute), Duration: time.Minute, Active: true}
	assert.Equal(t, time.Duration(0), timer.Remaining())

	timer = &GameTimer{StartTime: time.Now(), Duration: time.Minute, Active: true}
	assert.Greater(t, timer.Remaining(), 50*time.Second)

	timer.Active = false
	assert.Equal(t, time.Duration(0), timer.Remaining())
}

func TestPublicInfoHidesSecrets(t *testing.T) {
	room := &Room{
		Id:       "r1",
		Settings: RoomSettings{Name: "test", MaxPlayers: 8, IsPrivate: true, Password: "hunter2"},
		Status:   StatusPlaying,
		Phase:    PhaseDay,
		Day:      2,
		Roster: []*Player{
			{Id: "p1", Username: "alice", Role: RoleMafia, IsAlive: true},
		},
		Challenge: ChallengeState{
			Requests:       []ChallengeRequest{{UserID: "p2", Username: "bob"}},
			ApprovedUserID: "p2",
		},
	}

	info := room.PublicInfo()
	assert.True(t, info.HasApprovedChallenge)
	assert.False(t, info.ChallengeActive)
	assert.Equal(t, 1, info.CurrentPlayersCount)

	full := room.FullInfo()
	require.Len(t, full.Players, 1)
	// Roles never appear in roster snapshots.
	assert.Equal(t, "alice", full.Players[0].Username)
}

func TestRoleFaction(t *testing.T) {
	mafiaRoles := []Role{RoleMafia, RoleGodfather, RoleNatasha}
	for _, r := range mafiaRoles {
		assert.Equal(t, FactionMafia, r.Faction(), "role %s", r)
	}
	townRoles := []Role{RoleDoctor, RoleDetective, RoleSniper, RoleBodyguard, RoleMayor, RolePriest, RoleCitizen}
	for _, r := range townRoles {
		assert.Equal(t, FactionTown, r.Faction(), "role %s", r)
	}
}
