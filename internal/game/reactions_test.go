package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

func TestSendReaction(t *testing.T) {
	reg, rec, _ := newTestRegistry(t)
	roomID, ids := makeLobby(t, reg, 4, internal.RoomSettings{})
	startPlaying(t, reg, roomID, ids)
	rec.reset()

	require.NoError(t, reg.SendReaction(roomID, ids[1], ids[0], internal.ReactionLike))
	require.NoError(t, reg.SendReaction(roomID, ids[2], ids[0], internal.ReactionLike))

	updates := rec.byType(internal.EventReactionUpdate)
	require.Len(t, updates, 2)
	data := updates[1].Msg.Data.(internal.ReactionUpdateData)
	assert.Equal(t, 2, data.Likes)
	assert.Equal(t, 0, data.Dislikes)
	assert.Equal(t, ids[0], data.TargetID)

	// Switching sides moves the rater over.
	require.NoError(t, reg.SendReaction(roomID, ids[1], ids[0], internal.ReactionDislike))
	updates = rec.byType(internal.EventReactionUpdate)
	data = updates[2].Msg.Data.(internal.ReactionUpdateData)
	assert.Equal(t, 1, data.Likes)
	assert.Equal(t, 1, data.Dislikes)
}

func TestSendReactionGuards(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	roomID, ids := makeLobby(t, reg, 4, internal.RoomSettings{})

	// Lobby has no reactions.
	require.ErrorIs(t, reg.SendReaction(roomID, ids[1], ids[0], internal.ReactionLike), internal.ErrStateConflict)

	room := startPlaying(t, reg, roomID, ids)

	require.ErrorIs(t, reg.SendReaction(roomID, ids[1], ids[1], internal.ReactionLike), internal.ErrValidation)
	require.ErrorIs(t, reg.SendReaction(roomID, ids[1], ids[0], "meh"), internal.ErrValidation)
	require.ErrorIs(t, reg.SendReaction(roomID, "ghost", ids[0], internal.ReactionLike), internal.ErrNotFound)

	room.Mu.Lock()
	room.Member(ids[2]).IsAlive = false
	room.Mu.Unlock()
	require.ErrorIs(t, reg.SendReaction(roomID, ids[2], ids[0], internal.ReactionLike), internal.ErrAuthorization)
}
