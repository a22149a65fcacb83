package game

import (
	"fmt"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

// SendReaction records a like or dislike on a speaker for the current day.
// A rater holds at most one reaction per (day, target); sending the other
// kind moves them over. Only counts leave the room, never rater identities.
func (reg *Registry) SendReaction(roomID, raterID, targetID string, kind internal.ReactionType) error {
	if kind != internal.ReactionLike && kind != internal.ReactionDislike {
		return fmt.Errorf("%w: unknown reaction %q", internal.ErrValidation, kind)
	}
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if room.Status != internal.StatusPlaying {
		room.Mu.Unlock()
		return fmt.Errorf("%w: game is %s", internal.ErrStateConflict, room.Status)
	}
	switch room.Phase {
	case internal.PhaseIntroduction, internal.PhaseDay:
	default:
		room.Mu.Unlock()
		return fmt.Errorf("%w: reactions are open during speaking phases only", internal.ErrStateConflict)
	}
	rater := room.Member(raterID)
	if rater == nil {
		room.Mu.Unlock()
		return fmt.Errorf("%w: player %s", internal.ErrNotFound, raterID)
	}
	if !rater.IsAlive {
		room.Mu.Unlock()
		return fmt.Errorf("%w: eliminated players cannot react", internal.ErrAuthorization)
	}
	if raterID == targetID {
		room.Mu.Unlock()
		return fmt.Errorf("%w: cannot react to yourself", internal.ErrValidation)
	}
	if room.Member(targetID) == nil {
		room.Mu.Unlock()
		return fmt.Errorf("%w: player %s", internal.ErrNotFound, targetID)
	}

	likes, dislikes := room.ApplyReaction(room.Day, targetID, raterID, kind)
	events := []outEvent{broadcast(internal.EventReactionUpdate, internal.ReactionUpdateData{
		Day:      room.Day,
		TargetID: targetID,
		Likes:    likes,
		Dislikes: dislikes,
	})}
	room.Mu.Unlock()

	reg.publish(roomID, events)
	return nil
}
