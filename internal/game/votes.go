package game

import (
	"fmt"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

// TallyVotes counts ballots per target. A strict plurality eliminates its
// target; any tie for the lead eliminates nobody.
func TallyVotes(votes map[string]string) (counts map[string]int, eliminatedID string, tie bool) {
	counts = make(map[string]int, len(votes))
	for _, target := range votes {
		counts[target]++
	}

	best := 0
	for target, n := range counts {
		switch {
		case n > best:
			best = n
			eliminatedID = target
			tie = false
		case n == best:
			tie = true
		}
	}
	if best == 0 {
		return counts, "", false
	}
	if tie {
		return counts, "", true
	}
	return counts, eliminatedID, false
}

// CastVote records or replaces the voter's ballot for the current voting
// phase. Ballots are private until the tally.
func (reg *Registry) CastVote(roomID, voterID, targetID string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if room.Status != internal.StatusPlaying || room.Phase != internal.PhaseVoting {
		room.Mu.Unlock()
		return fmt.Errorf("%w: voting is not open", internal.ErrStateConflict)
	}
	voter := room.Member(voterID)
	if voter == nil {
		room.Mu.Unlock()
		return fmt.Errorf("%w: player %s", internal.ErrNotFound, voterID)
	}
	if !voter.IsAlive {
		room.Mu.Unlock()
		return fmt.Errorf("%w: eliminated players cannot vote", internal.ErrAuthorization)
	}
	target := room.Member(targetID)
	if target == nil || !target.IsAlive {
		room.Mu.Unlock()
		return fmt.Errorf("%w: target must be a living player", internal.ErrValidation)
	}
	if voterID == targetID {
		room.Mu.Unlock()
		return fmt.Errorf("%w: cannot vote for yourself", internal.ErrValidation)
	}

	room.Votes[voterID] = targetID
	day := room.Day
	room.Mu.Unlock()

	reg.publish(roomID, []outEvent{
		private(voterID, internal.EventVoteAck, map[string]any{
			"day":       day,
			"target_id": targetID,
		}),
	})
	return nil
}
