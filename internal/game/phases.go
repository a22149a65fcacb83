package game

import (
	"context"
	"time"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

// All *Locked functions below run with room.Mu held and return the events to
// publish once it is released. Phase transitions are only ever driven from
// here, either by a timer expiry or by an operation completing a phase early.

func phaseChanged(room *internal.Room) outEvent {
	return broadcast(internal.EventPhaseChanged, internal.PhaseChangedData{
		Status: room.Status,
		Phase:  room.Phase,
		Day:    room.Day,
	})
}

// beginIntroductionLocked opens the one-time introduction round. Every
// living player gets a bounded turn before the first night.
func (reg *Registry) beginIntroductionLocked(room *internal.Room) []outEvent {
	room.Status = internal.StatusPlaying
	room.Phase = internal.PhaseIntroduction
	events := []outEvent{phaseChanged(room)}
	return append(events, reg.openSpeakingRoundLocked(room)...)
}

// beginNightLocked opens a night phase and arms its timer.
func (reg *Registry) beginNightLocked(room *internal.Room, day int) []outEvent {
	room.Phase = internal.PhaseNight
	room.Day = day
	room.NightActions = make(map[internal.NightChannel]internal.NightAction)
	reg.clearSpeakingLocked(room)

	reg.armTimer(room, reg.cfg.NightDuration, reg.resolveNightLocked)
	return []outEvent{phaseChanged(room)}
}

// resolveNightLocked applies the night submissions, announces the outcome
// and either finishes the game or opens the day.
func (reg *Registry) resolveNightLocked(room *internal.Room) []outEvent {
	outcome := ResolveNight(room.NightActions)

	data := internal.NightResolvedData{Day: room.Day, Saved: outcome.Saved}
	if outcome.EliminatedID != "" {
		if victim := room.Member(outcome.EliminatedID); victim != nil && victim.IsAlive {
			victim.IsAlive = false
			snap := victim.Snapshot()
			data.Eliminated = &snap
		}
	}
	events := []outEvent{broadcast(internal.EventNightResolved, data)}

	if winner := EvaluateWin(room.Roster); winner != internal.WinnerNone {
		return append(events, reg.finishGameLocked(room, winner, "")...)
	}
	return append(events, reg.beginDayLocked(room)...)
}

// beginDayLocked opens the day discussion round over the living players.
func (reg *Registry) beginDayLocked(room *internal.Room) []outEvent {
	room.Phase = internal.PhaseDay
	events := []outEvent{phaseChanged(room)}
	return append(events, reg.openSpeakingRoundLocked(room)...)
}

// beginVotingLocked opens the ballot box and arms the voting timer.
func (reg *Registry) beginVotingLocked(room *internal.Room) []outEvent {
	room.Phase = internal.PhaseVoting
	room.Votes = make(map[string]string)
	reg.clearSpeakingLocked(room)

	reg.armTimer(room, reg.cfg.VotingDuration, reg.resolveVotingLocked)
	return []outEvent{phaseChanged(room)}
}

// resolveVotingLocked tallies the ballots, applies an elimination on a
// strict plurality and moves to the next night unless the game is over.
func (reg *Registry) resolveVotingLocked(room *internal.Room) []outEvent {
	// Ballots from voters who died or left since casting do not count.
	ballots := make(map[string]string, len(room.Votes))
	for voter, target := range room.Votes {
		if p := room.Member(voter); p != nil && p.IsAlive {
			ballots[voter] = target
		}
	}
	counts, eliminatedID, tie := TallyVotes(ballots)

	data := internal.VoteTalliedData{Day: room.Day, Counts: counts, Tie: tie}
	if eliminatedID != "" {
		if victim := room.Member(eliminatedID); victim != nil && victim.IsAlive {
			victim.IsAlive = false
			snap := victim.Snapshot()
			data.Eliminated = &snap
		}
	}
	events := []outEvent{broadcast(internal.EventVoteTallied, data)}

	if winner := EvaluateWin(room.Roster); winner != internal.WinnerNone {
		return append(events, reg.finishGameLocked(room, winner, "")...)
	}
	return append(events, reg.beginNightLocked(room, room.Day+1)...)
}

// finishGameLocked ends the game, reveals every role and hands the record to
// the archiver off the critical section.
func (reg *Registry) finishGameLocked(room *internal.Room, winner internal.Winner, reason string) []outEvent {
	reg.cancelTimer(room)
	reg.clearSpeakingLocked(room)
	room.Status = internal.StatusFinished
	room.Winner = winner
	room.FinishedAt = time.Now()

	reveals := make([]internal.PlayerReveal, 0, len(room.Roster))
	for _, p := range room.Roster {
		reveals = append(reveals, p.Reveal())
	}

	if reg.archive != nil {
		rec := GameRecord{
			RoomID:     room.Id,
			RoomName:   room.Settings.Name,
			Winner:     winner,
			Days:       room.Day,
			FinishedAt: room.FinishedAt,
			Players:    reveals,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := reg.archive.ArchiveGame(ctx, rec); err != nil {
				reg.log.Error().Err(err).Str("room", rec.RoomID).Msg("archive game")
			}
		}()
	}

	reg.log.Info().
		Str("room", room.Id).
		Str("winner", string(winner)).
		Int("days", room.Day).
		Msg("game finished")

	return []outEvent{broadcast(internal.EventGameEnded, internal.GameEndedData{
		Winner:  winner,
		Day:     room.Day,
		Players: reveals,
		Reason:  reason,
	})}
}

// markErroredLocked force-finishes a room that tripped an internal
// invariant. The failure stays contained to this room.
func (reg *Registry) markErroredLocked(room *internal.Room, err error) []outEvent {
	reg.log.Error().Err(err).Str("room", room.Id).Msg("room invariant violated")
	room.Errored = true
	return reg.finishGameLocked(room, internal.WinnerNone, "internal error")
}

// handleDepartureInGame adjusts live-game state after a roster removal.
// Caller holds room.Mu; the player is already off the roster.
func (reg *Registry) handleDepartureInGame(room *internal.Room, playerID string) []outEvent {
	var events []outEvent

	switch room.Phase {
	case internal.PhaseIntroduction, internal.PhaseDay:
		events = append(events, reg.dropFromSpeakingLocked(room, playerID)...)
	case internal.PhaseVoting:
		delete(room.Votes, playerID)
	case internal.PhaseNight:
		for ch, action := range room.NightActions {
			if action.ActorID == playerID {
				delete(room.NightActions, ch)
			}
		}
	}

	if winner := EvaluateWin(room.Roster); winner != internal.WinnerNone {
		events = append(events, reg.finishGameLocked(room, winner, "player departure decided the game")...)
	}
	return events
}
