package game

import (
	"fmt"
	"time"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

// The speaking coordinator runs the bounded-turn rounds of the introduction
// and day phases, including the challenge protocol: listeners may request a
// challenge, the current speaker may approve at most one per turn, and the
// approved challenger speaks a bonus turn before the queue rotates.

// openSpeakingRoundLocked seeds the queue with the living players in join
// order and starts the first turn. Caller holds room.Mu.
func (reg *Registry) openSpeakingRoundLocked(room *internal.Room) []outEvent {
	alive := room.AlivePlayers()
	room.SpeakingQueue = make([]string, 0, len(alive))
	for _, p := range alive {
		room.SpeakingQueue = append(room.SpeakingQueue, p.Id)
	}
	room.TurnsCompleted = make(map[string]bool)
	room.Challenge = internal.ChallengeState{}

	if len(room.SpeakingQueue) == 0 {
		room.CurrentSpeakerID = ""
		return reg.closeSpeakingRoundLocked(room)
	}
	room.CurrentSpeakerID = room.SpeakingQueue[0]
	return reg.startTurnLocked(room)
}

// clearSpeakingLocked wipes all speaking and challenge state.
func (reg *Registry) clearSpeakingLocked(room *internal.Room) {
	room.SpeakingQueue = nil
	room.CurrentSpeakerID = ""
	room.TurnsCompleted = make(map[string]bool)
	room.Challenge = internal.ChallengeState{}
}

func speakingUpdate(room *internal.Room, activeID string, challengeTurn bool, d time.Duration) outEvent {
	return broadcast(internal.EventSpeakingUpdated, internal.SpeakingUpdatedData{
		CurrentSpeakerID: room.CurrentSpeakerID,
		ActiveSpeakerID:  activeID,
		ChallengeTurn:    challengeTurn,
		SpeakingQueue:    append([]string(nil), room.SpeakingQueue...),
		TurnDurationMS:   d.Milliseconds(),
	})
}

// startTurnLocked arms the turn timer for the current queue head.
func (reg *Registry) startTurnLocked(room *internal.Room) []outEvent {
	reg.armTimer(room, reg.cfg.TurnDuration, reg.endTurnLocked)
	return []outEvent{speakingUpdate(room, room.CurrentSpeakerID, false, reg.cfg.TurnDuration)}
}

// startChallengeTurnLocked gives the approved challenger their bonus turn.
// The queue head does not change; the challenger speaks out of band.
func (reg *Registry) startChallengeTurnLocked(room *internal.Room) []outEvent {
	room.Challenge.Active = true
	reg.armTimer(room, reg.cfg.ChallengeDuration, reg.endTurnLocked)
	return []outEvent{
		speakingUpdate(room, room.Challenge.ApprovedUserID, true, reg.cfg.ChallengeDuration),
		broadcast(internal.EventChallengeUpdate, internal.ChallengeUpdateData{
			CurrentSpeakerID: room.CurrentSpeakerID,
			Challenge:        room.ChallengeSnapshot(),
		}),
	}
}

// endTurnLocked finishes the running turn, whether it timed out or the
// speaker yielded. An approved challenge runs before the queue rotates.
func (reg *Registry) endTurnLocked(room *internal.Room) []outEvent {
	if room.Status != internal.StatusPlaying {
		return nil
	}
	switch room.Phase {
	case internal.PhaseIntroduction, internal.PhaseDay:
	default:
		return nil
	}

	if room.Challenge.Active {
		// The bonus turn just ended; now the queue moves on.
		room.Challenge = internal.ChallengeState{}
		return reg.advanceQueueLocked(room)
	}

	room.TurnsCompleted[room.CurrentSpeakerID] = true

	if id := room.Challenge.ApprovedUserID; id != "" {
		if p := room.Member(id); p != nil && p.IsAlive {
			return reg.startChallengeTurnLocked(room)
		}
	}
	room.Challenge = internal.ChallengeState{}
	return reg.advanceQueueLocked(room)
}

// advanceQueueLocked rotates to the next speaker who still owes a turn, or
// closes the round when everyone has spoken.
func (reg *Registry) advanceQueueLocked(room *internal.Room) []outEvent {
	done := true
	for _, id := range room.SpeakingQueue {
		if !room.TurnsCompleted[id] {
			done = false
			break
		}
	}
	if done {
		return reg.closeSpeakingRoundLocked(room)
	}

	room.RotateQueue()
	for room.TurnsCompleted[room.CurrentSpeakerID] {
		room.RotateQueue()
	}
	return reg.startTurnLocked(room)
}

// resumeAtHeadLocked restarts the round at the current queue head without
// rotating, used after a removal already promoted the next speaker.
func (reg *Registry) resumeAtHeadLocked(room *internal.Room) []outEvent {
	done := true
	for _, id := range room.SpeakingQueue {
		if !room.TurnsCompleted[id] {
			done = false
			break
		}
	}
	if done {
		return reg.closeSpeakingRoundLocked(room)
	}
	for room.TurnsCompleted[room.CurrentSpeakerID] {
		room.RotateQueue()
	}
	return reg.startTurnLocked(room)
}

// closeSpeakingRoundLocked moves the room to the phase that follows the
// round: the first night after introductions, voting after a day.
func (reg *Registry) closeSpeakingRoundLocked(room *internal.Room) []outEvent {
	finished := room.Phase
	reg.clearSpeakingLocked(room)
	switch finished {
	case internal.PhaseIntroduction:
		return reg.beginNightLocked(room, room.Day)
	case internal.PhaseDay:
		return reg.beginVotingLocked(room)
	default:
		return reg.markErroredLocked(room,
			fmt.Errorf("%w: speaking round closed in phase %s", internal.ErrInvariantViolation, finished))
	}
}

// dropFromSpeakingLocked removes a departed or eliminated player from the
// round mid-flight.
func (reg *Registry) dropFromSpeakingLocked(room *internal.Room, playerID string) []outEvent {
	wasCurrent := room.CurrentSpeakerID == playerID
	wasActiveChallenger := room.Challenge.Active && room.Challenge.ApprovedUserID == playerID
	wasApproved := room.Challenge.ApprovedUserID == playerID

	requests := room.Challenge.Requests[:0]
	for _, req := range room.Challenge.Requests {
		if req.UserID != playerID {
			requests = append(requests, req)
		}
	}
	room.Challenge.Requests = requests

	room.RemoveFromQueue(playerID)
	delete(room.TurnsCompleted, playerID)

	if wasCurrent || wasActiveChallenger {
		room.Challenge = internal.ChallengeState{}
		return reg.resumeAtHeadLocked(room)
	}
	if wasApproved {
		// The pending bonus turn evaporates with its owner.
		room.Challenge.ApprovedUserID = ""
	}
	return []outEvent{speakingUpdate(room, reg.activeSpeakerLocked(room), room.Challenge.Active, room.Timer.Remaining())}
}

// activeSpeakerLocked is whoever holds the floor right now.
func (reg *Registry) activeSpeakerLocked(room *internal.Room) string {
	if room.Challenge.Active {
		return room.Challenge.ApprovedUserID
	}
	return room.CurrentSpeakerID
}

// EndSpeech lets the active speaker yield the rest of their turn.
func (reg *Registry) EndSpeech(roomID, playerID string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if err := checkSpeakingPhase(room); err != nil {
		room.Mu.Unlock()
		return err
	}
	if reg.activeSpeakerLocked(room) != playerID {
		room.Mu.Unlock()
		return fmt.Errorf("%w: only the active speaker can end the speech", internal.ErrAuthorization)
	}
	events := reg.endTurnLocked(room)
	room.Mu.Unlock()

	reg.publish(roomID, events)
	return nil
}

// RequestChallenge registers a listener's wish to challenge the current
// speaker. One request per player per turn.
func (reg *Registry) RequestChallenge(roomID, playerID string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if err := checkSpeakingPhase(room); err != nil {
		room.Mu.Unlock()
		return err
	}
	player := room.Member(playerID)
	if player == nil {
		room.Mu.Unlock()
		return fmt.Errorf("%w: player %s", internal.ErrNotFound, playerID)
	}
	if !player.IsAlive {
		room.Mu.Unlock()
		return fmt.Errorf("%w: eliminated players cannot challenge", internal.ErrAuthorization)
	}
	if playerID == room.CurrentSpeakerID {
		room.Mu.Unlock()
		return fmt.Errorf("%w: the current speaker cannot challenge themselves", internal.ErrValidation)
	}
	if room.Challenge.Active {
		room.Mu.Unlock()
		return fmt.Errorf("%w: a challenge turn is already running", internal.ErrStateConflict)
	}
	for _, req := range room.Challenge.Requests {
		if req.UserID == playerID {
			// Duplicate requests are a no-op.
			room.Mu.Unlock()
			return nil
		}
	}

	room.Challenge.Requests = append(room.Challenge.Requests, internal.ChallengeRequest{
		UserID:      playerID,
		Username:    player.Username,
		RequestedAt: time.Now(),
	})
	events := []outEvent{broadcast(internal.EventChallengeUpdate, internal.ChallengeUpdateData{
		CurrentSpeakerID: room.CurrentSpeakerID,
		Challenge:        room.ChallengeSnapshot(),
	})}
	room.Mu.Unlock()

	reg.publish(roomID, events)
	return nil
}

// ApproveChallenge lets the current speaker grant a pending request. Only
// one approval stands at a time; a new one replaces it.
func (reg *Registry) ApproveChallenge(roomID, approverID, requesterID string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if err := checkSpeakingPhase(room); err != nil {
		room.Mu.Unlock()
		return err
	}
	if room.CurrentSpeakerID != approverID {
		room.Mu.Unlock()
		return fmt.Errorf("%w: only the current speaker approves challenges", internal.ErrAuthorization)
	}
	if room.Challenge.Active {
		room.Mu.Unlock()
		return fmt.Errorf("%w: a challenge turn is already running", internal.ErrStateConflict)
	}

	found := false
	for i := range room.Challenge.Requests {
		switch room.Challenge.Requests[i].UserID {
		case requesterID:
			room.Challenge.Requests[i].Approved = true
			found = true
		case room.Challenge.ApprovedUserID:
			// A new approval replaces the previous one.
			room.Challenge.Requests[i].Approved = false
		}
	}
	if !found {
		room.Mu.Unlock()
		return fmt.Errorf("%w: no challenge request from %s", internal.ErrNotFound, requesterID)
	}
	room.Challenge.ApprovedUserID = requesterID

	events := []outEvent{broadcast(internal.EventChallengeUpdate, internal.ChallengeUpdateData{
		CurrentSpeakerID: room.CurrentSpeakerID,
		Challenge:        room.ChallengeSnapshot(),
	})}
	room.Mu.Unlock()

	reg.publish(roomID, events)
	return nil
}

// ForceNextSpeaker lets the owner cut the running turn short.
func (reg *Registry) ForceNextSpeaker(roomID, actorID string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if err := checkSpeakingPhase(room); err != nil {
		room.Mu.Unlock()
		return err
	}
	if room.OwnerID != actorID {
		room.Mu.Unlock()
		return fmt.Errorf("%w: only the owner can force the next speaker", internal.ErrAuthorization)
	}
	events := reg.endTurnLocked(room)
	room.Mu.Unlock()

	reg.publish(roomID, events)
	return nil
}

func checkSpeakingPhase(room *internal.Room) error {
	if room.Status != internal.StatusPlaying {
		return fmt.Errorf("%w: game is %s", internal.ErrStateConflict, room.Status)
	}
	switch room.Phase {
	case internal.PhaseIntroduction, internal.PhaseDay:
		return nil
	default:
		return fmt.Errorf("%w: no speaking round in phase %s", internal.ErrStateConflict, room.Phase)
	}
}
