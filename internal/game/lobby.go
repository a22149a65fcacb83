package game

import (
	"fmt"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

// ToggleReady flips a player's ready flag while the room is waiting.
func (reg *Registry) ToggleReady(roomID, playerID string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if room.Status != internal.StatusWaiting {
		room.Mu.Unlock()
		return fmt.Errorf("%w: game is %s", internal.ErrStateConflict, room.Status)
	}
	player := room.Member(playerID)
	if player == nil {
		room.Mu.Unlock()
		return fmt.Errorf("%w: player %s", internal.ErrNotFound, playerID)
	}
	player.IsReady = !player.IsReady

	events := []outEvent{broadcast(internal.EventLobbyUpdate, internal.LobbyUpdateData{
		PlayerID:     player.Id,
		Username:     player.Username,
		IsReady:      player.IsReady,
		ReadyCount:   room.ReadyCount(),
		TotalPlayers: len(room.Roster),
	})}
	room.Mu.Unlock()

	reg.publish(roomID, events)
	return nil
}

// StartGame begins the start countdown. Owner only; needs a roster within
// bounds with every member ready. Roles are dealt when the countdown
// expires, so late leavers never learn a role.
func (reg *Registry) StartGame(roomID, actorID string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if room.OwnerID != actorID {
		room.Mu.Unlock()
		return fmt.Errorf("%w: only the owner can start the game", internal.ErrAuthorization)
	}
	if room.Status != internal.StatusWaiting {
		room.Mu.Unlock()
		return fmt.Errorf("%w: game is %s", internal.ErrStateConflict, room.Status)
	}
	n := len(room.Roster)
	if n < room.Settings.MinPlayers || n > room.Settings.MaxPlayers {
		room.Mu.Unlock()
		return fmt.Errorf("%w: need between %d and %d players, have %d",
			internal.ErrValidation, room.Settings.MinPlayers, room.Settings.MaxPlayers, n)
	}
	if !room.AllReady() {
		room.Mu.Unlock()
		return fmt.Errorf("%w: all players must be ready", internal.ErrStateConflict)
	}
	// Validate the role table now so a bad configuration fails the start
	// call instead of erroring the room mid-countdown.
	if _, err := RolesForRoom(room.Settings.Roles, n); err != nil {
		room.Mu.Unlock()
		return err
	}

	room.Status = internal.StatusStarting
	players := make([]internal.PlayerSnapshot, 0, n)
	for _, p := range room.Roster {
		players = append(players, p.Snapshot())
	}
	events := []outEvent{broadcast(internal.EventGameStarting, internal.GameStartingData{
		CountdownSeconds: int(reg.cfg.StartCountdown.Seconds()),
		Players:          players,
	})}
	reg.armTimer(room, reg.cfg.StartCountdown, reg.launchGameLocked)
	room.Mu.Unlock()

	reg.log.Info().Str("room", roomID).Int("players", n).Msg("game starting")
	reg.publish(roomID, events)
	return nil
}

// launchGameLocked runs when the start countdown expires: deal roles,
// whisper them to their owners and open the introduction round.
func (reg *Registry) launchGameLocked(room *internal.Room) []outEvent {
	if room.Status != internal.StatusStarting {
		return nil
	}
	n := len(room.Roster)
	if n < room.Settings.MinPlayers {
		// Too many players walked out during the countdown.
		room.Status = internal.StatusWaiting
		for _, p := range room.Roster {
			p.IsReady = false
		}
		return []outEvent{phaseChanged(room)}
	}

	roles, err := RolesForRoom(room.Settings.Roles, n)
	if err != nil {
		return reg.markErroredLocked(room, err)
	}
	if err := AssignRoles(room.Roster, roles); err != nil {
		return reg.markErroredLocked(room, err)
	}

	events := make([]outEvent, 0, n+2)
	for _, p := range room.Roster {
		events = append(events, private(p.Id, internal.EventRoleAssigned, internal.RoleAssignedData{
			Role:        p.Role,
			Description: RoleDescription(p.Role),
		}))
	}
	return append(events, reg.beginIntroductionLocked(room)...)
}
