package game

import (
	"fmt"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

// channelForRole maps a living player's role to the night channel they are
// allowed to act on. Roles with no night power map to nothing.
func channelForRole(role internal.Role) (internal.NightChannel, bool) {
	switch role {
	case internal.RoleMafia, internal.RoleGodfather, internal.RoleNatasha:
		return internal.ChannelKill, true
	case internal.RoleDoctor, internal.RoleBodyguard:
		return internal.ChannelProtect, true
	case internal.RoleDetective:
		return internal.ChannelInvestigate, true
	default:
		return "", false
	}
}

// NightOutcome is the result of resolving one night's submissions.
type NightOutcome struct {
	EliminatedID string
	Saved        bool
}

// ResolveNight applies the per-channel submissions: the kill lands unless
// the protection covered the same target.
func ResolveNight(actions map[internal.NightChannel]internal.NightAction) NightOutcome {
	kill, hasKill := actions[internal.ChannelKill]
	if !hasKill || kill.TargetID == "" {
		return NightOutcome{}
	}
	if protect, ok := actions[internal.ChannelProtect]; ok && protect.TargetID == kill.TargetID {
		return NightOutcome{Saved: true}
	}
	return NightOutcome{EliminatedID: kill.TargetID}
}

// SubmitNightAction records an actor's choice on their role channel. A later
// submission on the same channel replaces the earlier one; the last word
// before the night timer expires wins.
func (reg *Registry) SubmitNightAction(roomID, actorID string, channel internal.NightChannel, targetID string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if room.Status != internal.StatusPlaying || room.Phase != internal.PhaseNight {
		room.Mu.Unlock()
		return fmt.Errorf("%w: night actions are closed", internal.ErrStateConflict)
	}
	actor := room.Member(actorID)
	if actor == nil {
		room.Mu.Unlock()
		return fmt.Errorf("%w: player %s", internal.ErrNotFound, actorID)
	}
	if !actor.IsAlive {
		room.Mu.Unlock()
		return fmt.Errorf("%w: eliminated players cannot act", internal.ErrAuthorization)
	}
	allowed, ok := channelForRole(actor.Role)
	if !ok || allowed != channel {
		room.Mu.Unlock()
		return fmt.Errorf("%w: role cannot act on the %s channel", internal.ErrAuthorization, channel)
	}
	target := room.Member(targetID)
	if target == nil || !target.IsAlive {
		room.Mu.Unlock()
		return fmt.Errorf("%w: target must be a living player", internal.ErrValidation)
	}
	if channel == internal.ChannelKill && targetID == actorID {
		room.Mu.Unlock()
		return fmt.Errorf("%w: cannot target yourself on the kill channel", internal.ErrValidation)
	}

	room.NightActions[channel] = internal.NightAction{ActorID: actorID, TargetID: targetID}

	events := []outEvent{
		private(actorID, internal.EventNightActionAck, map[string]any{
			"channel":   channel,
			"target_id": targetID,
		}),
	}
	if channel == internal.ChannelInvestigate {
		// The godfather reads as innocent.
		isMafia := target.Role.Faction() == internal.FactionMafia && target.Role != internal.RoleGodfather
		events = append(events, private(actorID, internal.EventInvestigationResult, internal.InvestigationResultData{
			Day:            room.Day,
			TargetID:       target.Id,
			TargetUsername: target.Username,
			IsMafia:        isMafia,
		}))
	}
	room.Mu.Unlock()

	reg.publish(roomID, events)
	return nil
}
