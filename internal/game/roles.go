package game

import (
	"fmt"
	"math/rand"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

// classicTenRoles is the fixed list used for the ten-player scenario:
// three mafia-aligned roles against seven town roles.
var classicTenRoles = []internal.Role{
	internal.RoleGodfather,
	internal.RoleNatasha,
	internal.RoleMafia,
	internal.RoleDoctor,
	internal.RoleDetective,
	internal.RoleSniper,
	internal.RoleBodyguard,
	internal.RoleMayor,
	internal.RolePriest,
	internal.RoleCitizen,
}

var roleDescriptions = map[internal.Role]string{
	internal.RoleMafia:     "You are mafia. Eliminate the town before they find you.",
	internal.RoleGodfather: "You lead the mafia. You pick the night kill and read as innocent.",
	internal.RoleNatasha:   "You are mafia. Each night you can silence one player for the next day.",
	internal.RoleDoctor:    "You are the doctor. Each night you may protect one player from the kill.",
	internal.RoleDetective: "You are the detective. Each night you may investigate one player's alignment.",
	internal.RoleSniper:    "You are the sniper. You hold a limited number of night shots.",
	internal.RoleBodyguard: "You are the bodyguard. You may shield one player, taking the hit yourself.",
	internal.RoleMayor:     "You are the mayor. Your vote carries the weight of your office.",
	internal.RolePriest:    "You are the priest. Once per game you may redeem an eliminated townsperson.",
	internal.RoleCitizen:   "You are a citizen. Find the mafia and vote them out.",
}

// RoleDescription returns the private blurb sent alongside an assignment.
func RoleDescription(role internal.Role) string {
	return roleDescriptions[role]
}

// ProportionalRoles builds the default role multiset for n players:
// floor(n/3) mafia, then doctor and detective as capacity allows, citizens
// for the rest.
func ProportionalRoles(n int) []internal.Role {
	roles := []internal.Role{internal.RoleCitizen}
	for i := 0; i < n/3; i++ {
		roles = append(roles, internal.RoleMafia)
	}
	for _, special := range []internal.Role{internal.RoleDoctor, internal.RoleDetective} {
		if len(roles) < n {
			roles = append(roles, special)
		}
	}
	for len(roles) < n {
		roles = append(roles, internal.RoleCitizen)
	}
	return roles[:n]
}

// RolesFromSettings builds the role multiset from an explicit per-role slot
// table. The table must account for every seat exactly.
func RolesFromSettings(s internal.RoleSettings, n int) ([]internal.Role, error) {
	if s.Total() != n {
		return nil, fmt.Errorf("%w: role table covers %d seats, roster has %d",
			internal.ErrValidation, s.Total(), n)
	}
	roles := make([]internal.Role, 0, n)
	add := func(role internal.Role, count int) {
		for i := 0; i < count; i++ {
			roles = append(roles, role)
		}
	}
	add(internal.RoleMafia, s.MafiaCount)
	add(internal.RoleDoctor, s.DoctorCount)
	add(internal.RoleDetective, s.DetectiveCount)
	add(internal.RoleSniper, s.SniperCount)
	add(internal.RoleBodyguard, s.BodyguardCount)
	add(internal.RoleCitizen, s.CitizenCount)
	return roles, nil
}

// RolesForRoom picks the multiset source: the classic ten-role scenario when
// requested, an explicit slot table when configured, the proportional table
// otherwise.
func RolesForRoom(settings internal.RoleSettings, n int) ([]internal.Role, error) {
	switch {
	case settings.ClassicTen:
		if n != internal.ClassicScenarioSize {
			return nil, fmt.Errorf("%w: classic scenario needs exactly %d players, have %d",
				internal.ErrValidation, internal.ClassicScenarioSize, n)
		}
		return append([]internal.Role(nil), classicTenRoles...), nil
	case !settings.IsZero():
		return RolesFromSettings(settings, n)
	default:
		return ProportionalRoles(n), nil
	}
}

// AssignRoles shuffles the multiset and deals one role per player, in place.
func AssignRoles(players []*internal.Player, roles []internal.Role) error {
	if len(roles) != len(players) {
		return fmt.Errorf("%w: %d roles for %d players",
			internal.ErrInvariantViolation, len(roles), len(players))
	}
	shuffled := append([]internal.Role(nil), roles...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for i, p := range players {
		p.Role = shuffled[i]
	}
	return nil
}
