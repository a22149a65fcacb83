package game

import "github.com/raminperspolisi/MafiaVERSE-backend/internal"

// EvaluateWin inspects the living roster: town wins when no mafia-aligned
// player remains, mafia wins at numeric parity with town. Anything else
// keeps the game going.
func EvaluateWin(players []*internal.Player) internal.Winner {
	var mafia, town int
	for _, p := range players {
		if !p.IsAlive {
			continue
		}
		if p.Role.Faction() == internal.FactionMafia {
			mafia++
		} else {
			town++
		}
	}
	switch {
	case mafia == 0:
		return internal.WinnerTown
	case mafia >= town:
		return internal.WinnerMafia
	default:
		return internal.WinnerNone
	}
}
