package internal

import "time"

// Player is one roster member. The transport owns the connection; the core
// only ever sees the id.
type Player struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"-"` // empty until game start, never broadcast
	IsAlive  bool   `json:"is_alive"`
	IsReady  bool   `json:"is_ready"`

	JoinedAt time.Time `json:"joined_at"`
}

// PlayerSnapshot is the broadcast-safe view of a player.
type PlayerSnapshot struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	IsAlive  bool      `json:"is_alive"`
	IsReady  bool      `json:"is_ready"`
	JoinedAt time.Time `json:"joined_at"`
}

// PlayerReveal includes the role; used only once the game is finished.
type PlayerReveal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	IsAlive  bool   `json:"is_alive"`
}

func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:       p.Id,
		Username: p.Username,
		IsAlive:  p.IsAlive,
		IsReady:  p.IsReady,
		JoinedAt: p.JoinedAt,
	}
}

func (p *Player) Reveal() PlayerReveal {
	return PlayerReveal{
		ID:       p.Id,
		Username: p.Username,
		Role:     p.Role,
		IsAlive:  p.IsAlive,
	}
}
