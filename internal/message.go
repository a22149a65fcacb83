package internal

import "time"

// Message is the typed event/command envelope carried over the transport.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Event types emitted by room operations. The transport broadcasts these to
// the room channel unless noted as private.
const (
	EventRosterChanged   = "roster_changed"
	EventLobbyUpdate     = "lobby_update"
	EventGameStarting    = "game_starting"
	EventPhaseChanged    = "phase_changed"
	EventSpeakingUpdated = "speaking_updated"
	EventChallengeUpdate = "challenge_update"
	EventTimerUpdate     = "timer_update"
	EventNightResolved   = "night_resolved"
	EventVoteTallied     = "vote_tallied"
	EventReactionUpdate  = "reaction_update"
	EventGameEnded       = "game_ended"
	EventRoomDeleted     = "room_deleted"

	// Private events, delivered to a single player.
	EventWelcome             = "welcome"
	EventRoleAssigned        = "role_assigned"
	EventInvestigationResult = "investigation_result"
	EventNightActionAck      = "night_action_ack"
	EventVoteAck             = "vote_ack"
)

// Command types accepted on the websocket.
const (
	CmdToggleReady      = "toggle_ready"
	CmdStartGame        = "start_game"
	CmdEndSpeech        = "end_speech"
	CmdRequestChallenge = "request_challenge"
	CmdApproveChallenge = "approve_challenge"
	CmdForceNextSpeaker = "force_next_speaker"
	CmdNightAction      = "night_action"
	CmdCastVote         = "cast_vote"
	CmdReaction         = "reaction"
	CmdLeave            = "leave"
)

type RoomPublicInfo struct {
	Id                   string     `json:"id"`
	Name                 string     `json:"name"`
	MaxPlayers           int        `json:"max_players"`
	CurrentPlayersCount  int        `json:"current_players_count"`
	Status               GameStatus `json:"status"`
	Phase                GamePhase  `json:"phase"`
	Day                  int        `json:"day"`
	CreatedAt            time.Time  `json:"created_at"`
	IsPrivate            bool       `json:"is_private"`
	OwnerID              string     `json:"owner_id"`
	CurrentSpeakerID     string     `json:"current_speaker_id,omitempty"`
	HasApprovedChallenge bool       `json:"has_approved_challenge"`
	ChallengeActive      bool       `json:"challenge_active"`
}

type RoomFullInfo struct {
	RoomPublicInfo
	Players       []PlayerSnapshot `json:"players"`
	SpeakingQueue []string         `json:"speaking_queue"`
	Challenge     ChallengeState   `json:"challenge"`
}

type RosterChangedData struct {
	Event       string         `json:"event"` // "joined" | "left"
	Player      PlayerSnapshot `json:"player"`
	PlayerCount int            `json:"player_count"`
	OwnerID     string         `json:"owner_id"`
}

type LobbyUpdateData struct {
	PlayerID     string `json:"player_id"`
	Username     string `json:"username"`
	IsReady      bool   `json:"is_ready"`
	ReadyCount   int    `json:"ready_count"`
	TotalPlayers int    `json:"total_players"`
}

type GameStartingData struct {
	CountdownSeconds int              `json:"countdown_seconds"`
	Players          []PlayerSnapshot `json:"players"`
}

type PhaseChangedData struct {
	Status GameStatus `json:"status"`
	Phase  GamePhase  `json:"phase"`
	Day    int        `json:"day"`
}

// SpeakingUpdatedData describes whose bounded turn is running. During a
// challenge turn ActiveSpeakerID differs from the queue head.
type SpeakingUpdatedData struct {
	CurrentSpeakerID string   `json:"current_speaker_id"`
	ActiveSpeakerID  string   `json:"active_speaker_id"`
	ChallengeTurn    bool     `json:"challenge_turn"`
	SpeakingQueue    []string `json:"speaking_queue"`
	TurnDurationMS   int64    `json:"turn_duration_ms"`
}

type ChallengeUpdateData struct {
	CurrentSpeakerID string         `json:"current_speaker_id"`
	Challenge        ChallengeState `json:"challenge"`
}

type TimerUpdateData struct {
	TimeRemaining int64     `json:"time_remaining_ms"`
	Phase         GamePhase `json:"phase"`
	IsActive      bool      `json:"is_active"`
}

type NightResolvedData struct {
	Day        int             `json:"day"`
	Eliminated *PlayerSnapshot `json:"eliminated,omitempty"`
	Saved      bool            `json:"saved"`
}

type VoteTalliedData struct {
	Day        int             `json:"day"`
	Counts     map[string]int  `json:"counts"`
	Eliminated *PlayerSnapshot `json:"eliminated,omitempty"`
	Tie        bool            `json:"tie"`
}

type ReactionUpdateData struct {
	Day      int    `json:"day"`
	TargetID string `json:"target_id"`
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
}

type GameEndedData struct {
	Winner  Winner         `json:"winner"`
	Day     int            `json:"day"`
	Players []PlayerReveal `json:"players"`
	Reason  string         `json:"reason,omitempty"`
}

type RoleAssignedData struct {
	Role        Role   `json:"role"`
	Description string `json:"description"`
}

type InvestigationResultData struct {
	Day            int    `json:"day"`
	TargetID       string `json:"target_id"`
	TargetUsername string `json:"target_username"`
	IsMafia        bool   `json:"is_mafia"`
}

type SpeakingStateData struct {
	CurrentSpeakerID string         `json:"current_speaker_id"`
	SpeakingQueue    []string       `json:"speaking_queue"`
	Challenge        ChallengeState `json:"challenge"`
}

// RegistryStats is the in-memory overview exposed on /stats.
type RegistryStats struct {
	TotalRooms   int `json:"total_rooms"`
	TotalPlayers int `json:"total_players"`
	PublicRooms  int `json:"public_rooms"`
	WaitingRooms int `json:"waiting_rooms"`
	PlayingRooms int `json:"playing_rooms"`
}
