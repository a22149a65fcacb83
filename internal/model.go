package internal

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultMinPlayers = 4
	DefaultMaxPlayers = 8

	// ClassicScenarioSize is the roster size the fixed role list is built for.
	ClassicScenarioSize = 10
)

type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusStarting GameStatus = "starting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

type GamePhase string

const (
	PhaseWaiting      GamePhase = "waiting"
	PhaseIntroduction GamePhase = "introduction"
	PhaseNight        GamePhase = "night"
	PhaseDay          GamePhase = "day"
	PhaseVoting       GamePhase = "voting"
)

type Faction string

const (
	FactionMafia Faction = "mafia"
	FactionTown  Faction = "town"
)

type Winner string

const (
	WinnerNone  Winner = ""
	WinnerTown  Winner = "town"
	WinnerMafia Winner = "mafia"
)

type Role string

const (
	RoleMafia     Role = "mafia"
	RoleGodfather Role = "godfather"
	RoleNatasha   Role = "natasha"
	RoleDoctor    Role = "doctor"
	RoleDetective Role = "detective"
	RoleSniper    Role = "sniper"
	RoleBodyguard Role = "bodyguard"
	RoleMayor     Role = "mayor"
	RolePriest    Role = "priest"
	RoleCitizen   Role = "citizen"
)

// Faction reports which side a role wins with.
func (r Role) Faction() Faction {
	switch r {
	case RoleMafia, RoleGodfather, RoleNatasha:
		return FactionMafia
	default:
		return FactionTown
	}
}

// RoleSettings is the per-role slot table used when assigning roles.
// A zero value means "use the proportional table for the roster size".
type RoleSettings struct {
	MafiaCount     int  `json:"mafia_count"`
	DoctorCount    int  `json:"doctor_count"`
	DetectiveCount int  `json:"detective_count"`
	SniperCount    int  `json:"sniper_count"`
	BodyguardCount int  `json:"bodyguard_count"`
	CitizenCount   int  `json:"citizen_count"`
	ClassicTen     bool `json:"classic_ten"`
}

func (s RoleSettings) Total() int {
	return s.MafiaCount + s.DoctorCount + s.DetectiveCount +
		s.SniperCount + s.BodyguardCount + s.CitizenCount
}

func (s RoleSettings) IsZero() bool {
	return s.Total() == 0 && !s.ClassicTen
}

type RoomSettings struct {
	Name       string       `json:"name"`
	MinPlayers int          `json:"min_players"`
	MaxPlayers int          `json:"max_players"`
	IsPrivate  bool         `json:"is_private"`
	Password   string       `json:"-"`
	Roles      RoleSettings `json:"roles"`
}

type NightChannel string

const (
	ChannelKill        NightChannel = "kill"
	ChannelProtect     NightChannel = "protect"
	ChannelInvestigate NightChannel = "investigate"
)

// NightAction is the single submission slot for one role channel.
// A later submission on the same channel overwrites the earlier one.
type NightAction struct {
	ActorID  string `json:"actor_id"`
	TargetID string `json:"target_id"`
}

type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// ReactionBucket holds the raters for one (day, target) pair. A rater is in
// at most one of the two sets.
type ReactionBucket struct {
	Likers    map[string]struct{}
	Dislikers map[string]struct{}
}

type ChallengeRequest struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	RequestedAt time.Time `json:"requested_at"`
	Approved    bool      `json:"approved"`
}

// ChallengeState is scoped to the current speaker's turn and cleared on
// every queue rotation.
type ChallengeState struct {
	Requests       []ChallengeRequest `json:"requests"`
	ApprovedUserID string             `json:"approved_user_id,omitempty"`
	Active         bool               `json:"active"`
}

// GameTimer is the single outstanding timer for a room. Arming a new timer
// must cancel the previous one first.
type GameTimer struct {
	StartTime time.Time
	Duration  time.Duration
	Active    bool
	Context   context.Context
	Cancel    context.CancelFunc
}

// Remaining returns how much of the timer budget is left, clamped at zero.
func (t *GameTimer) Remaining() time.Duration {
	if t == nil || !t.Active {
		return 0
	}
	return max(t.Duration-time.Since(t.StartTime), 0)
}

// Room is one game session. All mutation goes through game package
// operations holding Mu; everything but Mu itself is guarded by it.
type Room struct {
	Id        string
	OwnerID   string
	Settings  RoomSettings
	Status    GameStatus
	Phase     GamePhase
	Day       int
	CreatedAt time.Time

	// Roster, ordered by join time. Ids are unique.
	Roster []*Player

	// Speaking state for introduction/day phases.
	SpeakingQueue    []string
	CurrentSpeakerID string
	TurnsCompleted   map[string]bool
	Challenge        ChallengeState

	// Night/voting submission tables, cleared when their phase opens.
	NightActions map[NightChannel]NightAction
	Votes        map[string]string

	// day -> target id -> bucket
	Reactions map[int]map[string]*ReactionBucket

	Winner     Winner
	Errored    bool
	FinishedAt time.Time

	Timer *GameTimer

	Mu sync.RWMutex
}

// Member returns the roster entry with the given id, or nil.
func (r *Room) Member(id string) *Player {
	for _, p := range r.Roster {
		if p.Id == id {
			return p
		}
	}
	return nil
}

// AlivePlayers returns living roster members in join order.
func (r *Room) AlivePlayers() []*Player {
	alive := make([]*Player, 0, len(r.Roster))
	for _, p := range r.Roster {
		if p.IsAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

// AllReady reports whether every current member has toggled ready.
func (r *Room) AllReady() bool {
	for _, p := range r.Roster {
		if !p.IsReady {
			return false
		}
	}
	return len(r.Roster) > 0
}

func (r *Room) ReadyCount() int {
	n := 0
	for _, p := range r.Roster {
		if p.IsReady {
			n++
		}
	}
	return n
}

// InQueue reports whether id is present in the speaking queue.
func (r *Room) InQueue(id string) bool {
	for _, qid := range r.SpeakingQueue {
		if qid == id {
			return true
		}
	}
	return false
}

// RotateQueue pops the queue head and pushes it to the tail. The new head
// becomes the current speaker. Returns the new current speaker id.
func (r *Room) RotateQueue() string {
	if len(r.SpeakingQueue) == 0 {
		r.CurrentSpeakerID = ""
		return ""
	}
	head := r.SpeakingQueue[0]
	r.SpeakingQueue = append(r.SpeakingQueue[1:], head)
	r.CurrentSpeakerID = r.SpeakingQueue[0]
	return r.CurrentSpeakerID
}

// RemoveFromQueue deletes id from the speaking queue. If id was the current
// speaker, the new head takes over immediately.
func (r *Room) RemoveFromQueue(id string) {
	queue := r.SpeakingQueue[:0]
	for _, qid := range r.SpeakingQueue {
		if qid != id {
			queue = append(queue, qid)
		}
	}
	r.SpeakingQueue = queue
	if r.CurrentSpeakerID == id {
		if len(queue) > 0 {
			r.CurrentSpeakerID = queue[0]
		} else {
			r.CurrentSpeakerID = ""
		}
	}
}

// ApplyReaction records a like/dislike from rater on target for the given
// day. The rater's previous choice for that target is removed first, so a
// rater counts in at most one set.
func (r *Room) ApplyReaction(day int, targetID, raterID string, kind ReactionType) (likes, dislikes int) {
	if r.Reactions == nil {
		r.Reactions = make(map[int]map[string]*ReactionBucket)
	}
	dayBucket, ok := r.Reactions[day]
	if !ok {
		dayBucket = make(map[string]*ReactionBucket)
		r.Reactions[day] = dayBucket
	}
	rec, ok := dayBucket[targetID]
	if !ok {
		rec = &ReactionBucket{
			Likers:    make(map[string]struct{}),
			Dislikers: make(map[string]struct{}),
		}
		dayBucket[targetID] = rec
	}
	delete(rec.Likers, raterID)
	delete(rec.Dislikers, raterID)
	switch kind {
	case ReactionLike:
		rec.Likers[raterID] = struct{}{}
	case ReactionDislike:
		rec.Dislikers[raterID] = struct{}{}
	}
	return len(rec.Likers), len(rec.Dislikers)
}

// ReactionCounts returns cardinalities only, never rater identities.
func (r *Room) ReactionCounts(day int, targetID string) (likes, dislikes int) {
	dayBucket, ok := r.Reactions[day]
	if !ok {
		return 0, 0
	}
	rec, ok := dayBucket[targetID]
	if !ok {
		return 0, 0
	}
	return len(rec.Likers), len(rec.Dislikers)
}

// PublicInfo is the lobby-listing view of the room, without roles or
// challenge requester identities.
func (r *Room) PublicInfo() RoomPublicInfo {
	return RoomPublicInfo{
		Id:                   r.Id,
		Name:                 r.Settings.Name,
		MaxPlayers:           r.Settings.MaxPlayers,
		CurrentPlayersCount:  len(r.Roster),
		Status:               r.Status,
		Phase:                r.Phase,
		Day:                  r.Day,
		CreatedAt:            r.CreatedAt,
		IsPrivate:            r.Settings.IsPrivate,
		OwnerID:              r.OwnerID,
		CurrentSpeakerID:     r.CurrentSpeakerID,
		HasApprovedChallenge: r.Challenge.ApprovedUserID != "",
		ChallengeActive:      r.Challenge.Active,
	}
}

// FullInfo is the member view: roster snapshots (still without roles, which
// travel only on private role_assigned events), queue and challenge state.
func (r *Room) FullInfo() RoomFullInfo {
	players := make([]PlayerSnapshot, 0, len(r.Roster))
	for _, p := range r.Roster {
		players = append(players, p.Snapshot())
	}
	queue := append([]string(nil), r.SpeakingQueue...)
	return RoomFullInfo{
		RoomPublicInfo: r.PublicInfo(),
		Players:        players,
		SpeakingQueue:  queue,
		Challenge:      r.ChallengeSnapshot(),
	}
}

func (r *Room) ChallengeSnapshot() ChallengeState {
	return ChallengeState{
		Requests:       append([]ChallengeRequest(nil), r.Challenge.Requests...),
		ApprovedUserID: r.Challenge.ApprovedUserID,
		Active:         r.Challenge.Active,
	}
}
