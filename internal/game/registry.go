package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
	"github.com/raminperspolisi/MafiaVERSE-backend/internal/config"
)

// Broadcaster fans out room events. The core never addresses sockets
// directly; the transport implements this.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msg internal.Message[any])
	SendToPlayer(roomID, playerID string, msg internal.Message[any])
}

// Archiver persists the final outcome of a finished game. Invoked once per
// room, off the room's critical section.
type Archiver interface {
	ArchiveGame(ctx context.Context, rec GameRecord) error
}

// GameRecord is the archive row written when a room reaches finished.
type GameRecord struct {
	RoomID     string
	RoomName   string
	Winner     internal.Winner
	Days       int
	FinishedAt time.Time
	Players    []internal.PlayerReveal
}

// Registry owns the set of rooms and the player->room index. These two maps
// are the only state shared across rooms; everything else is private to one
// room and guarded by its own mutex.
type Registry struct {
	mu          sync.RWMutex
	rooms       map[string]*internal.Room
	playerRooms map[string]string

	cfg     config.Game
	log     zerolog.Logger
	bc      Broadcaster
	archive Archiver
}

func NewRegistry(cfg config.Game, log zerolog.Logger, bc Broadcaster, archive Archiver) *Registry {
	return &Registry{
		rooms:       make(map[string]*internal.Room),
		playerRooms: make(map[string]string),
		cfg:         cfg,
		log:         log.With().Str("component", "registry").Logger(),
		bc:          bc,
		archive:     archive,
	}
}

// outEvent is an event staged under the room lock and published after it is
// released. An empty playerID means broadcast to the whole room channel.
type outEvent struct {
	playerID string
	msg      internal.Message[any]
}

func broadcast(t string, data any) outEvent {
	return outEvent{msg: internal.Message[any]{Type: t, Data: data}}
}

func private(playerID, t string, data any) outEvent {
	return outEvent{playerID: playerID, msg: internal.Message[any]{Type: t, Data: data}}
}

func (reg *Registry) publish(roomID string, events []outEvent) {
	for _, ev := range events {
		if ev.playerID == "" {
			reg.bc.BroadcastToRoom(roomID, ev.msg)
		} else {
			reg.bc.SendToPlayer(roomID, ev.playerID, ev.msg)
		}
	}
}

// CreateRoom registers a new room in waiting state. The creator is not a
// member yet; the first player to join becomes the owner.
func (reg *Registry) CreateRoom(settings internal.RoomSettings) (internal.RoomPublicInfo, error) {
	if settings.Name == "" {
		settings.Name = "mafia room"
	}
	if settings.MinPlayers == 0 {
		settings.MinPlayers = internal.DefaultMinPlayers
	}
	if settings.MaxPlayers == 0 {
		settings.MaxPlayers = internal.DefaultMaxPlayers
	}
	if settings.MinPlayers < 2 || settings.MaxPlayers < settings.MinPlayers {
		return internal.RoomPublicInfo{}, fmt.Errorf("%w: player bounds [%d,%d]",
			internal.ErrValidation, settings.MinPlayers, settings.MaxPlayers)
	}
	if settings.IsPrivate && settings.Password == "" {
		return internal.RoomPublicInfo{}, fmt.Errorf("%w: private room needs a password", internal.ErrValidation)
	}

	room := &internal.Room{
		Id:             uuid.NewString(),
		Settings:       settings,
		Status:         internal.StatusWaiting,
		Phase:          internal.PhaseWaiting,
		Day:            1,
		CreatedAt:      time.Now(),
		TurnsCompleted: make(map[string]bool),
		NightActions:   make(map[internal.NightChannel]internal.NightAction),
		Votes:          make(map[string]string),
		Reactions:      make(map[int]map[string]*internal.ReactionBucket),
	}

	reg.mu.Lock()
	reg.rooms[room.Id] = room
	reg.mu.Unlock()

	reg.log.Info().Str("room", room.Id).Str("name", settings.Name).Msg("room created")
	return room.PublicInfo(), nil
}

// Room resolves a room id.
func (reg *Registry) Room(id string) (*internal.Room, error) {
	reg.mu.RLock()
	room, ok := reg.rooms[id]
	reg.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: room %s", internal.ErrNotFound, id)
	}
	return room, nil
}

// PlayerRoom resolves the room a player is currently registered in.
func (reg *Registry) PlayerRoom(playerID string) (*internal.Room, error) {
	reg.mu.RLock()
	roomID, ok := reg.playerRooms[playerID]
	var room *internal.Room
	if ok {
		room = reg.rooms[roomID]
	}
	reg.mu.RUnlock()
	if room == nil {
		return nil, fmt.Errorf("%w: player %s is not in a room", internal.ErrNotFound, playerID)
	}
	return room, nil
}

// JoinRoom adds a player to a waiting room. The roster and the player index
// are updated together under the registry lock, or not at all.
func (reg *Registry) JoinRoom(roomID, playerID, username, password string) (*internal.Player, error) {
	if playerID == "" || username == "" {
		return nil, fmt.Errorf("%w: player id and username are required", internal.ErrValidation)
	}

	reg.mu.Lock()
	room, ok := reg.rooms[roomID]
	if !ok {
		reg.mu.Unlock()
		return nil, fmt.Errorf("%w: room %s", internal.ErrNotFound, roomID)
	}
	if _, taken := reg.playerRooms[playerID]; taken {
		reg.mu.Unlock()
		return nil, fmt.Errorf("%w: player %s", internal.ErrDuplicateMembership, playerID)
	}

	room.Mu.Lock()
	if room.Status != internal.StatusWaiting {
		room.Mu.Unlock()
		reg.mu.Unlock()
		return nil, fmt.Errorf("%w: game already %s", internal.ErrStateConflict, room.Status)
	}
	if len(room.Roster) >= room.Settings.MaxPlayers {
		room.Mu.Unlock()
		reg.mu.Unlock()
		return nil, internal.ErrCapacity
	}
	if room.Settings.IsPrivate && room.Settings.Password != password {
		room.Mu.Unlock()
		reg.mu.Unlock()
		return nil, fmt.Errorf("%w: wrong room password", internal.ErrAuthorization)
	}

	player := &internal.Player{
		Id:       playerID,
		Username: username,
		IsAlive:  true,
		JoinedAt: time.Now(),
	}
	room.Roster = append(room.Roster, player)
	if room.OwnerID == "" {
		room.OwnerID = playerID
	}
	reg.playerRooms[playerID] = roomID

	events := []outEvent{
		broadcast(internal.EventRosterChanged, internal.RosterChangedData{
			Event:       "joined",
			Player:      player.Snapshot(),
			PlayerCount: len(room.Roster),
			OwnerID:     room.OwnerID,
		}),
		private(playerID, internal.EventWelcome, room.FullInfo()),
	}
	room.Mu.Unlock()
	reg.mu.Unlock()

	reg.log.Info().Str("room", roomID).Str("player", playerID).Str("username", username).Msg("player joined")
	reg.publish(roomID, events)
	return player, nil
}

// LeaveRoom removes a player from a room. Disconnects are routed here too.
// An empty non-finished room is deleted immediately; finished rooms stay
// around for late reads until the reaper collects them.
func (reg *Registry) LeaveRoom(roomID, playerID string) (*internal.Player, error) {
	reg.mu.Lock()
	room, ok := reg.rooms[roomID]
	if !ok {
		reg.mu.Unlock()
		return nil, fmt.Errorf("%w: room %s", internal.ErrNotFound, roomID)
	}

	room.Mu.Lock()
	player := room.Member(playerID)
	if player == nil {
		room.Mu.Unlock()
		reg.mu.Unlock()
		return nil, fmt.Errorf("%w: player %s in room %s", internal.ErrNotFound, playerID, roomID)
	}

	roster := room.Roster[:0]
	for _, p := range room.Roster {
		if p.Id != playerID {
			roster = append(roster, p)
		}
	}
	room.Roster = roster
	delete(reg.playerRooms, playerID)

	// Owner passes to the earliest remaining member.
	if room.OwnerID == playerID {
		if len(room.Roster) > 0 {
			room.OwnerID = room.Roster[0].Id
		} else {
			room.OwnerID = ""
		}
	}

	empty := len(room.Roster) == 0
	if empty && room.Status != internal.StatusFinished {
		delete(reg.rooms, roomID)
	}
	reg.mu.Unlock()

	events := []outEvent{
		broadcast(internal.EventRosterChanged, internal.RosterChangedData{
			Event:       "left",
			Player:      player.Snapshot(),
			PlayerCount: len(room.Roster),
			OwnerID:     room.OwnerID,
		}),
	}

	if empty {
		reg.cancelTimer(room)
	} else if room.Status == internal.StatusPlaying {
		events = append(events, reg.handleDepartureInGame(room, playerID)...)
	}
	room.Mu.Unlock()

	reg.log.Info().Str("room", roomID).Str("player", playerID).Bool("room_empty", empty).Msg("player left")
	reg.publish(roomID, events)
	return player, nil
}

// ListPublicRooms returns non-private rooms still waiting for players.
func (reg *Registry) ListPublicRooms() []internal.RoomPublicInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	infos := make([]internal.RoomPublicInfo, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		room.Mu.RLock()
		if !room.Settings.IsPrivate && room.Status == internal.StatusWaiting {
			infos = append(infos, room.PublicInfo())
		}
		room.Mu.RUnlock()
	}
	return infos
}

// RoomInfo returns the member view for members and the public view for
// everyone else.
func (reg *Registry) RoomInfo(roomID, viewerID string) (any, bool, error) {
	room, err := reg.Room(roomID)
	if err != nil {
		return nil, false, err
	}
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	if room.Member(viewerID) != nil {
		return room.FullInfo(), true, nil
	}
	return room.PublicInfo(), false, nil
}

// SpeakingState returns the speaking/challenge snapshot for a room.
func (reg *Registry) SpeakingState(roomID string) (internal.SpeakingStateData, error) {
	room, err := reg.Room(roomID)
	if err != nil {
		return internal.SpeakingStateData{}, err
	}
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	return internal.SpeakingStateData{
		CurrentSpeakerID: room.CurrentSpeakerID,
		SpeakingQueue:    append([]string(nil), room.SpeakingQueue...),
		Challenge:        room.ChallengeSnapshot(),
	}, nil
}

// DeleteRoom tears a room down. Owner only.
func (reg *Registry) DeleteRoom(roomID, actorID string) error {
	reg.mu.Lock()
	room, ok := reg.rooms[roomID]
	if !ok {
		reg.mu.Unlock()
		return fmt.Errorf("%w: room %s", internal.ErrNotFound, roomID)
	}

	room.Mu.Lock()
	if room.OwnerID != actorID {
		room.Mu.Unlock()
		reg.mu.Unlock()
		return fmt.Errorf("%w: only the owner can delete the room", internal.ErrAuthorization)
	}
	for _, p := range room.Roster {
		delete(reg.playerRooms, p.Id)
	}
	room.Roster = nil
	delete(reg.rooms, roomID)
	reg.mu.Unlock()

	reg.cancelTimer(room)
	room.Mu.Unlock()

	reg.log.Info().Str("room", roomID).Str("actor", actorID).Msg("room deleted")
	reg.publish(roomID, []outEvent{broadcast(internal.EventRoomDeleted, room.PublicInfo())})
	return nil
}

// Stats is an in-memory overview of the registry.
func (reg *Registry) Stats() internal.RegistryStats {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	var stats internal.RegistryStats
	stats.TotalRooms = len(reg.rooms)
	for _, room := range reg.rooms {
		room.Mu.RLock()
		stats.TotalPlayers += len(room.Roster)
		if !room.Settings.IsPrivate && room.Status == internal.StatusWaiting {
			stats.PublicRooms++
		}
		switch room.Status {
		case internal.StatusWaiting:
			stats.WaitingRooms++
		case internal.StatusPlaying, internal.StatusStarting:
			stats.PlayingRooms++
		}
		room.Mu.RUnlock()
	}
	return stats
}

// StartReaper sweeps stale empty rooms until ctx is cancelled.
func (reg *Registry) StartReaper(ctx context.Context) {
	ticker := time.NewTicker(reg.cfg.ReapInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reg.Reap()
			}
		}
	}()
}

// Reap deletes empty rooms older than the configured TTL. Finished rooms
// age from the moment the game ended.
func (reg *Registry) Reap() int {
	now := time.Now()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	reaped := 0
	for id, room := range reg.rooms {
		room.Mu.RLock()
		born := room.CreatedAt
		if room.Status == internal.StatusFinished && !room.FinishedAt.IsZero() {
			born = room.FinishedAt
		}
		stale := len(room.Roster) == 0 && now.Sub(born) > reg.cfg.RoomTTL
		room.Mu.RUnlock()

		if stale {
			delete(reg.rooms, id)
			reaped++
			reg.log.Debug().Str("room", id).Msg("reaped stale room")
		}
	}
	return reaped
}
