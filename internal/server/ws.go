package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type errorData struct {
	Command string `json:"command,omitempty"`
	Message string `json:"message"`
}

func errorMsg(command string, err error) internal.Message[any] {
	return internal.Message[any]{Type: "error", Data: errorData{Command: command, Message: err.Error()}}
}

// HandleWebSocket upgrades the connection and joins the player to the room
// named in the path. Identity comes from query parameters; a missing
// player_id gets a fresh one. The connection is the membership: closing it
// is leaving the room.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	q := r.URL.Query()
	playerID := q.Get("player_id")
	if playerID == "" {
		playerID = uuid.NewString()
	}
	username := q.Get("username")
	password := q.Get("password")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("room", roomID).Msg("websocket upgrade failed")
		return
	}

	if _, err := s.registry.JoinRoom(roomID, playerID, username, password); err != nil {
		// No pump exists yet, writing directly is safe.
		_ = conn.WriteJSON(errorMsg("join", err))
		conn.Close()
		return
	}

	c := newClient(roomID, playerID, conn)
	s.hub.Register(c)

	// The join's own events fired before this socket subscribed; replay the
	// member view so the newcomer starts from full state.
	if info, _, err := s.registry.RoomInfo(roomID, playerID); err == nil {
		c.enqueue(internal.Message[any]{Type: internal.EventWelcome, Data: info})
	}

	go s.readPump(c)
}

type commandEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type approveChallengeCmd struct {
	RequesterID string `json:"requester_id"`
}

type nightActionCmd struct {
	Channel  internal.NightChannel `json:"channel"`
	TargetID string                `json:"target_id"`
}

type castVoteCmd struct {
	TargetID string `json:"target_id"`
}

type reactionCmd struct {
	TargetID string                `json:"target_id"`
	Type     internal.ReactionType `json:"type"`
}

// readPump owns reads on the socket: decode, rate-limit, dispatch. It exits
// on read error or an explicit leave, and tears the membership down.
func (s *Server) readPump(c *client) {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.Game.CommandRate), s.cfg.Game.CommandBurst)

	defer func() {
		s.hub.Unregister(c)
		if _, err := s.registry.LeaveRoom(c.roomID, c.playerID); err != nil {
			s.log.Debug().Err(err).Str("player", c.playerID).Msg("leave on disconnect")
		}
	}()

	for {
		var cmd commandEnvelope
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Str("player", c.playerID).Msg("websocket read error")
			}
			return
		}

		if !limiter.Allow() {
			c.enqueue(errorMsg(cmd.Type, internal.ErrRateLimited))
			continue
		}

		if cmd.Type == internal.CmdLeave {
			return
		}
		if err := s.dispatch(c, cmd); err != nil {
			c.enqueue(errorMsg(cmd.Type, err))
		}
	}
}

func (s *Server) dispatch(c *client, cmd commandEnvelope) error {
	switch cmd.Type {
	case internal.CmdToggleReady:
		return s.registry.ToggleReady(c.roomID, c.playerID)

	case internal.CmdStartGame:
		return s.registry.StartGame(c.roomID, c.playerID)

	case internal.CmdEndSpeech:
		return s.registry.EndSpeech(c.roomID, c.playerID)

	case internal.CmdRequestChallenge:
		return s.registry.RequestChallenge(c.roomID, c.playerID)

	case internal.CmdApproveChallenge:
		var data approveChallengeCmd
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			return internal.ErrValidation
		}
		return s.registry.ApproveChallenge(c.roomID, c.playerID, data.RequesterID)

	case internal.CmdForceNextSpeaker:
		return s.registry.ForceNextSpeaker(c.roomID, c.playerID)

	case internal.CmdNightAction:
		var data nightActionCmd
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			return internal.ErrValidation
		}
		return s.registry.SubmitNightAction(c.roomID, c.playerID, data.Channel, data.TargetID)

	case internal.CmdCastVote:
		var data castVoteCmd
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			return internal.ErrValidation
		}
		return s.registry.CastVote(c.roomID, c.playerID, data.TargetID)

	case internal.CmdReaction:
		var data reactionCmd
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			return internal.ErrValidation
		}
		return s.registry.SendReaction(c.roomID, c.playerID, data.TargetID, data.Type)

	default:
		return internal.ErrValidation
	}
}
