package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.StatsHandler).Methods(http.MethodGet)

	r.HandleFunc("/rooms", s.ListRoomsHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.CreateRoomHandler).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomId}", s.GetRoomHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomId}", s.DeleteRoomHandler).Methods(http.MethodDelete)
	r.HandleFunc("/rooms/{roomId}/speaking", s.SpeakingStateHandler).Methods(http.MethodGet)

	r.HandleFunc("/ws/{roomId}", s.HandleWebSocket)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

// writeError maps domain error kinds onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, internal.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, internal.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, internal.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, internal.ErrCapacity),
		errors.Is(err, internal.ErrDuplicateMembership),
		errors.Is(err, internal.ErrStateConflict):
		status = http.StatusConflict
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.Stats())
}

func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.ListPublicRooms())
}

type createRoomRequest struct {
	Name       string                `json:"name"`
	MinPlayers int                   `json:"min_players"`
	MaxPlayers int                   `json:"max_players"`
	IsPrivate  bool                  `json:"is_private"`
	Password   string                `json:"password"`
	Roles      internal.RoleSettings `json:"roles"`
}

func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, internal.ErrValidation)
		return
	}

	info, err := s.registry.CreateRoom(internal.RoomSettings{
		Name:       req.Name,
		MinPlayers: req.MinPlayers,
		MaxPlayers: req.MaxPlayers,
		IsPrivate:  req.IsPrivate,
		Password:   req.Password,
		Roles:      req.Roles,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, info)
}

func (s *Server) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	viewerID := r.URL.Query().Get("player_id")

	info, _, err := s.registry.RoomInfo(roomID, viewerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) DeleteRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	actorID := r.URL.Query().Get("player_id")

	if err := s.registry.DeleteRoom(roomID, actorID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"deleted": roomID})
}

func (s *Server) SpeakingStateHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	state, err := s.registry.SpeakingState(roomID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}
