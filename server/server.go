// Package server exposes the playing agent over HTTP: a small JSON API for
// the game flow plus a WebSocket stream of confirmed positions.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"abalone/agent"
	"abalone/game"
)

// Server routes game requests to one agent. Concurrency control lives in the
// agent; handlers stay stateless.
type Server struct {
	agent    *agent.Agent
	hub      *hub
	router   chi.Router
	done     chan struct{}
	upgrader websocket.Upgrader
}

func New(a *agent.Agent) *Server {
	s := &Server{
		agent: a,
		hub:   newHub(),
		done:  make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	go s.hub.run(s.done)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/games", s.handleNewGame)
	r.Get("/games/current", s.handleState)
	r.Post("/games/current/moves", s.handleMove)
	r.Post("/games/current/assist", s.handleAssist)
	r.Delete("/games/current", s.handleResign)
	r.Get("/ws", s.handleWS)
	s.router = r
	return s
}

// Handler returns the HTTP handler to mount.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops the broadcast loop. The agent is shut down by its owner.
func (s *Server) Close() {
	close(s.done)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var payload newGamePayload
	// an empty body starts from the standard opening
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	board := game.BelgianDaisy
	if payload.Board != nil {
		parsed, err := rowsToBoard(payload.Board)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		board = parsed
	}
	if err := s.agent.NewGame(board); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state := s.state()
	s.hub.publish(state)
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var payload movePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	board, err := rowsToBoard(payload.Board)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.agent.ExternalMoveAbsolute(board); err != nil {
		writeError(w, moveStatus(err), err.Error())
		return
	}
	s.hub.publish(s.state())

	response := moveResponse{}
	if !s.agent.Ended() {
		reply, changed, err := s.agent.Reply()
		if err != nil {
			writeError(w, moveStatus(err), err.Error())
			return
		}
		response.Reply = boardToRows(reply)
		response.Changed = coordsToDTO(changed)
		s.hub.publish(s.state())
	}
	response.State = s.state()
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAssist(w http.ResponseWriter, r *http.Request) {
	var payload assistPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	moves := s.agent.Assist(coordsFromDTO(payload.Coords))
	response := assistResponse{Moves: make([]assistMove, 0, len(moves))}
	for dir, board := range moves {
		response.Moves = append(response.Moves, assistMove{
			DR:    dir.DR,
			DC:    dir.DC,
			Board: boardToRows(board),
		})
	}
	sort.Slice(response.Moves, func(i, j int) bool {
		if response.Moves[i].DR != response.Moves[j].DR {
			return response.Moves[i].DR < response.Moves[j].DR
		}
		return response.Moves[i].DC < response.Moves[j].DC
	})
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleResign(w http.ResponseWriter, r *http.Request) {
	s.agent.Resign()
	state := s.state()
	s.hub.publish(state)
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{send: make(chan []byte, 16)}
	s.hub.register(c)
	c.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(s.state())})

	go func() {
		defer conn.Close()
		for data := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.unregister(c)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "request_state" {
			c.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(s.state())})
		}
	}
}

func (s *Server) state() stateResponse {
	blackLoss, whiteLoss := s.agent.Losses()
	return stateResponse{
		Board:       boardToRows(s.agent.Board()),
		BlackToMove: s.agent.BlackToMove(),
		Turn:        s.agent.TurnNumber(),
		Ended:       s.agent.Ended(),
		Outcome:     s.agent.Outcome().String(),
		BlackLoss:   blackLoss,
		WhiteLoss:   whiteLoss,
	}
}

func moveStatus(err error) int {
	switch {
	case errors.Is(err, agent.ErrGameOver), errors.Is(err, agent.ErrStopped):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidBoard):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
