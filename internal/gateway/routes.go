package gateway

import (
	"encoding/json"
	"log"

	"jokenpo-duel/internal/game/move"
	"jokenpo-duel/internal/session"
)

// Tipos de mensagem que só o Gateway produz ou consome. Os demais tipos de
// saída são os session.EventType.
const (
	MsgFindOpponent = "find_opponent"
	MsgSubmitChoice = "submit_choice"
	MsgLeaveRoom    = "leave_room"

	MsgWelcome = "welcome"
	MsgError   = "error"
)

type SubmitChoicePayload struct {
	RoomID string `json:"roomId"`
	Move   string `json:"move"`
}

type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

type WelcomePayload struct {
	ConnectionID string `json:"connectionId"`
	Username     string `json:"username,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func (g *Gateway) registerRoutes() {
	g.router[MsgFindOpponent] = handleFindOpponent
	g.router[MsgSubmitChoice] = handleSubmitChoice
	g.router[MsgLeaveRoom] = handleLeaveRoom
}

func handleFindOpponent(g *Gateway, p peer, _ json.RawMessage) {
	g.dispatch(session.ConnectionID(p.ID()), session.FindOpponent{})
}

func handleSubmitChoice(g *Gateway, p peer, payload json.RawMessage) {
	var req SubmitChoicePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		g.replyError(p, "invalid payload for submit_choice")
		return
	}
	m, err := move.Parse(req.Move)
	if err != nil {
		log.Printf("[Gateway] WARN: %s sent an invalid move %q", p.ID(), req.Move)
		g.replyError(p, err.Error())
		return
	}
	g.dispatch(session.ConnectionID(p.ID()), session.SubmitChoice{RoomID: req.RoomID, Move: m})
}

func handleLeaveRoom(g *Gateway, p peer, payload json.RawMessage) {
	var req LeaveRoomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		g.replyError(p, "invalid payload for leave_room")
		return
	}
	g.dispatch(session.ConnectionID(p.ID()), session.LeaveRoom{RoomID: req.RoomID})
}
