package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"jokenpo-duel/internal/game/move"
)

// EventType identifica uma notificação de saída. Os valores são os mesmos
// usados no campo "type" do envelope enviado ao cliente.
type EventType string

const (
	EventWaitingForOpponent   EventType = "waiting_for_opponent"
	EventOpponentFound        EventType = "opponent_found"
	EventRoundResult          EventType = "round_result"
	EventNextRound            EventType = "next_round"
	EventGameOver             EventType = "game_over"
	EventOpponentLeft         EventType = "opponent_left"
	EventOpponentDisconnected EventType = "opponent_disconnected"
)

// Event é o resultado de uma transição. O núcleo nunca entrega nada:
// quem decide como (e se) entregar é o Gateway.
type Event struct {
	Type    EventType
	RoomID  string
	To      []ConnectionID
	Payload any // nil para eventos sem payload
}

type OpponentFoundPayload struct {
	RoomID     string       `json:"roomId"`
	OpponentID ConnectionID `json:"opponentId"`
}

type RoundResultPayload struct {
	Player1ID     ConnectionID  `json:"player1Id"`
	Player2ID     ConnectionID  `json:"player2Id"`
	Player1Choice move.Move     `json:"player1Choice"`
	Player2Choice move.Move     `json:"player2Choice"`
	Winner        *ConnectionID `json:"winner"`
	Draw          bool          `json:"draw"`
	Scores        Scores        `json:"scores"`
}

type NextRoundPayload struct {
	Round int `json:"round"`
}

type GameOverPayload struct {
	FinalScores Scores        `json:"finalScores"`
	FinalWinner *ConnectionID `json:"finalWinner"`
}

// Score é a contagem de vitórias de um participante.
type Score struct {
	Player ConnectionID
	Wins   int
}

// Scores mantém a ordem Player1, Player2. Alguns clientes desempacotam o
// placar por posição, então o JSON preserva essa ordem nas chaves do objeto.
type Scores []Score

// Of retorna as vitórias de id, ou 0 se ele não estiver no placar.
func (s Scores) Of(id ConnectionID) int {
	for _, e := range s {
		if e.Player == id {
			return e.Wins
		}
	}
	return 0
}

func (s Scores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.Player))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Wins))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON lê o objeto token a token para não perder a ordem das chaves.
func (s *Scores) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("scores: expected object, got %v", tok)
	}
	out := Scores{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("scores: expected string key, got %v", keyTok)
		}
		var wins int
		if err := dec.Decode(&wins); err != nil {
			return fmt.Errorf("scores: value for %q: %w", key, err)
		}
		out = append(out, Score{Player: ConnectionID(key), Wins: wins})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}
