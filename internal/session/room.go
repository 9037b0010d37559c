package session

import (
	"fmt"
	"sync"

	"jokenpo-duel/internal/game/move"
)

// Status é o ciclo de vida de uma sala.
type Status int

const (
	StatusActive Status = iota
	StatusCompleted
	StatusAbandoned
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Room guarda o estado de uma partida entre duas conexões.
// participants[0] é sempre o Player1 (quem estava esperando primeiro).
type Room struct {
	ID string

	mu           sync.Mutex
	participants [2]ConnectionID
	pending      map[ConnectionID]move.Move // jogadas da rodada atual
	scores       [2]int
	round        int
	maxRounds    int
	status       Status
}

// roomID deriva o id das duas identidades, como "room_<p1>_<p2>".
// ConnectionIDs são únicos entre conexões vivas, então o id também é.
func roomID(p1, p2 ConnectionID) string {
	return fmt.Sprintf("room_%s_%s", p1, p2)
}

func newRoom(p1, p2 ConnectionID, maxRounds int) *Room {
	return &Room{
		ID:           roomID(p1, p2),
		participants: [2]ConnectionID{p1, p2},
		pending:      make(map[ConnectionID]move.Move, 2),
		round:        1,
		maxRounds:    maxRounds,
		status:       StatusActive,
	}
}

// Participants retorna (Player1, Player2). Os participantes nunca mudam,
// por isso não precisa do lock.
func (r *Room) Participants() (ConnectionID, ConnectionID) {
	return r.participants[0], r.participants[1]
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

func (r *Room) Scores() Scores {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scoresLocked()
}

func (r *Room) scoresLocked() Scores {
	return Scores{
		{Player: r.participants[0], Wins: r.scores[0]},
		{Player: r.participants[1], Wins: r.scores[1]},
	}
}

func (r *Room) indexOf(conn ConnectionID) int {
	for i, p := range r.participants {
		if p == conn {
			return i
		}
	}
	return -1
}

func (r *Room) opponentOf(idx int) ConnectionID {
	return r.participants[1-idx]
}

func (r *Room) everyone() []ConnectionID {
	return []ConnectionID{r.participants[0], r.participants[1]}
}

// submitChoice registra a jogada de conn. Reenviar antes do fim da rodada
// sobrescreve a jogada pendente; a rodada é resolvida no instante em que as
// duas jogadas existem, então uma jogada já contada nunca é trocada.
func (r *Room) submitChoice(conn ConnectionID, m move.Move) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return nil, ErrInvalidRoom
	}
	if r.indexOf(conn) < 0 {
		return nil, ErrUnknownParticipant
	}

	r.pending[conn] = m
	if len(r.pending) < len(r.participants) {
		return nil, nil
	}
	return r.resolveRoundLocked(), nil
}

func (r *Room) resolveRoundLocked() []Event {
	p1, p2 := r.participants[0], r.participants[1]
	c1, c2 := r.pending[p1], r.pending[p2]

	result := RoundResultPayload{
		Player1ID:     p1,
		Player2ID:     p2,
		Player1Choice: c1,
		Player2Choice: c2,
	}
	switch move.Resolve(c1, c2) {
	case move.Player1Wins:
		r.scores[0]++
		result.Winner = &p1
	case move.Player2Wins:
		r.scores[1]++
		result.Winner = &p2
	default:
		result.Draw = true
	}
	result.Scores = r.scoresLocked()

	events := []Event{{Type: EventRoundResult, RoomID: r.ID, To: r.everyone(), Payload: result}}

	clear(r.pending)
	r.round++

	if r.round > r.maxRounds {
		r.status = StatusCompleted
		over := GameOverPayload{FinalScores: r.scoresLocked()}
		switch {
		case r.scores[0] > r.scores[1]:
			over.FinalWinner = &p1
		case r.scores[1] > r.scores[0]:
			over.FinalWinner = &p2
		}
		return append(events, Event{Type: EventGameOver, RoomID: r.ID, To: r.everyone(), Payload: over})
	}

	return append(events, Event{
		Type:    EventNextRound,
		RoomID:  r.ID,
		To:      r.everyone(),
		Payload: NextRoundPayload{Round: r.round},
	})
}

// abandon encerra a sala por saída (voluntary=true) ou queda de conn.
// Só o outro participante é avisado.
func (r *Room) abandon(conn ConnectionID, voluntary bool) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return nil, ErrInvalidRoom
	}
	idx := r.indexOf(conn)
	if idx < 0 {
		return nil, ErrUnknownParticipant
	}

	r.status = StatusAbandoned
	clear(r.pending)

	evType := EventOpponentDisconnected
	if voluntary {
		evType = EventOpponentLeft
	}
	return []Event{{Type: evType, RoomID: r.ID, To: []ConnectionID{r.opponentOf(idx)}}}, nil
}
