package session

import (
	"log"
	"sync"
)

// MatchOutcome é o resultado de RequestMatch.
type MatchOutcome struct {
	Paired     bool
	RoomID     string       // só quando Paired
	OpponentID ConnectionID // só quando Paired
}

// Matchmaker mantém uma única vaga de espera para o processo inteiro.
// Há no máximo um pareamento em andamento por vez.
type Matchmaker struct {
	mu        sync.Mutex
	waiting   ConnectionID
	hasWaiter bool

	// O Matchmaker cria as salas e registra os participantes.
	registry  *Registry
	maxRounds int
}

func NewMatchmaker(registry *Registry, maxRounds int) *Matchmaker {
	return &Matchmaker{
		registry:  registry,
		maxRounds: maxRounds,
	}
}

// RequestMatch coloca conn na vaga de espera ou a pareia com quem já estava lá.
// Se conn já ocupa a vaga, continua esperando e o erro ErrDuplicateWaiter é
// apenas informativo: o resultado e os eventos são válidos.
func (m *Matchmaker) RequestMatch(conn ConnectionID) (MatchOutcome, []Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Verificado sob o lock do Matchmaker para não correr com um pareamento em andamento.
	if _, inRoom := m.registry.Lookup(conn); inRoom {
		return MatchOutcome{}, nil, ErrAlreadyInRoom
	}

	waitingEvent := []Event{{Type: EventWaitingForOpponent, To: []ConnectionID{conn}}}

	if !m.hasWaiter {
		m.waiting, m.hasWaiter = conn, true
		log.Printf("[Matchmaker] Connection %s is waiting for an opponent.", conn)
		return MatchOutcome{}, waitingEvent, nil
	}
	if m.waiting == conn {
		return MatchOutcome{}, waitingEvent, ErrDuplicateWaiter
	}

	// Limpa a vaga ANTES de criar a sala: nenhuma conexão pode acabar em duas salas.
	player1 := m.waiting
	m.waiting, m.hasWaiter = "", false

	room := newRoom(player1, conn, m.maxRounds)
	m.registry.Register(player1, room)
	m.registry.Register(conn, room)
	log.Printf("[Matchmaker] MATCH FOUND! Room %s created for %s vs %s.", room.ID, player1, conn)

	events := []Event{
		{Type: EventOpponentFound, RoomID: room.ID, To: []ConnectionID{player1}, Payload: OpponentFoundPayload{RoomID: room.ID, OpponentID: conn}},
		{Type: EventOpponentFound, RoomID: room.ID, To: []ConnectionID{conn}, Payload: OpponentFoundPayload{RoomID: room.ID, OpponentID: player1}},
	}
	return MatchOutcome{Paired: true, RoomID: room.ID, OpponentID: player1}, events, nil
}

// Cancel libera a vaga se conn estiver nela. Retorna true se liberou.
func (m *Matchmaker) Cancel(conn ConnectionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasWaiter || m.waiting != conn {
		return false
	}
	m.waiting, m.hasWaiter = "", false
	log.Printf("[Matchmaker] Connection %s left the waiting slot.", conn)
	return true
}

// Waiting retorna quem ocupa a vaga, se alguém.
func (m *Matchmaker) Waiting() (ConnectionID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waiting, m.hasWaiter
}
