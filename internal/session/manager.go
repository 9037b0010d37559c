package session

import (
	"errors"
	"log"

	"jokenpo-duel/internal/game/move"
)

// Options configura o Manager.
type Options struct {
	// MaxRounds é o número de rodadas por partida. Zero usa move.RoundsVersusPlayer.
	MaxRounds int
}

// Stats é um retrato do estado do núcleo, usado pelo health check.
type Stats struct {
	ActiveRooms       int    `json:"activeRooms"`
	Connections       int    `json:"connectionsInRooms"`
	WaitingConnection string `json:"waitingConnection,omitempty"`
}

// Manager é o dono do estado de matchmaking: a vaga de espera, as salas e o
// registro. É criado uma vez no main e passado ao Gateway.
// Dispatch pode ser chamado de várias goroutines: a vaga e cada sala têm seu
// próprio lock, então salas diferentes andam em paralelo.
type Manager struct {
	registry   *Registry
	matchmaker *Matchmaker
}

func NewManager(opts Options) *Manager {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = move.RoundsVersusPlayer
	}
	registry := NewRegistry()
	return &Manager{
		registry:   registry,
		matchmaker: NewMatchmaker(registry, opts.MaxRounds),
	}
}

func (m *Manager) Registry() *Registry { return m.registry }

func (m *Manager) Matchmaker() *Matchmaker { return m.matchmaker }

// Dispatch aplica cmd em nome de conn e retorna os eventos de saída.
// Nunca falha: anomalias vão para o log e resultam em nenhum evento.
func (m *Manager) Dispatch(conn ConnectionID, cmd Command) []Event {
	events, err := m.apply(conn, cmd)
	if err != nil {
		if errors.Is(err, ErrDuplicateWaiter) {
			log.Printf("[Manager] %s from %s: %v", commandName(cmd), conn, err)
		} else {
			log.Printf("[Manager] WARN: %s from %s ignored: %v", commandName(cmd), conn, err)
		}
	}
	return events
}

func (m *Manager) apply(conn ConnectionID, cmd Command) ([]Event, error) {
	switch c := cmd.(type) {
	case FindOpponent:
		_, events, err := m.matchmaker.RequestMatch(conn)
		return events, err

	case SubmitChoice:
		if !c.Move.Valid() {
			return nil, move.ErrUnknownMove
		}
		room, ok := m.registry.Room(c.RoomID)
		if !ok {
			return nil, ErrInvalidRoom
		}
		events, err := room.submitChoice(conn, c.Move)
		if err != nil {
			return nil, err
		}
		if room.Status() == StatusCompleted {
			m.registry.RemoveRoom(room)
			log.Printf("[Manager] Room %s completed and removed. Final scores: %v", room.ID, room.Scores())
		}
		return events, nil

	case LeaveRoom:
		room, ok := m.registry.Room(c.RoomID)
		if !ok {
			return nil, ErrInvalidRoom
		}
		return m.abandon(room, conn, true)

	case Disconnect:
		m.matchmaker.Cancel(conn)
		room, ok := m.registry.Lookup(conn)
		if !ok {
			return nil, nil
		}
		return m.abandon(room, conn, false)
	}
	return nil, errors.New("unknown command")
}

func (m *Manager) abandon(room *Room, conn ConnectionID, voluntary bool) ([]Event, error) {
	events, err := room.abandon(conn, voluntary)
	if err != nil {
		return nil, err
	}
	m.registry.RemoveRoom(room)
	log.Printf("[Manager] Room %s abandoned by %s (voluntary=%t) and removed.", room.ID, conn, voluntary)
	return events, nil
}

func (m *Manager) Stats() Stats {
	s := Stats{
		ActiveRooms: m.registry.ActiveRooms(),
		Connections: m.registry.Len(),
	}
	if w, ok := m.matchmaker.Waiting(); ok {
		s.WaitingConnection = string(w)
	}
	return s
}
