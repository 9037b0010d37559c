package session

import "sync"

// Registry mapeia cada conexão para a sala em que ela joga, e cada sala pelo id.
// Uma sala tem duas entradas por conexão (uma por participante) que saem juntas.
type Registry struct {
	mu     sync.RWMutex
	byConn map[ConnectionID]*Room
	byID   map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[ConnectionID]*Room),
		byID:   make(map[string]*Room),
	}
}

// Register associa conn à sala. Chamado pelo Matchmaker para os dois participantes.
func (reg *Registry) Register(conn ConnectionID, room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.byConn[conn] = room
	reg.byID[room.ID] = room
}

// Lookup nunca retorna uma sala que não esteja ativa.
func (reg *Registry) Lookup(conn ConnectionID) (*Room, bool) {
	reg.mu.RLock()
	room, ok := reg.byConn[conn]
	reg.mu.RUnlock()
	if !ok || room.Status() != StatusActive {
		return nil, false
	}
	return room, true
}

// Room procura a sala pelo id, com a mesma regra de Lookup.
func (reg *Registry) Room(id string) (*Room, bool) {
	reg.mu.RLock()
	room, ok := reg.byID[id]
	reg.mu.RUnlock()
	if !ok || room.Status() != StatusActive {
		return nil, false
	}
	return room, true
}

func (reg *Registry) Unregister(conn ConnectionID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.byConn, conn)
}

// RemoveRoom apaga, numa só seção crítica, a sala e as entradas dos dois
// participantes que ainda apontam para ela.
func (reg *Registry) RemoveRoom(room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, p := range room.participants {
		if reg.byConn[p] == room {
			delete(reg.byConn, p)
		}
	}
	if reg.byID[room.ID] == room {
		delete(reg.byID, room.ID)
	}
}

// Len é o número de conexões registradas.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.byConn)
}

// ActiveRooms é o número de salas registradas que ainda estão ativas.
// Uma sala recém-concluída fica no registro até o Manager removê-la.
func (reg *Registry) ActiveRooms() int {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.byID))
	for _, room := range reg.byID {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	active := 0
	for _, room := range rooms {
		if room.Status() == StatusActive {
			active++
		}
	}
	return active
}
