package gateway

import (
	"encoding/json"
	"log"
	"sync"

	"jokenpo-duel/internal/events"
	"jokenpo-duel/internal/network"
	"jokenpo-duel/internal/session"
)

// peer é o que o Gateway precisa de uma conexão. *network.Client satisfaz.
type peer interface {
	ID() string
	TrySend(msg network.Message) bool
}

// routeFunc trata um tipo de mensagem recebida.
type routeFunc func(g *Gateway, p peer, payload json.RawMessage)

// Gateway traduz envelopes JSON em comandos do Manager e os eventos de volta
// em envelopes para os destinatários. Implementa network.EventHandler.
type Gateway struct {
	manager   *session.Manager
	publisher events.Publisher

	mu    sync.RWMutex
	peers map[session.ConnectionID]peer

	router map[string]routeFunc
}

// New cria o Gateway. publisher nil vira events.NopPublisher.
func New(manager *session.Manager, publisher events.Publisher) *Gateway {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	g := &Gateway{
		manager:   manager,
		publisher: publisher,
		peers:     make(map[session.ConnectionID]peer),
		router:    make(map[string]routeFunc),
	}
	g.registerRoutes()
	return g
}

// --- Implementação da Interface network.EventHandler ---

func (g *Gateway) OnConnect(c *network.Client) {
	g.connect(c, c.Identity())
}

func (g *Gateway) OnDisconnect(c *network.Client) {
	g.disconnect(c)
}

func (g *Gateway) OnMessage(c *network.Client, msg network.Message) {
	g.handle(c, msg)
}

// Connections retorna quantas conexões o Gateway conhece.
func (g *Gateway) Connections() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.peers)
}

func (g *Gateway) connect(p peer, identity string) {
	id := session.ConnectionID(p.ID())
	g.mu.Lock()
	g.peers[id] = p
	total := len(g.peers)
	g.mu.Unlock()

	log.Printf("[Gateway] Connection %s opened (identity=%q). Total connections: %d", id, identity, total)
	g.reply(p, MsgWelcome, WelcomePayload{ConnectionID: p.ID(), Username: identity})
}

// disconnect esquece o peer ANTES de despachar: o canal de envio dele já
// está fechado e nenhum evento pode ser entregue a ele.
func (g *Gateway) disconnect(p peer) {
	id := session.ConnectionID(p.ID())
	g.mu.Lock()
	delete(g.peers, id)
	g.mu.Unlock()

	log.Printf("[Gateway] Connection %s closed.", id)
	g.dispatch(id, session.Disconnect{})
}

func (g *Gateway) handle(p peer, msg network.Message) {
	route, ok := g.router[msg.Type]
	if !ok {
		log.Printf("[Gateway] WARN: unknown message type %q from %s", msg.Type, p.ID())
		g.replyError(p, "unknown message type: "+msg.Type)
		return
	}
	route(g, p, msg.Payload)
}

// dispatch entrega o comando ao Manager e distribui os eventos resultantes.
func (g *Gateway) dispatch(conn session.ConnectionID, cmd session.Command) {
	evs := g.manager.Dispatch(conn, cmd)
	for _, ev := range evs {
		g.deliver(ev)
	}
	g.publish(conn, evs)
}

func (g *Gateway) deliver(ev session.Event) {
	msg, err := network.NewMessage(string(ev.Type), ev.Payload)
	if err != nil {
		log.Printf("[Gateway] ERROR: failed to encode %s for room %s: %v", ev.Type, ev.RoomID, err)
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, to := range ev.To {
		p, ok := g.peers[to]
		if !ok {
			log.Printf("[Gateway] WARN: %s for %s dropped: connection is gone", ev.Type, to)
			continue
		}
		if !p.TrySend(msg) {
			log.Printf("[Gateway] WARN: %s for %s dropped: send buffer full", ev.Type, to)
		}
	}
}

func (g *Gateway) reply(p peer, msgType string, payload any) {
	msg, err := network.NewMessage(msgType, payload)
	if err != nil {
		log.Printf("[Gateway] ERROR: failed to encode %s: %v", msgType, err)
		return
	}
	if !p.TrySend(msg) {
		log.Printf("[Gateway] WARN: %s for %s dropped: send buffer full", msgType, p.ID())
	}
}

func (g *Gateway) replyError(p peer, text string) {
	g.reply(p, MsgError, ErrorPayload{Error: text})
}
