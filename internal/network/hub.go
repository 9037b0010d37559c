package network

import (
	"context"
	"log"
)

// clientMessage empacota uma mensagem com o cliente que a enviou.
type clientMessage struct {
	client *Client
	msg    Message
}

// Hub mantém o conjunto de clientes ativos e roteia eventos para o handler.
// Todos os eventos passam por uma única goroutine (Run): o handler nunca vê
// dois eventos ao mesmo tempo.
type Hub struct {
	// Acessado SOMENTE pela goroutine do Hub.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	incoming   chan clientMessage

	// Fechado quando Run termina, para ninguém ficar preso nos canais acima.
	done chan struct{}

	handler EventHandler
}

func NewHub(handler EventHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		done:       make(chan struct{}),
		handler:    handler,
	}
}

// Run processa registros, desregistros e mensagens até ctx ser cancelado.
// Ao sair, desconecta todos os clientes restantes.
func (h *Hub) Run(ctx context.Context) {
	log.Println("[Hub] Started.")
	defer func() {
		for client := range h.clients {
			h.drop(client)
		}
		close(h.done)
		log.Println("[Hub] Stopped.")
	}()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.handler.OnConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}

		case clientMsg := <-h.incoming:
			// Mensagens de um cliente já desregistrado são descartadas.
			if _, ok := h.clients[clientMsg.client]; ok {
				h.handler.OnMessage(clientMsg.client, clientMsg.msg)
			}

		case <-ctx.Done():
			return
		}
	}
}

// drop remove o cliente, fecha o canal de envio (sinal para o writeLoop parar)
// e avisa o handler.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.handler.OnDisconnect(client)
}

// Done é fechado quando Run termina, depois de todos os OnDisconnect.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) registerClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) forward(cm clientMessage) bool {
	select {
	case h.incoming <- cm:
		return true
	case <-h.done:
		return false
	}
}
