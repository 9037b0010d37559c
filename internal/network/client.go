package network

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Tempo para aguardar por uma escrita na conexão.
	writeWait = 10 * time.Second

	// Tempo máximo para aguardar por uma resposta de pong do cliente.
	pongWait = 60 * time.Second

	// Frequência com que enviamos pings para o cliente. Deve ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Client é a representação de um jogador conectado do ponto de vista do servidor.
// Ele agrupa a conexão, a identidade que o transporte deu a ela e o canal de saída.
type Client struct {
	// id é único por conexão viva. É a única identidade que o jogo conhece.
	id string

	// identity é o usuário autenticado, vazio para conexões anônimas.
	identity string

	conn *websocket.Conn
	hub  *Hub

	// Canal bufferizado para mensagens de saída.
	// O Hub coloca as mensagens aqui, e a goroutine writeLoop do cliente as envia.
	send chan Message
}

func newClient(id, identity string, conn *websocket.Conn, hub *Hub, buffer int) *Client {
	return &Client{
		id:       id,
		identity: identity,
		conn:     conn,
		hub:      hub,
		send:     make(chan Message, buffer),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Identity() string { return c.identity }

func (c *Client) RemoteAddr() string {
	if c.conn == nil {
		return "unknown"
	}
	return c.conn.RemoteAddr().String()
}

// Send expõe o canal de saída. Só deve ser usado pela goroutine do Hub,
// que é quem fecha o canal na desconexão.
func (c *Client) Send() chan<- Message {
	return c.send
}

// TrySend coloca msg no buffer sem bloquear o Hub. Retorna false se o buffer
// estiver cheio e a mensagem foi descartada.
func (c *Client) TrySend(msg Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) readLoop() {
	// Garante que a limpeza ocorrerá quando o loop terminar.
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[Client %s] Unexpected read error from %s: %v", c.id, c.RemoteAddr(), err)
			}
			return
		}

		if !c.hub.forward(clientMessage{client: c, msg: msg}) {
			return
		}
	}
}

// writeLoop bombeia mensagens do canal 'send' do cliente para a conexão WebSocket.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			// O canal 'send' foi fechado pelo Hub: o cliente foi desregistrado.
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[Client %s] Write error to %s: %v", c.id, c.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Se o ping falhar, a conexão está morta.
			}
		}
	}
}
