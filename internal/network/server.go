package network

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server promove conexões HTTP para WebSocket e as entrega ao Hub.
type Server struct {
	hub *Hub

	upgrader websocket.Upgrader

	auth        Authenticator
	requireAuth bool
	sendBuffer  int
}

// Option configura o Server.
type Option func(*Server)

// WithAuthenticator liga o AuthProvider. Com required=true, upgrades sem
// identidade recebem 401.
func WithAuthenticator(auth Authenticator, required bool) Option {
	return func(s *Server) {
		s.auth = auth
		s.requireAuth = required
	}
}

// WithAllowedOrigin restringe a origem do handshake. Vazio aceita qualquer origem.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		if origin == "" {
			return
		}
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == origin
		}
	}
}

// WithSendBuffer define o tamanho do buffer de saída de cada cliente.
func WithSendBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sendBuffer = n
		}
	}
}

// NewServer recebe o EventHandler: é o ponto de injeção da lógica do jogo.
func NewServer(handler EventHandler, opts ...Option) *Server {
	s := &Server{
		hub: NewHub(handler),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sendBuffer: 256,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run bloqueia processando eventos do Hub até ctx ser cancelado.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

// Done é fechado quando Run termina e todos os clientes já foram desconectados.
func (s *Server) Done() <-chan struct{} {
	return s.hub.Done()
}

// Register instala a rota do WebSocket no mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.wsHandler)
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	var identity string
	if s.auth != nil {
		if id, ok := s.auth.CurrentIdentity(r); ok {
			identity = id
		} else if s.requireAuth {
			http.Error(w, `{"error": "not_authenticated"}`, http.StatusUnauthorized)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Server] Failed to upgrade connection from %s: %v", r.RemoteAddr, err)
		return
	}

	client := newClient(uuid.NewString(), identity, conn, s.hub, s.sendBuffer)
	if !s.hub.registerClient(client) {
		conn.Close()
		return
	}

	go client.writeLoop()
	go client.readLoop()
}
