package network

import "net/http"

// EventHandler é a interface que conecta a lógica da rede com a lógica do jogo.
// Todos os métodos são chamados pela goroutine do Hub, um evento por vez.
type EventHandler interface {
	// OnConnect é chamado quando um novo cliente se conecta com sucesso.
	OnConnect(c *Client)

	// OnDisconnect é chamado quando um cliente se desconecta.
	// Depois dele o canal de envio do cliente está fechado.
	OnDisconnect(c *Client)

	// OnMessage é chamado para cada mensagem recebida de um cliente.
	OnMessage(c *Client, msg Message)
}

// Authenticator fornece a identidade autenticada da requisição de upgrade.
// O núcleo do jogo não usa essa identidade; ela só libera (ou não) a conexão.
type Authenticator interface {
	CurrentIdentity(r *http.Request) (string, bool)
}
