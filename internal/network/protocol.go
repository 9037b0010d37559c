package network

import (
	"encoding/json"
	"fmt"
)

// Message é o envelope padrão para toda a comunicação.
// Ele contém um tipo para roteamento e um payload com os dados.
type Message struct {
	Type    string          `json:"type"`              // Ex: "submit_choice", "round_result"
	Payload json.RawMessage `json:"payload,omitempty"` // Decodificado depois, por quem conhece o tipo.
}

// MaxMessageSize limita o tamanho de uma mensagem recebida.
const MaxMessageSize = 64 * 1024

// NewMessage monta um envelope serializando o payload. payload nil gera um envelope sem payload.
func NewMessage(msgType string, payload any) (Message, error) {
	msg := Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal payload for %s: %w", msgType, err)
	}
	msg.Payload = data
	return msg, nil
}

// DecodePayload lê o payload do envelope em v.
func (m Message) DecodePayload(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("message %s has no payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("invalid payload for %s: %w", m.Type, err)
	}
	return nil
}
