package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Kind é a fase do ciclo de vida de uma partida.
type Kind string

const (
	KindStarted   Kind = "started"
	KindCompleted Kind = "completed"
	KindAbandoned Kind = "abandoned"
)

// DefaultSubjectPrefix é o prefixo usado quando nenhum é configurado.
const DefaultSubjectPrefix = "jokenpo.match"

// MatchRecord é o registro publicado para cada transição de uma partida.
// Nada disso é persistido aqui: quem assina decide o que fazer.
type MatchRecord struct {
	Kind      Kind            `json:"kind"`
	RoomID    string          `json:"roomId"`
	Players   []string        `json:"players"`
	Scores    json.RawMessage `json:"scores,omitempty"`
	Winner    *string         `json:"winner,omitempty"`
	Reason    string          `json:"reason,omitempty"` // "left" ou "disconnected" em partidas abandonadas
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher recebe os registros de partida. Publish não deve bloquear o Hub.
type Publisher interface {
	Publish(rec MatchRecord) error
	Close() error
}

// NopPublisher descarta tudo. Usado quando NATS_URL não está configurado.
type NopPublisher struct{}

func (NopPublisher) Publish(MatchRecord) error { return nil }
func (NopPublisher) Close() error              { return nil }

// Subject monta o assunto NATS de um registro: <prefix>.<kind>.
func Subject(prefix string, kind Kind) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + "." + string(kind)
}

// NATSPublisher publica os registros como JSON num servidor NATS.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher conecta em url. A conexão se reconecta sozinha; enquanto
// estiver fora, Publish devolve erro e o registro é perdido.
func NewNATSPublisher(url, serviceName, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(serviceName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[NATS] Disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("[NATS] Reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Printf("[NATS] Connected to %s. Publishing match records under %s", nc.ConnectedUrl(), Subject(prefix, "*"))
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

func (p *NATSPublisher) Publish(rec MatchRecord) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(Subject(p.prefix, rec.Kind), data); err != nil {
		return fmt.Errorf("failed to publish %s record for %s: %w", rec.Kind, rec.RoomID, err)
	}
	return nil
}

// Healthy informa se a conexão com o servidor está de pé.
func (p *NATSPublisher) Healthy() bool {
	return p.nc.IsConnected()
}

// Close esvazia o buffer de saída antes de fechar a conexão.
func (p *NATSPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}

// Encode serializa o registro, preenchendo o timestamp quando ausente.
func Encode(rec MatchRecord) ([]byte, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match record: %w", err)
	}
	return data, nil
}
