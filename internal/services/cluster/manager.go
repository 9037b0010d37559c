package cluster

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	consul "github.com/hashicorp/consul/api"
)

// ErrNotConnected é devolvido quando nenhum nó Consul está acessível.
var ErrNotConnected = errors.New("not connected to consul")

// ConsulManager mantém uma conexão com algum nó saudável do cluster e troca
// de nó quando o atual para de responder.
type ConsulManager struct {
	addrs       string
	interval    time.Duration
	mu          sync.RWMutex
	client      *consul.Client
	currentAddr string
	onReconnect []func()
}

// NewConsulManager conecta no primeiro nó disponível de addrs.
func NewConsulManager(addrs string, interval time.Duration) (*ConsulManager, error) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	m := &ConsulManager{addrs: addrs, interval: interval}
	if err := m.reconnect(); err != nil {
		return nil, err
	}
	return m, nil
}

// OnReconnect registra uma função chamada depois de cada troca de nó.
func (m *ConsulManager) OnReconnect(callback func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnect = append(m.onReconnect, callback)
}

// Client retorna o cliente atual, ou nil se estiver desconectado.
func (m *ConsulManager) Client() *consul.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// Check é usado pelo health aggregator.
func (m *ConsulManager) Check() error {
	client := m.Client()
	if client == nil {
		return ErrNotConnected
	}
	if _, err := client.Status().Leader(); err != nil {
		return err
	}
	return nil
}

func (m *ConsulManager) reconnect() error {
	client, addr, err := NewConsulClient(m.addrs)

	m.mu.Lock()
	m.client, m.currentAddr = client, addr
	callbacks := append([]func(){}, m.onReconnect...)
	m.mu.Unlock()

	if err != nil {
		return err
	}
	for _, cb := range callbacks {
		cb()
	}
	return nil
}

// Monitor verifica a conexão periodicamente até ctx ser cancelado.
func (m *ConsulManager) Monitor(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := m.Check()
		if err == nil {
			continue
		}
		m.mu.RLock()
		addr := m.currentAddr
		m.mu.RUnlock()
		log.Printf("[Consul] WARN: node %q failed the health check: %v. Trying other nodes.", addr, err)

		if err := m.reconnect(); err != nil {
			log.Printf("[Consul] WARN: reconnect failed: %v", err)
		}
	}
}
