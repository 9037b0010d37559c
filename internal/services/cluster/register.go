package cluster

import (
	"fmt"
	"log"

	consul "github.com/hashicorp/consul/api"
)

// Registration descreve como o serviço se anuncia no Consul.
type Registration struct {
	ServiceName string
	Hostname    string
	Port        int
	Tags        []string
}

// ID é único por nó: <serviço>-<hostname>.
func (r Registration) ID() string {
	return fmt.Sprintf("%s-%s", r.ServiceName, r.Hostname)
}

func (r Registration) agentRegistration() *consul.AgentServiceRegistration {
	return &consul.AgentServiceRegistration{
		ID:   r.ID(),
		Name: r.ServiceName,
		Port: r.Port,
		Tags: r.Tags,
		Check: &consul.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/health", r.Hostname, r.Port),
			Timeout:  "5s",
			Interval: "10s",
			// Desregistra o serviço se ele ficar crítico por mais de 1 minuto.
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

// Registrar registra o serviço e o registra de novo quando o ConsulManager
// troca de nó (o registro é por agente).
type Registrar struct {
	manager *ConsulManager
	reg     Registration
}

func NewRegistrar(manager *ConsulManager, reg Registration) *Registrar {
	r := &Registrar{manager: manager, reg: reg}
	manager.OnReconnect(func() {
		if err := r.Register(); err != nil {
			log.Printf("[Consul] WARN: re-registration after reconnect failed: %v", err)
		}
	})
	return r
}

func (r *Registrar) Register() error {
	client := r.manager.Client()
	if client == nil {
		return ErrNotConnected
	}
	if err := client.Agent().ServiceRegister(r.reg.agentRegistration()); err != nil {
		return fmt.Errorf("failed to register service %s: %w", r.reg.ID(), err)
	}
	log.Printf("[Consul] Service '%s' registered with ID %s", r.reg.ServiceName, r.reg.ID())
	return nil
}

func (r *Registrar) Deregister() error {
	client := r.manager.Client()
	if client == nil {
		return ErrNotConnected
	}
	if err := client.Agent().ServiceDeregister(r.reg.ID()); err != nil {
		return fmt.Errorf("failed to deregister service %s: %w", r.reg.ID(), err)
	}
	log.Printf("[Consul] Service %s deregistered.", r.reg.ID())
	return nil
}
