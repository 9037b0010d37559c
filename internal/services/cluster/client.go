package cluster

import (
	"fmt"
	"log"
	"strings"

	consul "github.com/hashicorp/consul/api"
)

// NewConsulClient tenta cada endereço da lista (separada por vírgulas) até
// encontrar um agente que enxergue um líder.
func NewConsulClient(addrs string) (*consul.Client, string, error) {
	for _, node := range strings.Split(addrs, ",") {
		node = strings.TrimSpace(node)
		if node == "" {
			continue
		}
		cfg := consul.DefaultConfig()
		cfg.Address = node

		client, err := consul.NewClient(cfg)
		if err != nil {
			log.Printf("[Consul] Failed to create client for %s: %v", node, err)
			continue
		}

		// Teste rápido de saúde
		if _, err := client.Status().Leader(); err != nil {
			log.Printf("[Consul] Node %s did not answer the leader check: %v", node, err)
			continue
		}

		log.Printf("[Consul] Connected to node %s", node)
		return client, node, nil
	}

	return nil, "", fmt.Errorf("no Consul node available in %q", addrs)
}
