package cluster

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"
)

// CheckFunc realiza uma verificação de saúde. Retorna erro se ela falhar.
type CheckFunc func() error

// InfoFunc fornece dados informativos para o relatório (não afetam o status).
type InfoFunc func() any

// HealthReport é o corpo devolvido por /health.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Info   map[string]any    `json:"info,omitempty"`
}

// HealthAggregator permite registrar múltiplas verificações de saúde e as expõe
// através de um único endpoint HTTP.
type HealthAggregator struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
	info   map[string]InfoFunc
}

func NewHealthAggregator() *HealthAggregator {
	return &HealthAggregator{
		checks: make(map[string]CheckFunc),
		info:   make(map[string]InfoFunc),
	}
}

func (h *HealthAggregator) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

func (h *HealthAggregator) AddInfo(name string, info InfoFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.info[name] = info
}

// Report executa todas as verificações. healthy é false se alguma falhar.
func (h *HealthAggregator) Report() (HealthReport, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	report := HealthReport{Status: "healthy", Checks: make(map[string]string, len(h.checks))}
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	for _, name := range names {
		if err := h.checks[name](); err != nil {
			report.Checks[name] = err.Error()
			healthy = false
			continue
		}
		report.Checks[name] = "ok"
	}
	if !healthy {
		report.Status = "unhealthy"
	}

	if len(h.info) > 0 {
		report.Info = make(map[string]any, len(h.info))
		for name, fn := range h.info {
			report.Info[name] = fn()
		}
	}
	return report, healthy
}

// Handler responde 200 se todas as verificações passarem e 503 caso contrário.
func (h *HealthAggregator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, healthy := h.Report()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			log.Printf("[Health] Unhealthy: %v", report.Checks)
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(report)
	}
}
