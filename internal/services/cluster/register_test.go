package cluster

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeAgent responde às rotas do agente Consul que o serviço usa.
type fakeAgent struct {
	mu    sync.Mutex
	calls []string
	down  bool
}

func (a *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, r.Method+" "+r.URL.Path)
	if a.down {
		http.Error(w, "agent down", http.StatusInternalServerError)
		return
	}
	if r.URL.Path == "/v1/status/leader" {
		w.Write([]byte(`"10.0.0.1:8300"`))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *fakeAgent) called(call string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.calls {
		if c == call {
			return true
		}
	}
	return false
}

func TestRegistrationID(t *testing.T) {
	reg := Registration{ServiceName: "jokenpo-duel", Hostname: "node-a", Port: 8080}
	if reg.ID() != "jokenpo-duel-node-a" {
		t.Errorf("ID() = %s", reg.ID())
	}
	ar := reg.agentRegistration()
	if ar.Check == nil || ar.Check.HTTP != "http://node-a:8080/health" {
		t.Errorf("check = %+v", ar.Check)
	}
}

func TestRegistrarAgainstAgent(t *testing.T) {
	agent := &fakeAgent{}
	ts := httptest.NewServer(agent)
	defer ts.Close()

	// O primeiro endereço não existe: o cliente deve pular para o próximo.
	manager, err := NewConsulManager("127.0.0.1:1, "+ts.URL, time.Second)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if err := manager.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}

	r := NewRegistrar(manager, Registration{ServiceName: "jokenpo-duel", Hostname: "node-a", Port: 8080})
	if err := r.Register(); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Deregister(); err != nil {
		t.Fatalf("deregister: %v", err)
	}
	if !agent.called("PUT /v1/agent/service/register") {
		t.Error("register was not sent to the agent")
	}
	if !agent.called("PUT /v1/agent/service/deregister/jokenpo-duel-node-a") {
		t.Error("deregister was not sent to the agent")
	}
}

func TestConsulManagerNoNodes(t *testing.T) {
	agent := &fakeAgent{down: true}
	ts := httptest.NewServer(agent)
	defer ts.Close()

	_, err := NewConsulManager(ts.URL, time.Second)
	if err == nil || !strings.Contains(err.Error(), "no Consul node available") {
		t.Fatalf("err = %v", err)
	}
}
