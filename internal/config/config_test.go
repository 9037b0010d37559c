package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_ADVERTISED_HOSTNAME", "node-a")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServicePort != 8080 || cfg.Addr() != ":8080" {
		t.Errorf("port = %d, addr = %s", cfg.ServicePort, cfg.Addr())
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl = %s", cfg.SessionTTL)
	}
	if cfg.BcryptCost != 10 || cfg.SendBuffer != 256 {
		t.Errorf("bcrypt cost = %d, send buffer = %d", cfg.BcryptCost, cfg.SendBuffer)
	}
	if cfg.NATSSubjectPrefix != "jokenpo.match" || cfg.NATSURL != "" {
		t.Errorf("nats = %q %q", cfg.NATSURL, cfg.NATSSubjectPrefix)
	}
	if cfg.AdvertisedHostname != "node-a" {
		t.Errorf("hostname = %q", cfg.AdvertisedHostname)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_PORT", "9090")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ALLOWED_ORIGIN", "http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != ":9090" || !cfg.RequireAuth || cfg.SessionTTL != 30*time.Minute {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.AllowedOrigin != "http://localhost:3000" {
		t.Errorf("origin = %q", cfg.AllowedOrigin)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("SERVICE_PORT", "not-an-int")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}

	t.Setenv("SERVICE_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Fatal("out of range port should fail")
	}
}
