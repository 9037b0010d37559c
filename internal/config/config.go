package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config reúne tudo o que o servidor lê do ambiente.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"jokenpo-duel"`
	ServicePort int    `env:"SERVICE_PORT" envDefault:"8080"`

	// Vazio desliga o registro no Consul. Aceita uma lista separada por vírgulas.
	ConsulAddr         string `env:"CONSUL_HTTP_ADDR"`
	AdvertisedHostname string `env:"SERVICE_ADVERTISED_HOSTNAME"`

	AccountDBPath string        `env:"ACCOUNT_DB_PATH" envDefault:"data/accounts.db"`
	RequireAuth   bool          `env:"REQUIRE_AUTH" envDefault:"false"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`
	AllowedOrigin string        `env:"ALLOWED_ORIGIN"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`

	// Vazio desliga a publicação dos registros de partida.
	NATSURL           string `env:"NATS_URL"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"jokenpo.match"`

	SendBuffer int `env:"SEND_BUFFER" envDefault:"256"`
}

// Load lê a configuração do ambiente.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ServicePort <= 0 || cfg.ServicePort > 65535 {
		return Config{}, fmt.Errorf("invalid SERVICE_PORT %d", cfg.ServicePort)
	}
	if cfg.AdvertisedHostname == "" {
		cfg.AdvertisedHostname = hostname()
	}
	return cfg, nil
}

// Addr é o endereço de escuta do servidor HTTP.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServicePort)
}

func hostname() string {
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}
