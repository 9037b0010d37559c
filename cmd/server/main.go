package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jokenpo-duel/internal/account"
	"jokenpo-duel/internal/config"
	"jokenpo-duel/internal/events"
	"jokenpo-duel/internal/gateway"
	"jokenpo-duel/internal/network"
	"jokenpo-duel/internal/services/cluster"
	"jokenpo-duel/internal/session"
)

func main() {
	// 1. CARREGA A CONFIGURAÇÃO
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Fatal: failed to load configuration: %v", err)
	}
	log.Printf("[Main] Configuration loaded: ServiceName=%s, Port=%d, RequireAuth=%t, Consul=%q, NATS=%q",
		cfg.ServiceName, cfg.ServicePort, cfg.RequireAuth, cfg.ConsulAddr, cfg.NATSURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := cluster.NewHealthAggregator()

	// 2. CONTAS (AuthProvider)
	store, err := account.Open(cfg.AccountDBPath, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("[Main] Fatal: failed to open account store: %v", err)
	}
	defer store.Close()
	sessions := account.NewSessions(cfg.SessionTTL, cfg.CookieSecure)
	health.AddCheck("accounts", func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return store.Ping(pingCtx)
	})
	go sweepSessions(ctx, sessions, time.Hour)

	// 3. PUBLICAÇÃO DE PARTIDAS (opcional)
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATSURL, cfg.ServiceName, cfg.NATSSubjectPrefix)
		if err != nil {
			log.Fatalf("[Main] Fatal: %v", err)
		}
		publisher = natsPub
		health.AddCheck("nats", func() error {
			if !natsPub.Healthy() {
				return errors.New("not connected")
			}
			return nil
		})
	}
	defer publisher.Close()

	// 4. NÚCLEO DO JOGO
	manager := session.NewManager(session.Options{})
	gw := gateway.New(manager, publisher)
	health.AddInfo("session", func() any { return manager.Stats() })
	health.AddInfo("connections", func() any { return gw.Connections() })

	opts := []network.Option{
		network.WithAuthenticator(sessions, cfg.RequireAuth),
		network.WithAllowedOrigin(cfg.AllowedOrigin),
		network.WithSendBuffer(cfg.SendBuffer),
	}
	server := network.NewServer(gw, opts...)
	go server.Run(ctx)

	// 5. HANDLERS HTTP
	mux := http.NewServeMux()
	server.Register(mux)
	account.RegisterHandlers(mux, store, sessions, cfg.AllowedOrigin)
	mux.HandleFunc("/health", health.Handler())

	// 6. CONSUL (opcional)
	if cfg.ConsulAddr != "" {
		consulManager, err := cluster.NewConsulManager(cfg.ConsulAddr, 10*time.Second)
		if err != nil {
			log.Fatalf("[Main] Fatal: %v", err)
		}
		go consulManager.Monitor(ctx)
		health.AddCheck("consul", consulManager.Check)

		registrar := cluster.NewRegistrar(consulManager, cluster.Registration{
			ServiceName: cfg.ServiceName,
			Hostname:    cfg.AdvertisedHostname,
			Port:        cfg.ServicePort,
			Tags:        []string{"websocket", "matchmaking"},
		})
		if err := registrar.Register(); err != nil {
			log.Fatalf("[Main] Fatal: %v", err)
		}
		defer func() {
			if err := registrar.Deregister(); err != nil {
				log.Printf("[Main] WARN: %v", err)
			}
		}()
	}

	// 7. INICIA O SERVIDOR PRINCIPAL
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[Main] Server (WebSocket & HTTP) listening on %s.", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Main] ERROR: server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] WARN: graceful shutdown failed: %v", err)
	}

	// O Hub ainda desconecta os clientes restantes e publica as partidas
	// abandonadas; o publisher e o store só fecham depois disso.
	select {
	case <-server.Done():
	case <-shutdownCtx.Done():
		log.Println("[Main] WARN: hub did not stop in time.")
	}
}

// sweepSessions remove periodicamente as sessões expiradas.
func sweepSessions(ctx context.Context, sessions *account.Sessions, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.Printf("[Accounts] Removed %d expired sessions.", n)
			}
		}
	}
}
