package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitea.kood.tech/petrkubec/matchrelay/match"
	"gitea.kood.tech/petrkubec/matchrelay/presence"
	"gitea.kood.tech/petrkubec/matchrelay/relay"
	"gitea.kood.tech/petrkubec/matchrelay/store"
)

// persister mirrors registry and graph writes into durable storage.
type persister interface {
	SaveProfile(ctx context.Context, p match.Profile) error
	DeleteProfile(ctx context.Context, id string) error
	SaveConnection(ctx context.Context, a, b string) error
	DeleteConnection(ctx context.Context, a, b string) error
}

// app wires the in-memory state to the HTTP and websocket surface.
type app struct {
	cfg      Config
	log      *zap.Logger
	registry *match.Registry
	graph    *match.Graph
	relay    *relay.Relay
	presence presence.Tracker
	store    persister
	gatherer prometheus.Gatherer
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg Config) (*zap.Logger, error) {
	if cfg.development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &app{
		cfg:      cfg,
		log:      logger,
		registry: match.NewRegistry(),
		graph:    match.NewGraph(),
		gatherer: promReg,
	}

	if cfg.DatabaseURL != "" {
		st, err := openStore(ctx, cfg.DatabaseURL, a.registry, a.graph, logger)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		a.store = st
	} else {
		logger.Warn("DATABASE_URL not set, profiles and connections live in memory only")
	}

	a.presence = presence.NewMemory(cfg.PresenceTTL)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = client.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis ping failed, using in-process presence", zap.Error(err))
		} else {
			a.presence = presence.NewRedis(client, cfg.PresenceTTL)
		}
		cancel()
	}

	a.relay = relay.New(a.registry, a.graph,
		relay.WithLogger(logger.Named("relay")),
		relay.WithMetrics(relay.NewMetrics(promReg)),
		relay.WithPresence(a.presence),
		relay.WithSendBuffer(cfg.RelaySendBuffer),
		relay.WithUndeliverableNotice(cfg.RelayNotifyUndeliverable),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, dsn string, reg *match.Registry, g *match.Graph, logger *zap.Logger) (*store.Store, error) {
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	profiles, edges, err := st.Restore(ctx, reg, g)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	logger.Info("state restored", zap.Int("profiles", profiles), zap.Int("connections", edges))
	return st, nil
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	// Profiles
	mux.Handle("/users", usersHandler(a))     // GET list, POST register
	mux.Handle("/users/", usersDispatcher(a)) // /users/{id}, /users/{id}/presence

	// Matching
	mux.Handle("/matches/", matchesDispatcher(a)) // /matches/{id}, /matches/{id}/detailed
	mux.Handle("/score", scoreHandler(a))

	// Connection graph
	mux.Handle("/connections", connectHandler(a))
	mux.Handle("/connections/", connectionsDispatcher(a)) // GET /connections/{id}, DELETE /connections/{a}/{b}

	// WebSocket relay
	mux.Handle("/ws/chat", wsChatHandler(a))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	return withRequestLog(a.log, withCORS(a.cfg.CORSOrigins, mux))
}

// persist mirrors a state change into the store. Failures are logged and do
// not fail the request; memory stays authoritative.
func (a *app) persist(op string, fn func(ctx context.Context, st persister) error) {
	if a.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := fn(ctx, a.store); err != nil {
		a.log.Warn("persist failed", zap.String("op", op), zap.Error(err))
	}
}
