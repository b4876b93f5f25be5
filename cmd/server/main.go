// Command server runs the aufgabe task-list API.
//
// Configuration comes from a YAML file and AUFGABE_* environment
// variables; see pkg/config. The only required setting is the token
// signing secret:
//
//	AUFGABE_SIGNING_SECRET - bearer-token signing secret (required)
//	AUFGABE_PORT           - listen port (default: 8080)
//	AUFGABE_STORAGE        - storage type: "memory" or "postgres" (default: "memory")
//	AUFGABE_POSTGRES_DSN   - PostgreSQL connection string
//	AUFGABE_LOG_LEVEL      - debug, info, warn, error (default: "info")
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aufgabe-dev/aufgabe/pkg/auth"
	"github.com/aufgabe-dev/aufgabe/pkg/config"
	"github.com/aufgabe-dev/aufgabe/pkg/observability"
	"github.com/aufgabe-dev/aufgabe/pkg/storage/memory"
	"github.com/aufgabe-dev/aufgabe/pkg/storage/postgres"
	"github.com/aufgabe-dev/aufgabe/pkg/todo"
	"github.com/aufgabe-dev/aufgabe/pkg/transport"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// store is the union of the persistence interfaces the handlers need,
// implemented by both the memory and postgres backends.
type store interface {
	auth.AccountStore
	todo.Store
	HealthCheck(ctx context.Context) error
	Close() error
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	setupLogging(cfg.Logging.Level)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := auth.NewService(
		st,
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		auth.NewTokenCodec([]byte(cfg.Auth.SigningSecret)),
	)

	mux := http.NewServeMux()
	auth.NewHandler(svc).Register(mux)
	todo.NewHandler(st).Register(mux)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := st.HealthCheck(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	bypass := append([]string{"/v1/accounts", "/v1/auth/login"}, auth.DefaultBypassEndpoints...)
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
		bypass = append(bypass, cfg.Observability.Metrics.Path)
	}

	handler := transport.Chain(
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(slog.Default()),
		observability.MetricsMiddleware,
		auth.Middleware(svc, bypass),
	)(mux)

	srv := transport.NewServer(handler,
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transport.WithShutdownTimeout(10*time.Second),
	)

	slog.Info("server configured",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	return srv.ListenAndServe()
}

// openStore creates the configured storage backend.
func openStore(cfg *config.Config) (store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		st, err := postgres.New(context.Background(), postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres")
		return st, nil
	default:
		slog.Info("storage enabled", "type", "memory")
		return memory.New(), nil
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
