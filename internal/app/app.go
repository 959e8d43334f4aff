package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/storage"
	"github.com/planhub/planhub/pkg/auth"
	"github.com/planhub/planhub/pkg/planner"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg       config.Application
	router    *mux.Router
	srv       *http.Server
	snapshots planner.SnapshotStore
	tokens    *auth.TokenStore
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	snapshots, err := openSnapshotStore(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.OpenTokenStore(cfg.Auth.TokenPath)
	if err != nil {
		snapshots.Close()
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps, err := BuildDependencies(snapshots, tokens, cfg)
	if err != nil {
		tokens.Close()
		snapshots.Close()
		return nil, err
	}

	// Middleware chain
	SetupMiddleware(r, deps, cfg)

	// Routes
	RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv, snapshots: snapshots, tokens: tokens}, nil
}

// openSnapshotStore picks the snapshot backend from the configuration.
func openSnapshotStore(cfg config.Application) (planner.SnapshotStore, error) {
	switch cfg.Storage.Type {
	case "bolt":
		log.Infof("Using bolt snapshot store at %s", cfg.Storage.Bolt.Path)
		return storage.OpenBolt(cfg.Storage.Bolt.Path)
	case "postgres":
		log.Infof("Using postgres snapshot store at %s:%d", cfg.Storage.Postgres.Host, cfg.Storage.Postgres.Port)
		return storage.OpenPostgres(context.Background(), cfg.Storage.Postgres)
	case "memory":
		log.Warn("Using in-memory snapshot store, nothing will survive a restart")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// Run starts the HTTP server and blocks.
func (a *Application) Run() error {
	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
