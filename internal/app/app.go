package app

import (
	"context"
	"net/http"
	"time"

	"github.com/finpal/finpal/internal/config"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}
	return New(context.Background(), cfg)
}

// New builds the application from an already loaded configuration.
func New(ctx context.Context, cfg config.Application) (*Application, error) {
	deps, err := BuildDependencies(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Server.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, router: r, srv: srv}, nil
}

func (a *Application) Handler() http.Handler {
	return a.router
}

// Run starts the HTTP server and blocks.
func (a *Application) Run() error {
	defer a.deps.Close()
	log.Infof("Starting server on %s (storage: %s)", a.srv.Addr, a.cfg.Storage.Driver)
	return a.srv.ListenAndServe()
}
