package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/mbolis/survey-admin/app"
	"github.com/mbolis/survey-admin/config"
	"github.com/mbolis/survey-admin/database"
	"github.com/mbolis/survey-admin/httpx"
	"github.com/mbolis/survey-admin/log"
	"github.com/mbolis/survey-admin/routes"
	"github.com/mbolis/survey-admin/selection"
	"github.com/mbolis/survey-admin/session"
)

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	client := httpx.NewClient(cfg.APIBase, cfg.DevAPIKey, httpx.WithTimeout(cfg.Timeout))
	if cfg.DevAPIKey != "" {
		log.Warn("main.config: sending static x-api-key, use for local development only")
	}

	app := app.App{
		DB:        db,
		Config:    cfg,
		Client:    client,
		Session:   session.New(client, database.NewKeyValueStore(db, session.StorageKey)),
		Selection: selection.New(),
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
