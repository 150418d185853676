package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/survey-tally/app"
	"github.com/mbolis/survey-tally/config"
	"github.com/mbolis/survey-tally/database"
	"github.com/mbolis/survey-tally/log"
	"github.com/mbolis/survey-tally/model"
	"github.com/mbolis/survey-tally/routes"
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
	store := database.NewStore(db)
	defer store.Close()

	if cfg.Import != "" {
		if err = importSurveys(store, cfg.Import); err != nil {
			log.Fatal("main.import:", err)
		}
	}

	app := app.App{
		Store:  store,
		Config: cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func importSurveys(store *database.Store, path string) error {
	surveys, err := model.LoadSurveys(path)
	if err != nil {
		return err
	}
	for _, s := range surveys {
		id, err := store.CreateSurvey(context.Background(), s)
		if err != nil {
			return err
		}
		log.Infof("Imported survey %d %q", id, s.Title)
	}
	return nil
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("main.server.shutdown: %s", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
	}
	return err
}
