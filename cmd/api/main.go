package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"apiscope.dev/internal/auth"
	"apiscope.dev/internal/config"
	"apiscope.dev/internal/history"
	"apiscope.dev/internal/httpapi"
	"apiscope.dev/internal/obs"
	"apiscope.dev/internal/relay"
	"apiscope.dev/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var (
		db        *sql.DB
		userStore auth.Store
		recStore  history.Store
	)
	if cfg.DatabaseDSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err = pg.Open(ctx, cfg.DatabaseDSN)
		cancel()
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		userStore = auth.NewPGStore(db)
		recStore = history.NewPGStore(db)
	} else {
		log.Println("no APISCOPE_PG_DSN set, using in-memory stores")
		userStore = auth.NewMemStore()
		recStore = history.NewMemStore()
	}

	signer, err := auth.NewTokenSigner(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token signer: %v", err)
	}

	api := httpapi.New(httpapi.Options{
		Ready:      httpapi.ReadyProbe{DB: db},
		Version:    version,
		Auth:       auth.NewService(userStore, signer),
		Executor:   relay.NewExecutor(recStore, cfg.OutboundTimeout),
		History:    recStore,
		RateBurst:  cfg.RateBurst,
		RatePerSec: cfg.RatePerSec,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// Write timeout leaves headroom for the outbound call ceiling.
		WriteTimeout: cfg.OutboundTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting apiscope-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
