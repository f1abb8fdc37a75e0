package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gwl-atlas/county-climate-tiles/services/tiles/config"
	"github.com/gwl-atlas/county-climate-tiles/services/tiles/db"
	httpserver "github.com/gwl-atlas/county-climate-tiles/services/tiles/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection error: %v", err)
	}
	defer store.Close()

	srv := httpserver.New(cfg, store)
	log.Printf("tile host listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
