package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gwl-atlas/county-climate-tiles/services/proxy/config"
	httpserver "github.com/gwl-atlas/county-climate-tiles/services/proxy/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.APIKey == "" {
		log.Printf("warning: upstream api key not set; tile requests will return 500")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := httpserver.New(cfg)
	log.Printf("edge proxy listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
