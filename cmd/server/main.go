package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/profissa/profissa/internal/config"
	"github.com/profissa/profissa/internal/server"
	"github.com/profissa/profissa/internal/storage"
	"github.com/profissa/profissa/internal/storage/memory"
	"github.com/profissa/profissa/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := openStore(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer store.Close()

	srv := server.New(cfg, store)

	go func() {
		log.Printf("profissa backend listening on %s", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

// openStore connects to Postgres, or keeps everything in process when
// DATABASE_URL is "memory" (local demos of the terminal client).
func openStore(ctx context.Context, databaseURL string) (storage.Store, error) {
	if databaseURL == "memory" {
		log.Println("using in-memory store; data is lost on exit")
		return memory.New(), nil
	}
	return postgres.NewStore(ctx, databaseURL)
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
