package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/oxidechat/internal/chat"
	"github.com/Tyrowin/oxidechat/internal/config"
	"github.com/Tyrowin/oxidechat/internal/server"
	"github.com/Tyrowin/oxidechat/internal/store"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file loaded before reading the environment")
	flag.Parse()

	if err := run(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log := cfg.Logger()
	log.Info("Starting oxidechat server...")

	db, err := store.Open(cfg.BadgerPath, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	backends, err := server.NewBackends(cfg, db, log)
	if err != nil {
		return err
	}

	hub := chat.NewHub(log.With("component", "hub"), backends.Policy, chat.Options{
		MailboxSize:       cfg.MailboxSize,
		InboundBufferSize: cfg.InboundBufferSize,
		RateLimitBurst:    cfg.RateLimitBurst,
		RateLimitRefill:   cfg.RateLimitRefillInterval,
	})
	go hub.Run()

	srv := server.New(cfg, hub, backends, log)
	httpServer := server.CreateServer(cfg.Addr(), srv.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.StartServer(httpServer, cfg, log)
	}()

	select {
	case err = <-serverErr:
		if err != nil {
			_ = hub.Shutdown(cfg.ShutdownTimeout)
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	}

	// Hijacked WebSocket connections are invisible to http.Server.Shutdown,
	// so the hub closes them separately.
	httpErr := server.ShutdownServer(httpServer, cfg.ShutdownTimeout, log)
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		log.Warn("Hub shutdown incomplete", "error", err)
	}
	log.Info("Server stopped")
	return httpErr
}
