package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Tyrowin/oxidechat/internal/config"
)

// CreateServer creates an HTTP server for handler listening on addr, with
// timeouts suited to production use. Upgraded WebSocket connections are not
// bound by them.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// StartServer serves until the server is shut down, over TLS when a
// certificate is configured. A clean shutdown returns nil.
func StartServer(server *http.Server, cfg config.Config, log *slog.Logger) error {
	var err error
	if cfg.TLSEnabled() {
		log.Info("Server listening", "addr", server.Addr, "tls", true)
		err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		log.Info("Server listening", "addr", server.Addr, "tls", false)
		err = server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ShutdownServer stops accepting requests and waits up to timeout for
// in-flight ones to finish.
func ShutdownServer(server *http.Server, timeout time.Duration, log *slog.Logger) error {
	log.Info("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
		return err
	}

	log.Info("HTTP server shutdown completed")
	return nil
}
