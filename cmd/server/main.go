package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bragawork/internal/config"
	"bragawork/internal/factory"
	"bragawork/internal/handler"
	"bragawork/internal/util"
)

func main() {
	cfg := config.LoadConfig()
	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)
	if err := cfg.Validate(); err != nil {
		util.Fatal("Invalid configuration", util.ErrorField(err))
	}

	// Initialize factory (which connects the database, sessions and event sinks)
	f, err := factory.NewFactory(cfg)
	if err != nil {
		util.Fatal("Failed to initialize factory", util.ErrorField(err))
	}
	defer f.Close()

	if !f.IsHealthy(context.Background()) {
		util.Warn("Starting degraded, see /health for the failing components")
	}

	router := handler.NewRouter(handler.RouterConfig{
		Services:    f.ServiceFactory(),
		Health:      f,
		StaticDir:   cfg.Server.StaticDir,
		UploadDir:   cfg.Upload.Dir,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      util.Get(),
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if !cfg.Server.EnableTLS {
		util.Warn("Starting HTTP server - TLS is disabled",
			util.String("environment", cfg.Environment),
			util.Int("port", cfg.Server.Port),
		)
		startServers(f, server)
		return
	}

	tlsManager := f.TLSManager()
	server.TLSConfig = tlsManager.GetTLSConfig()

	if !tlsManager.AutoCert() {
		util.Info("Starting HTTPS server",
			util.String("environment", cfg.Environment),
			util.Int("port", cfg.Server.Port),
		)
		startServers(f, server)
		return
	}

	// ACME needs the well-known ports
	server.Addr = ":443"
	challenge := &http.Server{
		Addr:              ":80",
		Handler:           tlsManager.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	util.Info("Starting HTTPS server with AutoCert on port 443",
		util.String("domain", cfg.Server.Domain),
	)
	startServers(f, server, challenge)
}

// startServers runs the primary server (TLS when configured) plus any plain
// helpers, then blocks until a shutdown signal.
func startServers(f *factory.Factory, primary *http.Server, helpers ...*http.Server) {
	errCh := make(chan error, 1+len(helpers))

	go func() {
		var err error
		if primary.TLSConfig != nil {
			err = primary.ListenAndServeTLS("", "")
		} else {
			err = primary.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server %s: %w", primary.Addr, err)
		}
	}()

	for _, srv := range helpers {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}()
	}

	util.Info("Server started successfully",
		util.String("address", primary.Addr),
		util.Bool("tls_enabled", primary.TLSConfig != nil),
	)

	waitForShutdown(f, errCh, append([]*http.Server{primary}, helpers...)...)
}

func waitForShutdown(f *factory.Factory, errCh <-chan error, servers ...*http.Server) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case sig := <-signalChan:
		util.Info("Received shutdown signal", util.String("signal", sig.String()))
	case err := <-errCh:
		util.Error("Server failed", util.ErrorField(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			util.Error("Failed to shutdown server gracefully",
				util.String("address", srv.Addr),
				util.ErrorField(err))
		}
	}
	f.Close()
	util.Info("Server shutdown completed")
}
