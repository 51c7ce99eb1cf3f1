// Command scannerd runs the live token-pair scanner: it merges
// paginated snapshot queries with the streaming update feed into one
// canonical dataset and serves it over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tokenscan/internal/api"
	"tokenscan/internal/config"
	"tokenscan/internal/connection"
	"tokenscan/internal/logger"
	"tokenscan/internal/server"
	"tokenscan/internal/store"
	"tokenscan/internal/version"
	"tokenscan/internal/view"
)

func main() {
	configPath := flag.String("config", "configs/scannerd.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting scannerd",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("instance_id", cfg.Instance.ID),
		zap.String("rest_url", cfg.API.RestURL),
		zap.String("ws_url", cfg.Stream.WSURL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.Stringer("signal", sig))
		cancel()
	}()

	apiClient := api.NewClient(
		cfg.API.RestURL,
		api.WithLogger(log),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	st := store.New(store.Config{
		HistoryLimit: cfg.Scanner.HistoryLimit,
		EffectTTL:    cfg.Scanner.EffectTTL,
	}, log)

	connCfg := connection.DefaultManagerConfig()
	connCfg.URL = cfg.Stream.WSURL
	connCfg.ReconnectBaseDelay = cfg.Stream.ReconnectBaseDelay
	connCfg.ReconnectMaxDelay = cfg.Stream.ReconnectMaxDelay
	connCfg.SendRetryInterval = cfg.Stream.SendRetryInterval
	connCfg.Client.PingInterval = cfg.Stream.PingInterval
	conn := connection.NewManager(connCfg, log)
	conn.Start(ctx)

	controller := view.New(view.Config{
		Filters:         cfg.Scanner.Filters(),
		Pages:           cfg.Scanner.Pages,
		FlushInterval:   cfg.Scanner.FlushInterval,
		RefreshInterval: cfg.Scanner.RefreshInterval,
	}, view.Deps{
		Fetcher: apiClient,
		Conn:    conn,
		Store:   st,
	}, log)
	controller.Start(ctx)

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, st, conn, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error("http server failed", zap.Error(err))
			cancel()
		}
	}

	log.Info("shutting down")

	shutdownCtx := context.Background()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", zap.Error(err))
	}
	controller.Stop()
	conn.Stop()

	log.Info("scannerd stopped")
}
