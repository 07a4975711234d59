package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"abalone/agent"
	"abalone/config"
	"abalone/game"
	"abalone/oracle"
	"abalone/searcher"
	"abalone/server"
)

func main() {
	configPath := flag.String("config", "abalone.yaml", "path to the configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	evaluator := buildEvaluator(cfg)
	a, err := agent.New(game.BelgianDaisy, evaluator, cfg.Workers,
		searcher.WithSimulations(cfg.Simulations),
		searcher.WithMinVisits(cfg.MinVisits),
		searcher.WithDepth(cfg.Depth),
		searcher.WithPollInterval(cfg.PollInterval()),
		searcher.WithMetrics(),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("start agent")
	}
	defer a.Stop()

	srv := server.New(a)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv.Handler(),
	}
	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	log.Info().Str("listen", cfg.Listen).Int("workers", cfg.Workers).Msg("serving")

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			log.Error().Err(err).Msg("server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Msg("graceful shutdown failed")
		_ = httpServer.Close()
	}
}

// buildEvaluator provisions the model artifacts when a model directory is
// configured and falls back to the material evaluator until a model backend
// is attached.
func buildEvaluator(cfg config.Config) oracle.Evaluator {
	if cfg.ModelDir == "" {
		log.Info().Msg("no model directory configured, using the material evaluator")
		return oracle.NewMaterial()
	}
	modelDir, ok := oracle.ModelPresent(cfg.ModelDir)
	if !ok {
		var err error
		modelDir, err = oracle.DownloadModel(cfg.ModelURL, cfg.ModelDir)
		if err != nil {
			log.Fatal().Err(err).Msg("provision model")
		}
	}
	// inference on the saved model runs out of process; the artifacts are
	// provisioned here so the serving setup is complete
	log.Info().Str("model", modelDir).Msg("model artifacts present, using the material evaluator")
	return oracle.NewMaterial()
}
