// auctiond serves the timed-auction bidding engine over HTTP.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ragnarsss/auction-ms/config"
	"github.com/Ragnarsss/auction-ms/core"
	"github.com/Ragnarsss/auction-ms/events"
	"github.com/Ragnarsss/auction-ms/httpapi"
	"github.com/Ragnarsss/auction-ms/service"
	"github.com/Ragnarsss/auction-ms/store/memstore"
	"github.com/Ragnarsss/auction-ms/store/pgstore"
)

func main() {
	configPath := flag.String("config", "auctiond.toml", "path to TOML config file")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}
	log = log.Level(level)

	ctx := context.Background()

	store, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer closeStore()

	pub, err := buildPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize publisher")
	}
	defer pub.Close()

	svc := service.New(store, pub, log)
	handler := httpapi.NewHandler(svc, log)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("store", cfg.Store).
			Str("publisher", cfg.Publisher).
			Msg("auctiond listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("stopped")
}

func buildStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (core.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.InitSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	default:
		log.Warn().Msg("using in-memory store, state will not survive restarts")
		return memstore.New(), func() {}, nil
	}
}

func buildPublisher(cfg config.Config) (events.Publisher, error) {
	switch cfg.Publisher {
	case config.PublisherRedis:
		return events.NewRedisPublisher(cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), cfg.RedisDB)
	case config.PublisherNATS:
		return events.NewNATSPublisher(cfg.NATSURL)
	default:
		return events.NopPublisher{}, nil
	}
}
