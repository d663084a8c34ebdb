package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rahmanmohd/incubator-api/internal/adapter/repo"
	"github.com/rahmanmohd/incubator-api/internal/feed"
	"github.com/rahmanmohd/incubator-api/internal/http/handlers"
	"github.com/rahmanmohd/incubator-api/internal/http/httpapi"
	"github.com/rahmanmohd/incubator-api/internal/infra"
	"github.com/rahmanmohd/incubator-api/internal/infra/geoip"
	"github.com/rahmanmohd/incubator-api/internal/mailer"
	"github.com/rahmanmohd/incubator-api/internal/middleware"
	"github.com/rahmanmohd/incubator-api/internal/review"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store := repo.NewApplicationStore(infra.NewSQLRunner(dbpool, logger))

	var outbound mailer.Mailer
	if cfg.EmailAPIKey != "" {
		outbound, err = mailer.NewClient(mailer.ClientOptions{
			APIKey:  cfg.EmailAPIKey,
			BaseURL: cfg.EmailAPIBaseURL,
			From:    cfg.EmailFrom,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure email client")
		}
	} else {
		logger.Warn().Msg("EMAIL_API_KEY not set, notifications are log-only")
		outbound = mailer.NewLogMailer(logger)
	}

	hub := feed.NewHub(cfg.FeedBufferSize, logger)

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
		if closer, ok := resolver.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	}

	app := handlers.NewApp(
		review.NewAggregator(store, logger),
		review.NewNotifier(store, outbound, hub, logger),
		feed.NewWSHandler(hub, logger),
		logger,
	)

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   countryLookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
