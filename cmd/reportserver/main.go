package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spriteforge/internal/adapter/repo"
	"spriteforge/internal/httpapi"
	"spriteforge/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := cfg.RequireDatabase(); err != nil {
		logger.Fatal().Err(err).Msg("reportserver: missing database configuration")
	}

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("reportserver: db connection failed")
	}
	defer pool.Close()

	archive := repo.NewReportRepo(infra.NewSQLRunner(pool, logger))
	router := httpapi.NewRouter(httpapi.NewApp(archive, logger))
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("reportserver listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("reportserver: http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("reportserver: failed to shutdown server")
	}
	logger.Info().Msg("reportserver stopped")
}
