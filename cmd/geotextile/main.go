package main

import (
	"github.com/drakos74/geotextile/internal/app"
	"github.com/drakos74/geotextile/internal/inference"
	"github.com/drakos74/geotextile/internal/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	cfg, err := app.LoadService()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	app.SetLevel(cfg.LogLevel)

	service, err := cfg.NewService()
	if err != nil {
		log.Fatal().Err(err).Msg("could not start inference service")
	}

	srv := server.NewServer("geotextile", cfg.Port).
		WithOrigins(cfg.Origins...).
		Add(server.Live()).
		Add(inference.Routes(service, cfg.Debug)...).
		Mount("metrics", promhttp.Handler())
	if cfg.Debug {
		srv.Debug()
	}
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
