package main

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/config"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/server"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	s := server.NewServer(cfg)

	jobsCtx, cancelJobs := context.WithCancel(context.Background())
	go s.RunBackgroundJobs(jobsCtx)

	done := make(chan bool, 1)
	go s.GracefulShutdown(cancelJobs, done)

	err = s.Start()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
