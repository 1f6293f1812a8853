package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"profitly/bootstrap"
	"profitly/config"
	"profitly/helper"
	"profitly/shared/logger"
	"profitly/shared/timezone"
)

const (
	argLength = 2
)

func main() {
	if _, err := timezone.SetDefault(bootstrap.DefaultTimezone); err != nil {
		log.Fatal().Err(err).Msg("Failed to set default timezone")
	}

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down/drop/step-up) is required")
	}

	cfg := config.Get()

	logger.InitLogger(os.Stdout, cfg.Server.Env)
	logger.SetLogLevel(cfg)

	if err := helper.Runner(cfg, os.Args[1]); err != nil {
		log.Fatal().Err(err).Str("action", os.Args[1]).Msg("Migration failed")
	}
}
