package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"orion-bot/bot"
	"orion-bot/config"
	"orion-bot/handlers"
	"orion-bot/utils"
	"orion-bot/utils/database"

	"github.com/rs/zerolog/log"
)

func main() {
	utils.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	utils.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	store, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}

	b, err := bot.New(cfg, store)
	if err != nil {
		store.Close()
		log.Fatal().Err(err).Msg("Error creating bot")
	}

	handlers.Register(b)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil {
		b.Close()
		log.Fatal().Err(err).Msg("Bot stopped with error")
	}
}
