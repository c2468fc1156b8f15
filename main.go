package main

import (
	"os"

	"github.com/rs/zerolog"

	"oraklo/internal/game"
	"oraklo/internal/oracle"
	"oraklo/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		bootLogger := zerolog.New(zerolog.NewConsoleWriter())
		bootLogger.Fatal().Err(err).Msg("configuration error")
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(level).With().Timestamp().Logger()

	saves, err := store.New(cfg.SaveDir, logger.With().Str("component", "store").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open save directory")
	}

	client, err := oracle.New(oracle.Config{
		APIKey:            cfg.APIKey,
		Model:             cfg.Model,
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.OracleTimeout,
		MaxRetries:        cfg.OracleRetries,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}, logger.With().Str("component", "oracle").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build oracle client")
	}

	engine := game.NewEngine(client, saves, logger.With().Str("component", "engine").Logger())
	dm := game.NewDM(client, saves, logger.With().Str("component", "dm").Logger())

	sh := newShell(engine, dm, saves, os.Stdin, os.Stdout)
	sh.run()
}
