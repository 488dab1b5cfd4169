package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/rs/zerolog"

	"github.com/MichaelBrownui/PrivacyPoker/internal/app"
	"github.com/MichaelBrownui/PrivacyPoker/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	var (
		home      = flag.String("home", cfg.Home, "app home directory (state will be stored under <home>/app)")
		addr      = flag.String("addr", cfg.ListenAddr, "ABCI listen address")
		transport = flag.String("transport", cfg.Transport, "ABCI transport (socket|grpc)")
		logLevel  = flag.String("log-level", cfg.LogLevel, "log level (trace|debug|info|warn|error)")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fatal(err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	a, err := app.New(*home, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init app")
	}

	srv, err := server.NewServer(*addr, *transport, a)
	if err != nil {
		logger.Fatal().Err(err).Msg("create abci server")
	}

	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start abci server")
	}
	defer func() { _ = srv.Stop() }()

	logger.Info().Str("addr", *addr).Str("home", *home).Msg("pokerd listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

func fatal(err error) {
	l := zerolog.New(os.Stderr)
	l.Fatal().Err(err).Send()
}
