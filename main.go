package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Guneet-syan/Neural-Breach/internal/app"
	"github.com/Guneet-syan/Neural-Breach/internal/cli"
	"github.com/Guneet-syan/Neural-Breach/internal/config"
	"github.com/Guneet-syan/Neural-Breach/pkg/logger"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// команды пишут результат в stdout, лог сервера идёт по настройкам
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		log = logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)
	} else {
		log = logger.NewWithWriter(os.Stderr, "warn", true, cfg.Logging.NoColor)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	factory := func(ctx context.Context) (cli.Application, error) {
		return app.New(ctx, cfg, log)
	}

	c := cli.New(factory, os.Stdin, os.Stdout, log)
	if err := c.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			log.Error().Err(err).Send()
			stop()
			os.Exit(2)
		}
		log.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
