package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/cli"
	"github.com/alexanderramin/fieldbridge/internal/config"
	"github.com/alexanderramin/fieldbridge/internal/db"
	"github.com/alexanderramin/fieldbridge/internal/logging"
	"github.com/alexanderramin/fieldbridge/internal/repository"
	"github.com/alexanderramin/fieldbridge/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(os.Getenv(config.EnvPrefix + "CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closer.Close()

	// Deliveries live in the local database in both modes.
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	actor := cfg.Actor()
	observer := service.NewLogUseCaseObserver(logger)

	// Wire the office backend: the embedded one, or the remote API.
	var (
		office backend.Backend
		local  *backend.Local
	)
	if cfg.Remote() {
		office = backend.NewClient(backend.ClientConfig{
			BaseURL:            cfg.BaseURL,
			Timeout:            cfg.RequestTimeout(),
			MaxRetries:         cfg.MaxRetries,
			BreakerFailures:    cfg.Breaker.Failures,
			BreakerOpenTimeout: cfg.BreakerOpenTimeout(),
			Actor:              actor,
		}, backend.NewLogObserver(logger))
	} else {
		local = backend.NewLocal(database, db.NewSQLiteUnitOfWork(database))
		office = local
	}
	deliveries := repository.NewSQLiteDeliveryRepo(database)

	app := &cli.App{
		Quotes:     service.NewQuoteService(office, actor, observer),
		Conversion: service.NewConversionService(office, observer),
		Queue:      service.NewQueueService(office, observer),
		Projects:   service.NewProjectService(office, actor, observer),
		Tasks:      service.NewTaskService(office, actor, observer),
		Deliveries: service.NewDeliveryService(deliveries, actor, observer),
		Reminders:  service.NewReminderService(deliveries, service.LogNotifier{Logger: logger}, logger, observer),
		Feed:       service.NewBlockerFeed(office, logger),
		Local:      local,
		Config:     cfg,
		Actor:      actor,
		Logger:     logger,
	}

	// Detect interactive terminal for the cockpit.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Execute root command
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
