package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"telegram-tag-all-bot/bot"
	"telegram-tag-all-bot/config"
	"telegram-tag-all-bot/directory"
	"telegram-tag-all-bot/logging"
	"telegram-tag-all-bot/storage"
	"telegram-tag-all-bot/tagall"
)

func main() {
	// Parse command-line flags
	verbose := flag.Bool("v", false, "Enable verbose logging (LevelInfo)")
	veryVerbose := flag.Bool("vv", false, "Enable very verbose logging (LevelDebug)")
	flag.Parse()

	setLogLevel(*verbose, *veryVerbose)

	slog.Debug("main: Command-line flags parsed", "verbose", *verbose, "very_verbose", *veryVerbose)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("main: Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("main: Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Debug("main: Initializing storage", "db_path", cfg.Storage.DatabasePath)
	store, err := storage.New(cfg.Storage.DatabasePath)
	if err != nil {
		slog.Error("main: Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("main: Failed to close storage", "error", err)
		}
	}()

	dir := directory.NewClient(directory.Config{
		APIID:       cfg.Telegram.APIID,
		APIHash:     cfg.Telegram.APIHash,
		BotToken:    cfg.Telegram.BotToken,
		SessionPath: cfg.Telegram.SessionPath,
	}, directory.WithLogger(slog.Default()))

	api, err := bot.NewAPI(cfg.Telegram.BotToken, slog.Default())
	if err != nil {
		slog.Error("main: Failed to initialize bot API", "error", err)
		os.Exit(1)
	}

	service := tagall.NewService(
		dir,
		store,
		bot.NewTransport(api, slog.Default()),
		tagall.NewPendingRequests(),
		tagall.WithLogger(slog.Default()),
	)
	tagBot := bot.New(api, service, store, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dir.Run(ctx)
	})
	g.Go(func() error {
		slog.Info("main: Starting bot...")
		return tagBot.Start(ctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("main: Bot stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("main: Bot stopped")
}

// setLogLevel configures the logging level based on the provided flags
func setLogLevel(verbose, veryVerbose bool) {
	logLevel := slog.LevelWarn // Default level
	if veryVerbose {
		logLevel = slog.LevelDebug
	} else if verbose {
		logLevel = slog.LevelInfo
	}

	// Structured JSON output with bot tokens masked
	logger := logging.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Debug("main: Log level set to", "level", logLevel.String())
}
