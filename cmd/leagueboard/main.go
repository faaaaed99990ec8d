package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/engineeralok/sleeper-footballleague/internal/api/fantasy"
	"github.com/engineeralok/sleeper-footballleague/internal/api/sleeper"
	"github.com/engineeralok/sleeper-footballleague/internal/bot"
	"github.com/engineeralok/sleeper-footballleague/internal/config"
	"github.com/engineeralok/sleeper-footballleague/internal/httpapi"
	"github.com/engineeralok/sleeper-footballleague/internal/repository/memory"
	"github.com/engineeralok/sleeper-footballleague/internal/rotation"
	"github.com/engineeralok/sleeper-footballleague/internal/scheduler"
	"github.com/engineeralok/sleeper-footballleague/internal/service"
	"github.com/engineeralok/sleeper-footballleague/internal/settings"
	"github.com/engineeralok/sleeper-footballleague/internal/storage"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: cfg.Storage.BusyTimeout,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	defaults := settings.Defaults(cfg.Sleeper.LeagueIDs)
	defaults.RotationInterval = cfg.Rotation.Interval.Milliseconds()
	settingsManager := settings.NewManager(store, defaults)
	appCfg := settingsManager.Load(ctx)

	if cfg.Storage.Watch {
		go func() {
			if err := settingsManager.Watch(ctx); err != nil {
				slog.Error("Error watching settings", "error", err)
			}
		}()
	}

	sleeperAPI := sleeper.NewAPI(sleeper.NewClient(cfg.Sleeper))
	fantasyAPI := fantasy.NewAPI(sleeperAPI, memory.NewCache(cfg.Sleeper.CacheTTL, nil))

	rot := rotation.New(rotation.Options{
		Interval:  appCfg.Interval(),
		Loop:      cfg.Rotation.Loop,
		AutoStart: cfg.Rotation.AutoStart,
	})
	player, err := rotation.NewPlayer(rot, rotation.WithProgressInterval(cfg.Rotation.ProgressInterval))
	if err != nil {
		return err
	}
	if err := player.Start(); err != nil {
		return err
	}
	defer func() {
		if err := player.Close(); err != nil {
			slog.Error("Error stopping rotation", "error", err)
		}
	}()

	standingsService := service.NewStandingsService(fantasyAPI, player, settingsManager)
	if err := standingsService.Refresh(ctx); err != nil {
		slog.Error("Initial standings refresh failed", "error", err)
	}
	go standingsService.Run(ctx)

	var sendMessage func(string) error
	if cfg.TelegramBot.Enabled() {
		telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, bot.NewHandler(standingsService, player))
		if err != nil {
			return err
		}
		sendMessage = telegramBot.SendMessage

		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	} else {
		slog.Info("TELEGRAM_TOKEN not set, telegram bot disabled")
	}

	sched, err := scheduler.NewScheduler(standingsService, cfg.Schedule, sendMessage)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Standings: standingsService,
			Player:    player,
			Settings:  settingsManager,
			PublicURL: cfg.Server.PublicURL,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Error starting HTTP server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
