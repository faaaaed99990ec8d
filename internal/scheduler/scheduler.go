package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/engineeralok/sleeper-footballleague/internal/config"
	"github.com/engineeralok/sleeper-footballleague/internal/models"
	"github.com/engineeralok/sleeper-footballleague/internal/service"
)

type Service interface {
	Refresh(ctx context.Context) error
	Leagues() []models.LeagueStandings
}

type Scheduler struct {
	s           gocron.Scheduler
	svc         Service
	cfg         config.Schedule
	sendMessage func(string) error

	ctx context.Context
}

// NewScheduler builds the refresh and standings jobs. sendMessage may be nil,
// in which case standings are never posted.
func NewScheduler(svc Service, cfg config.Schedule, sendMessage func(string) error, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Location)
	if err != nil {
		slog.Error("Failed to load location, using UTC", "location", cfg.Location, "error", err)
		location = time.UTC
	}

	s, err := gocron.NewScheduler(append([]gocron.SchedulerOption{gocron.WithLocation(location)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		svc:         svc,
		cfg:         cfg,
		sendMessage: sendMessage,
		ctx:         context.Background(),
	}, nil
}

// Start registers the jobs and starts the scheduler. ctx is handed to the
// refresh job.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	_, err := s.s.NewJob(
		gocron.DurationJob(s.cfg.RefreshInterval),
		gocron.NewTask(s.refresh),
		gocron.WithName("standings-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh job: %w", err)
	}

	if s.sendMessage != nil && s.cfg.StandingsCron != "" {
		_, err = s.s.NewJob(
			gocron.CronJob(s.cfg.StandingsCron, false),
			gocron.NewTask(s.sendStandings),
			gocron.WithName("standings-post"),
		)
		if err != nil {
			return fmt.Errorf("failed to create standings job: %w", err)
		}
	}

	s.s.Start()
	slog.Info("Scheduler started", "refresh_interval", s.cfg.RefreshInterval, "standings_cron", s.cfg.StandingsCron)
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) Jobs() int {
	return len(s.s.Jobs())
}

func (s *Scheduler) refresh() {
	if err := s.svc.Refresh(s.ctx); err != nil {
		slog.Error("Scheduled refresh failed", "error", err)
	}
}

func (s *Scheduler) sendStandings() {
	leagues := s.svc.Leagues()
	if len(leagues) == 0 {
		slog.Warn("No standings to post")
		return
	}
	for _, ls := range leagues {
		if err := s.sendMessage(service.FormatStandings(ls)); err != nil {
			slog.Error("Failed to post standings", "league_id", ls.League.ID, "error", err)
		}
	}
}
