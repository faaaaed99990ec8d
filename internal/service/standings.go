package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/engineeralok/sleeper-footballleague/internal/api/fantasy"
	"github.com/engineeralok/sleeper-footballleague/internal/models"
	"github.com/engineeralok/sleeper-footballleague/internal/rotation"
	"github.com/engineeralok/sleeper-footballleague/internal/settings"
)

var (
	ErrNoData         = errors.New("no standings loaded")
	ErrLeagueNotFound = errors.New("no league matches")
	ErrAllFailed      = errors.New("failed to load any league")
)

const matchThreshold = 0.6

type Fetcher interface {
	GetMultipleLeagueStandings(ctx context.Context, leagueIDs []string) ([]models.LeagueStandings, []fantasy.LeagueError)
	ClearCache()
}

// Rotation is the part of rotation.Player the service drives.
type Rotation interface {
	State() rotation.State
	SetItemCount(n int)
	SetInterval(d time.Duration)
	GoTo(index int) bool
}

type Settings interface {
	Get() settings.AppConfig
	Subscribe(buffer int) <-chan settings.AppConfig
	Unsubscribe(ch <-chan settings.AppConfig)
}

// Snapshot is what display clients render: the rotation position and the
// league it points at.
type Snapshot struct {
	Rotation rotation.State           `json:"rotation"`
	Status   models.LoadStatus        `json:"status"`
	Current  *models.LeagueStandings  `json:"current,omitempty"`
	Display  settings.DisplaySettings `json:"displaySettings"`
}

type StandingsService struct {
	api      Fetcher
	rotation Rotation
	settings Settings

	refreshMu sync.Mutex

	mu        sync.RWMutex
	leagues   []models.LeagueStandings
	leagueIDs []string
	status    models.LoadStatus

	subsMu sync.Mutex
	subs   []chan struct{}
}

func NewStandingsService(api Fetcher, rot Rotation, cfg Settings) *StandingsService {
	return &StandingsService{
		api:      api,
		rotation: rot,
		settings: cfg,
		leagues:  []models.LeagueStandings{},
		status:   models.LoadStatus{State: models.LoadIdle},
	}
}

// Refresh fetches every enabled league. When all of them fail the previous
// standings stay in place and the status records the error.
func (s *StandingsService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	ids := s.settings.Get().EnabledLeagueIDs()

	s.mu.Lock()
	s.status.State = models.LoadLoading
	s.mu.Unlock()

	if len(ids) == 0 {
		s.mu.Lock()
		s.leagues = []models.LeagueStandings{}
		s.leagueIDs = ids
		s.status = models.LoadStatus{State: models.LoadReady, UpdatedAt: time.Now()}
		s.mu.Unlock()
		s.rotation.SetItemCount(0)
		s.notify()
		slog.Info("No leagues enabled")
		return nil
	}

	results, failed := s.api.GetMultipleLeagueStandings(ctx, ids)
	failedIDs := make([]string, 0, len(failed))
	for _, f := range failed {
		failedIDs = append(failedIDs, f.LeagueID)
	}

	if len(results) == 0 {
		err := fmt.Errorf("%w: %d requested", ErrAllFailed, len(ids))
		if len(failed) > 0 {
			err = fmt.Errorf("%w: %w", ErrAllFailed, failed[0].Err)
		}
		s.mu.Lock()
		s.status = models.LoadStatus{
			State:         models.LoadError,
			Error:         err.Error(),
			FailedLeagues: failedIDs,
			UpdatedAt:     time.Now(),
		}
		s.mu.Unlock()
		s.notify()
		slog.Error("Standings refresh failed", "leagues", len(ids), "error", err)
		return err
	}

	s.mu.Lock()
	s.leagues = results
	s.leagueIDs = ids
	s.status = models.LoadStatus{
		State:         models.LoadReady,
		FailedLeagues: failedIDs,
		UpdatedAt:     time.Now(),
	}
	s.mu.Unlock()

	s.rotation.SetItemCount(len(results))
	s.notify()
	slog.Info("Standings refreshed", "leagues", len(results), "failed", len(failedIDs))
	return nil
}

// ForceRefresh drops cached API responses before refreshing.
func (s *StandingsService) ForceRefresh(ctx context.Context) error {
	s.api.ClearCache()
	return s.Refresh(ctx)
}

func (s *StandingsService) Leagues() []models.LeagueStandings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.leagues)
}

func (s *StandingsService) Status() models.LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.FailedLeagues = slices.Clone(st.FailedLeagues)
	return st
}

// Current returns the league at the rotation's index.
func (s *StandingsService) Current() (models.LeagueStandings, error) {
	idx := s.rotation.State().CurrentIndex

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.leagues) == 0 {
		return models.LeagueStandings{}, ErrNoData
	}
	idx = max(0, min(idx, len(s.leagues)-1))
	return s.leagues[idx], nil
}

func (s *StandingsService) Snapshot() Snapshot {
	snap := Snapshot{
		Rotation: s.rotation.State(),
		Status:   s.Status(),
		Display:  s.settings.Get().DisplaySettings,
	}
	if cur, err := s.Current(); err == nil {
		snap.Current = &cur
	}
	return snap
}

// FindLeague picks the loaded league whose name best matches query. A name
// containing the query wins outright; otherwise the closest name by edit
// distance is used if it is similar enough.
func (s *StandingsService) FindLeague(query string) (int, models.LeagueStandings, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return -1, models.LeagueStandings{}, fmt.Errorf("%w: empty query", ErrLeagueNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	best := -1
	bestScore := 0.0
	for i, ls := range s.leagues {
		name := strings.ToLower(ls.League.Name)
		if name == "" {
			continue
		}

		var similarity float64
		if strings.Contains(name, q) {
			similarity = 1
		} else {
			distance := fuzzy.LevenshteinDistance(q, name)
			maxLen := float64(max(len(q), len(name)))
			similarity = 1 - float64(distance)/maxLen
		}

		if similarity > matchThreshold && similarity > bestScore {
			best = i
			bestScore = similarity
		}
	}

	if best < 0 {
		return -1, models.LeagueStandings{}, fmt.Errorf("%w: %q", ErrLeagueNotFound, query)
	}
	return best, s.leagues[best], nil
}

// GoToLeague moves the rotation to the league matching query.
func (s *StandingsService) GoToLeague(query string) (models.LeagueStandings, error) {
	idx, ls, err := s.FindLeague(query)
	if err != nil {
		return models.LeagueStandings{}, err
	}
	s.rotation.GoTo(idx)
	return ls, nil
}

// ApplySettings pushes the interval to the rotation and refetches when the
// set of enabled leagues changed.
func (s *StandingsService) ApplySettings(ctx context.Context, cfg settings.AppConfig) error {
	s.rotation.SetInterval(cfg.Interval())

	s.mu.RLock()
	changed := !slices.Equal(s.leagueIDs, cfg.EnabledLeagueIDs())
	s.mu.RUnlock()
	if !changed {
		// display settings may still have changed
		s.notify()
		return nil
	}

	slog.Info("Enabled leagues changed, refreshing", "leagues", len(cfg.EnabledLeagueIDs()))
	return s.Refresh(ctx)
}

// Run follows settings changes until ctx is done.
func (s *StandingsService) Run(ctx context.Context) {
	ch := s.settings.Subscribe(1)
	defer s.settings.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-ch:
			if !ok {
				return
			}
			if err := s.ApplySettings(ctx, cfg); err != nil {
				slog.Error("Failed to apply settings", "error", err)
			}
		}
	}
}

// Subscribe returns a channel signalled whenever the standings, load status
// or display settings change. Signals coalesce; read Snapshot for the data.
func (s *StandingsService) Subscribe(buffer int) <-chan struct{} {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan struct{}, buffer)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

func (s *StandingsService) Unsubscribe(ch <-chan struct{}) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for i, c := range s.subs {
		if c == ch {
			last := len(s.subs) - 1
			s.subs[i] = s.subs[last]
			s.subs[last] = nil
			s.subs = s.subs[:last]
			close(c)
			return
		}
	}
}

func (s *StandingsService) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
