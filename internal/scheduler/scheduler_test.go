package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineeralok/sleeper-footballleague/internal/config"
	"github.com/engineeralok/sleeper-footballleague/internal/models"
)

type fakeService struct {
	refreshes atomic.Int32
	err       error
	leagues   []models.LeagueStandings
}

func (f *fakeService) Refresh(context.Context) error {
	f.refreshes.Add(1)
	return f.err
}

func (f *fakeService) Leagues() []models.LeagueStandings { return f.leagues }

func testSchedule() config.Schedule {
	return config.Schedule{
		RefreshInterval: 30 * time.Millisecond,
		StandingsCron:   "30 7 * * 3",
		Location:        "America/Chicago",
	}
}

func TestScheduler_RefreshRunsOnInterval(t *testing.T) {
	svc := &fakeService{err: errors.New("sleeper down")}
	s, err := NewScheduler(svc, testSchedule(), nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 1, s.Jobs())
	require.Eventually(t, func() bool { return svc.refreshes.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_StandingsJobNeedsSink(t *testing.T) {
	s, err := NewScheduler(&fakeService{}, testSchedule(), func(string) error { return nil })
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 2, s.Jobs())
}

func TestScheduler_EmptyCronSkipsStandingsJob(t *testing.T) {
	cfg := testSchedule()
	cfg.StandingsCron = ""
	s, err := NewScheduler(&fakeService{}, cfg, func(string) error { return nil })
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 1, s.Jobs())
}

func TestScheduler_BadCron(t *testing.T) {
	cfg := testSchedule()
	cfg.StandingsCron = "not a cron"
	s, err := NewScheduler(&fakeService{}, cfg, func(string) error { return nil })
	require.NoError(t, err)
	defer s.Stop()

	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_UnknownLocationFallsBack(t *testing.T) {
	cfg := testSchedule()
	cfg.Location = "Mars/Olympus_Mons"
	s, err := NewScheduler(&fakeService{}, cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, s.Stop())
}

func TestScheduler_SendStandings(t *testing.T) {
	svc := &fakeService{leagues: []models.LeagueStandings{
		{League: models.LeagueInfo{ID: "1", Name: "Alpha"}},
		{League: models.LeagueInfo{ID: "2", Name: "Bravo"}},
	}}

	var mu sync.Mutex
	var sent []string
	s, err := NewScheduler(svc, testSchedule(), func(text string) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, text)
		return errors.New("telegram unavailable")
	})
	require.NoError(t, err)
	defer s.Stop()

	s.sendStandings()

	require.Len(t, sent, 2)
	assert.Contains(t, sent[0], "Alpha")
	assert.Contains(t, sent[1], "Bravo")
}

func TestScheduler_SendStandingsNoData(t *testing.T) {
	called := false
	s, err := NewScheduler(&fakeService{}, testSchedule(), func(string) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	defer s.Stop()

	s.sendStandings()
	assert.False(t, called)
}
