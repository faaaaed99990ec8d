package fantasy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/engineeralok/sleeper-footballleague/internal/api/sleeper"
	"github.com/engineeralok/sleeper-footballleague/internal/models"
	"github.com/engineeralok/sleeper-footballleague/internal/repository/memory"
	"github.com/engineeralok/sleeper-footballleague/internal/standings"
)

// Source is the subset of the Sleeper API the facade needs.
type Source interface {
	GetLeague(ctx context.Context, leagueID string) (*models.League, error)
	GetRosters(ctx context.Context, leagueID string) ([]models.Roster, error)
	GetUsers(ctx context.Context, leagueID string) ([]models.User, error)
}

type API struct {
	source Source
	cache  *memory.Cache
	clock  clockwork.Clock
}

func NewAPI(source Source, cache *memory.Cache) *API {
	return &API{source: source, cache: cache, clock: clockwork.NewRealClock()}
}

// LeagueError records a league whose standings could not be fetched.
type LeagueError struct {
	LeagueID string
	Err      error
}

func (e LeagueError) Error() string {
	return fmt.Sprintf("league %s: %v", e.LeagueID, e.Err)
}

func (e LeagueError) Unwrap() error { return e.Err }

// GetLeagueStandings fetches league, rosters and users concurrently and
// returns the ranked standings. Nothing is ranked unless all three succeed.
func (a *API) GetLeagueStandings(ctx context.Context, leagueID string) (models.LeagueStandings, error) {
	var (
		wg      sync.WaitGroup
		league  *models.League
		rosters []models.Roster
		users   []models.User
		errs    [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		league, errs[0] = a.getLeague(ctx, leagueID)
	}()
	go func() {
		defer wg.Done()
		rosters, errs[1] = a.getRosters(ctx, leagueID)
	}()
	go func() {
		defer wg.Done()
		users, errs[2] = a.getUsers(ctx, leagueID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return models.LeagueStandings{}, fmt.Errorf("fetching standings: %w", err)
		}
	}

	return models.LeagueStandings{
		League:    sleeper.LeagueInfo(*league),
		Standings: standings.Rank(sleeper.TeamRecords(rosters, users)),
		FetchedAt: a.clock.Now(),
	}, nil
}

// GetMultipleLeagueStandings fetches leagues one after another. A failing
// league is skipped and reported; the rest are still returned in order.
// Expired cache entries, such as those of leagues no longer enabled, are
// dropped first.
func (a *API) GetMultipleLeagueStandings(ctx context.Context, leagueIDs []string) ([]models.LeagueStandings, []LeagueError) {
	if n := a.cache.Prune(); n > 0 {
		slog.Debug("Pruned expired cache entries", "count", n)
	}

	results := make([]models.LeagueStandings, 0, len(leagueIDs))
	var failed []LeagueError

	for _, id := range leagueIDs {
		if err := ctx.Err(); err != nil {
			failed = append(failed, LeagueError{LeagueID: id, Err: err})
			continue
		}
		ls, err := a.GetLeagueStandings(ctx, id)
		if err != nil {
			slog.Error("Failed to fetch standings for league", "league_id", id, "error", err)
			failed = append(failed, LeagueError{LeagueID: id, Err: err})
			continue
		}
		results = append(results, ls)
	}

	return results, failed
}

func (a *API) ClearCache() { a.cache.Clear() }

func (a *API) CacheSize() int { return a.cache.Len() }

func (a *API) getLeague(ctx context.Context, leagueID string) (*models.League, error) {
	key := "league_" + leagueID
	if v, ok := a.cache.Get(key); ok {
		if league, ok := v.(*models.League); ok {
			return league, nil
		}
	}
	league, err := a.source.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, league)
	return league, nil
}

func (a *API) getRosters(ctx context.Context, leagueID string) ([]models.Roster, error) {
	key := "rosters_" + leagueID
	if v, ok := a.cache.Get(key); ok {
		if rosters, ok := v.([]models.Roster); ok {
			return rosters, nil
		}
	}
	rosters, err := a.source.GetRosters(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, rosters)
	return rosters, nil
}

func (a *API) getUsers(ctx context.Context, leagueID string) ([]models.User, error) {
	key := "users_" + leagueID
	if v, ok := a.cache.Get(key); ok {
		if users, ok := v.([]models.User); ok {
			return users, nil
		}
	}
	users, err := a.source.GetUsers(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, users)
	return users, nil
}
