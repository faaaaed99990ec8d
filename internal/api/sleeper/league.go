package sleeper

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/engineeralok/sleeper-footballleague/internal/models"
)

// ErrLeagueNotFound is returned when Sleeper answers with an empty body for an
// unknown league ID.
var ErrLeagueNotFound = errors.New("league not found")

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) GetLeague(ctx context.Context, leagueID string) (*models.League, error) {
	var league *models.League
	endpoint := fmt.Sprintf("/league/%s", url.PathEscape(leagueID))

	if err := a.client.Get(ctx, endpoint, &league); err != nil {
		return nil, fmt.Errorf("fetching league %s: %w", leagueID, err)
	}
	if league == nil || league.LeagueID == "" {
		return nil, fmt.Errorf("fetching league %s: %w", leagueID, ErrLeagueNotFound)
	}

	return league, nil
}

func (a *API) GetRosters(ctx context.Context, leagueID string) ([]models.Roster, error) {
	var rosters []models.Roster
	endpoint := fmt.Sprintf("/league/%s/rosters", url.PathEscape(leagueID))

	if err := a.client.Get(ctx, endpoint, &rosters); err != nil {
		return nil, fmt.Errorf("fetching rosters for league %s: %w", leagueID, err)
	}

	return rosters, nil
}

func (a *API) GetUsers(ctx context.Context, leagueID string) ([]models.User, error) {
	var users []models.User
	endpoint := fmt.Sprintf("/league/%s/users", url.PathEscape(leagueID))

	if err := a.client.Get(ctx, endpoint, &users); err != nil {
		return nil, fmt.Errorf("fetching users for league %s: %w", leagueID, err)
	}

	return users, nil
}

func LeagueInfo(league models.League) models.LeagueInfo {
	return models.LeagueInfo{
		ID:           league.LeagueID,
		Name:         league.Name,
		Season:       league.Season,
		Status:       league.Status,
		Sport:        league.Sport,
		TotalRosters: league.TotalRosters,
		Avatar:       league.Avatar,
	}
}

// TeamRecords joins rosters with their owners. Negative counts coming off the
// wire are floored at zero.
func TeamRecords(rosters []models.Roster, users []models.User) []models.TeamRecord {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
	}

	records := make([]models.TeamRecord, 0, len(rosters))
	for _, r := range rosters {
		s := r.Settings
		records = append(records, models.TeamRecord{
			ID:            strconv.Itoa(r.RosterID),
			Name:          teamName(r, byID),
			OwnerID:       r.OwnerID,
			Wins:          max(s.Wins, 0),
			Losses:        max(s.Losses, 0),
			Ties:          max(s.Ties, 0),
			PointsFor:     Points(s.Fpts, s.FptsDecimal),
			PointsAgainst: Points(s.FptsAgainst, s.FptsAgainstDecimal),
		})
	}
	return records
}

func teamName(r models.Roster, users map[string]models.User) string {
	if u, ok := users[r.OwnerID]; ok {
		switch {
		case u.Metadata.TeamName != "":
			return u.Metadata.TeamName
		case u.DisplayName != "":
			return u.DisplayName
		case u.Username != "":
			return u.Username
		}
	}
	return fmt.Sprintf("Team %d", r.RosterID)
}

// Points combines Sleeper's whole and hundredths fields, rounded to cents.
func Points(whole, decimal int) float64 {
	p := float64(whole) + float64(decimal)/100
	if p < 0 {
		p = 0
	}
	return math.Round(p*100) / 100
}
