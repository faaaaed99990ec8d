package models

type League struct {
	LeagueID     string             `json:"league_id"`
	Name         string             `json:"name"`
	Season       string             `json:"season"`
	SeasonType   string             `json:"season_type"`
	Status       string             `json:"status"`
	Sport        string             `json:"sport"`
	TotalRosters int                `json:"total_rosters"`
	Avatar       string             `json:"avatar"`
	DraftID      string             `json:"draft_id"`
	PreviousID   string             `json:"previous_league_id"`
	Settings     LeagueSettings     `json:"settings"`
	Scoring      map[string]float64 `json:"scoring_settings"`
}

type LeagueSettings struct {
	NumTeams         int `json:"num_teams"`
	PlayoffTeams     int `json:"playoff_teams"`
	PlayoffWeekStart int `json:"playoff_week_start"`
	StartWeek        int `json:"start_week"`
	Leg              int `json:"leg"`
	TradeDeadline    int `json:"trade_deadline"`
}

type Roster struct {
	RosterID int            `json:"roster_id"`
	OwnerID  string         `json:"owner_id"`
	LeagueID string         `json:"league_id"`
	Settings RosterSettings `json:"settings"`
}

// RosterSettings carries the season record. Sleeper splits points into an
// integer part and a two-digit decimal part.
type RosterSettings struct {
	Wins               int `json:"wins"`
	Losses             int `json:"losses"`
	Ties               int `json:"ties"`
	Fpts               int `json:"fpts"`
	FptsDecimal        int `json:"fpts_decimal"`
	FptsAgainst        int `json:"fpts_against"`
	FptsAgainstDecimal int `json:"fpts_against_decimal"`
}

type User struct {
	UserID      string       `json:"user_id"`
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Avatar      string       `json:"avatar"`
	Metadata    UserMetadata `json:"metadata"`
}

type UserMetadata struct {
	TeamName string `json:"team_name"`
}
