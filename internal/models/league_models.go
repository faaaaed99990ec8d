package models

import "time"

// TeamRecord is one team's season record as consumed by the ranker.
type TeamRecord struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	OwnerID       string  `json:"ownerId,omitempty"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"pointsFor"`
	PointsAgainst float64 `json:"pointsAgainst"`
}

type RankedTeam struct {
	TeamRecord
	WinPercentage float64 `json:"winPercentage"`
	Rank          int     `json:"rank"`
}

type LeagueInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Season       string `json:"season"`
	Status       string `json:"status,omitempty"`
	Sport        string `json:"sport,omitempty"`
	TotalRosters int    `json:"totalRosters"`
	Avatar       string `json:"avatar,omitempty"`
}

type LeagueStandings struct {
	League    LeagueInfo   `json:"league"`
	Standings []RankedTeam `json:"standings"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadReady   LoadState = "ready"
	LoadError   LoadState = "error"
)

type LoadStatus struct {
	State         LoadState `json:"state"`
	Error         string    `json:"error,omitempty"`
	FailedLeagues []string  `json:"failedLeagues,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
