// Package standings turns raw team records into a ranked, display-ready order.
package standings

import (
	"sort"

	"github.com/engineeralok/sleeper-footballleague/internal/models"
)

// WinPercentage is wins over games played. Ties count as games but not as
// wins; a team with no games has 0.
func WinPercentage(r models.TeamRecord) float64 {
	games := r.Wins + r.Losses + r.Ties
	if games <= 0 {
		return 0
	}
	return float64(r.Wins) / float64(games)
}

// Rank orders teams by wins, then win percentage, then points for, all
// descending. Teams still equal keep their input order. Every team gets a
// distinct 1-based rank.
func Rank(records []models.TeamRecord) []models.RankedTeam {
	ranked := make([]models.RankedTeam, len(records))
	for i, r := range records {
		ranked[i] = models.RankedTeam{
			TeamRecord:    r,
			WinPercentage: WinPercentage(r),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinPercentage != b.WinPercentage {
			return a.WinPercentage > b.WinPercentage
		}
		return a.PointsFor > b.PointsFor
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}

// Records strips the ranking back off, preserving order.
func Records(ranked []models.RankedTeam) []models.TeamRecord {
	records := make([]models.TeamRecord, len(ranked))
	for i, t := range ranked {
		records[i] = t.TeamRecord
	}
	return records
}
