package service

import (
	"fmt"
	"strings"

	"github.com/engineeralok/sleeper-footballleague/internal/models"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes text for Telegram's legacy Markdown parse mode.
func EscapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

func FormatStandings(ls models.LeagueStandings) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 *%s Standings*", EscapeMarkdown(ls.League.Name)))
	if ls.League.Season != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", ls.League.Season))
	}
	sb.WriteString("\n\n")

	if len(ls.Standings) == 0 {
		sb.WriteString("No teams yet.")
		return sb.String()
	}

	for _, team := range ls.Standings {
		sb.WriteString(fmt.Sprintf("%d. *%s*\n", team.Rank, EscapeMarkdown(team.Name)))
		sb.WriteString(fmt.Sprintf("   Record: %d-%d-%d (%.3f)\n", team.Wins, team.Losses, team.Ties, team.WinPercentage))
		sb.WriteString(fmt.Sprintf("   Points For: %.2f\n", team.PointsFor))
		sb.WriteString(fmt.Sprintf("   Points Against: %.2f\n\n", team.PointsAgainst))
	}

	return sb.String()
}

func (s *StandingsService) FormatLeagues() string {
	leagues := s.Leagues()
	current := s.rotation.State().CurrentIndex

	var sb strings.Builder
	sb.WriteString("🏈 *Leagues*\n\n")

	if len(leagues) == 0 {
		sb.WriteString("No leagues loaded.")
		return sb.String()
	}

	for i, ls := range leagues {
		marker := "  "
		if i == current {
			marker = "▶️"
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s (%d teams)\n", marker, i+1, EscapeMarkdown(ls.League.Name), len(ls.Standings)))
	}

	return sb.String()
}

func (s *StandingsService) FormatStatus() string {
	st := s.Status()
	rot := s.rotation.State()

	var sb strings.Builder
	sb.WriteString("📊 *Status*\n\n")
	sb.WriteString(fmt.Sprintf("Data: %s\n", st.State))
	if st.Error != "" {
		sb.WriteString(fmt.Sprintf("Error: %s\n", EscapeMarkdown(st.Error)))
	}
	if len(st.FailedLeagues) > 0 {
		sb.WriteString(fmt.Sprintf("Failed leagues: %s\n", strings.Join(st.FailedLeagues, ", ")))
	}
	if !st.UpdatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Updated: %s\n", st.UpdatedAt.Format("Jan 2 15:04")))
	}

	playing := "paused"
	if rot.IsPlaying {
		playing = "playing"
	}
	if rot.ItemCount > 0 {
		sb.WriteString(fmt.Sprintf("Rotation: %d/%d, %s, every %ds\n", rot.CurrentIndex+1, rot.ItemCount, playing, rot.IntervalMS/1000))
	} else {
		sb.WriteString(fmt.Sprintf("Rotation: empty, %s\n", playing))
	}

	return sb.String()
}
