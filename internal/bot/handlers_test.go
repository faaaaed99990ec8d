package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"

	"github.com/engineeralok/sleeper-footballleague/internal/models"
	"github.com/engineeralok/sleeper-footballleague/internal/service"
)

type fakeStandings struct {
	leagues    []models.LeagueStandings
	index      int
	refreshErr error
	refreshed  int
}

func (f *fakeStandings) Current() (models.LeagueStandings, error) {
	if len(f.leagues) == 0 {
		return models.LeagueStandings{}, service.ErrNoData
	}
	return f.leagues[f.index], nil
}

func (f *fakeStandings) GoToLeague(query string) (models.LeagueStandings, error) {
	for i, ls := range f.leagues {
		if strings.EqualFold(ls.League.Name, query) {
			f.index = i
			return ls, nil
		}
	}
	return models.LeagueStandings{}, fmt.Errorf("%w: %q", service.ErrLeagueNotFound, query)
}

func (f *fakeStandings) ForceRefresh(context.Context) error {
	f.refreshed++
	return f.refreshErr
}

func (f *fakeStandings) FormatLeagues() string { return fmt.Sprintf("%d leagues", len(f.leagues)) }
func (f *fakeStandings) FormatStatus() string  { return "status ok" }

type fakeControls struct {
	standings *fakeStandings
	playing   bool
}

func (c *fakeControls) Next() {
	c.standings.index = (c.standings.index + 1) % len(c.standings.leagues)
}

func (c *fakeControls) Previous() {
	n := len(c.standings.leagues)
	c.standings.index = (c.standings.index - 1 + n) % n
}

func (c *fakeControls) Play() bool {
	if len(c.standings.leagues) < 2 {
		return false
	}
	c.playing = true
	return true
}

func (c *fakeControls) Pause() { c.playing = false }

func command(text string) tgbotapi.Update {
	length := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		length = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 42},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: length},
		},
	}}
}

func newTestHandler(leagues ...string) (*Handler, *fakeStandings, *fakeControls) {
	st := &fakeStandings{}
	for _, name := range leagues {
		st.leagues = append(st.leagues, models.LeagueStandings{League: models.LeagueInfo{Name: name}})
	}
	ctl := &fakeControls{standings: st}
	return NewHandler(st, ctl), st, ctl
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"start", "/start", "Welcome"},
		{"help", "/help", "/league <name>"},
		{"standings", "/standings", "Alpha Standings"},
		{"next", "/next", "Bravo Standings"},
		{"prev wraps", "/prev", "Bravo Standings"},
		{"leagues", "/leagues", "2 leagues"},
		{"status", "/status", "status ok"},
		{"league by name", "/league bravo", "Bravo Standings"},
		{"league missing name", "/league", "Usage: /league <name>"},
		{"league not found", "/league hockey", "No league found matching 'hockey'"},
		{"unknown", "/whohas", "Unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newTestHandler("Alpha", "Bravo")
			msg := h.HandleCommand(context.Background(), command(tt.text))
			assert.Equal(t, int64(42), msg.ChatID)
			assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
			assert.Contains(t, msg.Text, tt.want)
		})
	}
}

func TestHandleCommand_NoData(t *testing.T) {
	h, _, _ := newTestHandler()
	msg := h.HandleCommand(context.Background(), command("/standings"))
	assert.Contains(t, msg.Text, "No standings loaded yet")
}

func TestHandleCommand_PlayPause(t *testing.T) {
	h, _, ctl := newTestHandler("Alpha", "Bravo")

	msg := h.HandleCommand(context.Background(), command("/pause"))
	assert.Contains(t, msg.Text, "paused")
	assert.False(t, ctl.playing)

	msg = h.HandleCommand(context.Background(), command("/play"))
	assert.Contains(t, msg.Text, "resumed")
	assert.True(t, ctl.playing)

	single, _, _ := newTestHandler("Alpha")
	msg = single.HandleCommand(context.Background(), command("/play"))
	assert.Contains(t, msg.Text, "at least two leagues")
}

func TestHandleCommand_Refresh(t *testing.T) {
	h, st, _ := newTestHandler("Alpha")

	msg := h.HandleCommand(context.Background(), command("/refresh"))
	assert.Equal(t, 1, st.refreshed)
	assert.Contains(t, msg.Text, "Standings refreshed")

	st.refreshErr = errors.New("sleeper down")
	msg = h.HandleCommand(context.Background(), command("/refresh"))
	assert.Contains(t, msg.Text, "Error refreshing standings: sleeper down")
}

func TestHandleCommand_EscapesUserText(t *testing.T) {
	h, st, _ := newTestHandler("Alpha")

	st.refreshErr = errors.New(`GET /v1/league/123/rosters: bad_gateway *retry*`)
	msg := h.HandleCommand(context.Background(), command("/refresh"))
	assert.Equal(t, `Error refreshing standings: GET /v1/league/123/rosters: bad\_gateway \*retry\*`, msg.Text)

	msg = h.HandleCommand(context.Background(), command("/league my_league"))
	assert.Contains(t, msg.Text, `No league found matching 'my\_league'`)
}
