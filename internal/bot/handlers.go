package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/engineeralok/sleeper-footballleague/internal/models"
	"github.com/engineeralok/sleeper-footballleague/internal/service"
)

const refreshTimeout = 30 * time.Second

const helpText = "Available commands:\n" +
	"/standings - Standings of the league on screen\n" +
	"/leagues - List loaded leagues\n" +
	"/next - Show the next league\n" +
	"/prev - Show the previous league\n" +
	"/play - Resume rotating\n" +
	"/pause - Stop rotating\n" +
	"/league <name> - Jump to a league by name\n" +
	"/refresh - Reload standings from Sleeper\n" +
	"/status - Data and rotation status"

type Standings interface {
	Current() (models.LeagueStandings, error)
	GoToLeague(query string) (models.LeagueStandings, error)
	ForceRefresh(ctx context.Context) error
	FormatLeagues() string
	FormatStatus() string
}

type Controls interface {
	Next()
	Previous()
	Play() bool
	Pause()
}

type Handler struct {
	standings Standings
	controls  Controls
}

func NewHandler(standings Standings, controls Controls) *Handler {
	return &Handler{standings: standings, controls: controls}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = tgbotapi.ModeMarkdown

	switch command {
	case "start":
		msg.Text = "Welcome to the league board! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "standings":
		h.handleStandings(&msg)
	case "leagues":
		msg.Text = h.standings.FormatLeagues()
	case "next":
		h.controls.Next()
		h.handleStandings(&msg)
	case "prev", "previous":
		h.controls.Previous()
		h.handleStandings(&msg)
	case "play":
		if h.controls.Play() {
			msg.Text = "▶️ Rotation resumed."
		} else {
			msg.Text = "Need at least two leagues to rotate."
		}
	case "pause":
		h.controls.Pause()
		msg.Text = "⏸ Rotation paused."
	case "league":
		h.handleLeague(&msg, args)
	case "refresh":
		h.handleRefresh(ctx, &msg)
	case "status":
		msg.Text = h.standings.FormatStatus()
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleStandings(msg *tgbotapi.MessageConfig) {
	ls, err := h.standings.Current()
	switch {
	case errors.Is(err, service.ErrNoData):
		msg.Text = "No standings loaded yet. Try /refresh."
	case err != nil:
		msg.Text = "Error fetching standings: " + service.EscapeMarkdown(err.Error())
	default:
		msg.Text = service.FormatStandings(ls)
	}
}

func (h *Handler) handleLeague(msg *tgbotapi.MessageConfig, args string) {
	if args == "" {
		msg.Text = "Please provide a league name. Usage: /league <name>"
		return
	}
	ls, err := h.standings.GoToLeague(args)
	if errors.Is(err, service.ErrLeagueNotFound) {
		msg.Text = fmt.Sprintf("🔍 No league found matching '%s'.", service.EscapeMarkdown(args))
		return
	}
	if err != nil {
		msg.Text = "Error finding league: " + service.EscapeMarkdown(err.Error())
		return
	}
	msg.Text = service.FormatStandings(ls)
}

func (h *Handler) handleRefresh(ctx context.Context, msg *tgbotapi.MessageConfig) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	if err := h.standings.ForceRefresh(ctx); err != nil {
		msg.Text = "Error refreshing standings: " + service.EscapeMarkdown(err.Error())
		return
	}
	msg.Text = "🔄 Standings refreshed.\n\n" + h.standings.FormatLeagues()
}
