// Package httpapi exposes the rotation, standings and settings over HTTP and
// streams rotation state to display clients over WebSocket.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/engineeralok/sleeper-footballleague/internal/models"
	"github.com/engineeralok/sleeper-footballleague/internal/rotation"
	"github.com/engineeralok/sleeper-footballleague/internal/service"
	"github.com/engineeralok/sleeper-footballleague/internal/settings"
)

type Standings interface {
	Leagues() []models.LeagueStandings
	Current() (models.LeagueStandings, error)
	FindLeague(query string) (int, models.LeagueStandings, error)
	Status() models.LoadStatus
	Snapshot() service.Snapshot
	ForceRefresh(ctx context.Context) error
	Subscribe(buffer int) <-chan struct{}
	Unsubscribe(ch <-chan struct{})
}

type Player interface {
	State() rotation.State
	Next()
	Previous()
	Play() bool
	Pause()
	Reset()
	GoTo(index int) bool
	Subscribe(buffer int) <-chan rotation.State
	Unsubscribe(ch <-chan rotation.State)
}

type Settings interface {
	Get() settings.AppConfig
	Update(ctx context.Context, p settings.Patch) (settings.AppConfig, error)
	Replace(ctx context.Context, p settings.Patch) (settings.AppConfig, error)
	Reset(ctx context.Context) (settings.AppConfig, error)
}

type Deps struct {
	Standings Standings
	Player    Player
	Settings  Settings
	PublicURL string
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/ws", StreamHandler(d.Standings, d.Player))

	r.Route("/api", func(r chi.Router) {
		r.Route("/rotation", func(r chi.Router) {
			r.Get("/", GetRotation(d.Player))
			r.Post("/next", RotationAction(d.Player, d.Player.Next))
			r.Post("/previous", RotationAction(d.Player, d.Player.Previous))
			r.Post("/play", RotationAction(d.Player, func() { d.Player.Play() }))
			r.Post("/pause", RotationAction(d.Player, d.Player.Pause))
			r.Post("/reset", RotationAction(d.Player, d.Player.Reset))
			r.Post("/goto/{index}", GoToIndex(d.Player))
		})

		r.Get("/snapshot", GetSnapshot(d.Standings))
		r.Get("/standings", GetStandings(d.Standings))
		r.Get("/standings/current", GetCurrentStandings(d.Standings))
		r.Get("/leagues/search", SearchLeagues(d.Standings))
		r.Get("/status", GetStatus(d.Standings))
		r.Post("/refresh", Refresh(d.Standings))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", GetSettings(d.Settings))
			r.Patch("/", UpdateSettings(d.Settings))
			r.Put("/", ReplaceSettings(d.Settings))
			r.Delete("/", ResetSettings(d.Settings))
			r.Get("/qr", SettingsQR(d.PublicURL))
		})
	})
	return r
}
