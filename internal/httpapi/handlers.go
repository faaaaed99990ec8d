package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/engineeralok/sleeper-footballleague/internal/models"
	"github.com/engineeralok/sleeper-footballleague/internal/service"
	"github.com/engineeralok/sleeper-footballleague/internal/settings"
)

const (
	maxBodyBytes   = 64 << 10
	refreshTimeout = 30 * time.Second

	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func GetRotation(p Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, p.State())
	}
}

func RotationAction(p Player, action func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action()
		writeJSON(w, http.StatusOK, p.State())
	}
}

// GoToIndex jumps to a league by position. An index outside the list leaves
// the state unchanged.
func GoToIndex(p Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			http.Error(w, "index must be an integer", http.StatusBadRequest)
			return
		}
		p.GoTo(index)
		writeJSON(w, http.StatusOK, p.State())
	}
}

func GetSnapshot(s Standings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

func GetStandings(s Standings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Leagues())
	}
}

func GetCurrentStandings(s Standings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls, err := s.Current()
		if errors.Is(err, service.ErrNoData) {
			http.Error(w, "no standings loaded", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, ls)
	}
}

func SearchLeagues(s Standings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			http.Error(w, "missing q", http.StatusBadRequest)
			return
		}
		idx, ls, err := s.FindLeague(q)
		if errors.Is(err, service.ErrLeagueNotFound) {
			http.Error(w, "league not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Index  int                    `json:"index"`
			League models.LeagueStandings `json:"league"`
		}{Index: idx, League: ls})
	}
}

func GetStatus(s Standings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Status())
	}
}

func Refresh(s Standings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), refreshTimeout)
		defer cancel()

		if err := s.ForceRefresh(ctx); err != nil {
			slog.Error("Manual refresh failed", "error", err)
			writeJSON(w, http.StatusBadGateway, s.Status())
			return
		}
		writeJSON(w, http.StatusOK, s.Status())
	}
}

func GetSettings(s Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := settings.ParseFormat(r.URL.Query().Get("format"))
		if r.URL.Query().Get("format") == "" {
			format = settings.ParseFormat(r.Header.Get("Accept"))
		}
		writeSettings(w, http.StatusOK, s.Get(), format)
	}
}

func UpdateSettings(s Settings) http.HandlerFunc {
	return saveSettings(s.Update)
}

func ReplaceSettings(s Settings) http.HandlerFunc {
	return saveSettings(s.Replace)
}

func saveSettings(save func(context.Context, settings.Patch) (settings.AppConfig, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		format := settings.ParseFormat(r.Header.Get("Content-Type"))
		patch, err := settings.DecodePatch(body, format)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		cfg, err := save(r.Context(), patch)
		if err != nil {
			slog.Error("Failed to save settings", "error", err)
			http.Error(w, "failed to save settings", http.StatusInternalServerError)
			return
		}
		writeSettings(w, http.StatusOK, cfg, format)
	}
}

func ResetSettings(s Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := s.Reset(r.Context())
		if err != nil {
			slog.Error("Failed to reset settings", "error", err)
			http.Error(w, "failed to reset settings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

func writeSettings(w http.ResponseWriter, status int, cfg settings.AppConfig, format settings.Format) {
	body, err := settings.Encode(cfg, format)
	if err != nil {
		http.Error(w, "failed to encode settings", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// SettingsQR renders a PNG QR code linking to the settings page so a phone
// can configure a wall display.
func SettingsQR(publicURL string) http.HandlerFunc {
	target := strings.TrimRight(publicURL, "/") + "/settings"

	return func(w http.ResponseWriter, r *http.Request) {
		size := defaultQRSize
		if v := r.URL.Query().Get("size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "size must be an integer", http.StatusBadRequest)
				return
			}
			size = max(minQRSize, min(n, maxQRSize))
		}

		png, err := qrcode.Encode(target, qrcode.Medium, size)
		if err != nil {
			slog.Error("Failed to render QR code", "error", err)
			http.Error(w, "failed to render QR code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(png)
	}
}
