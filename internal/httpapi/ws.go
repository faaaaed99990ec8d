package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/engineeralok/sleeper-footballleague/internal/rotation"
	"github.com/engineeralok/sleeper-footballleague/internal/service"
)

const writeTimeout = 3 * time.Second

type serverMessage struct {
	Type     string            `json:"type"`
	ClientID string            `json:"clientId,omitempty"`
	Snapshot *service.Snapshot `json:"snapshot,omitempty"`
	Rotation *rotation.State   `json:"rotation,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type clientMessage struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// StreamHandler sends a full snapshot on connect, whenever the shown league
// changes and whenever the standings service reports new data, status or
// display settings. Progress ticks go out as plain rotation state. Clients
// may send navigation commands.
func StreamHandler(s Standings, p Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := slog.With("client_id", clientID)
		log.Info("Display client connected")
		defer log.Info("Display client disconnected")

		ctx := r.Context()
		out := p.Subscribe(8)
		defer p.Unsubscribe(out)
		updates := s.Subscribe(1)
		defer s.Unsubscribe(updates)

		snap := s.Snapshot()
		if err := write(ctx, conn, serverMessage{Type: "snapshot", ClientID: clientID, Snapshot: &snap}); err != nil {
			return
		}

		// Writer goroutine
		go func() {
			last := snap.Rotation
			for {
				var msg serverMessage
				select {
				case <-ctx.Done():
					return
				case st, ok := <-out:
					if !ok {
						return
					}
					msg = serverMessage{Type: "rotation", Rotation: &st}
					if st.CurrentIndex != last.CurrentIndex || st.ItemCount != last.ItemCount {
						full := s.Snapshot()
						full.Rotation = st
						msg = serverMessage{Type: "snapshot", Snapshot: &full}
					}
					last = st
				case _, ok := <-updates:
					if !ok {
						updates = nil
						continue
					}
					full := s.Snapshot()
					last = full.Rotation
					msg = serverMessage{Type: "snapshot", Snapshot: &full}
				}
				if err := write(ctx, conn, msg); err != nil {
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("Display client read failed", "error", err)
				}
				return
			}

			var cm clientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(ctx, conn, serverMessage{Type: "error", Error: "bad json"})
				continue
			}
			if !apply(p, cm) {
				_ = write(ctx, conn, serverMessage{Type: "error", Error: "unknown type"})
			}
		}
	}
}

func apply(p Player, cm clientMessage) bool {
	switch cm.Type {
	case "next":
		p.Next()
	case "previous":
		p.Previous()
	case "play":
		p.Play()
	case "pause":
		p.Pause()
	case "reset":
		p.Reset()
	case "goto":
		p.GoTo(cm.Index)
	default:
		return false
	}
	return true
}

func write(ctx context.Context, conn *websocket.Conn, msg serverMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
