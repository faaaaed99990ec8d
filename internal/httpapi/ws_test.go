package httpapi

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineeralok/sleeper-footballleague/internal/models"
)

func dial(t *testing.T, env testEnv) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) serverMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var msg serverMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func TestStream_InitialSnapshot(t *testing.T) {
	env := newTestEnv(t, "Alpha", "Bravo")
	conn := dial(t, env)

	msg := read(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	assert.NotEmpty(t, msg.ClientID)
	require.NotNil(t, msg.Snapshot)
	require.NotNil(t, msg.Snapshot.Current)
	assert.Equal(t, "Alpha", msg.Snapshot.Current.League.Name)
}

func TestStream_CommandsProduceSnapshots(t *testing.T) {
	env := newTestEnv(t, "Alpha", "Bravo", "Charlie")
	conn := dial(t, env)
	read(t, conn)

	ctx := context.Background()
	require.NoError(t, wsjson.Write(ctx, conn, clientMessage{Type: "goto", Index: 2}))

	msg := read(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, 2, msg.Snapshot.Rotation.CurrentIndex)
	assert.Equal(t, "Charlie", msg.Snapshot.Current.League.Name)

	require.NoError(t, wsjson.Write(ctx, conn, clientMessage{Type: "pause"}))
	msg = read(t, conn)
	assert.Equal(t, "rotation", msg.Type)
	require.NotNil(t, msg.Rotation)
	assert.False(t, msg.Rotation.IsPlaying)
}

func TestStream_RefreshedDataSendsSnapshot(t *testing.T) {
	env := newTestEnv(t, "Alpha")
	conn := dial(t, env)
	read(t, conn)

	env.standings.setLeagues("Zulu")
	env.player.SetItemCount(1)
	env.standings.notify()

	msg := read(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Snapshot)
	require.NotNil(t, msg.Snapshot.Current)
	assert.Equal(t, "Zulu", msg.Snapshot.Current.League.Name)
}

func TestStream_StatusChangeSendsSnapshot(t *testing.T) {
	env := newTestEnv(t, "Alpha")
	conn := dial(t, env)
	read(t, conn)

	env.standings.failWith(errors.New("upstream down"))
	require.Error(t, env.standings.ForceRefresh(context.Background()))

	msg := read(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, models.LoadError, msg.Snapshot.Status.State)
	assert.Equal(t, "upstream down", msg.Snapshot.Status.Error)
}

func TestStream_DisconnectUnsubscribes(t *testing.T) {
	env := newTestEnv(t, "Alpha")
	conn := dial(t, env)
	read(t, conn)
	require.Equal(t, 1, env.standings.subscribers())

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool {
		return env.standings.subscribers() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStream_BadMessages(t *testing.T) {
	env := newTestEnv(t, "Alpha")
	conn := dial(t, env)
	read(t, conn)

	ctx := context.Background()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{")))
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "bad json", msg.Error)

	require.NoError(t, wsjson.Write(ctx, conn, clientMessage{Type: "dance"}))
	msg = read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "unknown type", msg.Error)
}
