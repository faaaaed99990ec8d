package settings

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineeralok/sleeper-footballleague/internal/storage"
)

func TestManager_LoadMissingUsesDefaults(t *testing.T) {
	m := NewManager(storage.NewMemory(), Defaults([]string{"111"}))

	cfg := m.Load(context.Background())
	assert.Equal(t, Defaults([]string{"111"}), cfg)
	assert.Equal(t, cfg, m.Get())
}

func TestManager_LoadMergesStoredOverDefaults(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Put(ctx, StorageKey, []byte(`{"rotationInterval":3000,"displaySettings":{"theme":"dark"}}`)))

	m := NewManager(store, Defaults([]string{"111"}))
	cfg := m.Load(ctx)

	assert.Equal(t, int64(5000), cfg.RotationInterval)
	assert.Equal(t, "dark", cfg.DisplaySettings.Theme)
	assert.True(t, cfg.DisplaySettings.ShowLogos)
	assert.Equal(t, []string{"111"}, cfg.LeagueIDs)
}

func TestManager_LoadCorruptUsesDefaults(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Put(ctx, StorageKey, []byte(`not json`)))

	m := NewManager(store, Defaults(nil))
	assert.Equal(t, Defaults(nil), m.Load(ctx))
}

func TestManager_UpdatePersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, Defaults([]string{"111"}))
	m.Load(ctx)

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	ids := []string{"111", "222"}
	cfg, err := m.Update(ctx, Patch{LeagueIDs: &ids})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, cfg.EnabledLeagues)

	select {
	case got := <-ch:
		assert.Equal(t, cfg, got)
	case <-time.After(time.Second):
		t.Fatal("no settings published")
	}

	raw, ok, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	var stored AppConfig
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, cfg, stored)
}

func TestManager_UnchangedUpdateDoesNotPublish(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), Defaults(nil))
	m.Load(ctx)

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	_, err := m.Update(ctx, Patch{})
	require.NoError(t, err)

	select {
	case <-ch:
		t.Fatal("unexpected publish")
	default:
	}
}

func TestManager_ReplaceStartsFromDefaults(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), Defaults([]string{"111"}))
	m.Load(ctx)

	theme := "dark"
	_, err := m.Update(ctx, Patch{DisplaySettings: &DisplayPatch{Theme: &theme}})
	require.NoError(t, err)

	interval := int64(10000)
	cfg, err := m.Replace(ctx, Patch{RotationInterval: &interval})
	require.NoError(t, err)
	assert.Equal(t, "sports", cfg.DisplaySettings.Theme)
	assert.Equal(t, int64(10000), cfg.RotationInterval)
}

func TestManager_Reset(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, Defaults(nil))
	m.Load(ctx)

	interval := int64(45000)
	_, err := m.Update(ctx, Patch{RotationInterval: &interval})
	require.NoError(t, err)

	cfg, err := m.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(nil), cfg)

	_, ok, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_SaveErrorKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, Defaults(nil))
	m.Load(ctx)
	require.NoError(t, store.Close())

	interval := int64(45000)
	cfg, err := m.Update(ctx, Patch{RotationInterval: &interval})
	assert.ErrorIs(t, err, storage.ErrClosed)
	assert.Equal(t, int64(20000), cfg.RotationInterval)
}

func TestManager_WatchReloadsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := storage.Open(storage.Config{Driver: "file", Path: path})
	require.NoError(t, err)
	defer store.Close()

	m := NewManager(store, Defaults(nil))
	m.Load(context.Background())
	ch := m.Subscribe(4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Watch(ctx) }()

	time.Sleep(100 * time.Millisecond)
	doc := `{"` + StorageKey + `":{"rotationInterval":30000}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	select {
	case cfg := <-ch:
		assert.Equal(t, int64(30000), cfg.RotationInterval)
	case <-time.After(3 * time.Second):
		t.Fatal("external edit was not picked up")
	}
	assert.Equal(t, int64(30000), m.Get().RotationInterval)
}

func TestManager_WatchWithoutWatcherBlocksUntilCancel(t *testing.T) {
	m := NewManager(storage.NewMemory(), Defaults(nil))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not return")
	}
}
