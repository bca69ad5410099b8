package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	return NewStore(path, zap.NewNop())
}

func TestStoreHydrateMissingFile(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Hydrate())

	_, _, loggedIn := store.Current()
	assert.False(t, loggedIn)
}

func TestStoreSetSessionAndCurrent(t *testing.T) {
	store := newTestStore(t)

	info := models.UserInfo{UserID: "u1", Nickname: "观察员"}
	require.NoError(t, store.SetSession(info, "token-abc"))

	got, token, loggedIn := store.Current()
	assert.True(t, loggedIn)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "token-abc", token)
}

func TestStoreHydrateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first := NewStore(path, zap.NewNop())
	require.NoError(t, first.SetSession(models.UserInfo{UserID: "u2"}, "tok"))

	second := NewStore(path, zap.NewNop())
	require.NoError(t, second.Hydrate())

	got, token, loggedIn := second.Current()
	assert.True(t, loggedIn)
	assert.Equal(t, "u2", got.UserID)
	assert.Equal(t, "tok", token)
}

func TestStoreHydrateCorruptFileClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := NewStore(path, zap.NewNop())
	require.NoError(t, store.Hydrate())

	_, _, loggedIn := store.Current()
	assert.False(t, loggedIn)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStoreClearNotifiesSubscribers(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetSession(models.UserInfo{UserID: "u3"}, "tok"))

	var events []Snapshot
	unsubscribe := store.Subscribe(func(snap Snapshot) {
		events = append(events, snap)
	})
	defer unsubscribe()

	require.NoError(t, store.Clear())

	require.Len(t, events, 1)
	assert.False(t, events[0].LoggedIn)
	assert.Nil(t, events[0].UserInfo)

	_, _, loggedIn := store.Current()
	assert.False(t, loggedIn)
}

func TestStoreUnsubscribeStopsEvents(t *testing.T) {
	store := newTestStore(t)

	count := 0
	unsubscribe := store.Subscribe(func(Snapshot) { count++ })

	require.NoError(t, store.SetSession(models.UserInfo{UserID: "u4"}, "tok"))
	unsubscribe()
	require.NoError(t, store.Clear())

	assert.Equal(t, 1, count)
}

func TestStoreInviteStatusDefaults(t *testing.T) {
	store := newTestStore(t)

	status := store.InviteStatus()
	assert.False(t, status.HasUsedCodes)
	assert.Empty(t, status.UsedCodes)
}

func TestStoreMarkInviteUsed(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetSession(models.UserInfo{UserID: "u5"}, "tok"))

	require.NoError(t, store.MarkInviteUsed("WELCOME2026"))

	status := store.InviteStatus()
	assert.True(t, status.HasUsedCodes)
	require.Len(t, status.UsedCodes, 1)
	assert.Equal(t, "WELCOME2026", status.UsedCodes[0].Code)
}

func TestStoreMarkInviteUsedRequiresLogin(t *testing.T) {
	store := newTestStore(t)

	err := store.MarkInviteUsed("WELCOME2026")
	assert.Error(t, err)
}

func TestStoreWatcherPicksUpExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store := NewStore(path, zap.NewNop())
	require.NoError(t, store.Hydrate())

	changed := make(chan Snapshot, 1)
	unsubscribe := store.Subscribe(func(snap Snapshot) {
		select {
		case changed <- snap:
		default:
		}
	})
	defer unsubscribe()

	store.StartWatching(20 * time.Millisecond)
	defer store.StopWatching()

	// 模拟另一个进程完成登录
	other := NewStore(path, zap.NewNop())
	require.NoError(t, other.SetSession(models.UserInfo{UserID: "external"}, "tok"))

	select {
	case snap := <-changed:
		require.NotNil(t, snap.UserInfo)
		assert.Equal(t, "external", snap.UserInfo.UserID)
		assert.True(t, snap.LoggedIn)
	case <-time.After(2 * time.Second):
		t.Fatal("未在超时内观察到外部会话变更")
	}
}
