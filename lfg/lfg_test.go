package lfg

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"lfg-bot/database"
	"lfg-bot/models"
	"lfg-bot/stats"
)

// testEnv bundles the storage layer and engine dependencies over a fresh
// temp database.
type testEnv struct {
	ads      *database.AdDB
	guilds   *database.GuildConfigDB
	posts    *database.PostedMessageDB
	counters *database.CounterDB
	recorder *stats.Recorder
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	counters := database.NewCounterDB(db)
	return &testEnv{
		ads:      database.NewAdDB(db),
		guilds:   database.NewGuildConfigDB(db),
		posts:    database.NewPostedMessageDB(db),
		counters: counters,
		recorder: stats.NewRecorder(counters),
	}
}

func (e *testEnv) counter(t *testing.T, metric string) int64 {
	t.Helper()
	snapshot, err := e.counters.Snapshot()
	require.NoError(t, err)
	return snapshot[metric]
}

// fakeMessenger is an in-memory Messenger that can be told to fail per
// channel or per user.
type fakeMessenger struct {
	mu      sync.Mutex
	nextRef int

	sends    map[string][]int64  // channelID -> ad IDs sent
	disabled map[string]bool     // messageRef -> disabled
	dms      map[string][]string // userID -> messages

	failChannels map[string]bool
	failDMs      map[string]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		sends:        make(map[string][]int64),
		disabled:     make(map[string]bool),
		dms:          make(map[string][]string),
		failChannels: make(map[string]bool),
		failDMs:      make(map[string]bool),
	}
}

func (f *fakeMessenger) SendAd(_ context.Context, channelID string, ad models.Ad) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChannels[channelID] {
		return "", fmt.Errorf("channel %s unavailable", channelID)
	}
	f.nextRef++
	f.sends[channelID] = append(f.sends[channelID], ad.ID)
	return fmt.Sprintf("msg-%d", f.nextRef), nil
}

func (f *fakeMessenger) DisableConnect(_ context.Context, channelID, messageRef string, _ models.Ad) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChannels[channelID] {
		return fmt.Errorf("channel %s unavailable", channelID)
	}
	f.disabled[messageRef] = true
	return nil
}

func (f *fakeMessenger) SendDM(_ context.Context, userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDMs[userID] {
		return fmt.Errorf("user %s has DMs disabled", userID)
	}
	f.dms[userID] = append(f.dms[userID], content)
	return nil
}

func (f *fakeMessenger) dmCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dms[userID])
}

func (f *fakeMessenger) disabledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.disabled)
}
