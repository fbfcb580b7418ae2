package lfg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lfg-bot/models"
)

func newTestFanout(e *testEnv, m Messenger) *Fanout {
	return NewFanout(e.guilds, e.posts, m, models.LFGConfig{FanoutWorkers: 2, SendTimeoutSeconds: 2})
}

func TestPublish_ReachesEveryConfiguredGuild(t *testing.T) {
	env := setupEnv(t)
	fake := newFakeMessenger()
	fanout := newTestFanout(env, fake)

	require.NoError(t, env.guilds.SetChannel("guild-1", "ch-1"))
	require.NoError(t, env.guilds.SetChannel("guild-2", "ch-2"))
	require.NoError(t, env.guilds.SetChannel("guild-3", "ch-3"))

	ad := openAd(t, env)
	outcomes, err := fanout.Publish(context.Background(), ad)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for _, o := range outcomes {
		assert.NoError(t, o.Err)
		assert.NotEmpty(t, o.MessageRef)
	}

	posted, err := env.posts.ListByAd(ad.ID)
	require.NoError(t, err)
	assert.Len(t, posted, 3)
}

func TestPublish_OneFailingGuildIsASoftFailure(t *testing.T) {
	env := setupEnv(t)
	fake := newFakeMessenger()
	fake.failChannels["ch-2"] = true
	fanout := newTestFanout(env, fake)

	require.NoError(t, env.guilds.SetChannel("guild-1", "ch-1"))
	require.NoError(t, env.guilds.SetChannel("guild-2", "ch-2"))
	require.NoError(t, env.guilds.SetChannel("guild-3", "ch-3"))

	ad := openAd(t, env)
	outcomes, err := fanout.Publish(context.Background(), ad)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			assert.Equal(t, "guild-2", o.GuildID)
		}
	}
	assert.Equal(t, 1, failed)

	// The other copies are recorded and the ad stays valid.
	posted, err := env.posts.ListByAd(ad.ID)
	require.NoError(t, err)
	assert.Len(t, posted, 2)

	got, err := env.ads.GetAd(ad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusOpen, got.Status)
}

func TestPublish_NoConfiguredGuilds(t *testing.T) {
	env := setupEnv(t)
	fanout := newTestFanout(env, newFakeMessenger())

	ad := openAd(t, env)
	outcomes, err := fanout.Publish(context.Background(), ad)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestPublish_SlowGuildDoesNotBlockOthers(t *testing.T) {
	env := setupEnv(t)
	fake := newFakeMessenger()
	slow := &slowMessenger{Messenger: fake, slowChannel: "ch-2", delay: 5 * time.Second}
	fanout := NewFanout(env.guilds, env.posts, slow, models.LFGConfig{FanoutWorkers: 4, SendTimeoutSeconds: 1})

	require.NoError(t, env.guilds.SetChannel("guild-1", "ch-1"))
	require.NoError(t, env.guilds.SetChannel("guild-2", "ch-2"))
	require.NoError(t, env.guilds.SetChannel("guild-3", "ch-3"))

	ad := openAd(t, env)
	start := time.Now()
	outcomes, err := fanout.Publish(context.Background(), ad)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

// slowMessenger delays sends to one channel until the context expires.
type slowMessenger struct {
	Messenger
	slowChannel string
	delay       time.Duration
}

func (s *slowMessenger) SendAd(ctx context.Context, channelID string, ad models.Ad) (string, error) {
	if channelID == s.slowChannel {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.Messenger.SendAd(ctx, channelID, ad)
}
