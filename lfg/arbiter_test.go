package lfg

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lfg-bot/database"
	"lfg-bot/models"
)

func newTestArbiter(e *testEnv, m Messenger) *Arbiter {
	return NewArbiter(e.ads, e.posts, e.recorder, m, models.LFGConfig{SendTimeoutSeconds: 2})
}

func openAd(t *testing.T, e *testEnv) models.Ad {
	t.Helper()
	ad, err := e.ads.InsertAd("author-1", "Valorant", "need 2", time.Now())
	require.NoError(t, err)
	return ad
}

func TestClaim_Success(t *testing.T) {
	env := setupEnv(t)
	fake := newFakeMessenger()
	arb := newTestArbiter(env, fake)
	ad := openAd(t, env)

	result, err := arb.Claim(context.Background(), ad.ID, "claimant-1")
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusClaimed, result.Ad.Status)
	assert.Equal(t, "claimant-1", result.Ad.ClaimedBy)
	assert.True(t, result.AuthorNotified)
	assert.True(t, result.ClaimantNotified)

	// Both parties got exactly one DM with mutual contact info.
	assert.Equal(t, 1, fake.dmCount("author-1"))
	assert.Equal(t, 1, fake.dmCount("claimant-1"))

	assert.EqualValues(t, 1, env.counter(t, database.MetricConnectionsMade))
	assert.EqualValues(t, 1, env.counter(t, database.MetricMatchesMade))
	assert.EqualValues(t, 0, env.counter(t, database.MetricErrors))
}

func TestClaim_SelfClaimNeverMutates(t *testing.T) {
	env := setupEnv(t)
	arb := newTestArbiter(env, newFakeMessenger())
	ad := openAd(t, env)

	_, err := arb.Claim(context.Background(), ad.ID, "author-1")
	assert.ErrorIs(t, err, ErrSelfClaim)

	got, err := env.ads.GetAd(ad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusOpen, got.Status)

	clicks, err := env.ads.CountClicks(ad.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, clicks)
	assert.EqualValues(t, 0, env.counter(t, database.MetricConnectionsMade))
}

func TestClaim_NotFound(t *testing.T) {
	env := setupEnv(t)
	arb := newTestArbiter(env, newFakeMessenger())

	_, err := arb.Claim(context.Background(), 404, "claimant-1")
	assert.ErrorIs(t, err, ErrAdNotFound)
}

func TestClaim_SecondClaimantGetsAlreadyClaimed(t *testing.T) {
	env := setupEnv(t)
	fake := newFakeMessenger()
	arb := newTestArbiter(env, fake)
	ad := openAd(t, env)

	_, err := arb.Claim(context.Background(), ad.ID, "claimant-1")
	require.NoError(t, err)

	result, err := arb.Claim(context.Background(), ad.ID, "claimant-2")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, "claimant-1", result.Ad.ClaimedBy)

	// No counter or notification side effects for the loser.
	assert.EqualValues(t, 1, env.counter(t, database.MetricConnectionsMade))
	assert.EqualValues(t, 1, env.counter(t, database.MetricMatchesMade))
	assert.Equal(t, 0, fake.dmCount("claimant-2"))
}

func TestClaim_CancelledAdReportsNotOpen(t *testing.T) {
	env := setupEnv(t)
	arb := newTestArbiter(env, newFakeMessenger())
	ad := openAd(t, env)
	require.NoError(t, env.ads.CancelAd(ad.ID))

	_, err := arb.Claim(context.Background(), ad.ID, "claimant-1")
	assert.ErrorIs(t, err, ErrAdNotOpen)
}

func TestClaim_ConcurrentExactlyOneSuccess(t *testing.T) {
	env := setupEnv(t)
	fake := newFakeMessenger()
	arb := newTestArbiter(env, fake)
	ad := openAd(t, env)

	const claimants = 8
	var wg sync.WaitGroup
	errs := make([]error, claimants)
	for n := 0; n < claimants; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = arb.Claim(context.Background(), ad.ID, fmt.Sprintf("claimant-%d", n))
		}(n)
	}
	wg.Wait()

	wins, losses := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrAlreadyClaimed):
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, claimants-1, losses)

	// Counters tied to the single committed transition.
	assert.EqualValues(t, 1, env.counter(t, database.MetricConnectionsMade))
	assert.EqualValues(t, 1, env.counter(t, database.MetricMatchesMade))

	// Every distinct clicker left one audit row.
	clicks, err := env.ads.CountClicks(ad.ID)
	require.NoError(t, err)
	assert.EqualValues(t, claimants, clicks)
}

func TestClaim_DisablesAllPostedCopies(t *testing.T) {
	env := setupEnv(t)
	fake := newFakeMessenger()
	arb := newTestArbiter(env, fake)
	ad := openAd(t, env)

	require.NoError(t, env.posts.Insert(models.PostedMessage{AdID: ad.ID, GuildID: "guild-1", ChannelID: "ch-1", MessageRef: "msg-1"}))
	require.NoError(t, env.posts.Insert(models.PostedMessage{AdID: ad.ID, GuildID: "guild-2", ChannelID: "ch-2", MessageRef: "msg-2"}))

	_, err := arb.Claim(context.Background(), ad.ID, "claimant-1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return fake.disabledCount() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClaim_DisableFailureNeverReversesTheClaim(t *testing.T) {
	env := setupEnv(t)
	fake := newFakeMessenger()
	fake.failChannels["ch-2"] = true
	arb := newTestArbiter(env, fake)
	ad := openAd(t, env)

	require.NoError(t, env.posts.Insert(models.PostedMessage{AdID: ad.ID, GuildID: "guild-1", ChannelID: "ch-1", MessageRef: "msg-1"}))
	require.NoError(t, env.posts.Insert(models.PostedMessage{AdID: ad.ID, GuildID: "guild-2", ChannelID: "ch-2", MessageRef: "msg-2"}))

	result, err := arb.Claim(context.Background(), ad.ID, "claimant-1")
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusClaimed, result.Ad.Status)

	assert.Eventually(t, func() bool {
		snapshot, serr := env.counters.Snapshot()
		return serr == nil && fake.disabledCount() == 1 && snapshot[database.MetricErrors] == 1
	}, 2*time.Second, 10*time.Millisecond)

	got, err := env.ads.GetAd(ad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusClaimed, got.Status)
}

func TestClaim_DMFailureSurfacedOnlyToAffectedParty(t *testing.T) {
	env := setupEnv(t)
	fake := newFakeMessenger()
	fake.failDMs["claimant-1"] = true
	arb := newTestArbiter(env, fake)
	ad := openAd(t, env)

	result, err := arb.Claim(context.Background(), ad.ID, "claimant-1")
	require.NoError(t, err)
	assert.True(t, result.AuthorNotified)
	assert.False(t, result.ClaimantNotified)
	assert.Equal(t, 1, fake.dmCount("author-1"))
	assert.EqualValues(t, 1, env.counter(t, database.MetricErrors))

	// The claim itself stands.
	got, err := env.ads.GetAd(ad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusClaimed, got.Status)
	assert.EqualValues(t, 1, env.counter(t, database.MetricConnectionsMade))
}
