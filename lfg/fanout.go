package lfg

import (
	"context"
	"log"
	"sync"
	"time"

	"lfg-bot/database"
	"lfg-bot/models"
)

// Defaults for fan-out concurrency and per-destination timeout.
const (
	DefaultFanoutWorkers = 4
	DefaultSendTimeout   = 10 * time.Second
)

// Fanout publishes one ad into every configured guild channel. Sends run with
// bounded concurrency and a per-guild timeout; a failing or slow guild never
// blocks the others, and partial completion is a normal outcome.
type Fanout struct {
	guilds    *database.GuildConfigDB
	posts     *database.PostedMessageDB
	messenger Messenger

	workers     int
	sendTimeout time.Duration
}

// NewFanout creates a Fanout. Zero cfg values fall back to defaults.
func NewFanout(guilds *database.GuildConfigDB, posts *database.PostedMessageDB, messenger Messenger, cfg models.LFGConfig) *Fanout {
	workers := cfg.FanoutWorkers
	if workers <= 0 {
		workers = DefaultFanoutWorkers
	}
	timeout := time.Duration(cfg.SendTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Fanout{
		guilds:      guilds,
		posts:       posts,
		messenger:   messenger,
		workers:     workers,
		sendTimeout: timeout,
	}
}

// Publish sends the ad to every configured guild and records a PostedMessage
// per successful send. The returned slice has one outcome per configured
// guild; outcomes with a non-nil Err are soft failures.
func (f *Fanout) Publish(ctx context.Context, ad models.Ad) ([]models.PublishOutcome, error) {
	configs, err := f.guilds.ListConfigured()
	if err != nil {
		return nil, err
	}

	outcomes := make([]models.PublishOutcome, len(configs))
	sem := make(chan struct{}, f.workers)
	var wg sync.WaitGroup

	for i, gc := range configs {
		wg.Add(1)
		go func(i int, gc models.GuildConfig) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[i] = f.publishOne(ctx, ad, gc)
		}(i, gc)
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		log.Printf("Ad %d reached %d/%d guilds (%d soft failures)", ad.ID, len(outcomes)-failed, len(outcomes), failed)
	}
	return outcomes, nil
}

func (f *Fanout) publishOne(ctx context.Context, ad models.Ad, gc models.GuildConfig) models.PublishOutcome {
	outcome := models.PublishOutcome{GuildID: gc.GuildID, ChannelID: gc.ChannelID}

	sendCtx, cancel := context.WithTimeout(ctx, f.sendTimeout)
	defer cancel()

	ref, err := f.messenger.SendAd(sendCtx, gc.ChannelID, ad)
	if err != nil {
		log.Printf("Failed to post ad %d in guild %s: %v", ad.ID, gc.GuildID, err)
		outcome.Err = err
		return outcome
	}
	outcome.MessageRef = ref

	if err := f.posts.Insert(models.PostedMessage{
		AdID:       ad.ID,
		GuildID:    gc.GuildID,
		ChannelID:  gc.ChannelID,
		MessageRef: ref,
	}); err != nil {
		// The copy is live but untracked; it just can't be disabled later.
		log.Printf("Failed to record posted message for ad %d in guild %s: %v", ad.ID, gc.GuildID, err)
		outcome.Err = err
	}
	return outcome
}
