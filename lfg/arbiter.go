package lfg

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lfg-bot/database"
	"lfg-bot/models"
	"lfg-bot/stats"
)

// Arbiter serializes concurrent Connect actions per ad. Exclusion comes from
// the conditional claimed-transition write in AdDB, not from any in-process
// lock, so it holds across independent workers sharing the database.
type Arbiter struct {
	ads       *database.AdDB
	posts     *database.PostedMessageDB
	recorder  *stats.Recorder
	messenger Messenger

	sendTimeout time.Duration
}

// ClaimResult reports a committed claim plus the delivery outcome of the two
// private notifications, so the handler can tell the affected party.
type ClaimResult struct {
	Ad               models.Ad
	AuthorNotified   bool
	ClaimantNotified bool
}

// NewArbiter creates an Arbiter. Zero cfg timeout falls back to the default.
func NewArbiter(ads *database.AdDB, posts *database.PostedMessageDB, recorder *stats.Recorder, messenger Messenger, cfg models.LFGConfig) *Arbiter {
	timeout := time.Duration(cfg.SendTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Arbiter{
		ads:         ads,
		posts:       posts,
		recorder:    recorder,
		messenger:   messenger,
		sendTimeout: timeout,
	}
}

// Claim attempts to atomically link claimantID to the ad. Exactly one caller
// per ad ever sees a nil error; everyone else gets ErrAlreadyClaimed,
// ErrAdNotOpen, ErrSelfClaim or ErrAdNotFound with no state change.
//
// On success the counters are bumped once, sibling copies are disabled in the
// background, and both parties are sent contact details. None of those steps
// can reverse the committed claim.
func (a *Arbiter) Claim(ctx context.Context, adID int64, claimantID string) (ClaimResult, error) {
	ad, err := a.ads.GetAd(adID)
	if errors.Is(err, database.ErrNotFound) {
		return ClaimResult{}, ErrAdNotFound
	}
	if err != nil {
		return ClaimResult{}, err
	}

	if ad.AuthorID == claimantID {
		return ClaimResult{Ad: ad}, ErrSelfClaim
	}

	now := time.Now()
	if err := a.ads.RecordClick(adID, claimantID, now); err != nil {
		log.Printf("Failed to record click on ad %d by %s: %v", adID, claimantID, err)
	}

	if err := a.ads.ClaimAd(adID, claimantID, now); err != nil {
		if !errors.Is(err, database.ErrConflict) {
			return ClaimResult{}, err
		}
		// Lost the race. Re-read the committed state to report which
		// terminal transition won.
		committed, rerr := a.ads.GetAd(adID)
		if rerr != nil {
			return ClaimResult{}, rerr
		}
		if committed.Status == models.AdStatusClaimed {
			return ClaimResult{Ad: committed}, ErrAlreadyClaimed
		}
		return ClaimResult{Ad: committed}, ErrAdNotOpen
	}

	ad.Status = models.AdStatusClaimed
	ad.ClaimedBy = claimantID
	ad.ClaimedAt = now

	// The claim is committed. Counters are tied to this single successful
	// transition, so retried reads can never double count.
	if err := a.recorder.Increment(database.MetricConnectionsMade); err != nil {
		log.Printf("Failed to increment connections_made for ad %d: %v", adID, err)
	}
	if err := a.recorder.Increment(database.MetricMatchesMade); err != nil {
		log.Printf("Failed to increment matches_made for ad %d: %v", adID, err)
	}

	go a.disableCopies(ad)

	result := ClaimResult{Ad: ad}
	result.AuthorNotified = a.notify(ctx, ad.AuthorID, authorDM(ad))
	result.ClaimantNotified = a.notify(ctx, claimantID, claimantDM(ad))
	return result, nil
}

// disableCopies edits every posted copy of the ad to a disabled Connect
// control. Best effort: failures are logged and counted, never propagated.
func (a *Arbiter) disableCopies(ad models.Ad) {
	copies, err := a.posts.ListByAd(ad.ID)
	if err != nil {
		log.Printf("Failed to list copies of ad %d: %v", ad.ID, err)
		return
	}

	for _, pm := range copies {
		ctx, cancel := context.WithTimeout(context.Background(), a.sendTimeout)
		err := a.messenger.DisableConnect(ctx, pm.ChannelID, pm.MessageRef, ad)
		cancel()
		if err != nil {
			log.Printf("Failed to disable ad %d copy in guild %s: %v", ad.ID, pm.GuildID, err)
			if ierr := a.recorder.Increment(database.MetricErrors); ierr != nil {
				log.Printf("Failed to increment errors counter: %v", ierr)
			}
		}
	}
}

// notify DMs one party. A failed DM increments the errors counter and is
// reported back through the ClaimResult only.
func (a *Arbiter) notify(ctx context.Context, userID, content string) bool {
	dmCtx, cancel := context.WithTimeout(ctx, a.sendTimeout)
	defer cancel()

	if err := a.messenger.SendDM(dmCtx, userID, content); err != nil {
		log.Printf("Failed to DM %s: %v", userID, err)
		if ierr := a.recorder.Increment(database.MetricErrors); ierr != nil {
			log.Printf("Failed to increment errors counter: %v", ierr)
		}
		return false
	}
	return true
}

func authorDM(ad models.Ad) string {
	return fmt.Sprintf(
		"🤝 Someone is interested in your LFG ad #%d (%s)! User: <@%s>. You can reply here to connect.",
		ad.ID, ad.Game, ad.ClaimedBy,
	)
}

func claimantDM(ad models.Ad) string {
	return fmt.Sprintf(
		"🤝 You've been connected with <@%s> for LFG ad #%d (%s). Say hi!",
		ad.AuthorID, ad.ID, ad.Game,
	)
}
