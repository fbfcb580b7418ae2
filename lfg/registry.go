package lfg

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"lfg-bot/database"
	"lfg-bot/models"
	"lfg-bot/stats"
)

// Default field bounds, used when the config leaves them unset.
const (
	DefaultGameMaxLength  = 100
	DefaultNotesMaxLength = 500
)

// Registry creates and looks up ads and owns the author-side transitions
// (cancel, expiry). Claims belong to the Arbiter.
type Registry struct {
	ads      *database.AdDB
	recorder *stats.Recorder

	gameMaxLen  int
	notesMaxLen int
}

// NewRegistry creates a Registry. Zero bounds in cfg fall back to defaults.
func NewRegistry(ads *database.AdDB, recorder *stats.Recorder, cfg models.LFGConfig) *Registry {
	gameMax := cfg.GameMaxLength
	if gameMax <= 0 {
		gameMax = DefaultGameMaxLength
	}
	notesMax := cfg.NotesMaxLength
	if notesMax <= 0 {
		notesMax = DefaultNotesMaxLength
	}
	return &Registry{
		ads:         ads,
		recorder:    recorder,
		gameMaxLen:  gameMax,
		notesMaxLen: notesMax,
	}
}

// CreateAd validates the fields and stores a new open ad.
func (r *Registry) CreateAd(authorID, game, notes string) (models.Ad, error) {
	game = strings.TrimSpace(game)
	notes = strings.TrimSpace(notes)

	if game == "" {
		return models.Ad{}, fmt.Errorf("%w: game is required", ErrValidation)
	}
	if utf8.RuneCountInString(game) > r.gameMaxLen {
		return models.Ad{}, fmt.Errorf("%w: game exceeds %d characters", ErrValidation, r.gameMaxLen)
	}
	if utf8.RuneCountInString(notes) > r.notesMaxLen {
		return models.Ad{}, fmt.Errorf("%w: notes exceed %d characters", ErrValidation, r.notesMaxLen)
	}

	ad, err := r.ads.InsertAd(authorID, game, notes, time.Now())
	if err != nil {
		return models.Ad{}, err
	}

	if err := r.recorder.Increment(database.MetricAdsPosted); err != nil {
		log.Printf("Failed to increment ads_posted for ad %d: %v", ad.ID, err)
	}
	return ad, nil
}

// GetAd returns the ad or ErrAdNotFound.
func (r *Registry) GetAd(id int64) (models.Ad, error) {
	ad, err := r.ads.GetAd(id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Ad{}, ErrAdNotFound
	}
	return ad, err
}

// Cancel transitions an open ad to cancelled. Only the author may cancel.
// The transition uses the same conditional update as claiming, so a race
// against a concurrent claim resolves to whichever committed first.
func (r *Registry) Cancel(id int64, requesterID string) (models.Ad, error) {
	ad, err := r.GetAd(id)
	if err != nil {
		return models.Ad{}, err
	}
	if ad.AuthorID != requesterID {
		return models.Ad{}, ErrForbidden
	}

	if err := r.ads.CancelAd(id); err != nil {
		if !errors.Is(err, database.ErrConflict) {
			return models.Ad{}, err
		}
		// Lost the race; report the committed state with no side effects.
		committed, rerr := r.GetAd(id)
		if rerr != nil {
			return models.Ad{}, rerr
		}
		if committed.Status == models.AdStatusClaimed {
			return committed, ErrAlreadyClaimed
		}
		return committed, ErrAdNotOpen
	}

	ad.Status = models.AdStatusCancelled
	return ad, nil
}

// ExpireStale transitions open ads older than ttl to expired and returns how
// many were affected. Nothing in the bot schedules this yet; the TTL feature's
// scheduler will own the cadence.
func (r *Registry) ExpireStale(now time.Time, ttl time.Duration) (int64, error) {
	return r.ads.ExpireAds(now.Add(-ttl))
}
