package models

import "time"

// AdStatus is the lifecycle state of an ad. Open is the only non-terminal state.
type AdStatus string

const (
	AdStatusOpen      AdStatus = "open"
	AdStatusClaimed   AdStatus = "claimed"
	AdStatusCancelled AdStatus = "cancelled"
	AdStatusExpired   AdStatus = "expired"
)

// Terminal reports whether no further transitions are allowed from this status.
func (s AdStatus) Terminal() bool {
	return s != AdStatusOpen
}

// Ad 表示一条 LFG 广告。ClaimedBy/ClaimedAt 仅在 status=claimed 时有值。
type Ad struct {
	ID        int64
	AuthorID  string
	Game      string
	Notes     string
	Status    AdStatus
	CreatedAt time.Time
	ClaimedBy string
	ClaimedAt time.Time
}

// PostedMessage records one physical copy of an ad in one guild's channel.
type PostedMessage struct {
	AdID       int64
	GuildID    string
	ChannelID  string
	MessageRef string
}

// PublishOutcome is the per-guild result of a fan-out. Err is nil on success;
// a non-nil Err is a soft failure and never invalidates the ad.
type PublishOutcome struct {
	GuildID    string
	ChannelID  string
	MessageRef string
	Err        error
}
