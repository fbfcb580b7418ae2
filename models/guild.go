package models

// GuildConfig represents the configuration for a single guild.
// ChannelID is empty until an admin configures the broadcast channel.
type GuildConfig struct {
	GuildID   string
	ChannelID string
}
