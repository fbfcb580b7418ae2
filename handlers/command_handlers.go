package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lfg-bot/bot"
	"lfg-bot/database"
	"lfg-bot/lfg"
	"lfg-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// interactionUser returns the invoking user for both guild and DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// HandleSetChannel handles the logic for the /setchannel command.
func HandleSetChannel(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respondEphemeral(s, i, "This command only works inside a server.")
		return
	}

	options := i.ApplicationCommandData().Options
	var channel *discordgo.Channel
	for _, opt := range options {
		if opt.Name == "channel" {
			channel = opt.ChannelValue(s)
		}
	}
	if channel == nil {
		respondEphemeral(s, i, "Error: a text channel is required.")
		return
	}

	if err := b.GuildConfigs.SetChannel(i.GuildID, channel.ID); err != nil {
		log.Printf("Failed to set channel for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Something went wrong while saving the LFG channel. Please try again.")
		return
	}

	utils.Info("GuildConfig", "setchannel", fmt.Sprintf("guild %s -> channel %s", i.GuildID, channel.ID))
	respondEphemeral(s, i, fmt.Sprintf("✅ LFG ads will be posted in <#%s>.", channel.ID))
}

// HandleShowChannel handles the logic for the /showchannel command.
func HandleShowChannel(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respondEphemeral(s, i, "This command only works inside a server.")
		return
	}

	channelID, err := b.GuildConfigs.GetChannel(i.GuildID)
	if errors.Is(err, database.ErrUnconfigured) {
		respondEphemeral(s, i, "ℹ️ No LFG channel set yet. Use `/setchannel`.")
		return
	}
	if err != nil {
		log.Printf("Failed to read channel for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Something went wrong while fetching the LFG channel. Please try again.")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("📌 Current LFG channel: <#%s>", channelID))
}

// HandleClearChannel handles the logic for the /clearchannel command.
func HandleClearChannel(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respondEphemeral(s, i, "This command only works inside a server.")
		return
	}

	if err := b.GuildConfigs.ClearChannel(i.GuildID); err != nil {
		log.Printf("Failed to clear channel for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Something went wrong while clearing the LFG channel. Please try again.")
		return
	}

	respondEphemeral(s, i, "🧹 Cleared the LFG channel for this server.")
}

// HandlePost handles the logic for the /post command: create the ad, then
// broadcast it to every configured guild in the background.
func HandlePost(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}

	if !b.Limiter.Allow(i.GuildID, i.ChannelID) {
		respondEphemeral(s, i, "⏳ This channel is posting too fast. Please wait a moment.")
		return
	}

	now := time.Now()
	nextOk, onCooldown, err := b.Cooldowns.NextOkAt(user.ID)
	if err != nil {
		log.Printf("Failed to read cooldown for user %s: %v", user.ID, err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return
	}
	if onCooldown && nextOk.After(now) {
		respondEphemeral(s, i, fmt.Sprintf("⏳ You can post your next ad <t:%d:R>.", nextOk.Unix()))
		return
	}

	options := i.ApplicationCommandData().Options
	var game, notes string
	for _, opt := range options {
		switch opt.Name {
		case "game":
			game = opt.StringValue()
		case "notes":
			notes = opt.StringValue()
		}
	}

	ad, err := b.Registry.CreateAd(user.ID, game, notes)
	if errors.Is(err, lfg.ErrValidation) {
		respondEphemeral(s, i, fmt.Sprintf("🚫 %v", err))
		return
	}
	if err != nil {
		log.Printf("Failed to create ad for user %s: %v", user.ID, err)
		respondEphemeral(s, i, "Something went wrong while creating your ad. Please try again.")
		return
	}

	cooldown := time.Duration(viper.GetInt("lfg.postCooldownMinutes")) * time.Minute
	if cooldown > 0 {
		if err := b.Cooldowns.SetNextOkAt(user.ID, now.Add(cooldown)); err != nil {
			log.Printf("Failed to set cooldown for user %s: %v", user.ID, err)
		}
	}

	respondEphemeral(s, i, fmt.Sprintf("📣 Ad #%d created. Broadcasting to all servers...", ad.ID))

	// Fan-out runs in the background; the interaction already got its ack.
	go func() {
		outcomes, err := b.Fanout.Publish(context.Background(), ad)
		if err != nil {
			log.Printf("Fan-out for ad %d failed: %v", ad.ID, err)
			s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
				Content: "⚠️ Your ad was created but broadcasting failed. It may reach servers later.",
				Flags:   discordgo.MessageFlagsEphemeral,
			})
			return
		}

		reached := 0
		for _, o := range outcomes {
			if o.Err == nil {
				reached++
			}
		}
		s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: fmt.Sprintf("✅ Ad #%d posted in %d of %d configured servers.", ad.ID, reached, len(outcomes)),
			Flags:   discordgo.MessageFlagsEphemeral,
		})
	}()
}

// HandleCancel handles the logic for the /cancel command.
func HandleCancel(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}

	var adID int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "ad_id" {
			adID = opt.IntValue()
		}
	}

	_, err := b.Registry.Cancel(adID, user.ID)
	switch {
	case err == nil:
		respondEphemeral(s, i, fmt.Sprintf("🗑️ Ad #%d cancelled.", adID))
	case errors.Is(err, lfg.ErrAdNotFound):
		respondEphemeral(s, i, "This ad no longer exists.")
	case errors.Is(err, lfg.ErrForbidden):
		respondEphemeral(s, i, "🚫 Only the ad's author can cancel it.")
	case errors.Is(err, lfg.ErrAlreadyClaimed):
		respondEphemeral(s, i, "Someone already connected on this ad; it can't be cancelled.")
	case errors.Is(err, lfg.ErrAdNotOpen):
		respondEphemeral(s, i, "This ad is no longer open.")
	default:
		log.Printf("Failed to cancel ad %d: %v", adID, err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
	}
}

// HandlePing handles the logic for the /ping command.
func HandlePing(_ *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	respondEphemeral(s, i, "Pong!")
}

// HandleStatus handles the logic for the /status command.
func HandleStatus(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	uptime := time.Since(b.StartedAt).Round(time.Second)
	latency := s.HeartbeatLatency().Round(time.Millisecond)
	respondEphemeral(s, i, fmt.Sprintf("✅ Online | ping: %s | uptime: %s", latency, uptime))
}
