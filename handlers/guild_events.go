package handlers

import (
	"fmt"
	"log"
	"time"

	"lfg-bot/bot"
	"lfg-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// GuildCreateHandler records a guild in the roster when the bot joins it
// (and on session start, when Discord replays known guilds).
func GuildCreateHandler(b *bot.Bot) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if err := b.GuildConfigs.AddGuild(g.ID, time.Now()); err != nil {
			log.Printf("Failed to record guild %s: %v", g.ID, err)
			return
		}
		utils.Info("Guilds", "join", fmt.Sprintf("guild %s (%s)", g.Name, g.ID))
	}
}

// GuildDeleteHandler removes a guild from the roster when the bot is removed.
func GuildDeleteHandler(b *bot.Bot) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(s *discordgo.Session, g *discordgo.GuildDelete) {
		// Unavailable means an outage, not a removal.
		if g.Unavailable {
			return
		}
		if err := b.GuildConfigs.RemoveGuild(g.ID); err != nil {
			log.Printf("Failed to remove guild %s: %v", g.ID, err)
			return
		}
		utils.Info("Guilds", "leave", fmt.Sprintf("guild %s", g.ID))
	}
}
