package handlers

import (
	"lfg-bot/bot"

	"github.com/bwmarrin/discordgo"
)

// InteractionCreate handles slash command and component interactions.
func InteractionCreate(b *bot.Bot) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			CommandDispatcher(b, s, i)
		case discordgo.InteractionMessageComponent:
			ComponentDispatcher(b, s, i)
		}
	}
}
