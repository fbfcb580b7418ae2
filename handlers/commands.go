package handlers

import (
	"log"

	"lfg-bot/bot"
	"lfg-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// CommandDispatcher is the central handler for all application command interactions.
// It performs permission checks and then dispatches the interaction to the appropriate handler.
func CommandDispatcher(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	auth, err := utils.NewAuth()
	if err != nil {
		log.Printf("Failed to create auth instance: %v", err)
		return
	}

	commandPermissions := map[string]string{
		"setchannel":   "admin",
		"showchannel":  "admin",
		"clearchannel": "admin",
		"post":         "guest",
		"cancel":       "guest",
		"ping":         "guest",
		"status":       "guest",
	}

	commandName := i.ApplicationCommandData().Name
	requiredLevel, ok := commandPermissions[commandName]

	if ok {
		if !auth.CheckPermission(i, requiredLevel) {
			respondEphemeral(s, i, "🚫 You don't have permission to use this command.")
			return
		}
	}

	switch commandName {
	case "setchannel":
		HandleSetChannel(b, s, i)
	case "showchannel":
		HandleShowChannel(b, s, i)
	case "clearchannel":
		HandleClearChannel(b, s, i)
	case "post":
		HandlePost(b, s, i)
	case "cancel":
		HandleCancel(b, s, i)
	case "ping":
		HandlePing(b, s, i)
	case "status":
		HandleStatus(b, s, i)
	default:
		respondEphemeral(s, i, "🚫 Unknown command.")
	}
}
