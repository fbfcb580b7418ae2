package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"lfg-bot/bot"
	"lfg-bot/lfg"

	"github.com/bwmarrin/discordgo"
)

// ComponentDispatcher routes button clicks by custom ID.
func ComponentDispatcher(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	if strings.HasPrefix(customID, lfg.ConnectPrefix) {
		HandleConnect(b, s, i, customID)
	}
}

// HandleConnect handles a press of the Connect button on any copy of an ad.
// The arbiter guarantees exactly one presser per ad ever sees success; every
// outcome is reported privately to the presser.
func HandleConnect(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	user := interactionUser(i)
	if user == nil {
		return
	}

	adID, err := strconv.ParseInt(strings.TrimPrefix(customID, lfg.ConnectPrefix), 10, 64)
	if err != nil {
		respondEphemeral(s, i, "Invalid ad id.")
		return
	}

	result, err := b.Arbiter.Claim(context.Background(), adID, user.ID)
	switch {
	case err == nil:
		if result.ClaimantNotified {
			respondEphemeral(s, i, fmt.Sprintf("🤝 Check your DMs — I've connected you with <@%s>!", result.Ad.AuthorID))
		} else {
			respondEphemeral(s, i, fmt.Sprintf(
				"🤝 You're connected with <@%s>, but I couldn't DM you — your DMs may be disabled.", result.Ad.AuthorID))
		}
	case errors.Is(err, lfg.ErrSelfClaim):
		respondEphemeral(s, i, "You can't connect to your own ad.")
	case errors.Is(err, lfg.ErrAlreadyClaimed):
		if result.Ad.ClaimedBy == user.ID {
			respondEphemeral(s, i, "You're already connected on this ad.")
		} else {
			respondEphemeral(s, i, "Someone else got there first — this ad is already claimed.")
		}
	case errors.Is(err, lfg.ErrAdNotOpen):
		respondEphemeral(s, i, "This ad is no longer open.")
	case errors.Is(err, lfg.ErrAdNotFound):
		respondEphemeral(s, i, "This ad no longer exists.")
	default:
		log.Printf("Claim on ad %d by %s failed: %v", adID, user.ID, err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
	}
}
