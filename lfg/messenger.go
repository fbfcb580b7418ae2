package lfg

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"lfg-bot/models"
)

// ConnectPrefix is the custom ID prefix of the Connect button; the ad id follows it.
const ConnectPrefix = "ad_connect:"

// ColorAd is the embed accent color for ad messages.
const ColorAd = 0x5865f2

// Messenger is the delivery seam between the matchmaking engine and the
// platform. The engine only needs to post an ad copy, disable its Connect
// control later, and send a private message.
type Messenger interface {
	SendAd(ctx context.Context, channelID string, ad models.Ad) (messageRef string, err error)
	DisableConnect(ctx context.Context, channelID, messageRef string, ad models.Ad) error
	SendDM(ctx context.Context, userID, content string) error
}

// DiscordMessenger implements Messenger on a discordgo session.
type DiscordMessenger struct {
	Session *discordgo.Session
}

// NewDiscordMessenger wraps a discordgo session.
func NewDiscordMessenger(s *discordgo.Session) *DiscordMessenger {
	return &DiscordMessenger{Session: s}
}

// AdEmbed renders the ad as an embed shared by every guild copy.
func AdEmbed(ad models.Ad) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("LFG | %s", ad.Game),
		Color: ColorAd,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Posted by",
				Value:  fmt.Sprintf("<@%s>", ad.AuthorID),
				Inline: true,
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Ad #%d", ad.ID)},
		Timestamp: ad.CreatedAt.Format(time.RFC3339),
	}
	if ad.Notes != "" {
		embed.Description = ad.Notes
	} else {
		embed.Description = "Looking for teammates!"
	}
	return embed
}

func connectComponents(ad models.Ad, disabled bool) []discordgo.MessageComponent {
	label := "Connect"
	style := discordgo.PrimaryButton
	if disabled {
		label = "Claimed"
		style = discordgo.SecondaryButton
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    label,
					Style:    style,
					CustomID: fmt.Sprintf("%s%d", ConnectPrefix, ad.ID),
					Disabled: disabled,
				},
			},
		},
	}
}

// SendAd posts one copy of the ad into the given channel and returns its message ID.
func (m *DiscordMessenger) SendAd(ctx context.Context, channelID string, ad models.Ad) (string, error) {
	msg, err := m.Session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{AdEmbed(ad)},
		Components: connectComponents(ad, false),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send ad %d to channel %s: %w", ad.ID, channelID, err)
	}
	return msg.ID, nil
}

// DisableConnect swaps the Connect button on a posted copy for a disabled one.
func (m *DiscordMessenger) DisableConnect(ctx context.Context, channelID, messageRef string, ad models.Ad) error {
	components := connectComponents(ad, true)
	edit := discordgo.NewMessageEdit(channelID, messageRef)
	edit.Components = &components

	_, err := m.Session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("disable connect on message %s: %w", messageRef, err)
	}
	return nil
}

// SendDM delivers a private message. Users can block DMs, so failures here
// are an expected delivery outcome for callers to absorb.
func (m *DiscordMessenger) SendDM(ctx context.Context, userID, content string) error {
	ch, err := m.Session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open DM channel with %s: %w", userID, err)
	}
	_, err = m.Session.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send DM to %s: %w", userID, err)
	}
	return nil
}
