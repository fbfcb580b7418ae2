package command

import "github.com/bwmarrin/discordgo"

// SetChannelCommand defines the structure for the /setchannel command.
type SetChannelCommand struct{}

// Definition returns the application command definition.
func (c *SetChannelCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "setchannel",
		Description: "Set the channel where LFG ads will be posted (admin only)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "channel",
				Description: "The text channel for LFG ads",
				Type:        discordgo.ApplicationCommandOptionChannel,
				ChannelTypes: []discordgo.ChannelType{
					discordgo.ChannelTypeGuildText,
				},
				Required: true,
			},
		},
	}
}

// ShowChannelCommand defines the structure for the /showchannel command.
type ShowChannelCommand struct{}

// Definition returns the application command definition.
func (c *ShowChannelCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "showchannel",
		Description: "Show the current LFG ads channel (admin only)",
	}
}

// ClearChannelCommand defines the structure for the /clearchannel command.
type ClearChannelCommand struct{}

// Definition returns the application command definition.
func (c *ClearChannelCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "clearchannel",
		Description: "Clear the configured LFG ads channel (admin only)",
	}
}

// PostCommand defines the structure for the /post command.
type PostCommand struct{}

// Definition returns the application command definition.
func (c *PostCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "post",
		Description: "Post an LFG ad to every server the bot serves",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "game",
				Description: "Game name",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
			},
			{
				Name:        "notes",
				Description: "What do you need?",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    false,
			},
		},
	}
}

// CancelCommand defines the structure for the /cancel command.
type CancelCommand struct{}

// Definition returns the application command definition.
func (c *CancelCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "cancel",
		Description: "Cancel one of your open LFG ads",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "ad_id",
				Description: "The ad number from the posted message footer",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    true,
			},
		},
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}

// StatusCommand defines the structure for the /status command.
type StatusCommand struct{}

// Definition returns the application command definition.
func (c *StatusCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "status",
		Description: "Bot health and uptime",
	}
}
