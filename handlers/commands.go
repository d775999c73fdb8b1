package handlers

import (
	"github.com/bwmarrin/discordgo"
)

var (
	manageGuildPerms     int64 = discordgo.PermissionManageServer
	moderateMemberPerms  int64 = discordgo.PermissionModerateMembers
	banMemberPerms       int64 = discordgo.PermissionBanMembers
	guildText                  = []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
	noDMs                      = false
)

// timeoutUnits - selectable timeout duration units, in declaration order
var timeoutUnits = []struct {
	Name    string
	Seconds int64
}{
	{"minute", 60},
	{"hour", 3600},
	{"day", 86400},
	{"week", 604800},
}

// Commands - the slash commands registered on startup
func Commands() []*discordgo.ApplicationCommand {
	unitChoices := make([]*discordgo.ApplicationCommandOptionChoice, len(timeoutUnits))
	for i, u := range timeoutUnits {
		unitChoices[i] = &discordgo.ApplicationCommandOptionChoice{Name: u.Name, Value: u.Name}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "setup",
			Description:              "Setup features for this server",
			DefaultMemberPermissions: &manageGuildPerms,
			DMPermission:             &noDMs,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "logging",
					Description: "Setup action logging for this server",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "The channel in which action logs will be sent",
							ChannelTypes: guildText,
							Required:     true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "verification",
					Description: "Setup member verification for this server",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "verification-channel",
							Description:  "The text channel in which users will begin the verification process",
							ChannelTypes: guildText,
							Required:     true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "verified-role",
							Description: "The role to assign to verified users",
							Required:    true,
						},
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "verified-channel",
							Description:  "The text channel to which users will be redirected after having been verified",
							ChannelTypes: guildText,
							Required:     true,
						},
					},
				},
			},
		},
		{
			Name:                     "warn",
			Description:              "Warn user",
			DefaultMemberPermissions: &moderateMemberPerms,
			DMPermission:             &noDMs,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to warn",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason for warning them",
					Required:    true,
				},
			},
		},
		{
			Name:                     "timeout",
			Description:              "Timeout user",
			DefaultMemberPermissions: &moderateMemberPerms,
			DMPermission:             &noDMs,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to timeout",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "duration",
					Description: "The duration of the timeout",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "unit",
					Description: "The unit of the timeout duration",
					Required:    true,
					Choices:     unitChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason for timing them out, if any",
				},
			},
		},
		{
			Name:                     "ban",
			Description:              "Ban user",
			DefaultMemberPermissions: &banMemberPerms,
			DMPermission:             &noDMs,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to ban",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason for banning them",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "purge",
					Description: "Purge their messages?",
				},
			},
		},
		{
			Name:                     "logs",
			Description:              "Get a user's moderation history",
			DefaultMemberPermissions: &moderateMemberPerms,
			DMPermission:             &noDMs,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to view",
					Required:    true,
				},
			},
		},
		{
			Name:         "leaderboard",
			Description:  "Show the most active members of this server",
			DMPermission: &noDMs,
		},
	}
}
