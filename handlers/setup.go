package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
)

// handleSetup - /setup logging and /setup verification
func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		b.replyEmbed(s, i, config.ColorRed, "Command only available in servers")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "logging":
		b.setupLogging(s, i, sub)
	case "verification":
		b.setupVerification(s, i, sub)
	}
}

func (b *Bot) setupLogging(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	channel := optionMap(sub.Options)["channel"].ChannelValue(s)
	if !b.channelUsable(s, i, channel) {
		return
	}

	err := b.store.UpdateSettings(i.GuildID, database.SettingsPatch{
		LoggingChannel: &channel.ID,
	})
	if err != nil {
		b.log.Errorw("failed to save logging settings", "guild", i.GuildID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Failed to save settings. Please try again later.")
		return
	}

	b.replyEmbed(s, i, config.ColorGreen, fmt.Sprintf("Action logging setup in <#%s>", channel.ID))
}

func (b *Bot) setupVerification(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(sub.Options)
	verificationChannel := opts["verification-channel"].ChannelValue(s)
	verifiedRole := opts["verified-role"].RoleValue(s, i.GuildID)
	verifiedChannel := opts["verified-channel"].ChannelValue(s)

	if !b.channelUsable(s, i, verificationChannel) || !b.channelUsable(s, i, verifiedChannel) {
		return
	}

	err := b.store.UpdateSettings(i.GuildID, database.SettingsPatch{
		VerificationChannel: &verificationChannel.ID,
		VerifiedRole:        &verifiedRole.ID,
		VerifiedChannel:     &verifiedChannel.ID,
	})
	if err != nil {
		b.log.Errorw("failed to save verification settings", "guild", i.GuildID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Failed to save settings. Please try again later.")
		return
	}

	// The entry point members press to start verifying
	_, err = s.ChannelMessageSendComplex(verificationChannel.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Color: config.ColorBlue,
			Title: "Verification Required",
			Description: "To access this server, your robotics competition information must be verified. " +
				"Press the button below to get started!",
		}},
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{discordgo.Button{
				CustomID: config.ButtonVerify,
				Style:    discordgo.SuccessButton,
				Label:    "Verify",
			}},
		}},
	})
	if err != nil {
		b.log.Errorw("failed to post verification prompt",
			"guild", i.GuildID, "channel", verificationChannel.ID, "error", err)
		b.replyEmbed(s, i, config.ColorRed,
			fmt.Sprintf("Settings saved, but I could not post the verification message in <#%s>.", verificationChannel.ID))
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{{
				Color: config.ColorGreen,
				Title: "Member verification setup",
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Verification channel", Value: "<#" + verificationChannel.ID + ">"},
					{Name: "Verified role", Value: "<@&" + verifiedRole.ID + ">"},
					{Name: "Verified channel", Value: "<#" + verifiedChannel.ID + ">", Inline: true},
				},
			}},
		},
	})
	if err != nil {
		b.log.Errorw("failed to respond to setup", "error", err)
	}
}

// channelUsable - the channel must be a guild text channel the bot can
// post in; replies with the failure reason otherwise
func (b *Bot) channelUsable(s *discordgo.Session, i *discordgo.InteractionCreate, channel *discordgo.Channel) bool {
	if channel == nil {
		b.replyEmbed(s, i, config.ColorRed, "Could not find that channel in this server")
		return false
	}
	if channel.Type != discordgo.ChannelTypeGuildText {
		b.replyEmbed(s, i, config.ColorRed, fmt.Sprintf("<#%s> is not a text channel", channel.ID))
		return false
	}

	perms, err := s.UserChannelPermissions(s.State.User.ID, channel.ID)
	if err != nil || perms&config.PermsCode != config.PermsCode {
		b.replyEmbed(s, i, config.ColorRed,
			fmt.Sprintf("I do not have the permissions I need in <#%s>.", channel.ID))
		return false
	}
	return true
}
