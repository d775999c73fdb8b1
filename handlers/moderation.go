package handlers

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
)

// handleWarn - /warn: record a warning and notify the subject
func (b *Bot) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)
	user := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	if _, err := s.GuildMember(i.GuildID, user.ID); err != nil {
		b.replyText(s, i, fmt.Sprintf("Error: %s is not a member of this server", user.Mention()))
		return
	}

	now := time.Now()
	err := b.store.AppendModeration(i.GuildID, user.ID, database.KindWarning, database.ModerationEntry{
		Date:      now,
		Moderator: i.Member.User.ID,
		Reason:    reason,
	})
	if err != nil {
		b.log.Errorw("failed to record warning", "guild", i.GuildID, "user", user.ID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Something went wrong. Please try again later.")
		return
	}

	b.replyText(s, i, fmt.Sprintf("%s warned for %s", user.String(), reason))

	b.dmModerationNotice(s, i, user, "You Have Been Warned", reason)
	b.audit.LogMemberWarning(s, i.GuildID, user, i.Member.User, reason, now)
}

// handleTimeout - /timeout: time the subject out and record it
func (b *Bot) handleTimeout(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)
	user := opts["user"].UserValue(s)
	duration := opts["duration"].FloatValue()
	unit := opts["unit"].StringValue()
	var reason string
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	if _, err := s.GuildMember(i.GuildID, user.ID); err != nil {
		b.replyText(s, i, fmt.Sprintf("Error: %s is not a member of this server", user.Mention()))
		return
	}

	var unitSeconds int64
	for _, u := range timeoutUnits {
		if u.Name == unit {
			unitSeconds = u.Seconds
			break
		}
	}

	now := time.Now()
	until := now.Add(time.Duration(duration*float64(unitSeconds)) * time.Second)
	if err := s.GuildMemberTimeout(i.GuildID, user.ID, &until); err != nil {
		b.log.Errorw("failed to timeout member", "guild", i.GuildID, "user", user.ID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Something went wrong. Please try again later.")
		return
	}

	readable := fmt.Sprintf("%g %s", duration, unit)
	if duration != 1 {
		readable += "s"
	}

	// The timeout stands even if the audit append fails.
	err := b.store.AppendModeration(i.GuildID, user.ID, database.KindTimeout, database.ModerationEntry{
		Date:      now,
		Moderator: i.Member.User.ID,
		Reason:    reason,
		Duration:  readable,
	})
	if err != nil {
		b.log.Errorw("failed to record timeout", "guild", i.GuildID, "user", user.ID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Something went wrong. Please try again later.")
		return
	}

	b.replyText(s, i, fmt.Sprintf("%s timed out for %s", user.String(), readable))
	b.audit.LogMemberTimeout(s, i.GuildID, user, i.Member.User, readable, reason, now)
}

// handleBan - /ban: notify, ban, record
func (b *Bot) handleBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)
	user := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()
	var purgeDays int
	if opt, ok := opts["purge"]; ok && opt.BoolValue() {
		purgeDays = 7
	}

	if _, err := s.GuildMember(i.GuildID, user.ID); err != nil {
		b.replyText(s, i, fmt.Sprintf("Error: %s is not a member of this server", user.Mention()))
		return
	}

	// DM before the ban lands; afterwards there is no shared server left.
	b.dmModerationNotice(s, i, user, "You Have Been Banned", reason)

	if err := s.GuildBanCreateWithReason(i.GuildID, user.ID, reason, purgeDays); err != nil {
		b.log.Errorw("failed to ban member", "guild", i.GuildID, "user", user.ID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Something went wrong. Please try again later.")
		return
	}

	now := time.Now()
	err := b.store.AppendModeration(i.GuildID, user.ID, database.KindBan, database.ModerationEntry{
		Date:      now,
		Moderator: i.Member.User.ID,
		Reason:    reason,
	})
	if err != nil {
		// The ban already stands; the record is best effort.
		b.log.Errorw("failed to record ban", "guild", i.GuildID, "user", user.ID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Something went wrong. Please try again later.")
		return
	}

	b.replyText(s, i, fmt.Sprintf("%s banned", user.String()))
	b.audit.LogMemberBan(s, i.GuildID, user, i.Member.User, reason, now)
}

// dmModerationNotice - tell the subject what happened and why; closed DMs
// are tolerated
func (b *Bot) dmModerationNotice(s *discordgo.Session, i *discordgo.InteractionCreate, user *discordgo.User, title, reason string) {
	guildName := i.GuildID
	if guild, err := s.State.Guild(i.GuildID); err == nil {
		guildName = guild.Name
	}

	channel, err := s.UserChannelCreate(user.ID)
	if err != nil {
		b.log.Debugw("subject has DMs closed", "user", user.ID)
		return
	}
	_, err = s.ChannelMessageSendEmbed(channel.ID, &discordgo.MessageEmbed{
		Color: config.ColorRed,
		Title: title,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Server", Value: guildName},
			{Name: "Reason", Value: reason},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		b.log.Debugw("failed to DM subject", "user", user.ID, "error", err)
	}
}
