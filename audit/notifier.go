// Package audit posts human-readable records of moderation actions and
// message lifecycle events to a guild's configured logging channel.
package audit

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
)

// ChangeType - message lifecycle category
type ChangeType string

const (
	MessageCreated ChangeType = "created"
	MessageUpdated ChangeType = "updated"
	MessageDeleted ChangeType = "deleted"
)

// Sender is the slice of the Discord session the notifier needs.
type Sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SettingsSource resolves per-guild configuration.
type SettingsSource interface {
	Settings(guildID string) (database.GuildSettings, bool, error)
}

// Notifier formats and emits audit records. Guilds without a logging
// channel are silently skipped.
type Notifier struct {
	settings SettingsSource
	log      *zap.SugaredLogger
}

// New creates a Notifier.
func New(settings SettingsSource, log *zap.SugaredLogger) *Notifier {
	return &Notifier{settings: settings, log: log}
}

// ChannelFor - the guild's logging channel, if configured
func (n *Notifier) ChannelFor(guildID string) (string, bool) {
	gs, ok, err := n.settings.Settings(guildID)
	if err != nil {
		n.log.Errorw("failed to resolve logging channel", "guild", guildID, "error", err)
		return "", false
	}
	if !ok || gs.LoggingChannel == "" {
		return "", false
	}
	return gs.LoggingChannel, true
}

// LogMemberBan records a ban in the logging channel.
func (n *Notifier) LogMemberBan(s Sender, guildID string, subject, actor *discordgo.User, reason string, ts time.Time) {
	n.logMemberAction(s, guildID, subject, config.ColorRed,
		fmt.Sprintf("**%s banned by %s**", subject.Mention(), actor.Mention()), reason, ts)
}

// LogMemberWarning records a warning in the logging channel.
func (n *Notifier) LogMemberWarning(s Sender, guildID string, subject, actor *discordgo.User, reason string, ts time.Time) {
	n.logMemberAction(s, guildID, subject, config.ColorYellow,
		fmt.Sprintf("**%s warned by %s**", subject.Mention(), actor.Mention()), reason, ts)
}

// LogMemberTimeout records a timeout in the logging channel.
func (n *Notifier) LogMemberTimeout(s Sender, guildID string, subject, actor *discordgo.User, duration, reason string, ts time.Time) {
	n.logMemberAction(s, guildID, subject, config.ColorBlue,
		fmt.Sprintf("**%s timed out for %s by %s**", subject.Mention(), duration, actor.Mention()), reason, ts)
}

func (n *Notifier) logMemberAction(s Sender, guildID string, subject *discordgo.User, color int, description, reason string, ts time.Time) {
	channelID, ok := n.ChannelFor(guildID)
	if !ok {
		return
	}

	embed := &discordgo.MessageEmbed{
		Color: color,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    subject.String(),
			URL:     config.UserURL(subject.ID),
			IconURL: subject.AvatarURL(""),
		},
		Description: description,
		Footer:      &discordgo.MessageEmbedFooter{Text: "User ID: " + subject.ID},
		Timestamp:   ts.Format(time.RFC3339),
	}
	if reason != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Reason", Value: reason})
	}

	if _, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}); err != nil {
		n.log.Errorw("failed to send audit record", "guild", guildID, "channel", channelID, "error", err)
	}
}

// LogMessageChange records a message lifecycle event. Partial messages,
// bot authors and non-guild messages are dropped without comment.
func (n *Notifier) LogMessageChange(s Sender, m *discordgo.Message, change ChangeType, ts time.Time) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	channelID, ok := n.ChannelFor(m.GuildID)
	if !ok {
		return
	}

	embed := &discordgo.MessageEmbed{
		Color: n.messageChangeColor(change),
		Author: &discordgo.MessageEmbedAuthor{
			Name:    m.Author.String(),
			URL:     config.UserURL(m.Author.ID),
			IconURL: m.Author.AvatarURL(""),
		},
		Description: fmt.Sprintf("**Message by %s %s in <#%s>**\n%s",
			m.Author.Mention(), change, m.ChannelID, m.Content),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("User ID: %s | Message ID: %s", m.Author.ID, m.ID),
		},
		Timestamp: ts.Format(time.RFC3339),
	}

	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{discordgo.Button{
				Style: discordgo.LinkButton,
				Label: "Message",
				URL:   config.MessageURL(m.GuildID, m.ChannelID, m.ID),
			}},
		}},
	}
	if _, err := s.ChannelMessageSendComplex(channelID, send); err != nil {
		n.log.Errorw("failed to send message audit record",
			"guild", m.GuildID, "channel", channelID, "error", err)
	}
}

func (n *Notifier) messageChangeColor(change ChangeType) int {
	switch change {
	case MessageCreated:
		return config.ColorGreen
	case MessageDeleted:
		return config.ColorRed
	default:
		return config.ColorBlue
	}
}
