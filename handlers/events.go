package handlers

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"

	"github.com/sdy329/bigbro-fork/audit"
)

// MessageCreate - count the message and remember it so later delete events
// can still be rendered
func (b *Bot) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	b.messages.Set(m.ID, m.Message, cache.DefaultExpiration)

	if err := b.store.IncrementCount(m.GuildID, m.ChannelID, m.Author.ID); err != nil {
		b.log.Errorw("failed to count message",
			"guild", m.GuildID, "channel", m.ChannelID, "user", m.Author.ID, "error", err)
	}
}

// MessageUpdate - audit edited messages
func (b *Bot) MessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	// Partial events carry no author; the notifier drops those.
	b.audit.LogMessageChange(s, m.Message, audit.MessageUpdated, time.Now())

	if m.Author != nil && !m.Author.Bot && m.GuildID != "" {
		b.messages.Set(m.ID, m.Message, cache.DefaultExpiration)
	}
}

// MessageDelete - audit deleted messages, recovering content from the
// session state or the bot's own recent-message cache
func (b *Bot) MessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	b.audit.LogMessageChange(s, b.recoverMessage(m.BeforeDelete, m.ID), audit.MessageDeleted, time.Now())
}

// MessageDeleteBulk - fan a bulk deletion out into per-message audit
// records; messages nobody cached are dropped
func (b *Bot) MessageDeleteBulk(s *discordgo.Session, m *discordgo.MessageDeleteBulk) {
	now := time.Now()
	for _, id := range m.Messages {
		b.audit.LogMessageChange(s, b.recoverMessage(nil, id), audit.MessageDeleted, now)
	}
}

func (b *Bot) recoverMessage(fromState *discordgo.Message, id string) *discordgo.Message {
	if fromState != nil {
		return fromState
	}
	if cached, found := b.messages.Get(id); found {
		return cached.(*discordgo.Message)
	}
	return nil
}
