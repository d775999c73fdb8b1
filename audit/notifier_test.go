package audit

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
)

type fakeSender struct {
	channels []string
	sends    []*discordgo.MessageSend
}

func (f *fakeSender) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channels = append(f.channels, channelID)
	f.sends = append(f.sends, data)
	return &discordgo.Message{}, nil
}

type fakeSettings struct {
	byGuild map[string]database.GuildSettings
}

func (f *fakeSettings) Settings(guildID string) (database.GuildSettings, bool, error) {
	gs, ok := f.byGuild[guildID]
	return gs, ok, nil
}

func newTestNotifier(loggingChannel string) (*Notifier, *fakeSender) {
	settings := &fakeSettings{byGuild: map[string]database.GuildSettings{}}
	if loggingChannel != "" {
		settings.byGuild["guild"] = database.GuildSettings{LoggingChannel: loggingChannel}
	}
	return New(settings, zap.NewNop().Sugar()), &fakeSender{}
}

var (
	subject = &discordgo.User{ID: "user-1", Username: "alex"}
	actor   = &discordgo.User{ID: "mod-1", Username: "mod"}
)

func TestMemberActionColors(t *testing.T) {
	n, sender := newTestNotifier("chan-logs")
	ts := time.Now()

	n.LogMemberWarning(sender, "guild", subject, actor, "spam", ts)
	n.LogMemberTimeout(sender, "guild", subject, actor, "1 hour", "spam", ts)
	n.LogMemberBan(sender, "guild", subject, actor, "spam", ts)

	require.Len(t, sender.sends, 3)
	assert.Equal(t, config.ColorYellow, sender.sends[0].Embeds[0].Color)
	assert.Equal(t, config.ColorBlue, sender.sends[1].Embeds[0].Color)
	assert.Equal(t, config.ColorRed, sender.sends[2].Embeds[0].Color)
	for _, channelID := range sender.channels {
		assert.Equal(t, "chan-logs", channelID)
	}
}

func TestMemberActionEmbed(t *testing.T) {
	n, sender := newTestNotifier("chan-logs")

	n.LogMemberBan(sender, "guild", subject, actor, "spam", time.Now())

	require.Len(t, sender.sends, 1)
	embed := sender.sends[0].Embeds[0]
	assert.Contains(t, embed.Description, subject.Mention())
	assert.Contains(t, embed.Description, actor.Mention())
	assert.Equal(t, "User ID: user-1", embed.Footer.Text)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "spam", embed.Fields[0].Value)
}

func TestMemberActionWithoutReason(t *testing.T) {
	n, sender := newTestNotifier("chan-logs")

	n.LogMemberWarning(sender, "guild", subject, actor, "", time.Now())

	require.Len(t, sender.sends, 1)
	assert.Empty(t, sender.sends[0].Embeds[0].Fields)
}

func TestNoLoggingChannelConfigured(t *testing.T) {
	n, sender := newTestNotifier("")

	n.LogMemberBan(sender, "guild", subject, actor, "spam", time.Now())
	n.LogMessageChange(sender, &discordgo.Message{
		ID: "m1", GuildID: "guild", ChannelID: "chan", Author: subject,
	}, MessageDeleted, time.Now())

	assert.Empty(t, sender.sends)
}

func TestMessageChangeDropsPartials(t *testing.T) {
	n, sender := newTestNotifier("chan-logs")
	ts := time.Now()

	n.LogMessageChange(sender, nil, MessageDeleted, ts)
	n.LogMessageChange(sender, &discordgo.Message{ID: "m1", GuildID: "guild"}, MessageDeleted, ts)
	n.LogMessageChange(sender, &discordgo.Message{
		ID: "m1", GuildID: "guild", Author: &discordgo.User{ID: "bot-1", Bot: true},
	}, MessageDeleted, ts)
	n.LogMessageChange(sender, &discordgo.Message{ID: "m1", Author: subject}, MessageDeleted, ts)

	assert.Empty(t, sender.sends)
}

func TestMessageChangeEmbed(t *testing.T) {
	n, sender := newTestNotifier("chan-logs")

	n.LogMessageChange(sender, &discordgo.Message{
		ID: "m1", GuildID: "guild", ChannelID: "chan", Author: subject, Content: "hello",
	}, MessageDeleted, time.Now())

	require.Len(t, sender.sends, 1)
	send := sender.sends[0]
	embed := send.Embeds[0]
	assert.Equal(t, config.ColorRed, embed.Color)
	assert.Contains(t, embed.Description, "deleted in <#chan>")
	assert.Contains(t, embed.Description, "hello")

	require.Len(t, send.Components, 1)
	row, ok := send.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	button, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, config.MessageURL("guild", "chan", "m1"), button.URL)
}

func TestMessageChangeColorsPerCategory(t *testing.T) {
	n, sender := newTestNotifier("chan-logs")
	msg := &discordgo.Message{ID: "m1", GuildID: "guild", ChannelID: "chan", Author: subject}
	ts := time.Now()

	n.LogMessageChange(sender, msg, MessageCreated, ts)
	n.LogMessageChange(sender, msg, MessageUpdated, ts)
	n.LogMessageChange(sender, msg, MessageDeleted, ts)

	require.Len(t, sender.sends, 3)
	assert.Equal(t, config.ColorGreen, sender.sends[0].Embeds[0].Color)
	assert.Equal(t, config.ColorBlue, sender.sends[1].Embeds[0].Color)
	assert.Equal(t, config.ColorRed, sender.sends[2].Embeds[0].Color)
}
