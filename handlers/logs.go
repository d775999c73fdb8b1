package handlers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"

	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
	"github.com/sdy329/bigbro-fork/leaderboard"
)

// logsSession - live state behind one /logs reply: the paginated activity
// view plus the selected history category. The mutex serializes component
// presses, which discordgo dispatches on separate goroutines.
type logsSession struct {
	mu       sync.Mutex
	view     *leaderboard.View
	guildID  string
	userID   string
	category string
}

// handleLogs - /logs: a member's moderation history with a paginated
// activity ranking
func (b *Bot) handleLogs(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}
	user := optionMap(i.ApplicationCommandData().Options)["user"].UserValue(s)

	if _, err := s.GuildMember(i.GuildID, user.ID); err != nil {
		b.replyText(s, i, fmt.Sprintf("Error: %s is not a member of this server", user.Mention()))
		return
	}

	hasRecord, err := b.store.HasModerationRecord(i.GuildID, user.ID)
	if err != nil {
		b.log.Errorw("failed to check moderation record", "guild", i.GuildID, "user", user.ID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Something went wrong. Please try again later.")
		return
	}
	if !hasRecord {
		b.replyText(s, i, fmt.Sprintf("No moderation history found for %s", user.Mention()))
		return
	}

	if err := deferEphemeral(s, i); err != nil {
		b.log.Errorw("failed to defer logs reply", "error", err)
		return
	}

	members, err := guildMembers(s, i.GuildID)
	if err != nil {
		b.log.Errorw("failed to fetch members", "guild", i.GuildID, "error", err)
		b.genericFailure(s, i)
		return
	}

	cursor, err := b.store.MessageCounts(i.GuildID, database.CountQuery{UserID: user.ID})
	if err != nil {
		b.log.Errorw("failed to aggregate message counts", "guild", i.GuildID, "error", err)
		b.genericFailure(s, i)
		return
	}

	session := &logsSession{
		view:     leaderboard.NewView(cursor, members),
		guildID:  i.GuildID,
		userID:   user.ID,
		category: "user",
	}

	if err := b.renderLogs(s, i, session); err != nil {
		b.log.Errorw("failed to render logs", "guild", i.GuildID, "error", err)
		return
	}

	reply, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		b.log.Errorw("failed to fetch logs reply", "error", err)
		return
	}
	b.sessions.Set(reply.ID, session, cache.DefaultExpiration)
}

// handleLogsComponent - page navigation and category selection on a /logs
// reply
func (b *Bot) handleLogsComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cached, found := b.sessions.Get(i.Message.ID)
	if !found {
		b.replyEmbed(s, i, config.ColorRed, "This view has expired. Run the command again.")
		return
	}
	session := cached.(*logsSession)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		b.log.Errorw("failed to acknowledge logs navigation", "error", err)
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	data := i.MessageComponentData()
	switch data.CustomID {
	case config.ButtonPrev:
		session.view.Retreat()
	case config.ButtonNext:
		session.view.Advance()
	case config.SelectLogView:
		if len(data.Values) > 0 {
			session.category = data.Values[0]
		}
	}

	if err := b.renderLogs(s, i, session); err != nil {
		b.log.Errorw("failed to render logs", "guild", session.guildID, "error", err)
	}
}

// renderLogs - write the current category and page into the reply
func (b *Bot) renderLogs(s *discordgo.Session, i *discordgo.InteractionCreate, session *logsSession) error {
	description, err := b.logsDescription(session)
	if err != nil {
		return err
	}
	if description == "" {
		description = "Nothing recorded"
	}

	embeds := []*discordgo.MessageEmbed{{
		Color:       config.ColorBlue,
		Title:       "Moderation history",
		Description: description,
	}}
	components := []discordgo.MessageComponent{
		categoryRow(session.category),
		navigationRow(session.view),
	}
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

func (b *Bot) logsDescription(session *logsSession) (string, error) {
	if session.category == "user" {
		return session.view.Render(), nil
	}

	ml, _, err := b.store.Moderation(session.guildID, session.userID)
	if err != nil {
		return "", err
	}

	var entries []database.ModerationEntry
	switch session.category {
	case "warnings":
		entries = ml.Warnings
	case "timeouts":
		entries = ml.Timeouts
	case "bans":
		entries = ml.Bans
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		line := fmt.Sprintf("<t:%d:f> by <@%s>", entry.Date.Unix(), entry.Moderator)
		if entry.Duration != "" {
			line += " for " + entry.Duration
		}
		if entry.Reason != "" {
			line += ": " + entry.Reason
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// categoryRow - the history category select menu
func categoryRow(selected string) discordgo.MessageComponent {
	options := []discordgo.SelectMenuOption{
		{Label: "User", Description: "User's information", Value: "user"},
		{Label: "Warnings", Description: "Warning history", Value: "warnings"},
		{Label: "Timeouts", Description: "Timeout history", Value: "timeouts"},
		{Label: "Bans", Description: "Ban history", Value: "bans"},
	}
	for idx := range options {
		options[idx].Default = options[idx].Value == selected
	}
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			MenuType: discordgo.StringSelectMenu,
			CustomID: config.SelectLogView,
			Options:  options,
		},
	}}
}

// navigationRow - prev/next buttons; the last-page check peeks the cursor
func navigationRow(view *leaderboard.View) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			CustomID: config.ButtonPrev,
			Style:    discordgo.PrimaryButton,
			Emoji:    &discordgo.ComponentEmoji{Name: "◀️"},
			Disabled: view.Page() == 0,
		},
		discordgo.Button{
			CustomID: config.ButtonNext,
			Style:    discordgo.PrimaryButton,
			Emoji:    &discordgo.ComponentEmoji{Name: "▶️"},
			Disabled: view.IsLastPage(),
		},
	}}
}

// handleLeaderboard - /leaderboard: the guild's most active members
func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}

	cursor, err := b.store.MessageCounts(i.GuildID, database.CountQuery{
		Channels: b.cfg.LeaderboardChannels,
	})
	if err != nil {
		b.log.Errorw("failed to aggregate message counts", "guild", i.GuildID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Something went wrong. Please try again later.")
		return
	}

	rows := leaderboard.Top(cursor, config.LeaderboardSize)
	lines := make([]string, len(rows))
	for idx, row := range rows {
		lines[idx] = fmt.Sprintf("<@%s>: `%d messages`", row.UserID, row.Count)
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Color:       config.ColorBlue,
				Title:       "Users with no lives:",
				Description: strings.Join(lines, "\n"),
			}},
		},
	})
	if err != nil {
		b.log.Errorw("failed to respond to leaderboard", "error", err)
	}
}

// guildMembers - snapshot of everyone currently in the guild, user ID to
// display name
func guildMembers(s *discordgo.Session, guildID string) (leaderboard.Members, error) {
	members := make(leaderboard.Members)
	after := ""
	for {
		chunk, err := s.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			return members, nil
		}
		for _, member := range chunk {
			name := member.Nick
			if name == "" {
				name = member.User.Username
			}
			members[member.User.ID] = name
		}
		after = chunk[len(chunk)-1].User.ID
	}
}
