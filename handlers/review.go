package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/verification"
)

// handleReview - a moderator pressed Approve or Deny on a pending request.
// Approval replays the same grant the auto path uses, from the claim saved
// when the request was opened.
func (b *Bot) handleReview(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" || i.Member == nil {
		return
	}
	if i.Member.Permissions&discordgo.PermissionManageRoles == 0 {
		b.replyEmbed(s, i, config.ColorRed, "You need the Manage Roles permission to act on verification requests.")
		return
	}

	pending, found, err := b.store.PendingByMessage(i.Message.ID)
	if err != nil {
		b.log.Errorw("failed to look up pending verification", "message", i.Message.ID, "error", err)
		b.replyEmbed(s, i, config.ColorRed, "Something went wrong. Please try again later.")
		return
	}
	if !found {
		b.replyEmbed(s, i, config.ColorRed, "No pending verification request matches this message.")
		return
	}

	if err := deferEphemeral(s, i); err != nil {
		b.log.Errorw("failed to defer review reply", "error", err)
		return
	}

	approve := i.MessageComponentData().CustomID == config.ButtonApprove

	var outcome verification.Outcome
	if approve {
		outcome, err = b.pipeline.Approve(pending)
		if err != nil {
			b.log.Errorw("approval failed", "guild", pending.GuildID, "user", pending.UserID, "error", err)
			b.genericFailure(s, i)
			return
		}
	} else {
		outcome = b.pipeline.Deny(pending)
	}

	b.runEffects(s, pending.GuildID, outcome.Effects, b.dmNotify(s, pending.UserID, approve))

	if err := b.store.DeletePending(pending.GuildID, pending.UserID); err != nil {
		b.log.Errorw("failed to delete pending verification",
			"guild", pending.GuildID, "user", pending.UserID, "error", err)
	}

	b.closeRequest(s, i, approve)
}

// dmNotify delivers pipeline notifications to the subject by DM; closed
// DMs are not an error.
func (b *Bot) dmNotify(s *discordgo.Session, userID string, approved bool) notifyFunc {
	return func(n verification.Notify, link *discordgo.Button) {
		channel, err := s.UserChannelCreate(userID)
		if err != nil {
			b.log.Debugw("subject has DMs closed", "user", userID, "approved", approved)
			return
		}

		send := &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{{Color: n.Color, Description: n.Message}},
		}
		if link != nil {
			send.Components = []discordgo.MessageComponent{discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{*link},
			}}
		}
		if _, err := s.ChannelMessageSendComplex(channel.ID, send); err != nil {
			b.log.Debugw("failed to DM subject", "user", userID, "error", err)
		}
	}
}

// closeRequest marks the request message as decided and strips its
// controls, then confirms to the moderator.
func (b *Bot) closeRequest(s *discordgo.Session, i *discordgo.InteractionCreate, approved bool) {
	decision := "Denied"
	if approved {
		decision = "Approved"
	}

	edit := discordgo.NewMessageEdit(i.ChannelID, i.Message.ID).
		SetContent(fmt.Sprintf("**%s** by %s", decision, i.Member.User.Mention()))
	components := []discordgo.MessageComponent{}
	edit.Components = &components
	if _, err := s.ChannelMessageEditComplex(edit); err != nil {
		b.log.Errorw("failed to close request message", "message", i.Message.ID, "error", err)
	}

	color := config.ColorRed
	if approved {
		color = config.ColorGreen
	}
	b.editEmbed(s, i, color, fmt.Sprintf("%s the verification request.", decision), nil)
}
