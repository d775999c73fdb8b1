package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
	"github.com/sdy329/bigbro-fork/verification"
)

// handleVerifyButton - present the verification modal. Only reacts inside
// the configured verification channel.
func (b *Bot) handleVerifyButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}
	gs, ok, err := b.store.Settings(i.GuildID)
	if err != nil {
		b.log.Errorw("failed to load settings", "guild", i.GuildID, "error", err)
		return
	}
	if !ok || i.ChannelID != gs.VerificationChannel {
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: config.ModalVerify,
			Title:    "Enter your information for verification",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{discordgo.TextInput{
					CustomID:  config.InputName,
					Label:     "Name or preferred nickname",
					Style:     discordgo.TextInputShort,
					MinLength: 1,
					MaxLength: 25,
					Required:  true,
				}}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{discordgo.TextInput{
					CustomID:    config.InputProgram,
					Label:       "Primary robotics competition program",
					Style:       discordgo.TextInputShort,
					Placeholder: strings.Join(config.ProgramNames(), ", "),
					MinLength:   3,
					MaxLength:   5,
					Required:    true,
				}}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{discordgo.TextInput{
					CustomID:  config.InputTeam,
					Label:     "Robotics competition team ID#",
					Style:     discordgo.TextInputShort,
					MaxLength: 7,
				}}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{discordgo.TextInput{
					CustomID:    config.InputExplanation,
					Label:       "Explanation",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "If program is None, explain how you are involved with robotics or why you joined the server",
				}}},
			},
		},
	})
	if err != nil {
		b.log.Errorw("failed to present verification modal", "guild", i.GuildID, "error", err)
	}
}

// handleVerifySubmit - run a submitted claim through the pipeline and
// execute whatever it decided
func (b *Bot) handleVerifySubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}
	if err := deferEphemeral(s, i); err != nil {
		b.log.Errorw("failed to defer verification reply", "error", err)
		return
	}

	data := i.ModalSubmitData()
	input := verification.Input{
		UserID:      i.Member.User.ID,
		Name:        modalInput(data, config.InputName),
		Program:     modalInput(data, config.InputProgram),
		Team:        modalInput(data, config.InputTeam),
		Explanation: modalInput(data, config.InputExplanation),
	}

	outcome, err := b.pipeline.Submit(context.Background(), i.GuildID, input)
	if err != nil {
		b.log.Errorw("verification failed", "guild", i.GuildID, "user", input.UserID, "error", err)
		b.genericFailure(s, i)
		return
	}

	b.runEffects(s, i.GuildID, outcome.Effects, func(n verification.Notify, link *discordgo.Button) {
		var components []discordgo.MessageComponent
		if link != nil {
			components = []discordgo.MessageComponent{discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{*link},
			}}
		}
		b.editEmbed(s, i, n.Color, n.Message, components)
	})
}

// notifyFunc delivers a Notify effect to the submitter; how depends on
// whether the transition came from a modal reply or a moderator decision.
type notifyFunc func(n verification.Notify, link *discordgo.Button)

// runEffects executes pipeline side effects in order. Platform failures
// are logged and do not stop later effects; there is no rollback.
func (b *Bot) runEffects(s *discordgo.Session, guildID string, effects []verification.Effect, notify notifyFunc) {
	var link *discordgo.Button

	for _, effect := range effects {
		switch e := effect.(type) {
		case verification.SetNickname:
			if err := s.GuildMemberNickname(guildID, e.UserID, e.Nickname); err != nil {
				b.log.Errorw("failed to set nickname", "guild", guildID, "user", e.UserID, "error", err)
			}

		case verification.AddRoles:
			for _, roleID := range e.RoleIDs {
				if err := s.GuildMemberRoleAdd(guildID, e.UserID, roleID); err != nil {
					b.log.Errorw("failed to add role",
						"guild", guildID, "user", e.UserID, "role", roleID, "error", err)
				}
			}

		case verification.PostWelcome:
			msg, err := s.ChannelMessageSend(e.ChannelID, fmt.Sprintf("<@%s> Welcome!", e.UserID))
			if err != nil {
				b.log.Errorw("failed to post welcome message",
					"guild", guildID, "channel", e.ChannelID, "error", err)
				continue
			}
			link = &discordgo.Button{
				Style: discordgo.LinkButton,
				Label: "Say hello",
				URL:   config.MessageURL(guildID, e.ChannelID, msg.ID),
			}

		case verification.OpenReview:
			b.openReview(s, e, notify)

		case verification.Notify:
			notify(e, link)
		}
	}
}

// openReview anchors a manual review: reserve the pending slot, find or
// create the subject's review thread, post the request and acknowledge the
// submitter.
func (b *Bot) openReview(s *discordgo.Session, e verification.OpenReview, notify notifyFunc) {
	pending := e.Pending

	if err := b.store.CreatePending(pending); err != nil {
		if errors.Is(err, database.ErrPendingExists) {
			notify(verification.Notify{
				Color:   config.ColorBlue,
				Message: "Your information is already being verified by the moderation team.",
			}, nil)
			return
		}
		b.log.Errorw("failed to reserve pending verification",
			"guild", pending.GuildID, "user", pending.UserID, "error", err)
		notify(verification.Notify{Color: config.ColorRed, Message: "Something went wrong. Please try again later."}, nil)
		return
	}

	thread, err := b.reviewThread(s, pending.GuildID, e.ChannelID, pending.UserID)
	if err == nil {
		var msg *discordgo.Message
		msg, err = s.ChannelMessageSendComplex(thread.ID, reviewRequest(pending))
		if err == nil {
			pending.ThreadID = thread.ID
			pending.MessageID = msg.ID
			err = b.store.UpdatePending(pending)
			if err == nil {
				notify(verification.Notify{
					Color: config.ColorBlue,
					Message: "Your information is being verified by the moderation team. " +
						"You will receive a notification when you have been verified.",
				}, &discordgo.Button{
					Style: discordgo.LinkButton,
					Label: "Help",
					URL:   config.MessageURL(pending.GuildID, thread.ID, msg.ID),
				})
				return
			}
		}
	}

	b.log.Errorw("failed to open review thread",
		"guild", pending.GuildID, "user", pending.UserID, "error", err)
	// Leave no half-open request behind; the member can resubmit.
	if err := b.store.DeletePending(pending.GuildID, pending.UserID); err != nil {
		b.log.Errorw("failed to release pending verification",
			"guild", pending.GuildID, "user", pending.UserID, "error", err)
	}
	notify(verification.Notify{Color: config.ColorRed, Message: "Something went wrong. Please try again later."}, nil)
}

// reviewThread finds the subject's open review thread by its deterministic
// name, creating it when absent.
func (b *Bot) reviewThread(s *discordgo.Session, guildID, channelID, userID string) (*discordgo.Channel, error) {
	name := fmt.Sprintf("Verifying User %s", userID)

	active, err := s.GuildThreadsActive(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active threads: %w", err)
	}
	for _, thread := range active.Threads {
		if thread.ParentID == channelID && thread.Name == name {
			return thread, nil
		}
	}

	thread, err := s.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                name,
		Type:                discordgo.ChannelTypeGuildPrivateThread,
		AutoArchiveDuration: 10080,
		Invitable:           false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create review thread: %w", err)
	}

	// Pull the subject into the fresh thread
	if _, err := s.ChannelMessageSend(thread.ID, "<@"+userID+">"); err != nil {
		b.log.Errorw("failed to mention subject in review thread",
			"guild", guildID, "thread", thread.ID, "error", err)
	}
	return thread, nil
}

// reviewRequest - the pending request message with Approve/Deny controls
func reviewRequest(p database.PendingVerification) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Color:       config.ColorBlue,
			Title:       "Verification request",
			Description: p.Explanation,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Nickname", Value: p.Name},
				{Name: "User ID", Value: p.UserID},
			},
			Timestamp: p.Timestamp.Format(time.RFC3339),
		}},
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{CustomID: config.ButtonApprove, Style: discordgo.SuccessButton, Label: "Approve"},
				discordgo.Button{CustomID: config.ButtonDeny, Style: discordgo.DangerButton, Label: "Deny"},
			},
		}},
	}
}

// modalInput - text input value by custom ID
func modalInput(data discordgo.ModalSubmitInteractionData, id string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok && input.CustomID == id {
				return input.Value
			}
		}
	}
	return ""
}
