// Package handlers wires Discord events into the bot's core: the
// verification pipeline, the moderation record store and the audit
// notifier. Handlers decide nothing themselves beyond input shape; they
// validate, invoke the core and execute the side effects it returns.
package handlers

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/sdy329/bigbro-fork/audit"
	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
	"github.com/sdy329/bigbro-fork/verification"
)

// Bot holds the shared dependencies of every handler.
type Bot struct {
	store    *database.Store
	pipeline *verification.Pipeline
	audit    *audit.Notifier
	cfg      *config.Config
	log      *zap.SugaredLogger

	// Live pagination sessions keyed by reply message ID
	sessions *cache.Cache
	// Recently seen messages, so delete events can still be rendered
	messages *cache.Cache
}

// New creates a Bot.
func New(store *database.Store, pipeline *verification.Pipeline, notifier *audit.Notifier, cfg *config.Config, log *zap.SugaredLogger) *Bot {
	return &Bot{
		store:    store,
		pipeline: pipeline,
		audit:    notifier,
		cfg:      cfg,
		log:      log,
		sessions: cache.New(15*time.Minute, 30*time.Minute),
		messages: cache.New(30*time.Minute, 10*time.Minute),
	}
}

// InteractionCreate - dispatch slash commands, component presses and modal
// submissions
func (b *Bot) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "setup":
			b.handleSetup(s, i)
		case "warn":
			b.handleWarn(s, i)
		case "timeout":
			b.handleTimeout(s, i)
		case "ban":
			b.handleBan(s, i)
		case "logs":
			b.handleLogs(s, i)
		case "leaderboard":
			b.handleLeaderboard(s, i)
		}

	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case config.ButtonVerify:
			b.handleVerifyButton(s, i)
		case config.ButtonApprove, config.ButtonDeny:
			b.handleReview(s, i)
		case config.ButtonPrev, config.ButtonNext, config.SelectLogView:
			b.handleLogsComponent(s, i)
		}

	case discordgo.InteractionModalSubmit:
		if i.ModalSubmitData().CustomID == config.ModalVerify {
			b.handleVerifySubmit(s, i)
		}
	}
}

// replyEmbed - immediate ephemeral embed response
func (b *Bot) replyEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, color int, description string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{{Color: color, Description: description}},
		},
	})
	if err != nil {
		b.log.Errorw("failed to respond to interaction", "error", err)
	}
}

// replyText - immediate ephemeral text response
func (b *Bot) replyText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: content,
		},
	})
	if err != nil {
		b.log.Errorw("failed to respond to interaction", "error", err)
	}
}

// deferEphemeral - acknowledge now, edit the reply later
func deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

// editEmbed - fill in a deferred reply
func (b *Bot) editEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, color int, description string, components []discordgo.MessageComponent) {
	embeds := []*discordgo.MessageEmbed{{Color: color, Description: description}}
	edit := &discordgo.WebhookEdit{Embeds: &embeds}
	if components != nil {
		edit.Components = &components
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		b.log.Errorw("failed to edit interaction response", "error", err)
	}
}

// genericFailure - the catch-all reply for dependency failures
func (b *Bot) genericFailure(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.editEmbed(s, i, config.ColorRed, "Something went wrong. Please try again later.", nil)
}

// optionMap - command options by name, since optional arguments make
// positional access unreliable
func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
