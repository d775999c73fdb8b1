package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/sdy329/bigbro-fork/audit"
	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
	"github.com/sdy329/bigbro-fork/handlers"
	"github.com/sdy329/bigbro-fork/logging"
	"github.com/sdy329/bigbro-fork/registry"
	"github.com/sdy329/bigbro-fork/verification"
)

func main() {
	if err := logging.Init(os.Getenv("APP_ENV")); err != nil {
		panic(err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}

	store, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logging.Fatal("failed to open database", "path", cfg.DatabasePath, "error", err)
	}
	defer store.Close()

	pipeline := verification.New(registry.New(cfg.RobotEventsToken), store, logging.L())
	notifier := audit.New(store, logging.L())
	bot := handlers.New(store, pipeline, notifier, cfg, logging.L())

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		logging.Fatal("failed to create session", "error", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent
	session.State.MaxMessageCount = 2000

	session.AddHandler(bot.InteractionCreate)
	session.AddHandler(bot.MessageCreate)
	session.AddHandler(bot.MessageUpdate)
	session.AddHandler(bot.MessageDelete)
	session.AddHandler(bot.MessageDeleteBulk)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logging.Info("connected", "user", r.User.Username, "guilds", len(r.Guilds))
	})

	if err := session.Open(); err != nil {
		logging.Fatal("failed to connect", "error", err)
	}
	defer session.Close()

	if _, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, "", handlers.Commands()); err != nil {
		logging.Fatal("failed to register commands", "error", err)
	}

	logging.Info("bot running, press ctrl+c to exit")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
