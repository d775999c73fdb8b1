// Package config holds process configuration and the static tables the bot
// is built around: the robotics program catalog, embed colors and the
// component IDs shared between messages and their interaction handlers.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config - application configuration loaded from the environment
type Config struct {
	BotToken         string
	RobotEventsToken string
	DatabasePath     string
	AppEnv           string
	// Channels counted for the guild-wide leaderboard. Empty means all.
	LeaderboardChannels []string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	robotEvents := os.Getenv("ROBOT_EVENTS_TOKEN")
	if robotEvents == "" {
		return nil, fmt.Errorf("ROBOT_EVENTS_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "data/data.db"
	}

	cfg := &Config{
		BotToken:         token,
		RobotEventsToken: robotEvents,
		DatabasePath:     dbPath,
		AppEnv:           os.Getenv("APP_ENV"),
	}

	if raw := os.Getenv("LEADERBOARD_CHANNELS"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.LeaderboardChannels = append(cfg.LeaderboardChannels, id)
			}
		}
	}

	return cfg, nil
}
