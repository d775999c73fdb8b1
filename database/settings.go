package database

import (
	"encoding/json"

	"github.com/patrickmn/go-cache"
	bolt "go.etcd.io/bbolt"
)

// GuildSettings - DB record for per-guild configuration. All fields are
// optional; features backed by an unset field silently stay off.
type GuildSettings struct {
	LoggingChannel      string `json:"loggingChannel,omitempty"`
	VerificationChannel string `json:"verificationChannel,omitempty"`
	VerifiedRole        string `json:"verifiedRole,omitempty"`
	VerifiedChannel     string `json:"verifiedChannel,omitempty"`
}

// SettingsPatch - partial update for GuildSettings. Nil fields are left
// untouched by UpdateSettings.
type SettingsPatch struct {
	LoggingChannel      *string
	VerificationChannel *string
	VerifiedRole        *string
	VerifiedChannel     *string
}

// Settings - Get settings for a guild. A guild with no record yields the
// zero value and false, never an error.
func (s *Store) Settings(guildID string) (GuildSettings, bool, error) {
	if cached, found := s.settings.Get(guildID); found {
		gs, ok := cached.(GuildSettings)
		return gs, ok, nil
	}

	var gs GuildSettings
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketSettings)).Get([]byte(guildID))
		if v == nil {
			return nil
		}
		exists = true
		return json.Unmarshal(v, &gs)
	})
	if err != nil {
		return GuildSettings{}, false, err
	}

	if exists {
		s.settings.Set(guildID, gs, cache.DefaultExpiration)
	}
	return gs, exists, nil
}

// UpdateSettings - Upsert guild settings, merging only the fields set on
// the patch. Concurrent writers are last-writer-wins per field.
func (s *Store) UpdateSettings(guildID string, patch SettingsPatch) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSettings))

		var gs GuildSettings
		if v := b.Get([]byte(guildID)); v != nil {
			if err := json.Unmarshal(v, &gs); err != nil {
				return err
			}
		}

		if patch.LoggingChannel != nil {
			gs.LoggingChannel = *patch.LoggingChannel
		}
		if patch.VerificationChannel != nil {
			gs.VerificationChannel = *patch.VerificationChannel
		}
		if patch.VerifiedRole != nil {
			gs.VerifiedRole = *patch.VerifiedRole
		}
		if patch.VerifiedChannel != nil {
			gs.VerifiedChannel = *patch.VerifiedChannel
		}

		bts, err := json.Marshal(gs)
		if err != nil {
			return err
		}
		return b.Put([]byte(guildID), bts)
	})
	if err != nil {
		return err
	}

	s.settings.Delete(guildID)
	return nil
}
