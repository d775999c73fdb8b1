package database

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// EntryKind - kind of moderation action recorded against a member
type EntryKind string

const (
	KindWarning EntryKind = "warning"
	KindTimeout EntryKind = "timeout"
	KindBan     EntryKind = "ban"
)

// ModerationEntry - one recorded moderation action. Duration is only set
// for timeouts.
type ModerationEntry struct {
	Date      time.Time `json:"date"`
	Moderator string    `json:"user"`
	Reason    string    `json:"reason,omitempty"`
	Duration  string    `json:"duration,omitempty"`
}

// ModerationLog - append-only per-(guild,user) moderation document
type ModerationLog struct {
	GuildID  string            `json:"guild"`
	UserID   string            `json:"user"`
	Warnings []ModerationEntry `json:"warning,omitempty"`
	Timeouts []ModerationEntry `json:"timeout,omitempty"`
	Bans     []ModerationEntry `json:"ban,omitempty"`
}

// AppendModeration - upsert-and-push: creates the document for the
// (guild,user) pair if absent, then appends exactly one entry to the array
// for its kind. Entries are never merged or rewritten.
func (s *Store) AppendModeration(guildID, userID string, kind EntryKind, entry ModerationEntry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketModeration))
		key := compositeKey(guildID, userID)

		ml := ModerationLog{GuildID: guildID, UserID: userID}
		if v := b.Get(key); v != nil {
			if err := json.Unmarshal(v, &ml); err != nil {
				return err
			}
		}

		switch kind {
		case KindWarning:
			ml.Warnings = append(ml.Warnings, entry)
		case KindTimeout:
			ml.Timeouts = append(ml.Timeouts, entry)
		case KindBan:
			ml.Bans = append(ml.Bans, entry)
		default:
			return fmt.Errorf("unknown moderation entry kind %q", kind)
		}

		bts, err := json.Marshal(ml)
		if err != nil {
			return err
		}
		return b.Put(key, bts)
	})
}

// HasModerationRecord - existence check for a (guild,user) moderation
// document, used to short-circuit a "no history" response
func (s *Store) HasModerationRecord(guildID, userID string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket([]byte(bucketModeration)).Get(compositeKey(guildID, userID)) != nil
		return nil
	})
	return exists, err
}

// Moderation - full moderation document for a member
func (s *Store) Moderation(guildID, userID string) (ModerationLog, bool, error) {
	ml := ModerationLog{GuildID: guildID, UserID: userID}
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketModeration)).Get(compositeKey(guildID, userID))
		if v == nil {
			return nil
		}
		exists = true
		return json.Unmarshal(v, &ml)
	})
	return ml, exists, err
}
