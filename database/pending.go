package database

import (
	"encoding/json"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrPendingExists - a member already has a verification request awaiting
// review
var ErrPendingExists = errors.New("pending verification already exists")

// Review threads auto-archive after a week. A pending record older than
// that has no reachable request message left, so a resubmission replaces
// it instead of being refused forever.
const pendingTTL = 7 * 24 * time.Hour

// PendingVerification - claim data anchored to a review thread, replayed
// verbatim when a moderator approves
type PendingVerification struct {
	GuildID     string    `json:"guild"`
	UserID      string    `json:"user"`
	ThreadID    string    `json:"thread,omitempty"`
	MessageID   string    `json:"message,omitempty"`
	Name        string    `json:"name"`
	Program     string    `json:"program"`
	TeamID      string    `json:"team,omitempty"`
	Explanation string    `json:"explanation"`
	Timestamp   time.Time `json:"timestamp"`
}

// CreatePending - conditional insert: at most one live pending request per
// (guild,user). Returns ErrPendingExists when a record is already present,
// closing the lookup-then-act race between concurrent submissions. Records
// past pendingTTL count as dead and are overwritten.
func (s *Store) CreatePending(p PendingVerification) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketPending))
		key := compositeKey(p.GuildID, p.UserID)
		if v := b.Get(key); v != nil {
			var existing PendingVerification
			if err := json.Unmarshal(v, &existing); err != nil {
				return err
			}
			if time.Since(existing.Timestamp) < pendingTTL {
				return ErrPendingExists
			}
		}
		bts, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put(key, bts)
	})
}

// UpdatePending - overwrite an existing pending record, used to attach the
// thread and request message IDs once they exist
func (s *Store) UpdatePending(p PendingVerification) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bts, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketPending)).Put(compositeKey(p.GuildID, p.UserID), bts)
	})
}

// PendingByMessage - look up a pending request by its review message ID
func (s *Store) PendingByMessage(messageID string) (PendingVerification, bool, error) {
	var p PendingVerification
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPending)).ForEach(func(_, v []byte) error {
			var candidate PendingVerification
			if err := json.Unmarshal(v, &candidate); err != nil {
				return err
			}
			if candidate.MessageID == messageID {
				p = candidate
				found = true
			}
			return nil
		})
	})
	return p, found, err
}

// DeletePending - remove a pending record after approval, denial or a
// failed request post
func (s *Store) DeletePending(guildID, userID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPending)).Delete(compositeKey(guildID, userID))
	})
}
