// Package database is the bot's document store: JSON-encoded records in
// bbolt buckets. Guild settings, moderation logs, message counts and
// pending verification requests each get their own bucket.
package database

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	bolt "go.etcd.io/bbolt"
)

const (
	bucketSettings   = "settings"
	bucketModeration = "moderation"
	bucketCounts     = "counts"
	bucketPending    = "pending"
)

// Store - Bolt db connection plus the settings read-through cache
type Store struct {
	db       *bolt.DB
	settings *cache.Cache
}

// Open opens the database file and creates missing buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketSettings, bucketModeration, bucketCounts, bucketPending} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{
		db:       db,
		settings: cache.New(5*time.Minute, 10*time.Minute),
	}, nil
}

// Close closes the DB connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func compositeKey(guildID, userID string) []byte {
	return []byte(guildID + ":" + userID)
}
