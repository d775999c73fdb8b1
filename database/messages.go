package database

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	bolt "go.etcd.io/bbolt"
)

// MessageCount - aggregated message count for one member
type MessageCount struct {
	UserID string
	Count  int
}

// CountQuery - filters for a message count aggregation. Zero values match
// everything in the guild.
type CountQuery struct {
	// Restrict to a single member
	UserID string
	// Channel allow-list
	Channels []string
}

// IncrementCount - add one message to the (guild,channel,user) ledger
func (s *Store) IncrementCount(guildID, channelID, userID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCounts))
		key := []byte(guildID + ":" + channelID + ":" + userID)

		var count int
		if v := b.Get(key); v != nil {
			if err := json.Unmarshal(v, &count); err != nil {
				return err
			}
		}

		bts, err := json.Marshal(count + 1)
		if err != nil {
			return err
		}
		return b.Put(key, bts)
	})
}

// MessageCounts - aggregate the ledger for a guild: group by user, sum,
// sort descending by count. The returned cursor yields one row at a time.
func (s *Store) MessageCounts(guildID string, query CountQuery) (*CountCursor, error) {
	allowed := make(map[string]bool, len(query.Channels))
	for _, id := range query.Channels {
		allowed[id] = true
	}

	totals := make(map[string]int)
	prefix := []byte(guildID + ":")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCounts)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			parts := strings.SplitN(string(k), ":", 3)
			if len(parts) != 3 {
				continue
			}
			channelID, userID := parts[1], parts[2]
			if len(allowed) > 0 && !allowed[channelID] {
				continue
			}
			if query.UserID != "" && userID != query.UserID {
				continue
			}
			var count int
			if err := json.Unmarshal(v, &count); err != nil {
				return err
			}
			totals[userID] += count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([]MessageCount, 0, len(totals))
	for userID, count := range totals {
		rows = append(rows, MessageCount{UserID: userID, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].UserID < rows[j].UserID
	})

	return &CountCursor{rows: rows}, nil
}

// CountCursor - forward-only cursor over a descending count aggregation
type CountCursor struct {
	rows []MessageCount
	pos  int
}

// Next - consume the next row; false once the cursor is exhausted
func (c *CountCursor) Next() (string, int, bool) {
	if c.pos >= len(c.rows) {
		return "", 0, false
	}
	row := c.rows[c.pos]
	c.pos++
	return row.UserID, row.Count, true
}

// HasNext - peek whether another row remains without consuming it
func (c *CountCursor) HasNext() bool {
	return c.pos < len(c.rows)
}
