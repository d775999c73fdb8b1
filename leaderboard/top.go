package leaderboard

// Row - one aggregated (subject, count) ranking entry
type Row struct {
	UserID string
	Count  int
}

// Top drains up to limit rows from the cursor, preserving its descending
// order.
func Top(cursor Cursor, limit int) []Row {
	rows := make([]Row, 0, limit)
	for len(rows) < limit {
		userID, count, ok := cursor.Next()
		if !ok {
			break
		}
		rows = append(rows, Row{UserID: userID, Count: count})
	}
	return rows
}
