// Package leaderboard renders message-count rankings: the paginated view
// behind the logs command and the guild-wide top list.
package leaderboard

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sdy329/bigbro-fork/config"
)

// Cursor - forward-only row source, descending by count
type Cursor interface {
	// Next consumes the next row; ok is false once exhausted.
	Next() (userID string, count int, ok bool)
	// HasNext peeks without consuming.
	HasNext() bool
}

// Members - snapshot of currently-present members, user ID to display name
type Members map[string]string

// View - lazy pagination over a count cursor. Pages are rendered at most
// once and cached; backward navigation is always a cache hit. Safe for
// concurrent use: every event handler runs in its own goroutine, so rapid
// button presses on the same reply arrive concurrently.
type View struct {
	mu      sync.Mutex
	cursor  Cursor
	members Members
	pages   []string
	page    int
}

// NewView creates a View positioned on page zero.
func NewView(cursor Cursor, members Members) *View {
	return &View{cursor: cursor, members: members}
}

// Page - current page index
func (v *View) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Advance moves to the next page.
func (v *View) Advance() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page++
}

// Retreat moves to the previous page, never before page zero.
func (v *View) Retreat() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.page > 0 {
		v.page--
	}
}

// Render returns the current page, pulling rows from the cursor only the
// first time the page is requested. Rows whose subject has left the guild
// are discarded without consuming a slot; ranks are absolute across pages.
func (v *View) Render() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.page < len(v.pages) {
		return v.pages[v.page]
	}

	rows := make([]string, 0, config.LogPageSize)
	start := v.page * config.LogPageSize
	for len(rows) < config.LogPageSize {
		userID, count, ok := v.cursor.Next()
		if !ok {
			break
		}
		name, present := v.members[userID]
		if !present {
			continue
		}
		rows = append(rows, strings.Join([]string{
			formatRank(start + len(rows)),
			fmt.Sprintf("[%s](%s)", name, config.UserURL(userID)),
			fmt.Sprintf("`%d messages`", count),
		}, " "))
	}

	page := strings.Join(rows, "\n")
	v.pages = append(v.pages, page)
	return page
}

// IsLastPage - true when the current page is the newest rendered page and
// the cursor has nothing more to yield
func (v *View) IsLastPage() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page == len(v.pages)-1 && !v.cursor.HasNext()
}

func formatRank(index int) string {
	return fmt.Sprintf("**`#%-3d`**", index+1)
}
