package leaderboard

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceCursor struct {
	rows []struct {
		userID string
		count  int
	}
	pos   int
	reads int
}

func newSliceCursor(counts ...int) *sliceCursor {
	c := &sliceCursor{}
	for i, count := range counts {
		c.rows = append(c.rows, struct {
			userID string
			count  int
		}{fmt.Sprintf("user-%d", i), count})
	}
	return c
}

func (c *sliceCursor) Next() (string, int, bool) {
	if c.pos >= len(c.rows) {
		return "", 0, false
	}
	c.reads++
	row := c.rows[c.pos]
	c.pos++
	return row.userID, row.count, true
}

func (c *sliceCursor) HasNext() bool {
	return c.pos < len(c.rows)
}

func allMembers(cursor *sliceCursor) Members {
	members := make(Members, len(cursor.rows))
	for _, row := range cursor.rows {
		members[row.userID] = strings.ToUpper(row.userID)
	}
	return members
}

func TestRenderIsCachedAndIdempotent(t *testing.T) {
	cursor := newSliceCursor(50, 40, 30, 20, 10, 5)
	view := NewView(cursor, allMembers(cursor))

	first := view.Render()
	reads := cursor.reads
	second := view.Render()

	assert.Equal(t, first, second, "repeated requests must return identical pages")
	assert.Equal(t, reads, cursor.reads, "a cached page must not touch the cursor")
}

func TestRenderRanksAreAbsoluteAcrossPages(t *testing.T) {
	cursor := newSliceCursor(70, 60, 50, 40, 30, 20, 10)
	view := NewView(cursor, allMembers(cursor))

	page0 := view.Render()
	assert.Contains(t, page0, "#1  ")
	assert.Contains(t, page0, "#5  ")

	view.Advance()
	page1 := view.Render()
	assert.Contains(t, page1, "#6  ", "ranks never reset per page")
	assert.Contains(t, page1, "#7  ")
	assert.NotContains(t, page1, "#1  ")
}

func TestRenderSkipsDepartedMembers(t *testing.T) {
	cursor := newSliceCursor(50, 40, 30, 20, 10, 5)
	members := allMembers(cursor)
	delete(members, "user-1")
	view := NewView(cursor, members)

	page := view.Render()

	assert.NotContains(t, page, "user-1")
	// The departed member does not consume a slot; the page still fills.
	assert.Equal(t, 5, len(strings.Split(page, "\n")))
	assert.Contains(t, page, "user-5")
}

func TestRenderRowFormat(t *testing.T) {
	cursor := newSliceCursor(42)
	view := NewView(cursor, Members{"user-0": "Alex"})

	assert.Equal(t, "**`#1  `** [Alex](https://discord.com/users/user-0) `42 messages`", view.Render())
}

func TestIsLastPage(t *testing.T) {
	cursor := newSliceCursor(60, 50, 40, 30, 20, 10)
	view := NewView(cursor, allMembers(cursor))

	view.Render()
	assert.False(t, view.IsLastPage(), "one row remains after page 0")

	view.Advance()
	view.Render()
	assert.True(t, view.IsLastPage())
}

func TestRetreatHitsCache(t *testing.T) {
	cursor := newSliceCursor(60, 50, 40, 30, 20, 10)
	view := NewView(cursor, allMembers(cursor))

	page0 := view.Render()
	view.Advance()
	view.Render()
	reads := cursor.reads

	view.Retreat()
	require.Equal(t, 0, view.Page())
	assert.Equal(t, page0, view.Render())
	assert.Equal(t, reads, cursor.reads)
}

func TestRetreatStopsAtFirstPage(t *testing.T) {
	cursor := newSliceCursor(10)
	view := NewView(cursor, allMembers(cursor))

	view.Retreat()
	assert.Equal(t, 0, view.Page())
}

func TestExhaustedCursorYieldsEmptyPage(t *testing.T) {
	cursor := newSliceCursor(10, 9, 8, 7, 6)
	view := NewView(cursor, allMembers(cursor))

	view.Render()
	view.Advance()

	assert.Equal(t, "", view.Render())
	assert.True(t, view.IsLastPage())
}

// Event handlers run on separate goroutines, so rapid button presses hit
// the same View concurrently. Run under -race.
func TestConcurrentNavigation(t *testing.T) {
	cursor := newSliceCursor(90, 80, 70, 60, 50, 40, 30, 20, 10)
	view := NewView(cursor, allMembers(cursor))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			view.Advance()
			view.Render()
			view.IsLastPage()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			view.Retreat()
			view.Render()
			view.Page()
		}
	}()
	wg.Wait()

	assert.GreaterOrEqual(t, view.Page(), 0)
}

func TestTop(t *testing.T) {
	cursor := newSliceCursor(30, 20, 10)

	rows := Top(cursor, 2)

	require.Len(t, rows, 2)
	assert.Equal(t, Row{UserID: "user-0", Count: 30}, rows[0])
	assert.Equal(t, Row{UserID: "user-1", Count: 20}, rows[1])
}
