package temporal

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTimeline_RespectsMinGap(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 42))
	start := Day(2012, time.January, 10)
	end := Day(2025, time.December, 31)

	total := 0
	for i := 0; i < 500; i++ {
		events := EventTimeline(r, start, end, []string{"Promotion", "Transfer"}, 0.5, 180)
		prev := start
		for _, e := range events {
			assert.GreaterOrEqual(t, DaysBetween(prev, e.Date), 180)
			assert.True(t, e.Date.Before(end))
			prev = e.Date
		}
		total += len(events)
	}
	assert.Greater(t, total, 0)
}

func TestEventTimeline_ShortTenure(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	start := Day(2025, time.November, 1)
	assert.Empty(t, EventTimeline(r, start, Day(2025, time.December, 31), []string{"Promotion"}, 5, 180))
	assert.Empty(t, EventTimeline(r, Day(2010, 1, 1), Day(2025, 1, 1), nil, 5, 180))
}

func TestReviewDates(t *testing.T) {
	got := ReviewDates(Day(2023, time.January, 1), Day(2025, time.December, 31))
	require.Len(t, got, 6)
	assert.Equal(t, Day(2023, time.June, 30), got[0])
	assert.Equal(t, Day(2023, time.December, 15), got[1])
	assert.Equal(t, Day(2025, time.December, 15), got[5])

	got = ReviewDates(Day(2023, time.July, 1), Day(2023, time.December, 1))
	assert.Empty(t, got)
}

func TestQuarterlyDates(t *testing.T) {
	got := QuarterlyDates(Day(2024, time.February, 1), Day(2024, time.December, 31))
	assert.Equal(t, []time.Time{
		Day(2024, time.March, 31),
		Day(2024, time.June, 30),
		Day(2024, time.September, 30),
		Day(2024, time.December, 31),
	}, got)
}

func TestBusinessDays(t *testing.T) {
	// Friday 2024-05-03 .. Monday 2024-05-06
	fri := Day(2024, time.May, 3)
	mon := Day(2024, time.May, 6)
	assert.Equal(t, 1, BusinessDaysBetween(fri, mon))
	assert.Equal(t, 0, BusinessDaysBetween(mon, fri))
	assert.Equal(t, mon, AddBusinessDays(fri, 1))
	assert.Equal(t, Day(2024, time.May, 10), AddBusinessDays(fri, 5))
	assert.Equal(t, 5, BusinessDaysBetween(mon, Day(2024, time.May, 13)))
}
