// Package temporal builds calendars and sparse lifecycle event timelines.
package temporal

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/distributions"
)

type Event struct {
	Type string
	Date time.Time
}

func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// EventTimeline draws Poisson(int(years*avgPerYear)) events between start and
// end, each at least minGapDays after the previous one (and after start).
func EventTimeline(r *rand.Rand, start, end time.Time, types []string, avgPerYear float64, minGapDays int) []Event {
	tenureDays := DaysBetween(start, end)
	if tenureDays < minGapDays || len(types) == 0 {
		return nil
	}
	expected := int(float64(tenureDays) / 365.25 * avgPerYear)
	n := distributions.Poisson(r, float64(expected))
	if n == 0 {
		return nil
	}

	var events []Event
	current := start.AddDate(0, 0, minGapDays)
	for i := 0; i < n; i++ {
		if !current.Before(end) {
			break
		}
		remaining := DaysBetween(current, end)
		if remaining < minGapDays {
			break
		}
		hi := remaining
		if hi < minGapDays+1 {
			hi = minGapDays + 1
		}
		offset := minGapDays + r.IntN(hi-minGapDays)
		date := current.AddDate(0, 0, offset)
		if !date.Before(end) {
			break
		}
		events = append(events, Event{Type: types[r.IntN(len(types))], Date: date})
		current = date.AddDate(0, 0, minGapDays)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events
}

// ReviewDates returns Jun 30 and Dec 15 of every year inside [start, end].
func ReviewDates(start, end time.Time) []time.Time {
	var out []time.Time
	for y := start.Year(); y <= end.Year(); y++ {
		for _, d := range []time.Time{Day(y, time.June, 30), Day(y, time.December, 15)} {
			if inRange(d, start, end) {
				out = append(out, d)
			}
		}
	}
	return out
}

// QuarterlyDates returns the quarter-end days inside [start, end].
func QuarterlyDates(start, end time.Time) []time.Time {
	var out []time.Time
	for y := start.Year(); y <= end.Year(); y++ {
		for _, d := range []time.Time{Day(y, time.March, 31), Day(y, time.June, 30), Day(y, time.September, 30), Day(y, time.December, 31)} {
			if inRange(d, start, end) {
				out = append(out, d)
			}
		}
	}
	return out
}

func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDaysBetween counts weekdays in [start, end).
func BusinessDaysBetween(start, end time.Time) int {
	n := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			n++
		}
	}
	return n
}

// AddBusinessDays moves forward n weekdays from start.
func AddBusinessDays(start time.Time, n int) time.Time {
	d := start
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if IsBusinessDay(d) {
			added++
		}
	}
	return d
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// MinTime returns the earlier of a and b.
func MinTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxTime returns the later of a and b.
func MaxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
