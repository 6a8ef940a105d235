package activity

import (
	"sort"
	"time"
)

// Granularity selects the calendar unit a timeline groups by.
type Granularity int

const (
	// Day groups events by calendar date.
	Day Granularity = iota
	// Month groups events by calendar month.
	Month

	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// TimelinePoint is the event count of one calendar day or month.
type TimelinePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Timeline groups timestamped events by calendar day or month in loc, sorted ascending by date.
func Timeline(events []Event, loc *time.Location, granularity Granularity) []TimelinePoint {
	loc = locationOrLocal(loc)
	layout := dayLayout
	if granularity == Month {
		layout = monthLayout
	}

	countsByDate := map[string]int{}
	for _, event := range events {
		if event.HasTimestamp() {
			countsByDate[event.At.In(loc).Format(layout)]++
		}
	}

	points := make([]TimelinePoint, 0, len(countsByDate))
	for date, count := range countsByDate {
		points = append(points, TimelinePoint{Date: date, Count: count})
	}
	sort.Slice(points, func(firstIndex, secondIndex int) bool {
		return points[firstIndex].Date < points[secondIndex].Date
	})
	return points
}
