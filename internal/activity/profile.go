// Package activity buckets event timestamps into day parts, weekday splits and timelines.
package activity

import (
	"math"
	"sort"
	"time"
)

// Bucket names one of the four fixed day parts.
type Bucket string

const (
	// BucketEarlyBird covers 06:00-12:00.
	BucketEarlyBird Bucket = "earlyBird"
	// BucketAfternoon covers 12:00-18:00.
	BucketAfternoon Bucket = "afternoon"
	// BucketEvening covers 18:00-24:00.
	BucketEvening Bucket = "evening"
	// BucketNightOwl covers 00:00-06:00.
	BucketNightOwl Bucket = "nightOwl"

	hoursPerDay       = 24
	daysPerWeek       = 7
	percentMultiplier = 100
	earlyBirdStart    = 6
	afternoonStart    = 12
	eveningStart      = 18
)

// bucketOrder is the declaration order used to break count ties.
var bucketOrder = []Bucket{BucketEarlyBird, BucketAfternoon, BucketEvening, BucketNightOwl}

// Event is one timestamped action of an actor. A zero At means the export omitted the timestamp.
type Event struct {
	Actor string
	At    time.Time
}

// UnixEvent builds an event from Unix seconds, treating zero as an absent timestamp.
func UnixEvent(actor string, seconds int64) Event {
	return Event{Actor: actor, At: UnixTime(seconds)}
}

// UnixTime converts Unix seconds to a time, mapping zero to the zero time.
func UnixTime(seconds int64) time.Time {
	if seconds == 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0)
}

// HasTimestamp reports whether the event can take part in temporal analysis.
func (event Event) HasTimestamp() bool {
	return !event.At.IsZero()
}

// BucketStat is the count and independently rounded share of one day part.
type BucketStat struct {
	Bucket     Bucket `json:"bucket"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// WeekSplit holds the weekday (Monday-Friday) and weekend percentages.
type WeekSplit struct {
	Weekday int `json:"weekday"`
	Weekend int `json:"weekend"`
}

// Profile summarizes when the timestamped events happened.
type Profile struct {
	Total              int          `json:"total"`
	Buckets            []BucketStat `json:"buckets"`
	Dominant           BucketStat   `json:"dominant"`
	Secondary          BucketStat   `json:"secondary"`
	WeekdayVsWeekend   WeekSplit    `json:"weekdayVsWeekend"`
	HourlyDistribution [24]int      `json:"hourlyDistribution"`
	MostActiveDay      string       `json:"mostActiveDay"`
	MostActiveHour     int          `json:"mostActiveHour"`
}

// Bucket returns the stat of the named day part.
func (profile *Profile) Bucket(bucket Bucket) BucketStat {
	if profile == nil {
		return BucketStat{Bucket: bucket}
	}
	for _, stat := range profile.Buckets {
		if stat.Bucket == bucket {
			return stat
		}
	}
	return BucketStat{Bucket: bucket}
}

// BucketForHour maps an hour of day to its day part.
func BucketForHour(hour int) Bucket {
	switch {
	case hour >= earlyBirdStart && hour < afternoonStart:
		return BucketEarlyBird
	case hour >= afternoonStart && hour < eveningStart:
		return BucketAfternoon
	case hour >= eveningStart && hour < hoursPerDay:
		return BucketEvening
	default:
		return BucketNightOwl
	}
}

// Analyze builds the activity profile of the timestamped events in loc. It returns nil when no
// event carries a timestamp.
func Analyze(events []Event, loc *time.Location) *Profile {
	loc = locationOrLocal(loc)
	bucketCounts := map[Bucket]int{}
	var dayCounts [daysPerWeek]int
	profile := &Profile{}

	for _, event := range events {
		if !event.HasTimestamp() {
			continue
		}
		localTime := event.At.In(loc)
		hour := localTime.Hour()
		profile.HourlyDistribution[hour]++
		bucketCounts[BucketForHour(hour)]++
		dayCounts[localTime.Weekday()]++
		profile.Total++
	}
	if profile.Total == 0 {
		return nil
	}

	profile.Buckets = make([]BucketStat, 0, len(bucketOrder))
	for _, bucket := range bucketOrder {
		profile.Buckets = append(profile.Buckets, BucketStat{
			Bucket:     bucket,
			Count:      bucketCounts[bucket],
			Percentage: Percent(bucketCounts[bucket], profile.Total),
		})
	}
	ranked := append([]BucketStat(nil), profile.Buckets...)
	sort.SliceStable(ranked, func(firstIndex, secondIndex int) bool {
		return ranked[firstIndex].Count > ranked[secondIndex].Count
	})
	profile.Dominant = ranked[0]
	profile.Secondary = ranked[1]

	weekendCount := dayCounts[time.Sunday] + dayCounts[time.Saturday]
	profile.WeekdayVsWeekend = WeekSplit{
		Weekday: Percent(profile.Total-weekendCount, profile.Total),
		Weekend: Percent(weekendCount, profile.Total),
	}
	profile.MostActiveDay = time.Weekday(indexOfMax(dayCounts[:])).String()
	profile.MostActiveHour = indexOfMax(profile.HourlyDistribution[:])
	return profile
}

// HourlyCounts counts the timestamped events per hour of day in loc.
func HourlyCounts(events []Event, loc *time.Location) [24]int {
	loc = locationOrLocal(loc)
	var counts [hoursPerDay]int
	for _, event := range events {
		if event.HasTimestamp() {
			counts[event.At.In(loc).Hour()]++
		}
	}
	return counts
}

// Percent returns round(part/total*100), or 0 for an empty total.
func Percent(part int, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * percentMultiplier))
}

func indexOfMax(counts []int) int {
	maxIndex := 0
	for index, count := range counts {
		if count > counts[maxIndex] {
			maxIndex = index
		}
	}
	return maxIndex
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
