package analytics

import (
	"time"

	"github.com/rewired-gh/pooptracker/internal/history"
	"github.com/rewired-gh/pooptracker/internal/models"
)

const (
	// DailyBuckets is the number of days covered by BucketDaily.
	DailyBuckets = 7
	// WeeklyBuckets is the number of weeks covered by BucketWeekly.
	WeeklyBuckets = 8

	weekLabelLayout = "Jan 2"
)

// civilDate is a calendar date without a time of day. It is stored as
// midnight UTC so date arithmetic never crosses a DST transition.
type civilDate struct {
	t time.Time
}

func dateOf(millis int64, zone *time.Location) civilDate {
	y, m, d := time.UnixMilli(millis).In(zone).Date()
	return civilDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (c civilDate) addDays(n int) civilDate {
	return civilDate{t: c.t.AddDate(0, 0, n)}
}

func (c civilDate) before(o civilDate) bool { return c.t.Before(o.t) }
func (c civilDate) after(o civilDate) bool  { return c.t.After(o.t) }

// weekStart returns the Monday on or before c.
func (c civilDate) weekStart() civilDate {
	offset := (int(c.t.Weekday()) + 6) % 7
	return c.addDays(-offset)
}

func zoneOrUTC(zone *time.Location) *time.Location {
	if zone == nil {
		return time.UTC
	}
	return zone
}

func eventDates(h history.History, zone *time.Location) []civilDate {
	dates := make([]civilDate, len(h))
	for i, event := range h {
		dates[i] = dateOf(event.Timestamp, zone)
	}
	return dates
}

// BucketDaily counts events per local calendar day for the last seven days
// ending today, oldest first. Labels are weekday abbreviations ("Mon").
// A nil zone is treated as UTC.
func BucketDaily(h history.History, now int64, zone *time.Location) []models.ChartBucket {
	zone = zoneOrUTC(zone)
	today := dateOf(now, zone)
	dates := eventDates(h, zone)

	buckets := make([]models.ChartBucket, 0, DailyBuckets)
	for offset := DailyBuckets - 1; offset >= 0; offset-- {
		day := today.addDays(-offset)
		count := 0
		for _, d := range dates {
			if d == day {
				count++
			}
		}
		buckets = append(buckets, models.ChartBucket{
			Label: day.t.Weekday().String()[:3],
			Count: count,
		})
	}
	return buckets
}

// BucketWeekly counts events per Monday-starting week for the last eight
// weeks ending with the current one, oldest first. Labels read
// "week of Jan 2". A nil zone is treated as UTC.
func BucketWeekly(h history.History, now int64, zone *time.Location) []models.ChartBucket {
	zone = zoneOrUTC(zone)
	thisWeek := dateOf(now, zone).weekStart()
	dates := eventDates(h, zone)

	buckets := make([]models.ChartBucket, 0, WeeklyBuckets)
	for offset := WeeklyBuckets - 1; offset >= 0; offset-- {
		start := thisWeek.addDays(-7 * offset)
		end := start.addDays(6)
		count := 0
		for _, d := range dates {
			if !d.before(start) && !d.after(end) {
				count++
			}
		}
		buckets = append(buckets, models.ChartBucket{
			Label: "week of " + start.t.Format(weekLabelLayout),
			Count: count,
		})
	}
	return buckets
}
