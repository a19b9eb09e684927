package ai

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var (
	inDaysRe  = regexp.MustCompile(`^in (\d+) days?$`)
	inWeeksRe = regexp.MustCompile(`^in (\d+) weeks?$`)
)

// endOfDay pins a due date to the last second of its day in UTC
func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// ResolveDatePhrase maps a relative date phrase to an absolute timestamp
// using a fixed rule table. Returns false when the phrase is not
// recognized. Absolute dates in YYYY-MM-DD form pass through.
func ResolveDatePhrase(phrase string, now time.Time) (time.Time, bool) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return time.Time{}, false
	}

	switch p {
	case "today", "tonight", "by the end of the day":
		return endOfDay(now), true
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), true
	case "day after tomorrow":
		return endOfDay(now.AddDate(0, 0, 2)), true
	case "next week":
		return endOfDay(now.AddDate(0, 0, 7)), true
	case "next month":
		return endOfDay(now.AddDate(0, 1, 0)), true
	}

	if m := inDaysRe.FindStringSubmatch(p); m != nil {
		n, _ := strconv.Atoi(m[1])
		return endOfDay(now.AddDate(0, 0, n)), true
	}
	if m := inWeeksRe.FindStringSubmatch(p); m != nil {
		n, _ := strconv.Atoi(m[1])
		return endOfDay(now.AddDate(0, 0, 7*n)), true
	}

	// "friday" is the next occurrence; "next friday" lands in the
	// following week even when the weekday is still ahead this week.
	if wd, ok := weekdays[strings.TrimPrefix(p, "next ")]; ok {
		days := int(wd-now.UTC().Weekday()+7) % 7
		if days == 0 {
			days = 7
		}
		if strings.HasPrefix(p, "next ") && days < 7 {
			days += 7
		}
		return endOfDay(now.AddDate(0, 0, days)), true
	}

	if t, err := time.Parse("2006-01-02", p); err == nil {
		return endOfDay(t), true
	}
	if t, err := time.Parse(time.RFC3339, phrase); err == nil {
		return t.UTC(), true
	}

	return time.Time{}, false
}
