package core

import (
	"strings"
	"time"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// targetDateLayouts are tried in order after a trailing "Z" has been
// rewritten to an explicit +00:00 offset.
var targetDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTargetDate parses an Azure DevOps date field and returns its calendar
// date in loc. Absent, non-string and unparseable values return false.
func ParseTargetDate(raw any, loc *time.Location) (time.Time, bool) {
	t, ok := ParseTimestamp(raw, loc)
	if !ok {
		return time.Time{}, false
	}
	return DateOf(t, loc), true
}

// ParseTimestamp parses an Azure DevOps date field keeping its time of day.
// Values without an offset are read in loc.
func ParseTimestamp(raw any, loc *time.Location) (time.Time, bool) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range targetDateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateOf truncates t to midnight of its calendar date in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// NextMonday returns the Monday that starts the next calendar week. On a
// Monday the current week is skipped, so the result is always 1 to 7 days out.
func NextMonday(today time.Time) time.Time {
	day := DateOf(today, today.Location())
	// time.Weekday: Sunday=0 ... Saturday=6.
	days := (8 - int(day.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return day.AddDate(0, 0, days)
}

// WeekEnd returns the last day (Sunday) of the week starting at monday.
func WeekEnd(monday time.Time) time.Time {
	return monday.AddDate(0, 0, 6)
}

// ClassifyTargetDate buckets a raw target date relative to today and the
// next calendar week:
//
//	MISSING  absent or unparseable
//	RED      before today
//	YELLOW   nextMonday .. nextMonday+6, inclusive
//	GREEN    anything else from today on
func ClassifyTargetDate(raw any, today, nextMonday time.Time, loc *time.Location) models.Classification {
	d, ok := ParseTargetDate(raw, loc)
	if !ok {
		return models.Missing
	}
	today = DateOf(today, loc)
	start := DateOf(nextMonday, loc)
	end := WeekEnd(start)

	switch {
	case d.Before(today):
		return models.Red
	case !d.Before(start) && !d.After(end):
		return models.Yellow
	default:
		return models.Green
	}
}

// ContainsTag reports whether tag occurs anywhere in the semicolon-joined tag
// string. This is a substring test, the same as WIQL's CONTAINS: "MEETING"
// contains "MEET".
func ContainsTag(tags, tag string) bool {
	if tag == "" {
		return false
	}
	return strings.Contains(tags, tag)
}
